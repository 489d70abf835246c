package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/infrastructure/config"
)

// Database is the PostgreSQL handle shared by every repository.
type Database struct {
	DB  *gorm.DB
	sql *sql.DB
}

// Open connects with the pool limits from cfg and fails unless the server
// answers a ping.
func Open(cfg *config.DatabaseConfig, log logger.Interface) (*Database, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:                 log,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	database, err := wrap(db)
	if err != nil {
		return nil, err
	}

	database.sql.SetMaxOpenConns(cfg.MaxOpenConns)
	database.sql.SetMaxIdleConns(cfg.MaxIdleConns)
	database.sql.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	database.sql.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := database.Ping(ctx); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("ping database %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	return database, nil
}

func wrap(db *gorm.DB) (*Database, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	return &Database{DB: db, sql: sqlDB}, nil
}

// Ping backs the database entry of /health.
func (d *Database) Ping(ctx context.Context) error {
	return d.sql.PingContext(ctx)
}

// InUse is the number of pooled connections currently checked out.
func (d *Database) InUse() int {
	return d.sql.Stats().InUse
}

func (d *Database) Close() error {
	return d.sql.Close()
}
