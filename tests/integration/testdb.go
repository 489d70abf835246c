// Package integration runs the services against a real PostgreSQL started
// with testcontainers and migrated with the SQL files under migrations/.
package integration

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/infrastructure/logger"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/infrastructure/migration"
)

// One container per package run. The schema is migrated once into a
// template database and every test gets its own copy of it.
const templateDB = "ltb_template"

var server struct {
	once      sync.Once
	err       error
	container *tcpostgres.PostgresContainer
	base      *url.URL
}

// TestDB is a freshly migrated database owned by one test.
type TestDB struct {
	DB    *gorm.DB
	SqlDB *sql.DB
	name  string
	t     *testing.T
}

// NewTestDB skips in -short mode. The database is dropped when t ends.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()
	if testing.Short() {
		t.Skip("integration test needs Docker")
	}
	server.once.Do(startServer)
	require.NoError(t, server.err, "start PostgreSQL")

	name := "ltb_" + strings.ReplaceAll(uuid.NewString()[:13], "-", "")
	admin := openSQL(t, templateDB+"_admin")
	_, err := admin.Exec(fmt.Sprintf(`CREATE DATABASE %s TEMPLATE %s`, name, templateDB))
	require.NoError(t, err, "clone template database")

	sqlDB := openSQL(t, name)
	gdb, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: sqlDB}), &gorm.Config{Logger: testLogger()})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = sqlDB.Close()
		if _, err := admin.Exec(fmt.Sprintf(`DROP DATABASE IF EXISTS %s WITH (FORCE)`, name)); err != nil {
			t.Logf("drop %s: %v", name, err)
		}
		_ = admin.Close()
	})
	return &TestDB{DB: gdb, SqlDB: sqlDB, name: name, t: t}
}

func startServer() {
	ctx := context.Background()
	c, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase(templateDB+"_admin"),
		tcpostgres.WithUsername("ltb"),
		tcpostgres.WithPassword("ltb-test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(90*time.Second)),
	)
	if err != nil {
		server.err = err
		return
	}
	server.container = c

	dsn, err := c.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		server.err = err
		return
	}
	if server.base, err = url.Parse(dsn); err != nil {
		server.err = err
		return
	}
	server.err = buildTemplate()
}

// buildTemplate migrates templateDB with the same Migrator cmd/migrate uses.
func buildTemplate() error {
	admin, err := sql.Open("postgres", dsnFor(templateDB+"_admin"))
	if err != nil {
		return err
	}
	defer admin.Close()
	if _, err := admin.Exec(`CREATE DATABASE ` + templateDB); err != nil {
		return err
	}

	db, err := sql.Open("postgres", dsnFor(templateDB))
	if err != nil {
		return err
	}
	m, err := migration.New(db, migrationsDir(), zap.NewNop())
	if err != nil {
		_ = db.Close()
		return err
	}
	upErr := m.Up()
	// the template must have no open connection before it is cloned
	closeErr := m.Close()
	if upErr != nil {
		return upErr
	}
	return closeErr
}

// CleanupSharedContainer stops the server; call it from TestMain.
func CleanupSharedContainer() {
	if server.container == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_ = server.container.Terminate(ctx)
}

func dsnFor(database string) string {
	u := *server.base
	u.Path = "/" + database
	return u.String()
}

func openSQL(t *testing.T, database string) *sql.DB {
	t.Helper()
	db, err := sql.Open("postgres", dsnFor(database))
	require.NoError(t, err)
	db.SetMaxOpenConns(5)
	return db
}

// testLogger is silent unless TEST_DB_DEBUG is set.
func testLogger() gormlogger.Interface {
	if os.Getenv("TEST_DB_DEBUG") == "" {
		return gormlogger.Discard
	}
	return logger.NewGormLogger(zap.Must(zap.NewDevelopment()), gormlogger.Info)
}

func migrationsDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "migrations")
}

// NewMigrator opens the application's Migrator on this test's database.
func (tdb *TestDB) NewMigrator() *migration.Migrator {
	tdb.t.Helper()
	m, err := migration.New(tdb.SqlDB, migrationsDir(), zap.NewNop())
	require.NoError(tdb.t, err)
	return m
}

// CreateTestClient inserts a client row and returns its ID.
func (tdb *TestDB) CreateTestClient(number, fullName, phone string) uuid.UUID {
	tdb.t.Helper()
	id := uuid.New()
	err := tdb.DB.Exec(`
		INSERT INTO crm_clients (id, client_number, client_type, full_name, phone, billing_country, payment_terms, version, created_at, updated_at)
		VALUES (?, ?, 'INDIVIDUAL', ?, ?, 'Maroc', 'comptant', 1, NOW(), NOW())
	`, id, number, fullName, phone).Error
	require.NoError(tdb.t, err, "insert client")
	return id
}

// CountRows counts the rows of table matching where, every row when where
// is empty.
func (tdb *TestDB) CountRows(table, where string, args ...any) int64 {
	tdb.t.Helper()
	q := "SELECT COUNT(*) FROM " + table
	if where != "" {
		q += " WHERE " + where
	}
	var n int64
	require.NoError(tdb.t, tdb.DB.Raw(q, args...).Scan(&n).Error)
	return n
}
