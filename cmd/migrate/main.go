package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	currencyapp "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/currency"
	identityapp "github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/application/identity"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/infrastructure/auth"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/infrastructure/config"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/infrastructure/logger"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/infrastructure/migration"
	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/infrastructure/persistence"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const defaultMigrationsPath = "migrations"

var errUsage = errors.New("invalid usage")

// env is what every command receives
type env struct {
	cfg  *config.Config
	log  *zap.Logger
	path string
	args []string
	m    *migration.Migrator
}

type command struct {
	usage  string
	needDB bool
	run    func(e *env) error
}

var commands = map[string]command{
	"up": {usage: "up                    Apply all pending migrations", needDB: true, run: func(e *env) error {
		return e.m.Up()
	}},
	"down": {usage: "down [n]              Roll back n migrations, all when n is omitted", needDB: true, run: runDown},
	"step": {usage: "step <n>              Apply n migrations (positive=up, negative=down)", needDB: true, run: runStep},
	"goto": {usage: "goto <version>        Migrate to a specific version", needDB: true, run: runGoto},
	"version": {usage: "version               Show current migration version", needDB: true, run: func(e *env) error {
		version, dirty, err := e.m.Version()
		if err != nil {
			return err
		}
		if version == 0 {
			e.log.Info("No migrations applied")
			return nil
		}
		e.log.Info("Current migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
		return nil
	}},
	"force": {usage: "force <version>       Force set migration version (use with caution)", needDB: true, run: runForce},
	"drop":  {usage: "drop -confirm         Drop all database objects (DANGEROUS)", needDB: true, run: runDrop},
	"seed":  {usage: "seed                  Insert default currencies and the first administrator", run: runSeed},
	"create": {usage: "create <name> [desc]  Create a new migration file pair", run: func(e *env) error {
		if len(e.args) < 1 {
			return fmt.Errorf("%w: migrate create <name> [description]", errUsage)
		}
		description := ""
		if len(e.args) > 1 {
			description = e.args[1]
		}
		mf, err := migration.CreateMigration(e.path, e.args[0], description)
		if err != nil {
			return err
		}
		e.log.Info("Migration created",
			zap.Uint("version", mf.Version),
			zap.String("up_file", mf.UpPath),
			zap.String("down_file", mf.DownPath),
		)
		return nil
	}},
	"list": {usage: "list                  List available migrations", run: func(e *env) error {
		migrations, err := migration.ListMigrations(e.path)
		if err != nil {
			return err
		}
		if len(migrations) == 0 {
			e.log.Info("No migrations found")
			return nil
		}
		e.log.Info("Available migrations", zap.Int("count", len(migrations)))
		for _, m := range migrations {
			note := ""
			if !m.Reversible() {
				note = "  (no down file)"
			}
			fmt.Printf("  %06d  %s%s\n", m.Version, m.Name, note)
		}
		return nil
	}},
}

func main() {
	var (
		migrationsPath string
		logLevel       string
	)
	flag.StringVar(&migrationsPath, "path", "", "Path to migrations directory (default: ./migrations)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	cmd, ok := commands[args[0]]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", args[0])
		printUsage()
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	e := &env{cfg: cfg, log: log, path: resolvePath(migrationsPath), args: args[1:]}
	log.Info("Migration CLI started",
		zap.String("command", args[0]),
		zap.String("migrations_path", e.path),
	)

	if cmd.needDB {
		db, err := sql.Open("postgres", cfg.Database.DSN())
		if err != nil {
			log.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			log.Fatal("Failed to ping database", zap.Error(err))
		}
		e.m, err = migration.New(db, e.path, log)
		if err != nil {
			log.Fatal("Failed to create migrator", zap.Error(err))
		}
		defer e.m.Close()
	}

	if err := cmd.run(e); err != nil {
		if errors.Is(err, errUsage) {
			log.Error(err.Error())
			printUsage()
			os.Exit(1)
		}
		log.Fatal("Command failed", zap.String("command", args[0]), zap.Error(err))
	}
}

// resolvePath looks for the migrations next to the working directory,
// then two levels above the binary
func resolvePath(p string) string {
	if p == "" {
		p = defaultMigrationsPath
		if _, err := os.Stat(p); err != nil {
			if exe, err := os.Executable(); err == nil {
				candidate := filepath.Join(filepath.Dir(exe), "..", "..", defaultMigrationsPath)
				if _, err := os.Stat(candidate); err == nil {
					p = candidate
				}
			}
		}
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

func intArg(e *env, what string) (int, error) {
	if len(e.args) < 1 {
		return 0, fmt.Errorf("%w: %s required", errUsage, what)
	}
	n, err := strconv.Atoi(e.args[0])
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s %q", errUsage, what, e.args[0])
	}
	return n, nil
}

func runDown(e *env) error {
	if len(e.args) == 0 {
		return e.m.Down()
	}
	n, err := intArg(e, "step count")
	if err != nil {
		return err
	}
	if n <= 0 {
		return fmt.Errorf("%w: down expects a positive count", errUsage)
	}
	return e.m.Steps(-n)
}

func runStep(e *env) error {
	n, err := intArg(e, "step count")
	if err != nil {
		return err
	}
	return e.m.Steps(n)
}

func runGoto(e *env) error {
	v, err := intArg(e, "version")
	if err != nil {
		return err
	}
	if v < 0 {
		return fmt.Errorf("%w: version must be positive", errUsage)
	}
	return e.m.GoTo(uint(v))
}

func runForce(e *env) error {
	v, err := intArg(e, "version")
	if err != nil {
		return err
	}
	e.log.Warn("Forcing migration version", zap.Int("version", v))
	return e.m.Force(v)
}

func runDrop(e *env) error {
	for _, arg := range e.args {
		if arg == "-confirm" || arg == "--confirm" {
			e.log.Warn("Dropping all database objects")
			return e.m.Drop()
		}
	}
	return fmt.Errorf("%w: drop cancelled, use 'migrate drop -confirm'", errUsage)
}

// runSeed inserts the reference data the back office needs on a fresh database
func runSeed(e *env) error {
	gormLog := logger.NewGormLogger(e.log, logger.MapGormLogLevel("warn"))
	db, err := persistence.Open(&e.cfg.Database, gormLog)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	auditRepo := persistence.NewGormAuditRepository(db.DB)
	currencies := currencyapp.NewCurrencyService(persistence.NewGormCurrencyRepository(db.DB), auditRepo, e.log)
	if err := currencies.EnsureDefaults(ctx); err != nil {
		return fmt.Errorf("seed currencies: %w", err)
	}
	e.log.Info("Currencies ready")

	if e.cfg.Admin.Email == "" {
		e.log.Info("LTB_ADMIN_EMAIL not set, skipping administrator")
		return nil
	}
	users := identityapp.NewUserService(persistence.NewGormUserRepository(db.DB),
		auth.NewInMemoryTokenBlacklist(), auditRepo, e.cfg.JWT.RefreshTokenExpiration, e.log)
	created, err := users.EnsureAdmin(ctx, e.cfg.Admin.Email, e.cfg.Admin.Password, e.cfg.Admin.Name)
	if err != nil {
		return fmt.Errorf("seed administrator: %w", err)
	}
	if created {
		e.log.Info("Administrator created", zap.String("email", e.cfg.Admin.Email))
	} else {
		e.log.Info("An active administrator already exists")
	}
	return nil
}

func printUsage() {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("Le Tatche Bois database tool\n\nUsage:\n  migrate [flags] <command> [arguments]\n\nCommands:")
	for _, name := range names {
		fmt.Println("  " + commands[name].usage)
	}
	fmt.Print(`
Flags:
  -path string          Path to migrations directory (default: ./migrations)
  -log-level string     Log level: debug, info, warn, error (default: info)

Environment Variables:
  LTB_DATABASE_HOST, LTB_DATABASE_PORT, LTB_DATABASE_USER, LTB_DATABASE_PASSWORD,
  LTB_DATABASE_DBNAME, LTB_DATABASE_SSLMODE
  LTB_ADMIN_EMAIL, LTB_ADMIN_PASSWORD, LTB_ADMIN_NAME (seed)

Examples:
  migrate up
  migrate seed
  migrate down 1
  migrate create add_project_invoices "Link invoices to project phases"
`)
}
