package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"

	"github.com/dormhub/backend/internal/infrastructure/config"
	"github.com/dormhub/backend/internal/infrastructure/logger"
	"github.com/dormhub/backend/internal/infrastructure/migration"
	"github.com/dormhub/backend/internal/infrastructure/persistence"
)

const defaultMigrationsPath = "migrations"

func main() {
	var (
		migrationsPath string
		logLevel       string
	)
	flag.StringVar(&migrationsPath, "path", "", "path to migrations directory (default: ./migrations)")
	flag.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	log := logger.New(&logger.Config{
		Level:  logLevel,
		Format: "console",
		Output: "stdout",
	})
	defer func() { _ = log.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load configuration", zap.Error(err))
	}

	if migrationsPath == "" {
		migrationsPath = defaultMigrationsPath
	}
	absPath, err := filepath.Abs(migrationsPath)
	if err != nil {
		log.Fatal("failed to resolve migrations path", zap.Error(err))
	}

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatal("failed to get sql connection", zap.Error(err))
	}

	migrator, err := migration.New(sqlDB, absPath, log)
	if err != nil {
		log.Fatal("failed to initialize migrator", zap.Error(err))
	}
	defer func() { _ = migrator.Close() }()

	if err := run(migrator, command, args[1:], log); err != nil {
		log.Fatal("migration failed", zap.String("command", command), zap.Error(err))
	}
}

func run(migrator *migration.Migrator, command string, args []string, log *zap.Logger) error {
	switch command {
	case "up":
		return migrator.Up()

	case "down":
		return migrator.Down()

	case "steps":
		if len(args) != 1 {
			return fmt.Errorf("steps requires a count, e.g. 'steps 2' or 'steps -1'")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid step count %q: %w", args[0], err)
		}
		return migrator.Steps(n)

	case "version":
		version, dirty, err := migrator.Version()
		if err != nil {
			return err
		}
		log.Info("current migration version",
			zap.Uint("version", version),
			zap.Bool("dirty", dirty))
		return nil

	case "force":
		if len(args) != 1 {
			return fmt.Errorf("force requires a version, e.g. 'force 2'")
		}
		version, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", args[0], err)
		}
		return migrator.Force(version)

	default:
		printUsage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: migrate [flags] <command>

Commands:
  up              apply all pending migrations
  down            roll back all migrations
  steps <n>       apply n migrations (negative rolls back)
  version         print the current schema version
  force <v>       force the schema version without running migrations

Flags:
  -path string        path to migrations directory (default "migrations")
  -log-level string   log level (default "info")`)
}
