// Package main implements the entry point for the docket API server,
// a task-manager backend providing account registration, session-token
// authentication, and per-user task storage.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"

	"github.com/phrazzld/docket-api/internal/config"
)

func main() {
	migrateCmd := flag.String("migrate", "",
		"run a migration command and exit: up, down, reset, status, version, create")
	migrationName := flag.String("migration-name", "",
		"name for the migration when using -migrate create")
	flag.Parse()

	if err := run(*migrateCmd, *migrationName); err != nil {
		log.Fatalf("docket-api: %v", err)
	}
}

// run wires the application together so main stays a thin exit-code shim.
func run(migrateCmd, migrationName string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := setupLogger(cfg)
	if err != nil {
		return err
	}

	slog.Info("server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	if migrateCmd != "" {
		return runMigrations(cfg, migrateCmd, migrationName)
	}

	db, err := openDatabase(cfg, appLogger)
	if err != nil {
		return err
	}

	app := newApplication(cfg, appLogger, db)

	return app.Run(context.Background())
}
