package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"storefront-catalog/internal/config"
	"storefront-catalog/internal/database"
	"storefront-catalog/internal/logger"
	"storefront-catalog/internal/repository"
	"storefront-catalog/internal/service"

	"go.uber.org/zap"
)

const usage = `catalogctl -cmd <command> [flags]

commands:
  maintenance     -value on|off|status   switch or show storefront maintenance mode
  migrate-up                             apply pending migrations
  migrate-status                         print migration status
  hash-code       -code <access code>    print a bcrypt hash for ADMIN_CODE_HASH
`

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("catalogctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }

	cmd := fs.String("cmd", "", "command to run")
	value := fs.String("value", "status", "maintenance value: on|off|status")
	code := fs.String("code", "", "access code to hash (hash-code)")
	dir := fs.String("dir", "", "goose migrations directory (defaults to MIGRATIONS_DIR)")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	// Commands that do NOT require DB
	switch *cmd {
	case "hash-code":
		if *code == "" {
			fmt.Fprintln(stderr, "missing -code for hash-code")
			return 1
		}
		hash, err := service.HashAccessCode(*code)
		if err != nil {
			fmt.Fprintf(stderr, "failed to hash code: %v\n", err)
			return 1
		}
		fmt.Fprintln(stdout, hash)
		return 0
	case "maintenance":
		if _, err := parseSwitch(*value); err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
	case "migrate-up", "migrate-status":
	default:
		fs.Usage()
		return 2
	}

	cfg := config.Load()
	log, err := logger.New(cfg.Server.Env)
	if err != nil {
		fmt.Fprintf(stderr, "failed to initialize logger: %v\n", err)
		return 1
	}
	defer log.Sync()
	log = log.With(zap.String("cmd", *cmd))

	// Everything else needs DB
	dbService, err := database.New(ctx, cfg.Database)
	if err != nil {
		log.Error("Failed to connect to database", zap.Error(err))
		return 1
	}
	defer dbService.Close()

	migrationsDir := cfg.Database.MigrationsDir
	if *dir != "" {
		migrationsDir = *dir
	}

	switch *cmd {
	case "migrate-up", "migrate-status":
		if err := migrate(dbService.DB(), *cmd, migrationsDir, log); err != nil {
			return 1
		}
	case "maintenance":
		settings := service.NewSettingsService(repository.NewSettingRepository(dbService.DB()))
		if err := maintenance(ctx, settings, *value, stdout); err != nil {
			log.Error("Maintenance command failed", zap.Error(err))
			return 1
		}
	}
	return 0
}

func maintenance(ctx context.Context, settings service.SettingsService, value string, out io.Writer) error {
	enable, err := parseSwitch(value)
	if err != nil {
		return err
	}
	if enable != nil {
		if err := settings.SetMaintenanceMode(ctx, *enable); err != nil {
			return err
		}
	}

	enabled, err := settings.MaintenanceMode(ctx)
	if err != nil {
		return err
	}
	state := "off"
	if enabled {
		state = "on"
	}
	fmt.Fprintf(out, "maintenance mode: %s\n", state)
	return nil
}

// parseSwitch maps on/off to a bool and status to nil.
func parseSwitch(value string) (*bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "on", "true", "1":
		v := true
		return &v, nil
	case "off", "false", "0":
		v := false
		return &v, nil
	case "status", "":
		return nil, nil
	}
	return nil, fmt.Errorf("invalid -value %q: want on, off or status", value)
}

// migrate applies or reports migrations, logging any failure.
func migrate(db *sql.DB, cmd, dir string, log *zap.Logger) error {
	var err error
	if cmd == "migrate-up" {
		err = database.RunMigrations(db, dir, log)
	} else {
		err = database.GetMigrationStatus(db, dir)
	}
	if err != nil {
		log.Error("Migration command failed", zap.String("dir", dir), zap.Error(err))
	}
	return err
}
