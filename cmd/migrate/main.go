package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/amendez21/storefront-backend/pkg/config"
	"github.com/amendez21/storefront-backend/pkg/db"
	"github.com/amendez21/storefront-backend/pkg/logger"
	"github.com/amendez21/storefront-backend/pkg/migrate"
	"github.com/joho/godotenv"
)

func main() {
	cmd := flag.String("cmd", "up", "migration command: up|down|status|version|create|validate")
	dir := flag.String("dir", migrate.DefaultDir, "goose migrations directory")
	name := flag.String("name", "", "migration name (for create)")
	version := flag.String("version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "migrate"})
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fatal(logg, "loading config", err)
	}

	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env": cfg.App.Env,
		"cmd": *cmd,
		"dir": *dir,
	})

	// create and validate operate purely on files.
	switch *cmd {
	case "create":
		if *name == "" {
			fatal(logg, "create", fmt.Errorf("missing -name"))
		}
		path, err := migrate.CreateSQLMigration(*dir, *name)
		if err != nil {
			fatal(logg, "creating migration", err)
		}
		fmt.Println("created migration:", path)
		return
	case "validate":
		if err := migrate.ValidateDir(*dir); err != nil {
			fatal(logg, "validating migrations", err)
		}
		fmt.Println("migration validation passed")
		return
	}

	// Migrations are postgres SQL, so the sqlite feature flag never applies
	// here.
	dbClient, err := db.New(context.Background(), cfg.DB, false, logg)
	if err != nil {
		fatal(logg, "connecting to database", err)
	}
	defer dbClient.Close()

	sqlDB, err := dbClient.DB().DB()
	if err != nil {
		fatal(logg, "unwrapping sql connection", err)
	}

	logg.Info(ctx, "migrate ready")

	switch *cmd {
	case "up", "down", "status":
		if err := migrate.Run(ctx, sqlDB, *dir, *cmd); err != nil {
			fatal(logg, "goose "+*cmd, err)
		}
	case "version":
		if *version == "" {
			fatal(logg, "version", fmt.Errorf("missing -version"))
		}
		if err := migrate.MigrateToVersion(ctx, sqlDB, *dir, *version); err != nil {
			fatal(logg, "migrating to version "+*version, err)
		}
	default:
		fatal(logg, "parsing flags", fmt.Errorf("unknown -cmd value %q", *cmd))
	}
}

func fatal(logg *logger.Logger, step string, err error) {
	logg.Error(context.Background(), "migrate: "+step, err)
	os.Exit(1)
}
