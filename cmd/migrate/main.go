package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/unicornsleuth/ad440-winter2021-thursday-repo/internal/config"
	"github.com/unicornsleuth/ad440-winter2021-thursday-repo/internal/database"
	"github.com/unicornsleuth/ad440-winter2021-thursday-repo/pkg/server"
)

func main() {
	var (
		action  = flag.String("action", "up", "Migration action: up, down, status, validate")
		verbose = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if *verbose {
		cfg.Log.Level = "debug"
	}

	container, err := server.NewContainer(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize container")
	}
	defer container.Close()

	logger := container.Logger
	logger.WithFields(logrus.Fields{
		"driver":   cfg.Database.Driver,
		"server":   cfg.Database.Server,
		"database": cfg.Database.Name,
		"action":   *action,
	}).Info("Starting migration tool")

	ctx := context.Background()
	migrations := container.Migrations

	switch *action {
	case "up":
		if err := migrations.RunMigrations(ctx); err != nil {
			logger.WithError(err).Fatal("Migration up failed")
		}
	case "down":
		if err := migrations.RollbackMigration(ctx); err != nil {
			logger.WithError(err).Fatal("Migration down failed")
		}
	case "status", "version":
		if err := showMigrationStatus(ctx, migrations); err != nil {
			logger.WithError(err).Fatal("Failed to get migration status")
		}
	case "validate":
		if err := migrations.ValidateSchema(ctx); err != nil {
			logger.WithError(err).Fatal("Schema validation failed")
		}
		fmt.Println("Schema validation passed successfully")
	default:
		logger.WithField("action", *action).Fatal("Unknown action. Use: up, down, status, validate")
	}

	logger.Info("Migration tool completed successfully")
}

func showMigrationStatus(ctx context.Context, migrations *database.MigrationManager) error {
	status, err := migrations.GetMigrationStatus(ctx)
	if err != nil {
		return fmt.Errorf("failed to get migration status: %w", err)
	}

	fmt.Printf("Migration Status:\n")
	fmt.Printf("  Version: %d\n", status.Version)
	fmt.Printf("  Applied: %t\n", status.Applied)
	fmt.Printf("  Dirty: %t\n", status.Dirty)
	fmt.Printf("  Timestamp: %s\n", status.Timestamp.Format("2006-01-02 15:04:05"))

	return nil
}
