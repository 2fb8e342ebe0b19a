package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"moving_ops/internal/config"
	"moving_ops/internal/database"
	"moving_ops/internal/migrations"
)

func main() {
	reset := flag.Bool("reset", false, "drop all tables before migrating")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	cfg := config.Load()

	db, err := database.Initialize(cfg.DatabaseURL, logger)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("err", err))
		os.Exit(1)
	}

	err = migrations.RunMigrations(context.Background(), db, migrations.Options{
		Reset:         *reset,
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
		CompanyName:   cfg.DefaultCompany,
	}, logger)
	if err != nil {
		logger.Error("failed to initialize database", slog.Any("err", err))
		os.Exit(1)
	}

	logger.Info("database initialization completed")
}
