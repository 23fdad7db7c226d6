package main

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/jesusrosales17/ecommerce-sub001/internal/platform/config"
	"github.com/jesusrosales17/ecommerce-sub001/internal/platform/observability"
	"github.com/jesusrosales17/ecommerce-sub001/internal/repositories/postgres"
)

func main() {
	logger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	cfg, err := config.Load()
	if err != nil {
		var validation *config.ValidationError
		if errors.As(err, &validation) {
			logger.Fatal("configuration incomplete", zap.Strings("fields", validation.Fields()))
		}
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	db, err := postgres.Open(cfg.Database.DSN())
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := postgres.Migrate(db); err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}
	logger.Info("schema migrated")
}
