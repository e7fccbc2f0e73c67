package main

import (
	"context"
	"fmt"

	"github.com/Veraticus/farm-prefs/internal/config"
	"github.com/Veraticus/farm-prefs/internal/region"
	"github.com/Veraticus/farm-prefs/internal/service"
	"github.com/Veraticus/farm-prefs/internal/storage"
	"github.com/spf13/viper"
)

// loadConfig reads the application configuration from viper.
func loadConfig() (config.Config, error) {
	return config.Load(viper.GetViper())
}

// initStorage opens the database and brings its schema up to date.
func initStorage(ctx context.Context, cfg config.Config) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// regionLookup picks the remote API when configured, otherwise the local
// region directory.
func regionLookup(cfg config.Config, local service.RegionLookup) (service.RegionLookup, error) {
	if cfg.RegionAPIURL == "" {
		return local, nil
	}
	return region.NewClient(cfg.RegionAPIURL, cfg.RequestTimeout)
}

// withStorage loads config, opens storage and runs fn.
func withStorage(ctx context.Context, fn func(config.Config, *storage.SQLiteStorage) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := initStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	return fn(cfg, store)
}
