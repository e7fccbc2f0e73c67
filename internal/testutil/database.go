// Package testutil provides test utilities for farm-prefs: migrated
// in-memory databases and controllable collaborators.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/farm-prefs/internal/model"
	"github.com/Veraticus/farm-prefs/internal/storage"
)

// TestDBOptions provides configuration options for test database setup.
type TestDBOptions struct {
	PersistedUnitID *int
	PersistenceKey  string
	Units           []model.CommodityUnit
	Regions         []model.Region
	// SyncCatalog records the catalog as synced even when Units is empty.
	SyncCatalog bool
}

// SetupTestDB creates a migrated in-memory database seeded from opts.
// It automatically handles cleanup.
//
// Example:
//
//	store := testutil.SetupTestDB(t, testutil.TestDBOptions{
//		Units: testutil.KgLb(),
//	})
func SetupTestDB(t *testing.T, opts TestDBOptions) *storage.SQLiteStorage {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	if len(opts.Units) > 0 || opts.SyncCatalog {
		if err := store.ReplaceCommodityUnits(ctx, opts.Units); err != nil {
			t.Fatalf("failed to seed commodity units: %v", err)
		}
	}

	if len(opts.Regions) > 0 {
		if err := store.SaveRegions(ctx, opts.Regions); err != nil {
			t.Fatalf("failed to seed regions: %v", err)
		}
	}

	if opts.PersistedUnitID != nil {
		key := opts.PersistenceKey
		if key == "" {
			key = DefaultPersistenceKey
		}
		if err := store.SetInt(ctx, key, *opts.PersistedUnitID); err != nil {
			t.Fatalf("failed to seed persisted unit: %v", err)
		}
	}

	return store
}

// DefaultPersistenceKey matches config.DefaultPersistenceKey.
const DefaultPersistenceKey = "selected_commodity_unit_id"

// KgLb returns the two-unit catalog used across tests.
func KgLb() []model.CommodityUnit {
	return []model.CommodityUnit{
		{ID: model.IntPtr(1), Name: "kg"},
		{ID: model.IntPtr(2), Name: "lb"},
	}
}

// PrairieRegions returns a small region directory.
func PrairieRegions() []model.Region {
	return []model.Region{
		{ID: 1, Name: "Saskatoon", Province: "SK", Country: "CA"},
		{ID: 2, Name: "Regina", Province: "SK", Country: "CA"},
		{ID: 3, Name: "Winnipeg", Province: "MB", Country: "CA"},
	}
}
