// Package service defines the interfaces for all application services.
package service

import (
	"context"

	"github.com/Veraticus/farm-prefs/internal/model"
)

// KeyValueStore persists small integer preferences across sessions.
type KeyValueStore interface {
	// GetInt returns the stored value and whether one was present.
	GetInt(ctx context.Context, key string) (int, bool, error)
	SetInt(ctx context.Context, key string, value int) error
}

// CommodityCatalog provides the commodity units a user can choose from.
type CommodityCatalog interface {
	// GetCommodityUnits returns common.ErrCatalogUnavailable when the catalog
	// has never been synced. An empty, synced catalog returns an empty slice.
	GetCommodityUnits(ctx context.Context) ([]model.CommodityUnit, error)
}

// RegionLookup searches regions matching a partial name.
type RegionLookup interface {
	FetchRegions(ctx context.Context, query string) ([]model.Region, error)
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	KeyValueStore
	CommodityCatalog
	RegionLookup

	ReplaceCommodityUnits(ctx context.Context, units []model.CommodityUnit) error
	SaveRegions(ctx context.Context, regions []model.Region) error

	Migrate(ctx context.Context) error
	Close() error
}
