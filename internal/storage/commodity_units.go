package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/farm-prefs/internal/common"
	"github.com/Veraticus/farm-prefs/internal/model"
)

const commodityCatalog = "commodity_units"

// GetCommodityUnits returns the synced catalog in display order.
// It returns common.ErrCatalogUnavailable if the catalog was never synced.
func (s *SQLiteStorage) GetCommodityUnits(ctx context.Context) ([]model.CommodityUnit, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT item_count FROM catalog_syncs WHERE catalog = ?`, commodityCatalog,
	).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrCatalogUnavailable
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog sync: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT unit_id, name
		FROM commodity_units
		ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query commodity units: %w", err)
	}
	defer rows.Close()

	units := make([]model.CommodityUnit, 0, count)
	for rows.Next() {
		var (
			id   sql.NullInt64
			unit model.CommodityUnit
		)
		if err := rows.Scan(&id, &unit.Name); err != nil {
			return nil, fmt.Errorf("failed to scan commodity unit: %w", err)
		}
		if id.Valid {
			unit.ID = model.IntPtr(int(id.Int64))
		}
		units = append(units, unit)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating commodity units: %w", err)
	}

	slog.Debug("retrieved commodity units", "count", len(units))
	return units, nil
}

// ReplaceCommodityUnits swaps the whole catalog for units and marks it synced.
func (s *SQLiteStorage) ReplaceCommodityUnits(ctx context.Context, units []model.CommodityUnit) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateUnits(units); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM commodity_units`); err != nil {
		return fmt.Errorf("failed to clear commodity units: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO commodity_units (position, unit_id, name)
		VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for i, unit := range units {
		var id sql.NullInt64
		if unit.ID != nil {
			id = sql.NullInt64{Int64: int64(*unit.ID), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, i, id, unit.Name); err != nil {
			return fmt.Errorf("failed to insert commodity unit %q: %w", unit.Name, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO catalog_syncs (catalog, item_count, synced_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(catalog) DO UPDATE SET
			item_count = excluded.item_count,
			synced_at = excluded.synced_at`,
		commodityCatalog, len(units)); err != nil {
		return fmt.Errorf("failed to record catalog sync: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit commodity units: %w", err)
	}

	slog.Info("replaced commodity unit catalog", "count", len(units))
	return nil
}
