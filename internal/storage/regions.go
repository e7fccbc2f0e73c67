package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/farm-prefs/internal/model"
)

// maxRegionResults caps autocomplete suggestions from the local directory.
const maxRegionResults = 20

// FetchRegions searches the local region directory by name prefix, then
// by substring, case-insensitively.
func (s *SQLiteStorage) FetchRegions(ctx context.Context, query string) ([]model.Region, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return []model.Region{}, nil
	}

	pattern := "%" + escapeLike(query) + "%"
	prefix := escapeLike(query) + "%"

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, province, country
		FROM regions
		WHERE name LIKE ? ESCAPE '\'
		ORDER BY CASE WHEN name LIKE ? ESCAPE '\' THEN 0 ELSE 1 END, name, id
		LIMIT ?`, pattern, prefix, maxRegionResults)
	if err != nil {
		return nil, fmt.Errorf("failed to query regions: %w", err)
	}
	defer rows.Close()

	regions := []model.Region{}
	for rows.Next() {
		var r model.Region
		if err := rows.Scan(&r.ID, &r.Name, &r.Province, &r.Country); err != nil {
			return nil, fmt.Errorf("failed to scan region: %w", err)
		}
		regions = append(regions, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating regions: %w", err)
	}

	slog.Debug("searched local regions", "query", query, "count", len(regions))
	return regions, nil
}

// SaveRegions inserts or updates regions by id.
func (s *SQLiteStorage) SaveRegions(ctx context.Context, regions []model.Region) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRegions(regions); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO regions (id, name, province, country)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			province = excluded.province,
			country = excluded.country`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, r := range regions {
		if _, err := stmt.ExecContext(ctx, r.ID, r.Name, r.Province, r.Country); err != nil {
			return fmt.Errorf("failed to save region %d: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit regions: %w", err)
	}
	return nil
}

// CountRegions returns the number of regions in the local directory.
func (s *SQLiteStorage) CountRegions(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM regions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count regions: %w", err)
	}
	return count, nil
}

func escapeLike(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}
