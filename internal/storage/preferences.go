package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
)

// GetInt returns the integer preference stored under key.
func (s *SQLiteStorage) GetInt(ctx context.Context, key string) (int, bool, error) {
	if err := validateContext(ctx); err != nil {
		return 0, false, err
	}
	if err := validateString(key, "key"); err != nil {
		return 0, false, err
	}

	var value int
	err := s.db.QueryRowContext(ctx,
		`SELECT int_value FROM preferences WHERE key = ?`, key,
	).Scan(&value)

	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to query preference %q: %w", key, err)
	}

	return value, true, nil
}

// SetInt stores an integer preference, replacing any previous value.
func (s *SQLiteStorage) SetInt(ctx context.Context, key string, value int) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(key, "key"); err != nil {
		return err
	}

	query := `
		INSERT INTO preferences (key, int_value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			int_value = excluded.int_value,
			updated_at = excluded.updated_at`

	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to save preference %q: %w", key, err)
	}

	slog.Debug("saved preference", "key", key, "value", value)
	return nil
}

// DeletePreference removes a stored preference. Missing keys are not an error.
func (s *SQLiteStorage) DeletePreference(ctx context.Context, key string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM preferences WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete preference %q: %w", key, err)
	}
	return nil
}
