package main

import (
	"fmt"
	"log/slog"

	"github.com/Veraticus/farm-prefs/internal/config"
	"github.com/Veraticus/farm-prefs/internal/storage"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  `Apply any pending schema migrations to the preferences database.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStorage(cmd.Context(), func(cfg config.Config, store *storage.SQLiteStorage) error {
				version, err := store.SchemaVersion(cmd.Context())
				if err != nil {
					return err
				}
				slog.Info("Database migrations complete", "path", cfg.DatabasePath, "version", version)
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Database at schema version %d\n", version)
				return nil
			})
		},
	}
}
