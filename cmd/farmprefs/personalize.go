package main

import (
	"github.com/Veraticus/farm-prefs/internal/config"
	"github.com/Veraticus/farm-prefs/internal/storage"
	"github.com/Veraticus/farm-prefs/internal/tui"
	"github.com/Veraticus/farm-prefs/internal/tui/themes"
	"github.com/spf13/cobra"
)

func personalizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "personalize",
		Short: "Choose your region and preferred commodity unit",
		Long: `Open the interactive personalization form.

Type at least two characters to search regions; suggestions appear once
you pause typing. Tab over to the unit picker and scroll to the unit you
prefer; it is saved as soon as you land on it.`,
		RunE: runPersonalize,
	}

	cmd.Flags().String("theme", "default", "color theme (default, catppuccin-mocha)")
	cmd.Flags().Bool("inline", false, "render inline instead of using the alternate screen")

	return cmd
}

func runPersonalize(cmd *cobra.Command, _ []string) error {
	themeName, _ := cmd.Flags().GetString("theme")
	inline, _ := cmd.Flags().GetBool("inline")

	return withStorage(cmd.Context(), func(cfg config.Config, store *storage.SQLiteStorage) error {
		regions, err := regionLookup(cfg, store)
		if err != nil {
			return err
		}

		return tui.Run(cmd.Context(), cfg, tui.Services{
			Catalog:     store,
			Preferences: store,
			Regions:     regions,
		},
			tui.WithTheme(themes.GetTheme(themeName)),
			tui.WithAltScreen(!inline),
		)
	})
}
