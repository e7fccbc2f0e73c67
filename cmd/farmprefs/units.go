package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/Veraticus/farm-prefs/internal/common"
	"github.com/Veraticus/farm-prefs/internal/config"
	"github.com/Veraticus/farm-prefs/internal/model"
	"github.com/Veraticus/farm-prefs/internal/selection"
	"github.com/Veraticus/farm-prefs/internal/storage"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// unitsFile is the on-disk layout accepted by `units import`.
type unitsFile struct {
	Units []model.CommodityUnit `yaml:"units"`
}

func unitsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "units",
		Short: "Manage the commodity unit catalog",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List commodity units, marking the preferred one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStorage(cmd.Context(), func(cfg config.Config, store *storage.SQLiteStorage) error {
				return listUnits(cmd.Context(), cmd.OutOrStdout(), cfg, store)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "import FILE",
		Short: "Replace the commodity unit catalog from a YAML file",
		Long: `Replace the commodity unit catalog from a YAML file of the form:

  units:
    - id: 1
      name: Kilograms (kg)
    - id: 2
      name: Pounds (lb)`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStorage(cmd.Context(), func(_ config.Config, store *storage.SQLiteStorage) error {
				return importUnits(cmd.Context(), cmd.OutOrStdout(), store, args[0])
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "select INDEX",
		Short: "Choose the preferred commodity unit by its list position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return common.NewUserError(fmt.Sprintf("%q is not a unit position", args[0]), err)
			}
			return withStorage(cmd.Context(), func(cfg config.Config, store *storage.SQLiteStorage) error {
				return selectUnit(cmd.Context(), cmd.OutOrStdout(), cfg, store, index)
			})
		},
	})

	return cmd
}

// loadSelection restores the persisted selection over the stored catalog.
func loadSelection(ctx context.Context, cfg config.Config, store *storage.SQLiteStorage) (*selection.Store, error) {
	units, err := store.GetCommodityUnits(ctx)
	if err != nil {
		if errors.Is(err, common.ErrCatalogUnavailable) {
			return nil, common.NewUserError("no commodity units yet; run `farmprefs units import FILE` first", err)
		}
		return nil, err
	}

	sel := selection.NewStore(store, cfg.PersistenceKey)
	if _, err := sel.Load(ctx, units); err != nil {
		return nil, fmt.Errorf("failed to restore selection: %w", err)
	}
	return sel, nil
}

func listUnits(ctx context.Context, w io.Writer, cfg config.Config, store *storage.SQLiteStorage) error {
	sel, err := loadSelection(ctx, cfg, store)
	if err != nil {
		return err
	}

	state := sel.State()
	if len(state.Units) == 0 {
		fmt.Fprintln(w, "The commodity catalog is empty.")
		return nil
	}

	for i, unit := range state.Units {
		marker := " "
		if state.Selected && i == state.SelectedIndex {
			marker = "*"
		}
		id := "-"
		if unit.HasID() {
			id = strconv.Itoa(*unit.ID)
		}
		fmt.Fprintf(w, "%s %2d  %-24s (id %s)\n", marker, i, unit.Name, id)
	}
	return nil
}

func importUnits(ctx context.Context, w io.Writer, store *storage.SQLiteStorage, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read units file: %w", err)
	}

	var file unitsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return common.NewUserError("units file is not valid YAML", err)
	}

	if err := store.ReplaceCommodityUnits(ctx, file.Units); err != nil {
		return fmt.Errorf("failed to import units: %w", err)
	}

	fmt.Fprintf(w, "✓ Imported %d commodity units\n", len(file.Units))
	return nil
}

func selectUnit(ctx context.Context, w io.Writer, cfg config.Config, store *storage.SQLiteStorage, index int) error {
	sel, err := loadSelection(ctx, cfg, store)
	if err != nil {
		return err
	}

	name, err := sel.Select(ctx, index)
	if err != nil {
		if errors.Is(err, common.ErrOutOfRangeSelection) {
			return common.NewUserError(fmt.Sprintf("choose a position between 0 and %d", len(sel.Units())-1), err)
		}
		return err
	}

	fmt.Fprintf(w, "✓ Preferred unit: %s\n", name)
	return nil
}
