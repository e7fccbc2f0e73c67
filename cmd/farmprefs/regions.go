package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/Veraticus/farm-prefs/internal/common"
	"github.com/Veraticus/farm-prefs/internal/config"
	"github.com/Veraticus/farm-prefs/internal/model"
	"github.com/Veraticus/farm-prefs/internal/search"
	"github.com/Veraticus/farm-prefs/internal/service"
	"github.com/Veraticus/farm-prefs/internal/storage"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const regionImportBatchSize = 100

// regionsFile is the on-disk layout accepted by `regions import`.
type regionsFile struct {
	Regions []model.Region `yaml:"regions"`
}

func regionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "regions",
		Short: "Search and maintain the region directory",
	}

	searchCmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Search regions the way the form does while you type",
		Long: `Search regions by feeding QUERY to the debounced search trigger one
keystroke at a time. Only the final text is looked up once typing pauses.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keystroke, _ := cmd.Flags().GetDuration("keystroke")
			return withStorage(cmd.Context(), func(cfg config.Config, store *storage.SQLiteStorage) error {
				lookup, err := regionLookup(cfg, store)
				if err != nil {
					return err
				}
				return searchRegions(cmd.Context(), cmd.OutOrStdout(), cfg, lookup, args[0], keystroke)
			})
		},
	}
	searchCmd.Flags().Duration("keystroke", 50*time.Millisecond, "simulated time between keystrokes")
	cmd.AddCommand(searchCmd)

	importCmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Load regions from a YAML file into the local directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			quiet, _ := cmd.Flags().GetBool("quiet")
			return withStorage(cmd.Context(), func(_ config.Config, store *storage.SQLiteStorage) error {
				return importRegions(cmd.Context(), cmd.OutOrStdout(), store, args[0], !quiet)
			})
		},
	}
	importCmd.Flags().BoolP("quiet", "q", false, "hide the progress bar")
	cmd.AddCommand(importCmd)

	return cmd
}

type regionResult struct {
	err     error
	query   string
	regions []model.Region
}

// searchRegions types query into a trigger on a serial loop and waits for the
// lookup of the final text.
func searchRegions(ctx context.Context, w io.Writer, cfg config.Config, regions service.RegionLookup, query string, keystroke time.Duration) error {
	if len([]rune(query)) < search.MinQueryLength {
		return common.NewUserError(fmt.Sprintf("type at least %d characters to search", search.MinQueryLength), nil)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loop := search.NewLoop()
	go loop.Run(ctx)

	// Slow typing lets lookups for earlier prefixes fire; only the full
	// query is reported.
	results := make(chan regionResult, 1)
	trigger := search.NewTrigger(loop, cfg.SearchDelay, func(lookupCtx context.Context, q string) {
		if q != query {
			slog.Debug("skipping partial region lookup", "query", q)
			return
		}
		go func() {
			found, err := regions.FetchRegions(lookupCtx, q)
			if lookupCtx.Err() != nil {
				return
			}
			select {
			case results <- regionResult{query: q, regions: found, err: err}:
			case <-lookupCtx.Done():
			}
		}()
	})
	defer trigger.Close()

	runes := []rune(query)
	for i := 1; i <= len(runes); i++ {
		trigger.OnTextChanged(string(runes[:i]))
		if i < len(runes) && keystroke > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(keystroke):
			}
		}
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-results:
		if res.err != nil {
			return res.err
		}
		printRegions(w, res.query, res.regions)
		return nil
	}
}

func printRegions(w io.Writer, query string, regions []model.Region) {
	if len(regions) == 0 {
		fmt.Fprintf(w, "No regions match %q\n", query)
		return
	}

	fmt.Fprintf(w, "Regions matching %q:\n", query)
	for _, r := range regions {
		if r.Country != "" {
			fmt.Fprintf(w, "  %s (%s)\n", r.DisplayName(), r.Country)
			continue
		}
		fmt.Fprintf(w, "  %s\n", r.DisplayName())
	}
}

func importRegions(ctx context.Context, w io.Writer, store *storage.SQLiteStorage, path string, showProgress bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read regions file: %w", err)
	}

	var file regionsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return common.NewUserError("regions file is not valid YAML", err)
	}

	var bar *progressbar.ProgressBar
	if showProgress {
		bar = progressbar.NewOptions(len(file.Regions),
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetDescription("Importing regions"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	for start := 0; start < len(file.Regions); start += regionImportBatchSize {
		end := min(start+regionImportBatchSize, len(file.Regions))
		if err := store.SaveRegions(ctx, file.Regions[start:end]); err != nil {
			return fmt.Errorf("failed to import regions %d-%d: %w", start, end-1, err)
		}
		if bar != nil {
			_ = bar.Add(end - start)
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}

	total, err := store.CountRegions(ctx)
	if err != nil {
		return err
	}
	slog.Info("Imported regions", "file", path, "count", len(file.Regions), "total", total)
	fmt.Fprintf(w, "✓ Imported %d regions (%d in directory)\n", len(file.Regions), total)
	return nil
}
