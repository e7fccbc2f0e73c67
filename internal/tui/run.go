package tui

import (
	"context"
	"fmt"

	"github.com/Veraticus/farm-prefs/internal/config"
	"github.com/Veraticus/farm-prefs/internal/model"
	"github.com/Veraticus/farm-prefs/internal/personalize"
	"github.com/Veraticus/farm-prefs/internal/search"
	"github.com/Veraticus/farm-prefs/internal/service"
	tea "github.com/charmbracelet/bubbletea"
)

// Services are the collaborators the personalization screen talks to.
type Services struct {
	Catalog     service.CommodityCatalog
	Preferences service.KeyValueStore
	Regions     service.RegionLookup
}

// Run shows the personalization form until the user quits.
// The bubbletea event loop is the screen's single execution context: debounced
// lookups are posted to it as messages and region results come back the same way.
func Run(ctx context.Context, appCfg config.Config, services Services, opts ...Option) error {
	cfg := defaultConfig()
	cfg.Width = appCfg.ScreenWidth
	for _, opt := range opts {
		opt(&cfg)
	}

	var program *tea.Program
	ready := make(chan struct{})

	executor := search.ExecutorFunc(func(fn func()) {
		<-ready
		program.Send(runMsg{fn: fn})
	})

	screen, err := personalize.NewScreen(appCfg, personalize.Dependencies{
		Catalog:     services.Catalog,
		Preferences: services.Preferences,
		Regions:     services.Regions,
		Executor:    executor,
		OnRegions: func(query string, regions []model.Region, err error) {
			<-ready
			program.Send(regionsFoundMsg{query: query, regions: regions, err: err})
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create personalization screen: %w", err)
	}
	defer screen.Close()

	teaOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if cfg.AltScreen {
		teaOpts = append(teaOpts, tea.WithAltScreen())
	}

	program = tea.NewProgram(newModel(screen, cfg), teaOpts...)
	close(ready)

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}
