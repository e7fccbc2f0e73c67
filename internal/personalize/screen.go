// Package personalize adapts the commodity unit selection and region
// search to whatever layer renders the personalization form.
package personalize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Veraticus/farm-prefs/internal/common"
	"github.com/Veraticus/farm-prefs/internal/config"
	"github.com/Veraticus/farm-prefs/internal/model"
	"github.com/Veraticus/farm-prefs/internal/search"
	"github.com/Veraticus/farm-prefs/internal/selection"
	"github.com/Veraticus/farm-prefs/internal/service"
)

// Table sections.
const (
	SectionLocation = iota
	SectionCommodity
)

const (
	screenTitle     = "Personalize your FarmLead"
	doneMessage     = "The demo is finished. Hope you enjoyed :)"
	untitledSection = " "
)

var sectionTitles = []string{
	"Where are you located?",
	"Which unit do you prefer to deal with?",
}

// TableSectionSource describes the settings-style table.
type TableSectionSource interface {
	SectionCount() int
	RowCount(section int) int
	Title(section int) string
}

// PickerRowSource describes the commodity unit picker.
type PickerRowSource interface {
	PickerRowCount() int
	PickerTitle(row int) (string, bool)
	OnRowSelected(ctx context.Context, row int) (string, error)
}

// RegionsHandler receives the result of a region lookup that was not
// superseded by a newer input.
type RegionsHandler func(query string, regions []model.Region, err error)

// Dependencies are the collaborators a Screen needs.
type Dependencies struct {
	Catalog     service.CommodityCatalog
	Preferences service.KeyValueStore
	Regions     service.RegionLookup
	Executor    search.Executor
	OnRegions   RegionsHandler
	// TriggerOptions are passed through to the search trigger.
	TriggerOptions []search.Option
}

// Screen is the presentation adapter for the personalization form.
type Screen struct {
	catalog       service.CommodityCatalog
	regions       service.RegionLookup
	onRegions     RegionsHandler
	store         *selection.Store
	trigger       *search.Trigger
	commodityText string
	regionText    string
	inflight      sync.WaitGroup
	mu            sync.Mutex
	closed        bool
}

var (
	_ TableSectionSource = (*Screen)(nil)
	_ PickerRowSource    = (*Screen)(nil)
)

// NewScreen wires a screen from configuration and collaborators.
func NewScreen(cfg config.Config, deps Dependencies) (*Screen, error) {
	if deps.Preferences == nil {
		return nil, fmt.Errorf("%w: preferences store is required", common.ErrMissingConfig)
	}
	if deps.Regions == nil {
		return nil, fmt.Errorf("%w: region lookup is required", common.ErrMissingConfig)
	}
	if deps.Executor == nil {
		return nil, fmt.Errorf("%w: executor is required", common.ErrMissingConfig)
	}

	s := &Screen{
		catalog:   deps.Catalog,
		regions:   deps.Regions,
		onRegions: deps.OnRegions,
		store:     selection.NewStore(deps.Preferences, cfg.PersistenceKey),
	}
	s.trigger = search.NewTrigger(deps.Executor, cfg.SearchDelay, s.lookupRegions, deps.TriggerOptions...)
	return s, nil
}

// ScreenTitle returns the title shown above the form.
func (s *Screen) ScreenTitle() string {
	return screenTitle
}

// Done returns the message shown when the user finishes the form.
func (s *Screen) Done() string {
	return doneMessage
}

// Load fetches the commodity catalog and restores the persisted unit.
// An unavailable catalog leaves the picker empty and is not an error.
func (s *Screen) Load(ctx context.Context) (selection.State, error) {
	if s.catalog == nil {
		slog.Info("commodity catalog not configured")
		return s.store.State(), nil
	}

	units, err := s.catalog.GetCommodityUnits(ctx)
	if errors.Is(err, common.ErrCatalogUnavailable) {
		slog.Info("commodity catalog unavailable, leaving unit unselected")
		return s.store.State(), nil
	}
	if err != nil {
		return s.store.State(), fmt.Errorf("failed to load commodity units: %w", err)
	}

	state, err := s.store.Load(ctx, units)
	if err != nil {
		return state, err
	}

	if unit, ok := state.SelectedUnit(); ok {
		slog.Debug("setting commodity", "index", state.SelectedIndex, "name", unit.Name)
		s.setCommodityText(unit.Name)
	}
	return state, nil
}

// SectionCount implements TableSectionSource.
func (s *Screen) SectionCount() int {
	return len(sectionTitles)
}

// RowCount implements TableSectionSource.
func (s *Screen) RowCount(_ int) int {
	return 1
}

// Title implements TableSectionSource.
func (s *Screen) Title(section int) string {
	if section < 0 || section >= len(sectionTitles) {
		return untitledSection
	}
	return sectionTitles[section]
}

// PickerRowCount implements PickerRowSource.
func (s *Screen) PickerRowCount() int {
	return len(s.store.Units())
}

// PickerTitle implements PickerRowSource.
func (s *Screen) PickerTitle(row int) (string, bool) {
	units := s.store.Units()
	if row < 0 || row >= len(units) {
		return "", false
	}
	return units[row].Name, true
}

// OnRowSelected implements PickerRowSource. The selected name is echoed into
// the commodity field even when persisting it fails.
func (s *Screen) OnRowSelected(ctx context.Context, row int) (string, error) {
	name, err := s.store.Select(ctx, row)
	if errors.Is(err, common.ErrOutOfRangeSelection) {
		return "", err
	}
	s.setCommodityText(name)
	return name, err
}

// Selection returns the current selection state.
func (s *Screen) Selection() selection.State {
	return s.store.State()
}

// CommodityText returns the value shown in the commodity field.
func (s *Screen) CommodityText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commodityText
}

// RegionText returns the last value typed into the region field.
func (s *Screen) RegionText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.regionText
}

// OnRegionTextChanged feeds the region field into the debounced search.
func (s *Screen) OnRegionTextChanged(text string) {
	s.mu.Lock()
	s.regionText = text
	s.mu.Unlock()

	s.trigger.OnTextChanged(text)
}

// Close stops the region search and waits for in-flight lookups to return.
// No lookup starts and no results are delivered once Close returns.
func (s *Screen) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.trigger.Close()
	s.inflight.Wait()
}

func (s *Screen) setCommodityText(text string) {
	s.mu.Lock()
	s.commodityText = text
	s.mu.Unlock()
}

// lookupRegions runs on the trigger's executor and must not block it.
func (s *Screen) lookupRegions(ctx context.Context, query string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.inflight.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.inflight.Done()

		regions, err := s.regions.FetchRegions(ctx, query)
		if ctx.Err() != nil {
			slog.Debug("discarding superseded region lookup", "query", query)
			return
		}
		if err != nil {
			common.LogError(err, "region lookup failed", common.Fields{"query": query})
		}
		if s.onRegions != nil {
			s.onRegions(query, regions, err)
		}
	}()
}
