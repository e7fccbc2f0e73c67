package personalize

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Veraticus/farm-prefs/internal/common"
	"github.com/Veraticus/farm-prefs/internal/config"
	"github.com/Veraticus/farm-prefs/internal/model"
	"github.com/Veraticus/farm-prefs/internal/search"
	"github.com/Veraticus/farm-prefs/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCatalog struct {
	err   error
	units []model.CommodityUnit
}

func (c stubCatalog) GetCommodityUnits(_ context.Context) ([]model.CommodityUnit, error) {
	return c.units, c.err
}

type memoryPrefs struct {
	values map[string]int
	writes int
	mu     sync.Mutex
}

func newMemoryPrefs() *memoryPrefs {
	return &memoryPrefs{values: make(map[string]int)}
}

func (m *memoryPrefs) GetInt(_ context.Context, key string) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memoryPrefs) SetInt(_ context.Context, key string, value int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	m.values[key] = value
	return nil
}

// stubRegions answers lookups from a fixed table.
type stubRegions struct {
	err     error
	results map[string][]model.Region
}

func (r stubRegions) FetchRegions(_ context.Context, query string) ([]model.Region, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.results[query], nil
}

type regionResult struct {
	err     error
	query   string
	regions []model.Region
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.SearchDelay = time.Second
	return cfg
}

func newTestScreen(t *testing.T, catalog stubCatalog, prefs *memoryPrefs, regions stubRegions) (*Screen, *testutil.ManualTimers, chan regionResult) {
	t.Helper()
	timers := &testutil.ManualTimers{}
	results := make(chan regionResult, 4)

	screen, err := NewScreen(testConfig(), Dependencies{
		Catalog:     catalog,
		Preferences: prefs,
		Regions:     regions,
		Executor:    search.Inline,
		OnRegions: func(query string, found []model.Region, err error) {
			results <- regionResult{query: query, regions: found, err: err}
		},
		TriggerOptions: []search.Option{timers.Option()},
	})
	require.NoError(t, err)
	t.Cleanup(screen.Close)
	return screen, timers, results
}

func kgLb() []model.CommodityUnit {
	return []model.CommodityUnit{
		{ID: model.IntPtr(1), Name: "kg"},
		{ID: model.IntPtr(2), Name: "lb"},
	}
}

func TestScreen_TableSections(t *testing.T) {
	screen, _, _ := newTestScreen(t, stubCatalog{}, newMemoryPrefs(), stubRegions{})

	assert.Equal(t, 2, screen.SectionCount())
	assert.Equal(t, 1, screen.RowCount(SectionLocation))
	assert.Equal(t, 1, screen.RowCount(SectionCommodity))
	assert.Equal(t, "Where are you located?", screen.Title(SectionLocation))
	assert.Equal(t, "Which unit do you prefer to deal with?", screen.Title(SectionCommodity))
	assert.Equal(t, " ", screen.Title(5))
	assert.Equal(t, "Personalize your FarmLead", screen.ScreenTitle())
	assert.NotEmpty(t, screen.Done())
}

func TestScreen_LoadRestoresPersistedUnit(t *testing.T) {
	prefs := newMemoryPrefs()
	prefs.values[config.DefaultPersistenceKey] = 2
	screen, _, _ := newTestScreen(t, stubCatalog{units: kgLb()}, prefs, stubRegions{})

	state, err := screen.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, state.SelectedIndex)
	assert.Equal(t, "lb", screen.CommodityText())
	assert.Equal(t, 2, screen.PickerRowCount())
	assert.Zero(t, prefs.writes)
}

func TestScreen_CatalogUnavailable(t *testing.T) {
	prefs := newMemoryPrefs()
	screen, _, _ := newTestScreen(t, stubCatalog{err: common.ErrCatalogUnavailable}, prefs, stubRegions{})

	state, err := screen.Load(context.Background())
	require.NoError(t, err)

	assert.False(t, state.Selected)
	assert.Zero(t, screen.PickerRowCount())
	assert.Empty(t, screen.CommodityText())

	_, ok := screen.PickerTitle(0)
	assert.False(t, ok)

	_, err = screen.OnRowSelected(context.Background(), 0)
	assert.ErrorIs(t, err, common.ErrOutOfRangeSelection)
	assert.Zero(t, prefs.writes)
}

func TestScreen_CatalogFailure(t *testing.T) {
	screen, _, _ := newTestScreen(t, stubCatalog{err: errors.New("corrupt")}, newMemoryPrefs(), stubRegions{})

	_, err := screen.Load(context.Background())
	assert.Error(t, err)
}

func TestScreen_PickerSelection(t *testing.T) {
	prefs := newMemoryPrefs()
	prefs.values[config.DefaultPersistenceKey] = 2
	screen, _, _ := newTestScreen(t, stubCatalog{units: kgLb()}, prefs, stubRegions{})
	_, err := screen.Load(context.Background())
	require.NoError(t, err)

	title, ok := screen.PickerTitle(0)
	require.True(t, ok)
	assert.Equal(t, "kg", title)

	name, err := screen.OnRowSelected(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, "kg", name)
	assert.Equal(t, "kg", screen.CommodityText())
	assert.Equal(t, 1, prefs.values[config.DefaultPersistenceKey])
	assert.Equal(t, 1, prefs.writes)

	_, err = screen.OnRowSelected(context.Background(), 2)
	assert.ErrorIs(t, err, common.ErrOutOfRangeSelection)
	assert.Equal(t, "kg", screen.CommodityText())
	assert.Equal(t, 1, prefs.writes)
}

func TestScreen_RegionSearch(t *testing.T) {
	regina := model.Region{ID: 2, Name: "Regina", Province: "SK"}
	screen, timers, results := newTestScreen(t, stubCatalog{}, newMemoryPrefs(), stubRegions{
		results: map[string][]model.Region{"reg": {regina}},
	})

	screen.OnRegionTextChanged("r")
	screen.OnRegionTextChanged("re")
	screen.OnRegionTextChanged("reg")
	assert.Equal(t, "reg", screen.RegionText())
	assert.Equal(t, 1, timers.FireAll())

	select {
	case got := <-results:
		assert.Equal(t, "reg", got.query)
		assert.Equal(t, []model.Region{regina}, got.regions)
		require.NoError(t, got.err)
	case <-time.After(2 * time.Second):
		t.Fatal("region lookup never completed")
	}

	select {
	case extra := <-results:
		t.Fatalf("superseded lookup delivered results for %q", extra.query)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestScreen_LookupAfterCloseIsDropped(t *testing.T) {
	screen, _, results := newTestScreen(t, stubCatalog{}, newMemoryPrefs(), stubRegions{
		results: map[string][]model.Region{"reg": {{ID: 2, Name: "Regina"}}},
	})

	screen.Close()
	// A lookup the trigger handed out just before Close.
	screen.lookupRegions(context.Background(), "reg")
	screen.Close()

	select {
	case got := <-results:
		t.Fatalf("closed screen delivered results for %q", got.query)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestScreen_RegionLookupFailureIsReported(t *testing.T) {
	screen, timers, results := newTestScreen(t, stubCatalog{}, newMemoryPrefs(), stubRegions{
		err: common.ErrLookupFailed,
	})

	screen.OnRegionTextChanged("win")
	timers.FireAll()

	select {
	case got := <-results:
		assert.ErrorIs(t, got.err, common.ErrLookupFailed)
	case <-time.After(2 * time.Second):
		t.Fatal("region lookup never completed")
	}
}

func TestNewScreen_RequiresCollaborators(t *testing.T) {
	_, err := NewScreen(testConfig(), Dependencies{Regions: stubRegions{}, Executor: search.Inline})
	assert.ErrorIs(t, err, common.ErrMissingConfig)

	_, err = NewScreen(testConfig(), Dependencies{Preferences: newMemoryPrefs(), Executor: search.Inline})
	assert.ErrorIs(t, err, common.ErrMissingConfig)

	_, err = NewScreen(testConfig(), Dependencies{Preferences: newMemoryPrefs(), Regions: stubRegions{}})
	assert.ErrorIs(t, err, common.ErrMissingConfig)
}
