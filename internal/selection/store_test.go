package selection

import (
	"context"
	"errors"
	"testing"

	"github.com/Veraticus/farm-prefs/internal/common"
	"github.com/Veraticus/farm-prefs/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "selected_commodity_unit_id"

type setCall struct {
	key   string
	value int
}

// memoryKV records every write so tests can assert on persistence calls.
type memoryKV struct {
	getErr error
	setErr error
	values map[string]int
	sets   []setCall
	gets   int
}

func newMemoryKV() *memoryKV {
	return &memoryKV{values: make(map[string]int)}
}

func (m *memoryKV) GetInt(_ context.Context, key string) (int, bool, error) {
	m.gets++
	if m.getErr != nil {
		return 0, false, m.getErr
	}
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memoryKV) SetInt(_ context.Context, key string, value int) error {
	m.sets = append(m.sets, setCall{key: key, value: value})
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func unitsFixture() []model.CommodityUnit {
	return []model.CommodityUnit{
		{ID: model.IntPtr(1), Name: "kg"},
		{ID: model.IntPtr(2), Name: "lb"},
		{ID: model.IntPtr(3), Name: "bushel"},
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		persisted *int
		name      string
		units     []model.CommodityUnit
		wantIndex int
		wantOK    bool
	}{
		{name: "matches middle unit", units: unitsFixture(), persisted: model.IntPtr(2), wantIndex: 1, wantOK: true},
		{name: "matches last unit", units: unitsFixture(), persisted: model.IntPtr(3), wantIndex: 2, wantOK: true},
		{name: "unknown id falls back to first", units: unitsFixture(), persisted: model.IntPtr(99), wantIndex: 0, wantOK: true},
		{name: "absent id falls back to first", units: unitsFixture(), persisted: nil, wantIndex: 0, wantOK: true},
		{name: "empty units has no selection", units: nil, persisted: model.IntPtr(1), wantIndex: 0, wantOK: false},
		{
			name: "first match wins on duplicate ids",
			units: []model.CommodityUnit{
				{Name: "placeholder"},
				{ID: model.IntPtr(7), Name: "tonne"},
				{ID: model.IntPtr(7), Name: "metric ton"},
			},
			persisted: model.IntPtr(7),
			wantIndex: 1,
			wantOK:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			index, ok := Resolve(tt.units, tt.persisted)
			assert.Equal(t, tt.wantIndex, index)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestStore_Load(t *testing.T) {
	t.Run("restores persisted selection", func(t *testing.T) {
		kv := newMemoryKV()
		kv.values[testKey] = 3
		store := NewStore(kv, testKey)

		state, err := store.Load(context.Background(), unitsFixture())
		require.NoError(t, err)
		assert.True(t, state.Selected)
		assert.Equal(t, 2, state.SelectedIndex)
		assert.Empty(t, kv.sets)
	})

	t.Run("nothing persisted selects first unit", func(t *testing.T) {
		kv := newMemoryKV()
		store := NewStore(kv, testKey)

		state, err := store.Load(context.Background(), unitsFixture())
		require.NoError(t, err)
		assert.True(t, state.Selected)
		assert.Equal(t, 0, state.SelectedIndex)
	})

	t.Run("empty units stay unselected without touching the store", func(t *testing.T) {
		kv := newMemoryKV()
		kv.values[testKey] = 1
		store := NewStore(kv, testKey)

		state, err := store.Load(context.Background(), []model.CommodityUnit{})
		require.NoError(t, err)
		assert.False(t, state.Selected)
		assert.Empty(t, state.Units)
		assert.Zero(t, kv.gets)
		assert.Empty(t, kv.sets)

		_, ok := store.SelectedName()
		assert.False(t, ok)
	})

	t.Run("read failure leaves store unselected", func(t *testing.T) {
		kv := newMemoryKV()
		kv.getErr = errors.New("disk gone")
		store := NewStore(kv, testKey)

		_, err := store.Load(context.Background(), unitsFixture())
		require.Error(t, err)
		assert.False(t, store.State().Selected)
	})

	t.Run("caller mutations do not leak into the store", func(t *testing.T) {
		units := unitsFixture()
		store := NewStore(newMemoryKV(), testKey)

		_, err := store.Load(context.Background(), units)
		require.NoError(t, err)
		units[0].Name = "mutated"

		name, ok := store.SelectedName()
		require.True(t, ok)
		assert.Equal(t, "kg", name)
	})
}

func TestStore_Select(t *testing.T) {
	tests := []struct {
		name      string
		units     []model.CommodityUnit
		index     int
		wantName  string
		wantSets  []setCall
		wantIndex int
		wantErr   error
	}{
		{
			name:      "persists unit id",
			units:     unitsFixture(),
			index:     1,
			wantName:  "lb",
			wantSets:  []setCall{{key: testKey, value: 2}},
			wantIndex: 1,
		},
		{
			name: "unit without id is selected but not persisted",
			units: []model.CommodityUnit{
				{ID: model.IntPtr(1), Name: "kg"},
				{Name: "custom"},
			},
			index:     1,
			wantName:  "custom",
			wantIndex: 1,
		},
		{
			name:      "negative index is rejected",
			units:     unitsFixture(),
			index:     -1,
			wantErr:   common.ErrOutOfRangeSelection,
			wantIndex: 0,
		},
		{
			name:      "index past the end is rejected",
			units:     unitsFixture(),
			index:     3,
			wantErr:   common.ErrOutOfRangeSelection,
			wantIndex: 0,
		},
		{
			name:    "nothing loaded is rejected",
			units:   nil,
			index:   0,
			wantErr: common.ErrOutOfRangeSelection,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := newMemoryKV()
			store := NewStore(kv, testKey)
			_, err := store.Load(context.Background(), tt.units)
			require.NoError(t, err)

			name, err := store.Select(context.Background(), tt.index)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, kv.sets)
				assert.Equal(t, tt.wantIndex, store.State().SelectedIndex)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantSets, kv.sets)
			assert.Equal(t, tt.wantIndex, store.State().SelectedIndex)
		})
	}
}

func TestStore_SelectPersistFailure(t *testing.T) {
	kv := newMemoryKV()
	store := NewStore(kv, testKey)
	_, err := store.Load(context.Background(), unitsFixture())
	require.NoError(t, err)

	kv.setErr = errors.New("read-only database")
	name, err := store.Select(context.Background(), 2)

	require.Error(t, err)
	assert.Equal(t, "bushel", name)
	assert.Equal(t, 2, store.State().SelectedIndex)
}

func TestStore_EndToEnd(t *testing.T) {
	kv := newMemoryKV()
	kv.values[testKey] = 2
	store := NewStore(kv, testKey)

	state, err := store.Load(context.Background(), []model.CommodityUnit{
		{ID: model.IntPtr(1), Name: "kg"},
		{ID: model.IntPtr(2), Name: "lb"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, state.SelectedIndex)

	name, err := store.Select(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, "kg", name)
	assert.Equal(t, []setCall{{key: testKey, value: 1}}, kv.sets)
}
