// Package selection owns the list of selectable commodity units and keeps
// the persisted choice consistent with the in-memory one.
package selection

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Veraticus/farm-prefs/internal/common"
	"github.com/Veraticus/farm-prefs/internal/model"
	"github.com/Veraticus/farm-prefs/internal/service"
)

// State is a snapshot of the selection.
type State struct {
	Units         []model.CommodityUnit
	SelectedIndex int
	// Selected is false until a non-empty unit list has been loaded.
	Selected bool
}

// SelectedUnit returns the currently selected unit, if any.
func (s State) SelectedUnit() (model.CommodityUnit, bool) {
	if !s.Selected || s.SelectedIndex < 0 || s.SelectedIndex >= len(s.Units) {
		return model.CommodityUnit{}, false
	}
	return s.Units[s.SelectedIndex], true
}

// Resolve finds the index to preselect for a persisted unit id.
// The first unit whose id matches wins; a missing or unknown id selects 0.
// ok is false when units is empty.
func Resolve(units []model.CommodityUnit, persistedID *int) (index int, ok bool) {
	if len(units) == 0 {
		return 0, false
	}
	if persistedID == nil {
		return 0, true
	}
	for i, unit := range units {
		if unit.ID != nil && *unit.ID == *persistedID {
			return i, true
		}
	}
	return 0, true
}

// Store holds the selection for the lifetime of one screen.
type Store struct {
	kv    service.KeyValueStore
	key   string
	state State
	mu    sync.RWMutex
}

// NewStore creates a store persisting the selected unit id under key.
func NewStore(kv service.KeyValueStore, key string) *Store {
	return &Store{
		kv:  kv,
		key: key,
	}
}

// Load replaces the unit list and restores the persisted selection.
// It never writes to the key-value store.
func (s *Store) Load(ctx context.Context, units []model.CommodityUnit) (State, error) {
	loaded := make([]model.CommodityUnit, len(units))
	copy(loaded, units)

	var persistedID *int
	if len(loaded) > 0 {
		id, found, err := s.kv.GetInt(ctx, s.key)
		if err != nil {
			return s.State(), fmt.Errorf("failed to read persisted unit: %w", err)
		}
		if found {
			persistedID = &id
		} else {
			slog.Debug("no commodity unit saved", "key", s.key)
		}
	}

	index, ok := Resolve(loaded, persistedID)

	s.mu.Lock()
	s.state = State{
		Units:         loaded,
		SelectedIndex: index,
		Selected:      ok,
	}
	state := s.snapshotLocked()
	s.mu.Unlock()

	if ok {
		slog.Debug("restored commodity unit selection",
			"index", index,
			"name", loaded[index].Name)
	}
	return state, nil
}

// Select marks the unit at index as chosen and returns its display name.
// The unit id is persisted when present; units without an id are selected
// in memory only. A persistence failure is returned after the in-memory
// selection has been updated.
func (s *Store) Select(ctx context.Context, index int) (string, error) {
	s.mu.Lock()
	if index < 0 || index >= len(s.state.Units) {
		count := len(s.state.Units)
		s.mu.Unlock()
		return "", fmt.Errorf("%w: index %d, %d units loaded", common.ErrOutOfRangeSelection, index, count)
	}
	s.state.SelectedIndex = index
	s.state.Selected = true
	unit := s.state.Units[index]
	s.mu.Unlock()

	if unit.ID == nil {
		slog.Debug("selected unit has no id, skipping persistence", "name", unit.Name)
		return unit.Name, nil
	}

	if err := s.kv.SetInt(ctx, s.key, *unit.ID); err != nil {
		return unit.Name, fmt.Errorf("failed to persist unit %d: %w", *unit.ID, err)
	}

	slog.Info("persisted commodity unit", "id", *unit.ID, "name", unit.Name)
	return unit.Name, nil
}

// State returns a copy of the current selection.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Units returns the loaded units in display order.
func (s *Store) Units() []model.CommodityUnit {
	return s.State().Units
}

// SelectedName returns the display name of the selected unit.
func (s *Store) SelectedName() (string, bool) {
	unit, ok := s.State().SelectedUnit()
	return unit.Name, ok
}

func (s *Store) snapshotLocked() State {
	units := make([]model.CommodityUnit, len(s.state.Units))
	copy(units, s.state.Units)
	return State{
		Units:         units,
		SelectedIndex: s.state.SelectedIndex,
		Selected:      s.state.Selected,
	}
}
