package tui

import (
	"github.com/Veraticus/farm-prefs/internal/model"
	"github.com/Veraticus/farm-prefs/internal/selection"
)

// runMsg carries a callback posted to the program's event loop.
type runMsg struct {
	fn func()
}

// Data loading messages.
type unitsLoadedMsg struct {
	err   error
	state selection.State
}

type regionsFoundMsg struct {
	err     error
	query   string
	regions []model.Region
}

// Field identifies the focused form field.
type Field int

const (
	FieldRegion Field = iota
	FieldCommodity
)
