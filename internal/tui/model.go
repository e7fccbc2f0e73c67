package tui

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/Veraticus/farm-prefs/internal/common"
	"github.com/Veraticus/farm-prefs/internal/model"
	"github.com/Veraticus/farm-prefs/internal/personalize"
	"github.com/Veraticus/farm-prefs/internal/search"
	"github.com/Veraticus/farm-prefs/internal/tui/themes"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const storageTimeout = 10 * time.Second

// Model holds the personalization form state.
type Model struct {
	theme       themes.Theme
	lastError   error
	screen      *personalize.Screen
	help        help.Model
	status      string
	regions     []model.Region
	regionInput textinput.Model
	keymap      KeyMap
	config      Config
	focus       Field
	cursor      int
	width       int
	height      int
	loaded      bool
	finished    bool
	quitting    bool
}

// newModel creates a new model over screen.
func newModel(screen *personalize.Screen, cfg Config) Model {
	input := textinput.New()
	input.Placeholder = "Start typing a region"
	input.CharLimit = 64
	input.Width = cfg.Width - 8
	input.Focus()

	return Model{
		screen:      screen,
		config:      cfg,
		theme:       cfg.Theme,
		keymap:      DefaultKeyMap(),
		help:        help.New(),
		regionInput: input,
		focus:       FieldRegion,
		width:       cfg.Width,
		height:      cfg.Height,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.loadUnits())
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case runMsg:
		msg.fn()
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.regionInput.Width = msg.Width - 8
		m.help.Width = msg.Width
		return m, nil

	case unitsLoadedMsg:
		m.loaded = true
		if msg.err != nil {
			m.lastError = msg.err
			return m, nil
		}
		if msg.state.Selected {
			m.cursor = msg.state.SelectedIndex
		}
		return m, nil

	case regionsFoundMsg:
		if msg.query != m.screen.RegionText() {
			return m, nil
		}
		m.regions = msg.regions
		m.lastError = msg.err
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.finished || key.Matches(msg, m.keymap.Quit) {
		m.quitting = true
		return m, tea.Quit
	}

	switch {
	case key.Matches(msg, m.keymap.Done):
		m.finished = true
		return m, nil
	case key.Matches(msg, m.keymap.NextField), key.Matches(msg, m.keymap.PrevField):
		return m, m.toggleFocus()
	}

	if m.focus == FieldRegion {
		return m.updateRegionInput(msg)
	}

	switch {
	case key.Matches(msg, m.keymap.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keymap.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

// toggleFocus switches between the region field and the unit picker.
func (m *Model) toggleFocus() tea.Cmd {
	if m.focus == FieldRegion {
		m.focus = FieldCommodity
		m.regionInput.Blur()
		return nil
	}
	m.focus = FieldRegion
	return m.regionInput.Focus()
}

func (m Model) updateRegionInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	before := m.regionInput.Value()

	var cmd tea.Cmd
	m.regionInput, cmd = m.regionInput.Update(msg)

	if after := m.regionInput.Value(); after != before {
		m.screen.OnRegionTextChanged(after)
		if utf8.RuneCountInString(after) < search.MinQueryLength {
			m.regions = nil
		}
	}
	return m, cmd
}

// moveCursor scrolls the picker; landing on a row selects it.
// Selection runs inside Update so picker writes stay in key order.
func (m *Model) moveCursor(delta int) {
	rows := m.screen.PickerRowCount()
	if rows == 0 {
		return
	}

	next := m.cursor + delta
	if next < 0 || next >= rows {
		return
	}
	m.cursor = next
	m.selectUnit(next)
}

// loadUnits loads the commodity catalog and persisted selection.
func (m Model) loadUnits() tea.Cmd {
	screen := m.screen
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
		defer cancel()

		state, err := screen.Load(ctx)
		return unitsLoadedMsg{state: state, err: err}
	}
}

// selectUnit persists the unit at row.
func (m *Model) selectUnit(row int) {
	ctx, cancel := context.WithTimeout(context.Background(), storageTimeout)
	defer cancel()

	name, err := m.screen.OnRowSelected(ctx, row)
	if err != nil {
		if !errors.Is(err, common.ErrOutOfRangeSelection) {
			common.LogError(err, "failed to save commodity unit", common.Fields{"row": row})
		}
		m.lastError = err
		return
	}
	m.lastError = nil
	m.status = "Saved " + name
}

// Screen returns the underlying presentation adapter.
func (m Model) Screen() *personalize.Screen {
	return m.screen
}

// Focus returns the focused field.
func (m Model) Focus() Field {
	return m.focus
}

// Cursor returns the highlighted picker row.
func (m Model) Cursor() int {
	return m.cursor
}
