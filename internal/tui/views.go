package tui

import (
	"strings"

	"github.com/Veraticus/farm-prefs/internal/personalize"
	"github.com/charmbracelet/lipgloss"
)

// maxSuggestions caps the region suggestions shown under the field.
const maxSuggestions = 5

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if m.finished {
		return m.renderDone()
	}

	sections := []string{
		m.theme.Title.Render(m.screen.ScreenTitle()),
		m.renderSectionHeader(personalize.SectionLocation),
		m.renderRegionField(),
		m.renderSuggestions(),
		m.renderSectionHeader(personalize.SectionCommodity),
		m.renderCommodityField(),
		m.renderStatus(),
	}

	if m.config.ShowHelp {
		sections = append(sections, "", m.help.View(m.keymap))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderSectionHeader(section int) string {
	return m.theme.SectionHeader.
		Width(max(m.width-2, 10)).
		Render(m.screen.Title(section))
}

func (m Model) renderRegionField() string {
	style := m.theme.Field
	if m.focus == FieldRegion {
		style = m.theme.FocusedField
	}
	return style.Render(m.regionInput.View())
}

func (m Model) renderSuggestions() string {
	if len(m.regions) == 0 {
		return ""
	}

	shown := m.regions
	if len(shown) > maxSuggestions {
		shown = shown[:maxSuggestions]
	}

	lines := make([]string, 0, len(shown))
	for _, region := range shown {
		lines = append(lines, m.theme.Suggestion.Render(region.DisplayName()))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderCommodityField() string {
	style := m.theme.Field
	if m.focus == FieldCommodity {
		style = m.theme.FocusedField
	}

	if !m.loaded {
		return style.Render(lipgloss.NewStyle().Foreground(m.theme.Muted).Render("Loading units..."))
	}

	rows := m.screen.PickerRowCount()
	if rows == 0 {
		return style.Render(lipgloss.NewStyle().Foreground(m.theme.Muted).Render("No units available"))
	}

	// The picker wheel only opens while the field has focus.
	if m.focus != FieldCommodity {
		return style.Render(m.theme.Normal.Render(m.screen.CommodityText()))
	}

	lines := make([]string, 0, rows)
	for row := 0; row < rows; row++ {
		title, _ := m.screen.PickerTitle(row)
		if row == m.cursor {
			lines = append(lines, m.theme.Selected.Render("› "+title))
			continue
		}
		lines = append(lines, m.theme.Normal.Render("  "+title))
	}
	return style.Render(strings.Join(lines, "\n"))
}

func (m Model) renderStatus() string {
	switch {
	case m.lastError != nil:
		return m.theme.StatusError.Render("Error: " + m.lastError.Error())
	case m.status != "":
		return m.theme.StatusSuccess.Render(m.status)
	default:
		return ""
	}
}

func (m Model) renderDone() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		m.theme.Title.Render("Done"),
		m.theme.Normal.Render(m.screen.Done()),
		"",
		lipgloss.NewStyle().Foreground(m.theme.Muted).Render("Press any key: Got it"),
	)
	return m.theme.BorderedBox.Render(content)
}
