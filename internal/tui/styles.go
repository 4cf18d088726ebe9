// Package tui provides the terminal user interface for wardrota.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/wardrota/wardrota/internal/availability"
	"github.com/wardrota/wardrota/internal/tui/theme"
)

const (
	// Default column width - recalculated on resize.
	defaultColWidth = 8
	minColWidth     = 3
	maxColWidth     = 14
	timeColWidth    = 6
)

// Styles holds all lipgloss styles for the TUI, derived from a theme.
type Styles struct {
	// Theme colors as lipgloss colors
	colorBg          lipgloss.Color
	colorBgHighlight lipgloss.Color
	colorBgSelection lipgloss.Color
	colorFg          lipgloss.Color
	colorFgMuted     lipgloss.Color
	colorAccent      lipgloss.Color
	colorWarning     lipgloss.Color

	TitleStyle    lipgloss.Style
	SubtitleStyle lipgloss.Style

	// Header styles
	DayHeaderStyle      lipgloss.Style
	DayHeaderTodayStyle lipgloss.Style

	// Time column
	TimeColumnStyle lipgloss.Style

	// Cell styles, index by status; the second array holds odd-hour shades.
	cellStyles    [4]lipgloss.Style
	cellAltStyles [4]lipgloss.Style

	// Cursor and in-progress drag selection
	CursorStyle lipgloss.Style
	DragStyle   lipgloss.Style

	// Footer
	StatusStyle  lipgloss.Style
	ErrorStyle   lipgloss.Style
	HelpStyle    lipgloss.Style
	LegendStyles [4]lipgloss.Style

	// Overlay box (help, week prompt)
	OverlayStyle      lipgloss.Style
	OverlayTitleStyle lipgloss.Style
	OverlayBgColor    lipgloss.Color

	// App container
	AppStyle lipgloss.Style
}

// NewStyles creates a new Styles instance from a theme.
func NewStyles(t *theme.Theme) *Styles {
	if t == nil {
		t, _ = theme.Load("mocha")
	}
	s := &Styles{}
	palette := theme.NewPalette(t)

	s.colorBg = palette.Bg
	s.colorBgHighlight = palette.BgHighlight
	s.colorBgSelection = palette.BgSelection
	s.colorFg = palette.Fg
	s.colorFgMuted = palette.FgMuted
	s.colorAccent = palette.Accent
	s.colorWarning = palette.Warning

	s.TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(s.colorAccent).
		Background(s.colorBg)

	s.SubtitleStyle = lipgloss.NewStyle().
		Foreground(s.colorFg).
		Background(s.colorBg)

	s.DayHeaderStyle = lipgloss.NewStyle().
		Bold(true).
		Align(lipgloss.Center).
		Foreground(s.colorFg).
		Background(s.colorBgHighlight)

	s.DayHeaderTodayStyle = s.DayHeaderStyle.
		Foreground(s.colorAccent)

	s.TimeColumnStyle = lipgloss.NewStyle().
		Foreground(s.colorFgMuted).
		Background(s.colorBg).
		Width(timeColWidth)

	base := lipgloss.NewStyle().Align(lipgloss.Center)

	s.cellStyles[availability.Unset] = base.
		Foreground(s.colorFgMuted).
		Background(s.colorBg)
	s.cellAltStyles[availability.Unset] = base.
		Foreground(s.colorFgMuted).
		Background(palette.UnsetAlt)

	s.cellStyles[availability.Unavailable] = base.
		Foreground(palette.TextOnUnavailable).
		Background(palette.Unavailable)
	s.cellAltStyles[availability.Unavailable] = base.
		Foreground(palette.TextOnUnavailable).
		Background(palette.UnavailableAlt)

	s.cellStyles[availability.Preferred] = base.
		Foreground(palette.TextOnPreferred).
		Background(palette.Preferred).
		Bold(true)
	s.cellAltStyles[availability.Preferred] = base.
		Foreground(palette.TextOnPreferred).
		Background(palette.PreferredAlt).
		Bold(true)

	s.cellStyles[availability.Available] = base.
		Foreground(palette.TextOnAvailable).
		Background(palette.Available)
	s.cellAltStyles[availability.Available] = base.
		Foreground(palette.TextOnAvailable).
		Background(palette.AvailableAlt)

	s.CursorStyle = base.
		Background(s.colorBgSelection).
		Foreground(s.colorAccent).
		Bold(true)

	s.DragStyle = base.
		Background(s.colorWarning).
		Foreground(palette.TextOnWarning).
		Bold(true)

	s.StatusStyle = lipgloss.NewStyle().
		Foreground(s.colorFg).
		Background(s.colorBg)

	s.ErrorStyle = lipgloss.NewStyle().
		Foreground(s.colorWarning).
		Background(s.colorBg).
		Bold(true)

	s.HelpStyle = lipgloss.NewStyle().
		Foreground(s.colorFgMuted).
		Background(s.colorBg)

	s.LegendStyles[availability.Unset] = s.HelpStyle
	for _, st := range availability.PersistedStatuses {
		s.LegendStyles[st] = lipgloss.NewStyle().
			Foreground(theme.Color(t.StatusColor(st))).
			Background(s.colorBg)
	}

	s.OverlayBgColor = s.colorBgHighlight
	s.OverlayStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(s.colorAccent).
		BorderBackground(s.colorBgHighlight).
		Background(s.colorBgHighlight).
		Foreground(s.colorFg).
		Padding(0, 1)

	s.OverlayTitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(s.colorAccent).
		Background(s.colorBgHighlight)

	s.AppStyle = lipgloss.NewStyle().
		Background(s.colorBg)

	return s
}

// Cell returns the style for a cell of the given status. Odd hours use the
// alternate shade so rows stay distinguishable inside long runs.
func (s *Styles) Cell(st availability.Status, hour int) lipgloss.Style {
	if !st.Valid() {
		st = availability.Unset
	}
	if hour%2 == 1 {
		return s.cellAltStyles[st]
	}
	return s.cellStyles[st]
}
