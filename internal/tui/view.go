package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/wardrota/wardrota/internal/availability"
	"github.com/wardrota/wardrota/internal/dateutil"
)

// Cell glyphs, readable without colour.
var statusGlyphs = [4]string{
	availability.Unset:       "·",
	availability.Unavailable: "x",
	availability.Preferred:   "*",
	availability.Available:   "+",
}

const dragGlyph = "#"

// View renders the TUI.
func (m Model) View() string {
	grid := m.ctrl.Grid()

	lines := make([]string, 0, headerLines+m.visibleRows()+footerLines)
	lines = append(lines, m.renderTitle())
	lines = append(lines, m.renderDayHeaders())
	for row := 0; row < m.visibleRows(); row++ {
		hour := m.scrollOffset + row
		if hour >= availability.HoursPerDay {
			break
		}
		lines = append(lines, m.renderHourRow(grid, hour))
	}
	lines = append(lines, m.renderStatusLine(grid))
	lines = append(lines, m.renderHelpLine())

	content := strings.Join(lines, "\n")
	if m.width > 0 {
		content = m.styles.AppStyle.Width(m.width).Render(content)
	}

	switch m.mode {
	case ModeHelp:
		return placeOverlay(content, m.renderHelpOverlay(), m.width, m.height)
	case ModePrompt:
		return placeOverlay(content, m.renderPromptOverlay(), m.width, m.height)
	}
	return content
}

func (m Model) renderTitle() string {
	nurse := "no nurse"
	if n, ok := m.currentNurse(); ok {
		nurse = n.DisplayName
		if nurse == "" {
			nurse = n.WorkerID
		}
		if len(m.nurses) > 1 {
			nurse = fmt.Sprintf("%s (%d/%d)", nurse, m.nurseIdx+1, len(m.nurses))
		}
	}

	parts := []string{
		m.styles.TitleStyle.Render("wardrota"),
		m.styles.SubtitleStyle.Render(nurse),
		m.styles.SubtitleStyle.Render(dateutil.WeekLabel(m.weekStart)),
	}
	switch {
	case m.ctrl.Loading():
		parts = append(parts, m.spinner.View()+m.styles.HelpStyle.Render("loading"))
	case m.ctrl.Pending() > 0:
		parts = append(parts, m.spinner.View()+m.styles.HelpStyle.Render("saving"))
	case m.ctrl.Dirty():
		parts = append(parts, m.styles.ErrorStyle.Render("unsaved"))
	}

	return m.truncate(strings.Join(parts, m.styles.SubtitleStyle.Render("  ")))
}

func (m Model) renderDayHeaders() string {
	var sb strings.Builder
	sb.WriteString(m.styles.TimeColumnStyle.Render(""))

	today := dateutil.TruncateToDay(m.now())
	for d := 0; d < availability.DaysPerWeek; d++ {
		date := m.weekStart.AddDate(0, 0, d)
		label := date.Format("Mon 2")
		if lipgloss.Width(label) > m.colWidth {
			label = ansi.Truncate(date.Format("Mon"), m.colWidth, "")
		}
		style := m.styles.DayHeaderStyle
		if date.Equal(today) {
			style = m.styles.DayHeaderTodayStyle
		}
		sb.WriteString(style.Width(m.colWidth).Render(label))
	}
	return m.truncate(sb.String())
}

func (m Model) renderHourRow(grid *availability.Grid, hour int) string {
	var sb strings.Builder
	sb.WriteString(m.styles.TimeColumnStyle.Render(availability.HourToTime(hour)))

	for d := 0; d < availability.DaysPerWeek; d++ {
		cell := availability.Cell{Day: d, Hour: hour}
		sb.WriteString(m.renderCell(cell, grid.At(cell)))
	}
	return m.truncate(sb.String())
}

func (m Model) renderCell(cell availability.Cell, st availability.Status) string {
	glyph := statusGlyphs[st]
	style := m.styles.Cell(st, cell.Hour)

	if m.drag.Selected(cell) {
		glyph = dragGlyph
		style = m.styles.DragStyle
	}
	if cell == m.cursor && m.mode == ModeNormal {
		if m.colWidth >= 3 {
			glyph = "[" + glyph + "]"
		}
		if !m.drag.Dragging() {
			style = m.styles.CursorStyle
		}
	}
	return style.Width(m.colWidth).Render(glyph)
}

func (m Model) renderStatusLine(grid *availability.Grid) string {
	var text string
	switch {
	case m.statusMsg != "":
		text = m.styles.StatusStyle.Render(m.statusMsg)
	case m.ctrl.FetchErr() != nil:
		text = m.styles.ErrorStyle.Render(fmt.Sprintf("Error: %v (r to retry)", m.ctrl.FetchErr()))
	case m.ctrl.SaveErr() != nil:
		text = m.styles.ErrorStyle.Render(fmt.Sprintf("Last save failed: %v", m.ctrl.SaveErr()))
	default:
		text = m.renderLegend(grid)
	}
	return m.truncate(text)
}

// renderLegend shows each status glyph with its hour count for the week.
func (m Model) renderLegend(grid *availability.Grid) string {
	parts := make([]string, 0, len(availability.PersistedStatuses))
	for _, st := range availability.PersistedStatuses {
		label := fmt.Sprintf("%s %s %dh", statusGlyphs[st], st, grid.Count(st))
		parts = append(parts, m.styles.LegendStyles[st].Render(label))
	}
	return strings.Join(parts, m.styles.HelpStyle.Render("  "))
}

func (m Model) renderHelpLine() string {
	return m.truncate(m.help.ShortHelpView(m.keys.ShortHelp()))
}

func (m Model) renderHelpOverlay() string {
	title := m.styles.OverlayTitleStyle.Render("Keys")
	body := m.help.FullHelpView(m.keys.FullHelp())
	hint := m.styles.HelpStyle.Render("drag across cells to mark them unavailable, click to cycle")
	return m.styles.OverlayStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, "", body, "", hint))
}

func (m Model) renderPromptOverlay() string {
	title := m.styles.OverlayTitleStyle.Render("Go to week")
	hint := m.styles.HelpStyle.Render("enter to jump, esc to cancel")
	return m.styles.OverlayStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, m.prompt.View(), hint))
}

// truncate cuts a rendered line to the terminal width.
func (m Model) truncate(s string) string {
	if m.width <= 0 {
		return s
	}
	return ansi.Truncate(s, m.width, "…")
}
