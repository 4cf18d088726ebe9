package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/wardrota/wardrota/internal/availability"
)

// cellAt maps terminal coordinates to a grid cell. ok is false outside the
// hour rows and day columns.
func (m Model) cellAt(x, y int) (availability.Cell, bool) {
	row := y - headerLines
	if row < 0 || row >= m.visibleRows() {
		return availability.Cell{}, false
	}
	hour := m.scrollOffset + row
	if x < timeColWidth || m.colWidth <= 0 {
		return availability.Cell{}, false
	}
	day := (x - timeColWidth) / m.colWidth
	c := availability.Cell{Day: day, Hour: hour}
	return c, c.Valid()
}

// handleMouseMsg translates press, motion and release into drag gestures.
func (m Model) handleMouseMsg(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.mode != ModeNormal {
		return m, nil
	}

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.scrollOffset--
		m.clampScroll()
		return m, nil
	case tea.MouseButtonWheelDown:
		m.scrollOffset++
		m.clampScroll()
		return m, nil
	}

	cell, inGrid := m.cellAt(msg.X, msg.Y)

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || !inGrid {
			return m, nil
		}
		m.drag.PointerDown(cell)
		m.cursor = cell
		m.logger.Debug().Int("day", cell.Day).Int("hour", cell.Hour).Msg("drag start")

	case tea.MouseActionMotion:
		if !m.drag.Dragging() {
			return m, nil
		}
		if !inGrid {
			m.logger.Debug().Int("cells", m.drag.Len()).Msg("drag cancelled, left grid")
			m.drag.PointerLeaveGrid()
			return m, nil
		}
		m.drag.PointerEnter(cell)
		m.cursor = cell

	case tea.MouseActionRelease:
		intent, ok := m.drag.PointerUp()
		if !ok {
			return m, nil
		}
		m.logger.Debug().Int("cells", len(intent.Cells)).Str("edit", intent.Edit.String()).Msg("drag end")
		cmd := m.submit(m.ctrl.Apply(intent))
		return m, cmd
	}

	return m, nil
}
