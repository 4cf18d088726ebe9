package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/wardrota/wardrota/internal/availability"
	"github.com/wardrota/wardrota/internal/tui/commands"
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.MouseMsg:
		return m.handleMouseMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.colWidth = m.calculateColWidth()
		m.help.Width = msg.Width
		m.ensureCursorVisible()
		return m, nil

	case commands.NursesLoadedMsg:
		m.nurses = msg.Nurses
		if len(m.nurses) == 0 {
			cmd := m.setStatus("No nurses found; add one with `wardrota nurses add`")
			return m, cmd
		}
		m.nurseIdx = 0
		for i, n := range m.nurses {
			if n.WorkerID == m.initialNurse {
				m.nurseIdx = i
				break
			}
		}
		cmd := m.selectNurse(m.nurses[m.nurseIdx].WorkerID)
		return m, cmd

	case commands.WeekFetchedMsg:
		// Stale results are dropped by the controller.
		m.ctrl.ApplyFetch(msg.Req, msg.Records, msg.Err)
		return m, nil

	case commands.WeekSavedMsg:
		var cmds []tea.Cmd
		switch m.ctrl.ApplySaveResult(msg.Req, msg.Err) {
		case availability.SaveRolledBack:
			cmds = append(cmds, m.setStatus(fmt.Sprintf("Save failed, changes rolled back: %v", msg.Err)))
		case availability.SaveConfirmed:
			if m.ctrl.Pending() == 0 {
				cmds = append(cmds, m.setStatus("Saved"))
			}
		}
		if next, ok := m.ctrl.NextSave(); ok {
			cmds = append(cmds, m.send(next))
		}
		return m, tea.Batch(cmds...)

	case spinner.TickMsg:
		if !m.busy() {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case commands.ErrMsg:
		m.logger.Error().Err(msg.Err).Msg("command failed")
		cmd := m.setStatus(fmt.Sprintf("Error: %v", msg.Err))
		return m, cmd

	case commands.StatusMsgCmd:
		cmd := m.setStatus(msg.Msg)
		return m, cmd

	case commands.ClearStatusMsg:
		if !m.now().Before(m.statusTime) {
			m.statusMsg = ""
		}
		return m, nil
	}

	if m.mode == ModePrompt {
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(msg)
		return m, cmd
	}

	return m, nil
}
