package tui

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/wardrota/wardrota/internal/availability"
	"github.com/wardrota/wardrota/internal/dateutil"
)

type keyMap struct {
	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding

	Cycle       key.Binding
	Unavailable key.Binding
	Preferred   key.Binding
	Available   key.Binding
	Unset       key.Binding

	WeekUnavailable key.Binding
	WeekPreferred   key.Binding
	WeekAvailable   key.Binding
	ClearWeek       key.Binding

	PrevNurse key.Binding
	NextNurse key.Binding
	PrevWeek  key.Binding
	NextWeek  key.Binding
	ThisWeek  key.Binding
	GotoWeek  key.Binding

	Reload key.Binding
	Save   key.Binding
	Copy   key.Binding
	Help   key.Binding
	Quit   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:    key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("↑/k", "up")),
		Down:  key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("↓/j", "down")),
		Left:  key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("←/h", "prev day")),
		Right: key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("→/l", "next day")),

		Cycle:       key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "cycle")),
		Unavailable: key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "unavailable")),
		Preferred:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "preferred")),
		Available:   key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "available")),
		Unset:       key.NewBinding(key.WithKeys("x", "delete", "backspace"), key.WithHelp("x", "unset")),

		WeekUnavailable: key.NewBinding(key.WithKeys("U"), key.WithHelp("U", "week unavailable")),
		WeekPreferred:   key.NewBinding(key.WithKeys("P"), key.WithHelp("P", "week preferred")),
		WeekAvailable:   key.NewBinding(key.WithKeys("A"), key.WithHelp("A", "week available")),
		ClearWeek:       key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "clear week")),

		PrevNurse: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "prev nurse")),
		NextNurse: key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next nurse")),
		PrevWeek:  key.NewBinding(key.WithKeys("b", "H"), key.WithHelp("b", "prev week")),
		NextWeek:  key.NewBinding(key.WithKeys("n", "L"), key.WithHelp("n", "next week")),
		ThisWeek:  key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "this week")),
		GotoWeek:  key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "go to week")),

		Reload: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Save:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save again")),
		Copy:   key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy payload")),
		Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Cycle, k.PrevNurse, k.NextNurse, k.PrevWeek, k.NextWeek, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.Cycle, k.Unavailable, k.Preferred, k.Available, k.Unset},
		{k.WeekUnavailable, k.WeekPreferred, k.WeekAvailable, k.ClearWeek, k.Reload, k.Save, k.Copy},
		{k.PrevNurse, k.NextNurse, k.PrevWeek, k.NextWeek, k.ThisWeek, k.GotoWeek, k.Help, k.Quit},
	}
}

// handleKeyMsg handles keyboard input.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.logger.Debug().Str("key", msg.String()).Str("mode", m.mode.String()).Msg("key press")

	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.mode {
	case ModePrompt:
		return m.handlePromptKeys(msg)
	case ModeHelp:
		return m.handleHelpKeys(msg)
	default:
		return m.handleNormalKeys(msg)
	}
}

// handleNormalKeys handles keys on the grid.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	var cmd tea.Cmd

	switch {
	case msg.String() == "esc":
		m.drag.PointerLeaveGrid()

	case key.Matches(msg, k.Quit):
		return m, tea.Quit

	case key.Matches(msg, k.Up):
		m.moveCursor(0, -1)
	case key.Matches(msg, k.Down):
		m.moveCursor(0, 1)
	case key.Matches(msg, k.Left):
		m.moveCursor(-1, 0)
	case key.Matches(msg, k.Right):
		m.moveCursor(1, 0)

	case key.Matches(msg, k.Cycle):
		cmd = m.edit([]availability.Cell{m.cursor}, availability.CycleEdit())
	case key.Matches(msg, k.Unavailable):
		cmd = m.edit([]availability.Cell{m.cursor}, availability.SetTo(availability.Unavailable))
	case key.Matches(msg, k.Preferred):
		cmd = m.edit([]availability.Cell{m.cursor}, availability.SetTo(availability.Preferred))
	case key.Matches(msg, k.Available):
		cmd = m.edit([]availability.Cell{m.cursor}, availability.SetTo(availability.Available))
	case key.Matches(msg, k.Unset):
		cmd = m.edit([]availability.Cell{m.cursor}, availability.SetTo(availability.Unset))

	case key.Matches(msg, k.WeekUnavailable):
		cmd = m.submit(m.ctrl.ApplyToWeek(availability.Unavailable))
	case key.Matches(msg, k.WeekPreferred):
		cmd = m.submit(m.ctrl.ApplyToWeek(availability.Preferred))
	case key.Matches(msg, k.WeekAvailable):
		cmd = m.submit(m.ctrl.ApplyToWeek(availability.Available))
	case key.Matches(msg, k.ClearWeek):
		cmd = m.submit(m.ctrl.ClearWeek())

	case key.Matches(msg, k.PrevNurse):
		cmd = m.shiftNurse(-1)
	case key.Matches(msg, k.NextNurse):
		cmd = m.shiftNurse(1)
	case key.Matches(msg, k.PrevWeek):
		cmd = m.selectWeek(m.weekStart.AddDate(0, 0, -7))
	case key.Matches(msg, k.NextWeek):
		cmd = m.selectWeek(m.weekStart.AddDate(0, 0, 7))
	case key.Matches(msg, k.ThisWeek):
		cmd = m.selectWeek(m.now())
	case key.Matches(msg, k.GotoWeek):
		m.mode = ModePrompt
		m.prompt.SetValue("")
		cmd = m.prompt.Focus()

	case key.Matches(msg, k.Reload):
		req, err := m.ctrl.Reload()
		if err != nil {
			cmd = m.setStatus(userMessage(err))
			break
		}
		cmd = m.fetch(req)
	case key.Matches(msg, k.Save):
		cmd = m.submit(m.ctrl.Save())
	case key.Matches(msg, k.Copy):
		cmd = m.copyPayload()
	case key.Matches(msg, k.Help):
		m.mode = ModeHelp
	}

	return m, cmd
}

func (m Model) handleHelpKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "?", "esc", "enter":
		m.mode = ModeNormal
	}
	return m, nil
}

// handlePromptKeys handles the go-to-week prompt.
func (m Model) handlePromptKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = ModeNormal
		m.prompt.Blur()
		return m, nil
	case "enter":
		input := m.prompt.Value()
		m.mode = ModeNormal
		m.prompt.Blur()
		week, err := dateutil.ParseWeek(input, m.now())
		if err != nil {
			cmd := m.setStatus(fmt.Sprintf("Error: %v", err))
			return m, cmd
		}
		cmd := m.selectWeek(week)
		return m, cmd
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

func (m *Model) moveCursor(dDay, dHour int) {
	day := min(max(m.cursor.Day+dDay, 0), availability.DaysPerWeek-1)
	hour := min(max(m.cursor.Hour+dHour, 0), availability.HoursPerDay-1)
	m.cursor = availability.Cell{Day: day, Hour: hour}
	m.ensureCursorVisible()
}

// copyPayload puts the JSON that a save would send on the clipboard.
func (m *Model) copyPayload() tea.Cmd {
	if _, ok := m.ctrl.Key(); !ok {
		return m.setStatus(userMessage(availability.ErrNoSelection))
	}
	data, err := payloadJSON(m.ctrl.Payload())
	if err != nil {
		return m.setStatus(fmt.Sprintf("Error: %v", err))
	}
	if err := clipboard.WriteAll(data); err != nil {
		return m.setStatus(fmt.Sprintf("Copy failed: %v", err))
	}
	return m.setStatus("Payload copied")
}

func payloadJSON(records []availability.RangeRecord) (string, error) {
	if records == nil {
		records = []availability.RangeRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding payload: %w", err)
	}
	return string(data), nil
}

// userMessage turns controller errors into status line text.
func userMessage(err error) string {
	switch {
	case errors.Is(err, availability.ErrNoSelection):
		return "Select a nurse first"
	case errors.Is(err, availability.ErrNotReady):
		return "Week is not loaded yet"
	case errors.Is(err, availability.ErrInvalidCell):
		return "Outside the grid"
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}
