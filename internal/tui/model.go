// Package tui provides the terminal user interface for wardrota.
package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/wardrota/wardrota/internal/availability"
	"github.com/wardrota/wardrota/internal/config"
	"github.com/wardrota/wardrota/internal/tui/commands"
	"github.com/wardrota/wardrota/internal/tui/theme"
)

// Mode represents the current interaction mode.
type Mode int

const (
	ModeNormal Mode = iota
	ModeHelp        // Key reference overlay
	ModePrompt      // Go-to-week prompt
)

func (m Mode) String() string {
	switch m {
	case ModeHelp:
		return "help"
	case ModePrompt:
		return "prompt"
	default:
		return "normal"
	}
}

// Rows above and below the hour rows.
const (
	headerLines = 2 // title, day headers
	footerLines = 2 // status, help
)

const statusDuration = 3 * time.Second

// Model is the main TUI model.
type Model struct {
	// Dependencies
	backend availability.Backend
	config  *config.Config
	logger  zerolog.Logger
	now     func() time.Time

	// Theme and styles
	theme  *theme.Theme
	styles *Styles

	// Editing state. The controller owns the grid; the selector owns the
	// in-progress mouse gesture.
	ctrl *availability.Controller
	drag *availability.DragSelector

	// Selection
	nurses       []availability.Nurse
	nurseIdx     int
	initialNurse string
	weekStart    time.Time
	cursor       availability.Cell
	mode         Mode

	// Components
	prompt   textinput.Model
	spinner  spinner.Model
	spinning bool
	keys     keyMap
	help     help.Model

	// Terminal dimensions and layout
	width        int
	height       int
	colWidth     int
	scrollOffset int // First visible hour

	// Messages
	statusMsg  string
	statusTime time.Time
}

// ModelOption configures optional model behavior.
type ModelOption func(*Model)

// WithLogger sets the logger for the TUI and its controller.
func WithLogger(l zerolog.Logger) ModelOption {
	return func(m *Model) {
		m.logger = l
	}
}

// WithNurse selects a nurse once the directory is loaded.
func WithNurse(id string) ModelOption {
	return func(m *Model) {
		m.initialNurse = id
	}
}

// WithWeek opens the week containing t.
func WithWeek(t time.Time) ModelOption {
	return func(m *Model) {
		m.weekStart = availability.WeekStart(t)
	}
}

// WithClock overrides the clock used for "this week" and today markers.
func WithClock(now func() time.Time) ModelOption {
	return func(m *Model) {
		m.now = now
	}
}

// New creates a new TUI model.
func New(backend availability.Backend, cfg *config.Config, opts ...ModelOption) *Model {
	if cfg == nil {
		cfg = config.Default()
	}

	t, err := theme.Load(cfg.UI.Theme)
	if err != nil {
		t, _ = theme.Load("mocha")
	}
	styles := NewStyles(t)

	ti := textinput.New()
	ti.Placeholder = "next, -2, 2030-01-07"
	ti.CharLimit = 32
	ti.Width = 24
	ti.Prompt = "week: "

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(styles.TitleStyle),
	)

	m := &Model{
		backend:  backend,
		config:   cfg,
		logger:   zerolog.Nop(),
		now:      time.Now,
		theme:    t,
		styles:   styles,
		drag:     availability.NewDragSelector(),
		prompt:   ti,
		spinner:  sp,
		keys:     defaultKeyMap(),
		help:     help.New(),
		colWidth: defaultColWidth,
	}
	m.help.Styles.ShortKey = styles.SubtitleStyle
	m.help.Styles.ShortDesc = styles.HelpStyle
	m.help.Styles.ShortSeparator = styles.HelpStyle
	m.help.Styles.FullKey = styles.OverlayTitleStyle
	m.help.Styles.FullDesc = lipgloss.NewStyle().Foreground(theme.Color(t.Fg)).Background(styles.OverlayBgColor)
	m.help.Styles.FullSeparator = styles.HelpStyle

	for _, opt := range opts {
		opt(m)
	}
	if m.weekStart.IsZero() {
		m.weekStart = availability.WeekStart(m.now())
	}

	m.ctrl = availability.NewController(
		availability.WithLogger(m.logger),
		availability.WithCodec(cfg.Codec()),
	)
	m.cursor = availability.Cell{Day: m.todayIndex(), Hour: 8}
	m.ensureCursorVisible()

	return m
}

// Init loads the nurse directory.
func (m Model) Init() tea.Cmd {
	if m.backend == nil {
		return nil
	}
	return commands.LoadNurses(m.backend)
}

// Run starts the TUI. It blocks until the user quits.
func Run(backend availability.Backend, cfg *config.Config, opts ...ModelOption) error {
	model := New(backend, cfg, opts...)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running tui: %w", err)
	}
	return nil
}

// Controller exposes the editing state, mainly for tests.
func (m Model) Controller() *availability.Controller {
	return m.ctrl
}

func (m Model) currentNurse() (availability.Nurse, bool) {
	if m.nurseIdx < 0 || m.nurseIdx >= len(m.nurses) {
		return availability.Nurse{}, false
	}
	return m.nurses[m.nurseIdx], true
}

// todayIndex returns the day column of today, or 0 when today is outside
// the displayed week.
func (m Model) todayIndex() int {
	today := availability.WeekStart(m.now())
	if !today.Equal(m.weekStart) {
		return 0
	}
	return availability.DayForWeekday(m.now().Weekday())
}

// busy reports whether a round trip is outstanding.
func (m Model) busy() bool {
	return m.ctrl.Loading() || m.ctrl.Pending() > 0
}

// startSpinner returns a tick command unless the spinner is already running.
func (m *Model) startSpinner() tea.Cmd {
	if m.spinning {
		return nil
	}
	m.spinning = true
	return m.spinner.Tick
}

// fetch issues the read for req.
func (m *Model) fetch(req availability.FetchRequest) tea.Cmd {
	m.drag.PointerLeaveGrid()
	m.logger.Debug().Str("key", req.Key.String()).Uint64("seq", req.Seq).Msg("fetching week")
	return tea.Batch(commands.FetchWeek(m.backend, req), m.startSpinner())
}

// submit sends the save produced by an edit, or reports why there is none.
// A zero request means the edit waits for the save in flight.
func (m *Model) submit(req availability.SaveRequest, err error) tea.Cmd {
	if err != nil {
		return m.setStatus(userMessage(err))
	}
	if req.IsZero() {
		return nil
	}
	return m.send(req)
}

func (m *Model) send(req availability.SaveRequest) tea.Cmd {
	m.logger.Debug().
		Str("key", req.Key.String()).
		Uint64("seq", req.Seq).
		Str("reason", req.Reason).
		Int("records", len(req.Records)).
		Msg("saving week")
	return tea.Batch(commands.SaveWeek(m.backend, req), m.startSpinner())
}

func (m *Model) edit(cells []availability.Cell, e availability.Edit) tea.Cmd {
	return m.submit(m.ctrl.ApplyEdit(cells, e))
}

// selectWeek moves to the week containing t.
func (m *Model) selectWeek(t time.Time) tea.Cmd {
	m.weekStart = availability.WeekStart(t)
	req, err := m.ctrl.SelectWeek(m.weekStart)
	if err != nil {
		// Nothing to load until a nurse is selected.
		return nil
	}
	return m.fetch(req)
}

// shiftNurse selects the previous (-1) or next (+1) nurse in the directory.
func (m *Model) shiftNurse(delta int) tea.Cmd {
	if len(m.nurses) == 0 {
		return m.setStatus("No nurses")
	}
	m.nurseIdx = (m.nurseIdx + delta + len(m.nurses)) % len(m.nurses)
	return m.selectNurse(m.nurses[m.nurseIdx].WorkerID)
}

func (m *Model) selectNurse(id string) tea.Cmd {
	return m.fetch(m.ctrl.Select(id, m.weekStart))
}

// setStatus shows a transient message in the status line.
func (m *Model) setStatus(msg string) tea.Cmd {
	m.statusMsg = msg
	m.statusTime = m.now().Add(statusDuration)
	return tea.Tick(statusDuration, func(time.Time) tea.Msg {
		return commands.ClearStatusMsg{}
	})
}

// visibleRows returns how many hour rows fit in the terminal.
func (m Model) visibleRows() int {
	if m.height <= 0 {
		return availability.HoursPerDay
	}
	rows := m.height - headerLines - footerLines
	return min(max(rows, 1), availability.HoursPerDay)
}

func (m *Model) ensureCursorVisible() {
	visible := m.visibleRows()
	if m.cursor.Hour < m.scrollOffset {
		m.scrollOffset = m.cursor.Hour
	}
	if m.cursor.Hour >= m.scrollOffset+visible {
		m.scrollOffset = m.cursor.Hour - visible + 1
	}
	m.clampScroll()
}

func (m *Model) clampScroll() {
	maxOffset := availability.HoursPerDay - m.visibleRows()
	m.scrollOffset = min(max(m.scrollOffset, 0), maxOffset)
}

// calculateColWidth fits seven day columns next to the time column.
func (m Model) calculateColWidth() int {
	if m.width <= 0 {
		return defaultColWidth
	}
	w := (m.width - timeColWidth) / availability.DaysPerWeek
	return min(max(w, minColWidth), maxColWidth)
}
