// Package commands provides TUI command constructors and message types.
package commands

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wardrota/wardrota/internal/availability"
)

// Round trips are bounded so a hung backend cannot leave the editor loading
// forever.
const requestTimeout = 30 * time.Second

// NursesLoadedMsg is sent when the nurse directory is loaded.
type NursesLoadedMsg struct {
	Nurses []availability.Nurse
}

// WeekFetchedMsg carries the result of a fetch round trip.
type WeekFetchedMsg struct {
	Req     availability.FetchRequest
	Records []availability.RangeRecord
	Err     error
}

// WeekSavedMsg carries the result of a save round trip.
type WeekSavedMsg struct {
	Req availability.SaveRequest
	Err error
}

// ErrMsg is sent when an error occurs.
type ErrMsg struct {
	Err error
}

// StatusMsgCmd is sent for temporary status messages.
type StatusMsgCmd struct {
	Msg string
}

// ClearStatusMsg is sent to clear the status message.
type ClearStatusMsg struct{}

// LoadNurses loads the nurse directory.
func LoadNurses(dir availability.Directory) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		nurses, err := dir.ListNurses(ctx)
		if err != nil {
			return ErrMsg{Err: fmt.Errorf("loading nurses: %w", err)}
		}
		return NursesLoadedMsg{Nurses: nurses}
	}
}

// FetchWeek runs a fetch request. Errors are delivered in the message so the
// controller can match them to the request.
func FetchWeek(store availability.Store, req availability.FetchRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		records, err := req.Fetch(ctx, store)
		return WeekFetchedMsg{Req: req, Records: records, Err: err}
	}
}

// SaveWeek submits a save request.
func SaveWeek(store availability.Store, req availability.SaveRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		return WeekSavedMsg{Req: req, Err: req.Submit(ctx, store)}
	}
}

// Status returns a command that shows msg in the status line.
func Status(msg string) tea.Cmd {
	return func() tea.Msg {
		return StatusMsgCmd{Msg: msg}
	}
}
