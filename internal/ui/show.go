package ui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wardrota/wardrota/internal/availability"
	"github.com/wardrota/wardrota/internal/dateutil"
)

const (
	showTimeWidth   = 6
	showMinColWidth = 4
	showMaxColWidth = 9
)

var statusGlyphs = [...]string{
	availability.Unset:       "·",
	availability.Unavailable: "x",
	availability.Preferred:   "*",
	availability.Available:   "+",
}

func (a *App) showCmd() *cobra.Command {
	var nurseID, week string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show a nurse's week",
		Long: `Display one week of a nurse's availability as an hour grid.

Legend: + available, * preferred, x unavailable, · unset.

Example:
  wardrota show --nurse n1 --week next`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := context.Background()
			s, err := a.openWeek(ctx, nurseID, week)
			if err != nil {
				return fmt.Errorf("loading week: %w", err)
			}
			name := a.displayName(ctx, nurseID)
			printWeek(cmd.OutOrStdout(), name, s.ctrl.Grid(), termWidth())
			return nil
		},
	}

	cmd.Flags().StringVar(&nurseID, "nurse", "", "Nurse worker ID (required)")
	cmd.Flags().StringVar(&week, "week", "", "Week: YYYY-MM-DD, this, next, last or +N/-N (default: this)")
	_ = cmd.MarkFlagRequired("nurse")
	return cmd
}

// displayName returns "Name (id)" when the directory knows the nurse.
func (a *App) displayName(ctx context.Context, nurseID string) string {
	store, err := a.store()
	if err != nil {
		return nurseID
	}
	nurses, err := store.ListNurses(ctx)
	if err != nil {
		a.logger.Warn().Err(err).Msg("listing nurses")
		return nurseID
	}
	for _, n := range nurses {
		if n.WorkerID == nurseID && n.DisplayName != "" {
			return fmt.Sprintf("%s (%s)", n.DisplayName, n.WorkerID)
		}
	}
	return nurseID
}

// printWeek renders g as a time column followed by seven day columns.
func printWeek(w io.Writer, title string, g *availability.Grid, width int) {
	colWidth := min(max((width-showTimeWidth)/availability.DaysPerWeek, showMinColWidth), showMaxColWidth)

	fmt.Fprintf(w, "%s  %s\n\n", formatHeader(title), dateutil.WeekLabel(g.WeekStart()))

	var sb strings.Builder
	sb.WriteString(strings.Repeat(" ", showTimeWidth))
	for d := 0; d < availability.DaysPerWeek; d++ {
		label := g.Date(d).Format("Mon 2")
		if len(label) > colWidth {
			label = g.Date(d).Format("Mon")
		}
		sb.WriteString(formatHeader(center(label, colWidth)))
	}
	fmt.Fprintln(w, sb.String())

	for h := 0; h < availability.HoursPerDay; h++ {
		sb.Reset()
		sb.WriteString(formatMuted(fmt.Sprintf("%-*s", showTimeWidth, availability.HourToTime(h))))
		for d := 0; d < availability.DaysPerWeek; d++ {
			st := g.At(availability.Cell{Day: d, Hour: h})
			sb.WriteString(formatStatus(st, center(glyph(st), colWidth)))
		}
		fmt.Fprintln(w, sb.String())
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, legend(g))
}

func legend(g *availability.Grid) string {
	parts := make([]string, 0, len(availability.PersistedStatuses))
	for _, st := range availability.PersistedStatuses {
		parts = append(parts, formatStatus(st, fmt.Sprintf("%s %s %dh", glyph(st), st, g.Count(st))))
	}
	return strings.Join(parts, "  ")
}

func glyph(st availability.Status) string {
	if !st.Valid() {
		st = availability.Unset
	}
	return statusGlyphs[st]
}

// center pads s to width, measuring in runes.
func center(s string, width int) string {
	n := len([]rune(s))
	if n >= width {
		return s
	}
	left := (width - n) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-n-left)
}
