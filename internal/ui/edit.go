package ui

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wardrota/wardrota/internal/availability"
	"github.com/wardrota/wardrota/internal/dateutil"
)

// weekFlags are shared by the commands that edit one week.
type weekFlags struct {
	nurse string
	week  string
}

func (f *weekFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.nurse, "nurse", "", "Nurse worker ID (required)")
	cmd.Flags().StringVar(&f.week, "week", "", "Week: YYYY-MM-DD, this, next, last or +N/-N (default: this)")
	_ = cmd.MarkFlagRequired("nurse")
}

func (a *App) setCmd() *cobra.Command {
	var (
		wf     weekFlags
		day    string
		from   string
		to     string
		status string
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set the status of a range of hours",
		Long: `Set every hour of a time range on one day to a status.

Partial hours are widened: 07:30-09:10 covers 07:00-10:00.
Use --to 24:00 to reach the end of the day.

Example:
  wardrota set --nurse n1 --day mon --from 07:00 --to 10:00 --status available`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := availability.ParseStatus(status)
			if err != nil {
				return err
			}
			wd, err := dateutil.ParseWeekday(day)
			if err != nil {
				return err
			}

			ctx := context.Background()
			s, err := a.openWeek(ctx, wf.nurse, wf.week)
			if err != nil {
				return fmt.Errorf("loading week: %w", err)
			}
			dayIdx := availability.DayForWeekday(wd)
			cells, err := hourCells(dayIdx, from, to)
			if err != nil {
				return err
			}

			req, err := s.ctrl.ApplyEdit(cells, availability.SetTo(st))
			if err := s.commit(ctx, req, err); err != nil {
				return fmt.Errorf("saving week: %w", err)
			}

			date := s.ctrl.Grid().Date(dayIdx)
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s %s-%s to %s for %s\n",
				date.Format("Mon Jan 2"),
				availability.HourToTime(cells[0].Hour),
				availability.HourToTime(cells[len(cells)-1].Hour+1),
				formatStatus(st, st.String()),
				wf.nurse,
			)
			return nil
		},
	}

	wf.register(cmd)
	cmd.Flags().StringVar(&day, "day", "", "Weekday (mon, tuesday, ...)")
	cmd.Flags().StringVar(&from, "from", "", "Start time (HH:MM)")
	cmd.Flags().StringVar(&to, "to", "", "End time (HH:MM, up to 24:00)")
	cmd.Flags().StringVar(&status, "status", "", "available, preferred, unavailable or unset")
	for _, name := range []string{"day", "from", "to", "status"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func (a *App) fillCmd() *cobra.Command {
	var (
		wf     weekFlags
		status string
	)

	cmd := &cobra.Command{
		Use:   "fill",
		Short: "Set every hour of a week to one status",
		Long: `Set all 168 hours of a week to one status and save once.

Example:
  wardrota fill --nurse n1 --status available --week next`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := availability.ParseStatus(status)
			if err != nil {
				return err
			}

			ctx := context.Background()
			s, err := a.openWeek(ctx, wf.nurse, wf.week)
			if err != nil {
				return fmt.Errorf("loading week: %w", err)
			}
			req, err := s.ctrl.ApplyToWeek(st)
			if err := s.commit(ctx, req, err); err != nil {
				return fmt.Errorf("saving week: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Filled %s with %s for %s\n",
				dateutil.WeekLabel(s.weekStart()), formatStatus(st, st.String()), wf.nurse)
			return nil
		},
	}

	wf.register(cmd)
	cmd.Flags().StringVar(&status, "status", "", "available, preferred, unavailable or unset")
	_ = cmd.MarkFlagRequired("status")
	return cmd
}

func (a *App) clearCmd() *cobra.Command {
	var wf weekFlags

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Unset every hour of a week",
		Example: `  wardrota clear --nurse n1
  wardrota clear --nurse n1 --week 2030-01-07`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := context.Background()
			s, err := a.openWeek(ctx, wf.nurse, wf.week)
			if err != nil {
				return fmt.Errorf("loading week: %w", err)
			}
			req, err := s.ctrl.ClearWeek()
			if err := s.commit(ctx, req, err); err != nil {
				return fmt.Errorf("saving week: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s for %s\n", dateutil.WeekLabel(s.weekStart()), wf.nurse)
			return nil
		},
	}

	wf.register(cmd)
	return cmd
}
