package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wardrota/wardrota/internal/availability"
)

func (a *App) nursesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nurses",
		Short: "List nurses",
		Long: `List the nurses whose availability can be edited.

Example:
  wardrota nurses
  wardrota nurses add n7 "Grace Hopper"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.store()
			if err != nil {
				return err
			}
			nurses, err := store.ListNurses(context.Background())
			if err != nil {
				return fmt.Errorf("listing nurses: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(nurses) == 0 {
				fmt.Fprintln(out, "No nurses yet. Add one with 'wardrota nurses add ID NAME'.")
				return nil
			}

			idWidth := len("ID")
			for _, n := range nurses {
				idWidth = max(idWidth, len(n.WorkerID))
			}
			fmt.Fprintln(out, formatHeader(fmt.Sprintf("%-*s  %s", idWidth, "ID", "NAME")))
			for _, n := range nurses {
				fmt.Fprintf(out, "%-*s  %s\n", idWidth, n.WorkerID, n.DisplayName)
			}
			return nil
		},
	}

	cmd.AddCommand(a.nursesAddCmd())
	return cmd
}

func (a *App) nursesAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add ID NAME",
		Short: "Add or rename a nurse",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.store()
			if err != nil {
				return err
			}
			writer, ok := store.(nurseWriter)
			if !ok {
				return errNoDirectoryWrites
			}

			n := availability.Nurse{
				WorkerID:    strings.TrimSpace(args[0]),
				DisplayName: strings.TrimSpace(strings.Join(args[1:], " ")),
			}
			if n.WorkerID == "" || n.DisplayName == "" {
				return fmt.Errorf("nurse ID and name must not be empty")
			}
			if err := writer.UpsertNurse(context.Background(), n); err != nil {
				return fmt.Errorf("adding nurse: %w", err)
			}

			a.logger.Info().Str("nurse", n.WorkerID).Msg("nurse saved")
			fmt.Fprintf(cmd.OutOrStdout(), "Saved nurse %s: %s\n", n.WorkerID, n.DisplayName)
			return nil
		},
	}
}
