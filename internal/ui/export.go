package ui

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wardrota/wardrota/internal/availability"
)

func (a *App) exportCmd() *cobra.Command {
	var (
		wf     weekFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print a week as the range records a save would send",
		Long: `Export one week as JSON range records, encoded with the configured
editor settings. The output is the body a save would send.

Example:
  wardrota export --nurse n1 --week next -o week.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := context.Background()
			s, err := a.openWeek(ctx, wf.nurse, wf.week)
			if err != nil {
				return fmt.Errorf("loading week: %w", err)
			}

			data, err := encodeRecords(s.ctrl.Payload())
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("writing export: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", output)
			return nil
		},
	}

	wf.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to file instead of stdout")
	return cmd
}

func encodeRecords(records []availability.RangeRecord) ([]byte, error) {
	if records == nil {
		records = []availability.RangeRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding records: %w", err)
	}
	return append(data, '\n'), nil
}
