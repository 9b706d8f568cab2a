package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"headcount/internal/cli"
)

// replayCmd republishes allocation_saved events so the mirror worker
// catches up after an outage longer than MIRROR_SYNC_DAYS.
func replayCmd(a *app) *cobra.Command {
	var rf rangeFlags
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Republish saved-allocation events for a date range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := a.generate(cmd, rf)
			if err != nil {
				return err
			}

			pub, closeFn, err := a.dialEvents()
			if err != nil {
				return fmt.Errorf("connect to broker: %w", err)
			}
			defer func() { _ = closeFn() }()

			sent := 0
			for _, rec := range report.Rows {
				if err := pub.PublishAllocationSaved(cmd.Context(), rec, false); err != nil {
					return fmt.Errorf("publish allocation %d after %d sent: %w", rec.ID, sent, err)
				}
				sent++
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Republished %d events", sent)))
			return nil
		},
	}
	rf.register(cmd)
	return cmd
}
