package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tiagotdas/calendario-fiscal/internal/application/projections"
	"github.com/tiagotdas/calendario-fiscal/internal/domain/calendar"
)

// NewMonthCommand creates the month command.
func NewMonthCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "month [YYYY-MM]",
		Short: "Print a month's calendar as text",
		Long:  "Print the calendar grid for a month (default: the current one) with its obligations. Runs in demo mode without a backend.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			month := time.Now()
			if len(args) == 1 {
				m, err := calendar.ParseMonth(args[0])
				if err != nil {
					return fmt.Errorf("invalid month %q: want YYYY-MM", args[0])
				}
				month = m
			}

			rt, release := startRuntime(cmd.Context(), rootOpts.cfg, nil)
			defer release()

			deps := projections.GetCalendarMonthDeps{Status: rt.Status, Now: time.Now}
			if rt.Feed != nil {
				deps.Feed = rt.Feed
			}
			res := projections.QueryGetCalendarMonth(projections.GetCalendarMonthQuery{Month: month}, deps)
			if res.Banner != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), res.Banner)
			}
			return calendar.FormatText(cmd.OutOrStdout(), res.Month, res.Cells)
		},
	}
}
