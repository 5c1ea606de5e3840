package main

import (
	"github.com/spf13/cobra"

	"github.com/Veraticus/runway/internal/tui"
)

func (a *app) dashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Interactive daily and monthly view with runway KPIs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, closeFn, err := a.newEngine(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			today := e.Today()
			end, err := parseDayFlag(cmd, "to", today)
			if err != nil {
				return err
			}
			start := end.AddDate(0, 0, -(tui.DefaultWindow - 1))
			if cmd.Flags().Changed("from") {
				if start, err = parseDayFlag(cmd, "from", today); err != nil {
					return err
				}
			}

			return tui.Run(cmd.Context(), e, tui.WithRange(start, end))
		},
	}

	cmd.Flags().String("from", "", "first day (YYYY-MM-DD, default: 90 days before --to)")
	cmd.Flags().String("to", "", "last day (YYYY-MM-DD, default: today)")
	return cmd
}
