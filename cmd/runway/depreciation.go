package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/runway/internal/cli"
	"github.com/Veraticus/runway/internal/common"
	"github.com/Veraticus/runway/internal/depreciation"
	"github.com/Veraticus/runway/internal/model"
)

func (a *app) depreciationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "depreciation <investment>",
		Short: "Show an asset's book value and year-end schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, closeFn, err := a.newEngine(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			asOf, err := parseDayFlag(cmd, "as-of", e.Today())
			if err != nil {
				return err
			}

			report, err := e.Depreciation(cmd.Context(), args[0], asOf)
			switch {
			case errors.Is(err, common.ErrNotFound):
				return common.NewUserError(fmt.Sprintf("Investment %q not found", args[0]), err)
			case errors.Is(err, depreciation.ErrNotDepreciable):
				return common.NewUserError(fmt.Sprintf("Investment %q has no depreciation setup", args[0]), err)
			case err != nil:
				return err
			}

			out := cmd.OutOrStdout()
			if wantJSON(cmd) {
				return printJSON(out, report)
			}

			code := report.CurrencyCode
			r := report.Result
			fmt.Fprintln(out, cli.RenderBox(
				fmt.Sprintf("%s on %s", report.Name, report.AsOf.Format(model.DateFormat)),
				cli.RenderKeyValues([][2]string{
					{"Method", string(report.Method)},
					{"Book value", cli.FormatMoney(r.BookValue, code)},
					{"Accumulated", cli.FormatMoney(r.AccumulatedDepreciation, code)},
					{"Remaining life", fmt.Sprintf("%.2f years", r.RemainingLife)},
					{"Daily", cli.FormatMoney(r.DailyDepreciation, code)},
					{"Annual", cli.FormatMoney(r.AnnualDepreciation, code)},
				})))

			rows := make([][]string, 0, len(report.Schedule))
			for _, y := range report.Schedule {
				rows = append(rows, []string{
					fmt.Sprintf("%d", y.Year),
					cli.FormatMoney(y.Depreciation, code),
					cli.FormatMoney(y.AccumulatedDepreciation, code),
					cli.FormatMoney(y.BookValue, code),
				})
			}
			fmt.Fprintln(out, cli.RenderTable([]string{"Year", "Depreciation", "Accumulated", "Book value"}, rows, 1, 2, 3))
			return nil
		},
	}

	cmd.Flags().String("as-of", "", "valuation date (YYYY-MM-DD, default: today)")
	addJSONFlag(cmd)
	return cmd
}
