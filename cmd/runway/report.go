package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/runway/internal/cli"
	"github.com/Veraticus/runway/internal/metrics"
	"github.com/Veraticus/runway/internal/model"
)

func (a *app) reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Daily, monthly and runway reports in the base currency",
		Long: `Derived reports over a date range. The range defaults to the last 30 days
ending today; all amounts are converted to the base currency.`,
	}

	cmd.AddCommand(a.seriesCmd(), a.pnlCmd(), a.runwayCmd())
	return cmd
}

func (a *app) seriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "series",
		Short: "Per-day income, cost, cash and capital",
		RunE: func(cmd *cobra.Command, _ []string) error {
			series, err := a.series(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if wantJSON(cmd) {
				return printJSON(out, series)
			}

			code := series.BaseCurrency
			rows := make([][]string, 0, len(series.Points))
			for _, p := range series.Points {
				rows = append(rows, []string{
					p.Date.Format(model.DateFormat),
					cli.FormatMoney(p.Income, code),
					cli.FormatMoney(p.OrdinaryCost, code),
					cli.FormatMoney(p.RecurringCost, code),
					cli.FormatMoney(p.ProjectCost, code),
					cli.FormatMoney(p.DepreciationCost, code),
					cli.FormatMoney(p.TotalDailyCost, code),
					cli.FormatSignedMoney(p.NetProfit, code),
					cli.FormatMoney(p.CashLevel, code),
					cli.FormatMoney(p.CapitalLevel, code),
				})
			}
			fmt.Fprintln(out, cli.RenderTable([]string{
				"Date", "Income", "Ordinary", "Recurring", "Project", "Depreciation",
				"Total cost", "Net", "Cash", "Capital",
			}, rows, 1, 2, 3, 4, 5, 6, 7, 8, 9))
			printFallbackNotice(out, series.UsingFallbackRates)
			return nil
		},
	}

	addRangeFlags(cmd)
	addJSONFlag(cmd)
	return cmd
}

func (a *app) pnlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pnl",
		Short: "Monthly income, amortized cost and net profit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, closeFn, err := a.newEngine(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			start, end, err := parseRange(cmd, e.Today())
			if err != nil {
				return err
			}
			report, err := e.MonthlyPnL(cmd.Context(), start, end)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if wantJSON(cmd) {
				return printJSON(out, report)
			}

			code := report.BaseCurrency
			rows := make([][]string, 0, len(report.Months))
			for _, m := range report.Months {
				rows = append(rows, []string{
					m.Month,
					cli.FormatMoney(m.Income, code),
					cli.FormatMoney(m.AmortizedCost, code),
					cli.FormatSignedMoney(m.NetProfit, code),
				})
			}
			fmt.Fprintln(out, cli.RenderTable([]string{"Month", "Income", "Amortized cost", "Net profit"}, rows, 1, 2, 3))
			printFallbackNotice(out, report.UsingFallbackRates)
			return nil
		},
	}

	addRangeFlags(cmd)
	addJSONFlag(cmd)
	return cmd
}

// runwaySummary is the JSON shape of the runway report.
type runwaySummary struct {
	From               string  `json:"from"`
	To                 string  `json:"to"`
	BaseCurrency       string  `json:"base_currency"`
	CashOnly           float64 `json:"cash_only"`
	AvgDailyBurn       float64 `json:"avg_daily_burn"`
	BurnRate7d         float64 `json:"burn_rate_7d"`
	RunwayMonths       float64 `json:"runway_months"`
	RunwayInfinite     bool    `json:"runway_infinite"`
	UsingFallbackRates bool    `json:"using_fallback_rates"`
}

func (a *app) runwayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runway",
		Short: "Cash on hand, average burn and months of runway",
		RunE: func(cmd *cobra.Command, _ []string) error {
			series, err := a.series(cmd)
			if err != nil {
				return err
			}

			summary := runwaySummary{
				BaseCurrency:       series.BaseCurrency,
				CashOnly:           series.CashOnly,
				AvgDailyBurn:       series.AvgDailyBurn,
				BurnRate7d:         metrics.BurnRate(series.Points, 7),
				RunwayMonths:       series.RunwayMonths,
				RunwayInfinite:     series.RunwayInfinite,
				UsingFallbackRates: series.UsingFallbackRates,
			}
			if n := len(series.Points); n > 0 {
				summary.From = series.Points[0].Date.Format(model.DateFormat)
				summary.To = series.Points[n-1].Date.Format(model.DateFormat)
			}

			out := cmd.OutOrStdout()
			if wantJSON(cmd) {
				return printJSON(out, summary)
			}

			code := summary.BaseCurrency
			fmt.Fprintln(out, cli.RenderBox(
				fmt.Sprintf("Runway %s to %s", summary.From, summary.To),
				cli.RenderKeyValues([][2]string{
					{"Cash", cli.FormatMoney(summary.CashOnly, code)},
					{"Avg daily burn", cli.FormatMoney(summary.AvgDailyBurn, code)},
					{"7-day burn", cli.FormatMoney(summary.BurnRate7d, code)},
					{"Runway", cli.FormatRunway(summary.RunwayMonths, summary.RunwayInfinite)},
				})))
			printFallbackNotice(out, summary.UsingFallbackRates)
			return nil
		},
	}

	addRangeFlags(cmd)
	addJSONFlag(cmd)
	return cmd
}

func (a *app) series(cmd *cobra.Command) (metrics.Series, error) {
	e, closeFn, err := a.newEngine(cmd.Context())
	if err != nil {
		return metrics.Series{}, err
	}
	defer closeFn()

	start, end, err := parseRange(cmd, e.Today())
	if err != nil {
		return metrics.Series{}, err
	}
	return e.Series(cmd.Context(), start, end)
}
