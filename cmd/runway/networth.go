package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/Veraticus/runway/internal/cli"
	"github.com/Veraticus/runway/internal/model"
)

func (a *app) netWorthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "networth",
		Short: "Cash, investments and depreciated assets in the base currency",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, closeFn, err := a.newEngine(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			asOf, err := parseDayFlag(cmd, "as-of", e.Today())
			if err != nil {
				return err
			}
			nw, err := e.NetWorth(cmd.Context(), asOf)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if wantJSON(cmd) {
				return printJSON(out, nw)
			}

			codes := make([]string, 0, len(nw.ByCurrency))
			for code := range nw.ByCurrency {
				codes = append(codes, code)
			}
			sort.Strings(codes)

			rows := make([][]string, 0, len(codes))
			for _, code := range codes {
				rows = append(rows, []string{code, cli.FormatMoney(nw.ByCurrency[code], code)})
			}
			if len(rows) > 0 {
				fmt.Fprintln(out, cli.RenderTable([]string{"Currency", "Holdings"}, rows, 1))
			}

			base := nw.BaseCurrency
			fmt.Fprintln(out, cli.RenderBox(
				"Net worth on "+asOf.Format(model.DateFormat),
				cli.RenderKeyValues([][2]string{
					{"Cash", cli.FormatMoney(nw.Cash, base)},
					{"Investments", cli.FormatMoney(nw.Investments, base)},
					{"Assets", cli.FormatMoney(nw.Assets, base)},
					{"Total", cli.BoldStyle.Render(cli.FormatMoney(nw.Total, base))},
				})))
			printFallbackNotice(out, nw.UsingFallbackRates)
			return nil
		},
	}

	cmd.Flags().String("as-of", "", "valuation date (YYYY-MM-DD, default: today)")
	addJSONFlag(cmd)
	return cmd
}
