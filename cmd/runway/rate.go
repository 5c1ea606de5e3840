package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/runway/internal/cli"
	"github.com/Veraticus/runway/internal/money"
)

func (a *app) rateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rate <from> <to>",
		Short: "Convert between currencies at the current rate",
		Long: `Print the exchange rate between two currencies. Without a configured API key,
or when the rate service is unreachable, rates come from a built-in fallback
table and are flagged as such.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, _ := cmd.Flags().GetFloat64("amount")
			showStatus, _ := cmd.Flags().GetBool("status")
			from, to := money.NormalizeCode(args[0]), money.NormalizeCode(args[1])

			rates := a.newRates()
			quote := rates.Rate(cmd.Context(), from, to)

			out := cmd.OutOrStdout()
			if wantJSON(cmd) {
				payload := map[string]any{
					"from":      from,
					"to":        to,
					"amount":    amount,
					"converted": amount * quote.Rate,
					"quote":     quote,
				}
				if showStatus {
					payload["status"] = rates.Status(cmd.Context())
				}
				return printJSON(out, payload)
			}

			fmt.Fprintf(out, "%s = %s  (1 %s = %.6f %s)\n",
				cli.FormatMoney(amount, from),
				cli.FormatMoney(amount*quote.Rate, to),
				from, quote.Rate, to)
			printFallbackNotice(out, quote.Fallback)

			if showStatus {
				status := rates.Status(cmd.Context())
				pairs := [][2]string{{"Live rates", fmt.Sprintf("%t", status.Success)}}
				if !status.FetchedAt.IsZero() {
					pairs = append(pairs, [2]string{"Fetched", status.FetchedAt.Format("2006-01-02 15:04:05")})
				}
				if !status.Expiry.IsZero() {
					pairs = append(pairs, [2]string{"Expires", status.Expiry.Format("2006-01-02 15:04:05")})
				}
				if status.Error != "" {
					pairs = append(pairs, [2]string{"Error", status.Error})
				}
				fmt.Fprintln(out, cli.RenderKeyValues(pairs))
			}
			return nil
		},
	}

	cmd.Flags().Float64("amount", 1, "amount to convert")
	cmd.Flags().Bool("status", false, "also show the state of the rate source")
	addJSONFlag(cmd)
	return cmd
}
