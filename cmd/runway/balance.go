package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/runway/internal/cli"
	"github.com/Veraticus/runway/internal/engine"
)

func (a *app) balanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balance [account]",
		Short: "Show stored and recomputed account balances",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			e, closeFn, err := a.newEngine(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			var ids []string
			if len(args) == 1 {
				ids = args
			} else {
				snap, err := e.Snapshot(ctx)
				if err != nil {
					return err
				}
				for _, acc := range snap.Accounts {
					ids = append(ids, acc.ID)
				}
			}

			reports := make([]engine.BalanceReport, 0, len(ids))
			for _, id := range ids {
				r, err := e.Balance(ctx, id)
				if err != nil {
					return fmt.Errorf("failed to compute balance of %s: %w", id, err)
				}
				reports = append(reports, r)
			}

			out := cmd.OutOrStdout()
			if wantJSON(cmd) {
				return printJSON(out, reports)
			}

			rows := make([][]string, 0, len(reports))
			var stale int
			for _, r := range reports {
				status := cli.SuccessIcon
				if !r.InSync {
					status = cli.WarningIcon
					stale++
				}
				rows = append(rows, []string{
					r.Name,
					r.CurrencyCode,
					cli.FormatMoney(r.Computed, r.CurrencyCode),
					cli.FormatMoney(r.Stored, r.CurrencyCode),
					status,
				})
			}
			fmt.Fprintln(out, cli.RenderTable([]string{"Account", "Currency", "Balance", "Stored", ""}, rows, 2, 3))
			if stale > 0 {
				fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("%d stored balances are stale, run 'runway reconcile'", stale)))
			}
			return nil
		},
	}

	addJSONFlag(cmd)
	return cmd
}
