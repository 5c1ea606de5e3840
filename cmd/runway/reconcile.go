package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/runway/internal/cli"
	"github.com/Veraticus/runway/internal/ledger"
)

func (a *app) reconcileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Recompute stored account balances from transactions",
		Long: `Recompute every account balance as its initial balance plus the net effect of
its transactions, and write back the balances that drifted.

Interrupting leaves the accounts already processed updated; running the
command again finishes the job.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			out := cmd.OutOrStdout()

			handler := cli.NewInterruptHandler(cmd.ErrOrStderr())
			ctx := handler.HandleInterrupts(cmd.Context(), "Reconciliation",
				"Balances written so far are kept, run 'runway reconcile' again to finish")

			e, closeFn, err := a.newEngine(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			progress := cli.NewProgress(cmd.ErrOrStderr(), "Reconciling")
			report, err := e.Reconcile(ctx,
				ledger.WithDryRun(dryRun),
				ledger.WithProgress(progress.Update))
			progress.Finish()
			if err != nil {
				if handler.WasInterrupted() {
					return nil
				}
				return err
			}

			if wantJSON(cmd) {
				return printJSON(out, report)
			}
			printReconcileReport(cmd, report)
			return nil
		},
	}

	cmd.Flags().Bool("dry-run", false, "report drifted balances without writing them")
	addJSONFlag(cmd)
	return cmd
}

func printReconcileReport(cmd *cobra.Command, report ledger.Report) {
	out := cmd.OutOrStdout()

	if len(report.Changes) > 0 {
		rows := make([][]string, 0, len(report.Changes))
		for _, c := range report.Changes {
			rows = append(rows, []string{
				c.Name,
				c.Currency,
				cli.FormatMoney(c.Stored, c.Currency),
				cli.FormatMoney(c.Recomputed, c.Currency),
				cli.FormatSignedMoney(c.Recomputed-c.Stored, c.Currency),
			})
		}
		fmt.Fprintln(out, cli.RenderTable(
			[]string{"Account", "Currency", "Stored", "Recomputed", "Drift"}, rows, 2, 3, 4))
	}

	summary := fmt.Sprintf("%d updated, %d already in sync, %d failed",
		report.Updated, report.Skipped, report.Failed)
	switch {
	case report.DryRun:
		fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Dry run: %d balances would change", len(report.Changes))))
	case report.Failed > 0:
		fmt.Fprintln(out, cli.FormatWarning(summary))
	default:
		fmt.Fprintln(out, cli.FormatSuccess(summary))
	}
}
