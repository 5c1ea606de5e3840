package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/runway/internal/cli"
	"github.com/Veraticus/runway/internal/common"
	"github.com/Veraticus/runway/internal/model"
)

func (a *app) projectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project <id>",
		Short: "Show project income, expenses, ROI and budget use",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, closeFn, err := a.newEngine(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			stats, err := e.ProjectStats(cmd.Context(), args[0])
			if err != nil {
				if errors.Is(err, common.ErrNotFound) {
					return common.NewUserError(fmt.Sprintf("Project %q not found", args[0]), err)
				}
				return err
			}

			out := cmd.OutOrStdout()
			if wantJSON(cmd) {
				return printJSON(out, stats)
			}

			code := stats.BaseCurrency
			fmt.Fprintln(out, cli.RenderBox("Project "+stats.ProjectID, cli.RenderKeyValues([][2]string{
				{"Transactions", fmt.Sprintf("%d", stats.Transactions)},
				{"Income", cli.FormatMoney(stats.Income, code)},
				{"Expenses", cli.FormatMoney(stats.Expenses, code)},
				{"Transfers", cli.FormatMoney(stats.Transfers, code)},
				{"Depreciation", cli.FormatMoney(stats.Depreciation, code)},
				{"Net result", cli.FormatSignedMoney(stats.NetResult, code)},
				{"ROI", cli.FormatPercent(stats.ROI)},
				{"Budget used", cli.FormatPercent(stats.BudgetUtilization)},
				{"Days", fmt.Sprintf("%d", stats.ProjectDays)},
				{"Daily cost", cli.FormatOptionalMoney(stats.AmortizedDailyCost, code)},
			})))
			printFallbackNotice(out, stats.UsingFallbackRates)
			return nil
		},
	}

	addJSONFlag(cmd)
	cmd.AddCommand(a.projectStatusCmd())
	return cmd
}

func (a *app) projectStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-status <id> <status>",
		Short: "Change a project's status (PLANNING, ACTIVE, COMPLETED, CANCELLED)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, _ := cmd.Flags().GetString("owner")
			status, err := parseProjectStatus(args[1])
			if err != nil {
				return err
			}

			store, err := a.openStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			p, err := store.GetProject(cmd.Context(), args[0])
			if err != nil {
				if errors.Is(err, common.ErrNotFound) {
					return common.NewUserError(fmt.Sprintf("Project %q not found", args[0]), err)
				}
				return err
			}
			p.Status = status

			if err := a.engineFor(store).UpdateProject(cmd.Context(), owner, p); err != nil {
				if errors.Is(err, common.ErrUnauthorized) {
					return common.NewUserError(fmt.Sprintf("%q does not own project %q", owner, p.ID), err)
				}
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Project %s is now %s", p.ID, status)))
			return nil
		},
	}

	cmd.Flags().String("owner", "", "owner id of the project (required)")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

func parseProjectStatus(s string) (model.ProjectStatus, error) {
	status := model.ProjectStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch status {
	case model.ProjectStatusPlanning, model.ProjectStatusActive,
		model.ProjectStatusCompleted, model.ProjectStatusCancelled:
		return status, nil
	}
	return "", common.NewUserError(fmt.Sprintf("Unknown project status %q", s), common.ErrInvalidInput)
}
