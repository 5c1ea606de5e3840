package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/Veraticus/runway/internal/cli"
	"github.com/Veraticus/runway/internal/common"
	"github.com/Veraticus/runway/internal/config"
	"github.com/Veraticus/runway/internal/snapshot"
)

func (a *app) loadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load <file.yaml>",
		Short: "Load a ledger document into the database",
		Long: `Load accounts, categories, transactions, recurring rules, investments and
projects from a YAML document. Entries with an existing id replace the stored
entity; everything is written in one database transaction.

References (account, to_account, category, project) may use either the id or
the name of another entry in the same document.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			out := cmd.OutOrStdout()

			path := config.ExpandPath(args[0])
			f, err := os.Open(path) //nolint:gosec // user-provided ledger file
			if err != nil {
				return common.NewUserError(fmt.Sprintf("Cannot open %s", path), err)
			}
			defer func() { _ = f.Close() }()

			ledger, err := snapshot.Parse(f)
			if err != nil {
				return fmt.Errorf("invalid ledger document %s: %w", path, err)
			}

			if dryRun {
				fmt.Fprintln(out, cli.FormatInfo("Dry run, nothing saved"))
			} else {
				store, err := a.openStorage(cmd.Context())
				if err != nil {
					return err
				}
				defer func() { _ = store.Close() }()

				if err := snapshot.Save(cmd.Context(), store, ledger); err != nil {
					return err
				}
				fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Loaded %s", path)))
			}

			fmt.Fprintln(out, cli.RenderKeyValues(countPairs(ledger.Counts())))
			return nil
		},
	}

	cmd.Flags().Bool("dry-run", false, "validate the document without saving")
	return cmd
}

func countPairs(counts map[string]int) [][2]string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([][2]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, [2]string{k, fmt.Sprintf("%d", counts[k])})
	}
	return pairs
}
