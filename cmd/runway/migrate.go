package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/runway/internal/cli"
	"github.com/Veraticus/runway/internal/storage"
)

func (a *app) migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Bring the database schema up to date",
		Long: `Apply pending schema migrations to the ledger database.

Every command migrates on open, so this is mostly useful to create the
database up front or to check its version with --status.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			statusOnly, _ := cmd.Flags().GetBool("status")
			out := cmd.OutOrStdout()

			if statusOnly {
				store, err := storage.NewSQLiteStorage(a.cfg.DatabasePath)
				if err != nil {
					return fmt.Errorf("failed to open database: %w", err)
				}
				defer func() { _ = store.Close() }()

				current, err := store.SchemaVersion(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to read schema version: %w", err)
				}
				fmt.Fprintln(out, cli.RenderKeyValues([][2]string{
					{"Database", store.Path()},
					{"Schema version", fmt.Sprintf("%d", current)},
					{"Expected version", fmt.Sprintf("%d", storage.ExpectedSchemaVersion)},
				}))
				if current < storage.ExpectedSchemaVersion {
					fmt.Fprintln(out, cli.FormatWarning("Migrations pending, run 'runway migrate'"))
				}
				return nil
			}

			store, err := a.openStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Database %s is at schema version %d",
				store.Path(), storage.ExpectedSchemaVersion)))
			return nil
		},
	}

	cmd.Flags().Bool("status", false, "show the schema version without migrating")
	return cmd
}
