package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Veraticus/runway/internal/cli"
	"github.com/Veraticus/runway/internal/common"
	"github.com/Veraticus/runway/internal/config"
	"github.com/Veraticus/runway/internal/model"
	"github.com/Veraticus/runway/internal/ofx"
	"github.com/Veraticus/runway/internal/snapshot"
)

func (a *app) importOFXCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-ofx [files...]",
		Short: "Import transactions from OFX/QFX files",
		Long: `Import bank and credit card statements from OFX or QFX files.

Each statement account is created on first import (BANK or CREDIT, in the
statement currency, with a zero opening balance). Re-importing a file
replaces the transactions it already brought in.

Examples:
  # Import a single file
  runway import-ofx ~/Downloads/chase_jan_2024.qfx

  # Import every QFX file in a directory into one account
  runway import-ofx --account checking ~/Downloads/*.qfx`,
		Args: cobra.MinimumNArgs(1),
		RunE: a.runImportOFX,
	}

	cmd.Flags().StringP("account", "a", "", "import every statement into this existing account")
	cmd.Flags().BoolP("dry-run", "d", false, "preview the import without saving")
	return cmd
}

func (a *app) runImportOFX(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	target, _ := cmd.Flags().GetString("account")

	files, err := expandFiles(args)
	if err != nil {
		return err
	}

	store, err := a.openStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	existing := make(map[string]model.Account)
	accounts, err := store.GetAccounts(ctx)
	if err != nil {
		return fmt.Errorf("failed to load accounts: %w", err)
	}
	for _, acc := range accounts {
		existing[acc.ID] = acc
	}
	if target != "" {
		if _, ok := existing[target]; !ok {
			return common.NewUserError(fmt.Sprintf("Account %q does not exist", target), common.ErrNotFound)
		}
	}

	parser := ofx.NewParserWithCurrency(a.cfg.BaseCurrency)
	var ledger snapshot.Ledger
	var rows [][]string

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return err
		}

		statements, err := parseStatements(cmd, parser, path)
		if err != nil {
			slog.Error("Failed to parse OFX file", "file", path, "error", err)
			continue
		}

		for _, stmt := range statements {
			accountID := stmt.AccountID
			if target != "" {
				accountID = target
			}
			if _, ok := existing[accountID]; !ok {
				acc := newStatementAccount(stmt)
				existing[accountID] = acc
				ledger.Accounts = append(ledger.Accounts, acc)
			}

			for _, tx := range stmt.Transactions {
				tx.AccountID = accountID
				ledger.Transactions = append(ledger.Transactions, tx)
			}
			rows = append(rows, []string{
				filepath.Base(path),
				accountID,
				stmt.CurrencyCode,
				fmt.Sprintf("%d", len(stmt.Transactions)),
			})
		}
	}

	if len(rows) == 0 {
		return common.NewUserError("No statements found to import", common.ErrInvalidInput)
	}

	fmt.Fprintln(out, cli.RenderTable([]string{"File", "Account", "Currency", "Transactions"}, rows, 3))

	if dryRun {
		fmt.Fprintln(out, cli.FormatInfo("Dry run, nothing saved"))
		return nil
	}

	if err := snapshot.Save(ctx, store, ledger); err != nil {
		return err
	}

	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Imported %d transactions (%d new accounts)",
		len(ledger.Transactions), len(ledger.Accounts))))
	fmt.Fprintln(out, cli.FormatInfo("Stored balances are now stale, run 'runway reconcile'"))
	return nil
}

func parseStatements(cmd *cobra.Command, parser *ofx.Parser, path string) ([]ofx.Statement, error) {
	f, err := os.Open(path) //nolint:gosec // user-provided statement file
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return parser.ParseStatements(cmd.Context(), f)
}

func newStatementAccount(stmt ofx.Statement) model.Account {
	accType := model.AccountTypeBank
	if stmt.Kind == ofx.KindCreditCard {
		accType = model.AccountTypeCredit
	}
	return model.Account{
		ID:             stmt.AccountID,
		Name:           stmt.AccountID,
		Type:           accType,
		CurrencyCode:   stmt.CurrencyCode,
		InitialBalance: decimal.Zero,
		CurrentBalance: decimal.Zero,
	}
}

// expandFiles resolves glob patterns, keeping plain paths that exist.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		pattern = config.ExpandPath(pattern)
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) > 0 {
			files = append(files, matches...)
			continue
		}
		if _, err := os.Stat(pattern); err == nil {
			files = append(files, pattern)
		} else if errors.Is(err, os.ErrNotExist) {
			slog.Warn("No files found matching pattern", "pattern", pattern)
		}
	}

	if len(files) == 0 {
		return nil, common.NewUserError("No files found to import", common.ErrInvalidInput)
	}
	return files, nil
}
