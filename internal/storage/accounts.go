package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/runway/internal/common"
	"github.com/Veraticus/runway/internal/model"
)

const accountColumns = `id, name, type, currency_code, initial_balance, current_balance`

func saveAccounts(ctx context.Context, q queryable, accounts []model.Account) error {
	for _, a := range accounts {
		_, err := q.ExecContext(ctx, `
			INSERT INTO accounts (`+accountColumns+`)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				type = excluded.type,
				currency_code = excluded.currency_code,
				initial_balance = excluded.initial_balance,
				current_balance = excluded.current_balance`,
			a.ID, a.Name, string(a.Type), a.CurrencyCode,
			a.InitialBalance.String(), a.CurrentBalance.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to save account %s: %w", a.ID, classify(err))
		}
	}
	slog.Debug("Saved accounts", "count", len(accounts))
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (model.Account, error) {
	var a model.Account
	var accountType string
	err := row.Scan(&a.ID, &a.Name, &accountType, &a.CurrencyCode, &a.InitialBalance, &a.CurrentBalance)
	a.Type = model.AccountType(accountType)
	return a, err
}

func getAccounts(ctx context.Context, q queryable) ([]model.Account, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", classify(err))
	}
	defer func() { _ = rows.Close() }()

	var accounts []model.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}
	return accounts, nil
}

func getAccount(ctx context.Context, q queryable, id string) (*model.Account, error) {
	a, err := scanAccount(q.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err, "account", id)
	}
	return &a, nil
}

func updateAccountBalance(ctx context.Context, q queryable, id string, balance decimal.Decimal) error {
	result, err := q.ExecContext(ctx, `UPDATE accounts SET current_balance = ? WHERE id = ?`, balance.String(), id)
	if err != nil {
		return fmt.Errorf("failed to update balance of account %s: %w", id, classify(err))
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check updated rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("account %q: %w", id, common.ErrNotFound)
	}
	return nil
}
