package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/runway/internal/model"
	"github.com/Veraticus/runway/internal/service"
)

const transactionColumns = `id, date, type, amount, target_amount, currency_code,
	account_id, transfer_to_account_id, category_id, investment_id, project_id, note`

func saveTransactions(ctx context.Context, q queryable, transactions []model.Transaction) error {
	for i := range transactions {
		txn := &transactions[i]
		var target sql.NullString
		if txn.TargetAmount.Valid {
			target = sql.NullString{String: txn.TargetAmount.Decimal.String(), Valid: true}
		}
		_, err := q.ExecContext(ctx, `
			INSERT OR REPLACE INTO transactions (`+transactionColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			txn.ID,
			formatDate(txn.Date),
			string(txn.Type),
			txn.Amount.String(),
			target,
			txn.CurrencyCode,
			txn.AccountID,
			txn.TransferToAccountID,
			txn.CategoryID,
			txn.InvestmentID,
			txn.ProjectID,
			txn.Note,
		)
		if err != nil {
			return fmt.Errorf("failed to insert transaction %s: %w", txn.ID, classify(err))
		}
	}
	slog.Debug("Saved transactions", "count", len(transactions))
	return nil
}

func scanTransaction(row rowScanner) (model.Transaction, error) {
	var txn model.Transaction
	var date, txType string
	err := row.Scan(
		&txn.ID,
		&date,
		&txType,
		&txn.Amount,
		&txn.TargetAmount,
		&txn.CurrencyCode,
		&txn.AccountID,
		&txn.TransferToAccountID,
		&txn.CategoryID,
		&txn.InvestmentID,
		&txn.ProjectID,
		&txn.Note,
	)
	if err != nil {
		return txn, err
	}
	txn.Type = model.TransactionType(txType)
	txn.Date, err = parseDate(date)
	return txn, err
}

func getTransactions(ctx context.Context, q queryable, filter service.TransactionFilter) ([]model.Transaction, error) {
	var where []string
	var args []any

	if filter.StartDate != nil {
		where = append(where, "date >= ?")
		args = append(args, formatDate(*filter.StartDate))
	}
	if filter.EndDate != nil {
		where = append(where, "date <= ?")
		args = append(args, formatDate(*filter.EndDate))
	}
	if filter.AccountID != "" {
		where = append(where, "(account_id = ? OR transfer_to_account_id = ?)")
		args = append(args, filter.AccountID, filter.AccountID)
	}
	if filter.ProjectID != "" {
		where = append(where, "project_id = ?")
		args = append(args, filter.ProjectID)
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date ASC, id ASC"

	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	} else if filter.Offset > 0 {
		query += " LIMIT -1 OFFSET ?"
		args = append(args, filter.Offset)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", classify(err))
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}

	slog.Debug("Retrieved transactions", "count", len(transactions))
	return transactions, nil
}

func getTransactionByID(ctx context.Context, q queryable, id string) (*model.Transaction, error) {
	txn, err := scanTransaction(q.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err, "transaction", id)
	}
	return &txn, nil
}
