package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/runway/internal/model"
)

const investmentColumns = `id, name, type, status, currency_code, initial_amount, current_amount,
	purchase_price, salvage_value, useful_life, depreciation_type, interest_rate,
	start_date, end_date, project_id`

func nullDecimalText(d decimal.NullDecimal) sql.NullString {
	if !d.Valid {
		return sql.NullString{}
	}
	return sql.NullString{String: d.Decimal.String(), Valid: true}
}

func saveInvestments(ctx context.Context, q queryable, investments []model.Investment) error {
	for i := range investments {
		inv := &investments[i]
		_, err := q.ExecContext(ctx, `
			INSERT OR REPLACE INTO investments (`+investmentColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			inv.ID,
			inv.Name,
			string(inv.Type),
			string(inv.Status),
			inv.CurrencyCode,
			inv.InitialAmount.String(),
			nullDecimalText(inv.CurrentAmount),
			nullDecimalText(inv.PurchasePrice),
			nullDecimalText(inv.SalvageValue),
			nullDecimalText(inv.UsefulLife),
			string(inv.DepreciationType),
			nullDecimalText(inv.InterestRate),
			formatDate(inv.StartDate),
			formatNullDate(inv.EndDate),
			inv.ProjectID,
		)
		if err != nil {
			return fmt.Errorf("failed to save investment %s: %w", inv.ID, classify(err))
		}
	}
	return nil
}

func scanInvestment(row rowScanner) (model.Investment, error) {
	var inv model.Investment
	var invType, status, method, start string
	var end sql.NullString
	err := row.Scan(
		&inv.ID,
		&inv.Name,
		&invType,
		&status,
		&inv.CurrencyCode,
		&inv.InitialAmount,
		&inv.CurrentAmount,
		&inv.PurchasePrice,
		&inv.SalvageValue,
		&inv.UsefulLife,
		&method,
		&inv.InterestRate,
		&start,
		&end,
		&inv.ProjectID,
	)
	if err != nil {
		return inv, err
	}
	inv.Type = model.InvestmentType(invType)
	inv.Status = model.InvestmentStatus(status)
	inv.DepreciationType = model.DepreciationMethod(method)
	if inv.StartDate, err = parseDate(start); err != nil {
		return inv, err
	}
	inv.EndDate, err = parseNullDate(end)
	return inv, err
}

func getInvestments(ctx context.Context, q queryable) ([]model.Investment, error) {
	rows, err := q.QueryContext(ctx, `SELECT `+investmentColumns+` FROM investments ORDER BY start_date, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query investments: %w", classify(err))
	}
	defer func() { _ = rows.Close() }()

	var investments []model.Investment
	for rows.Next() {
		inv, err := scanInvestment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan investment: %w", err)
		}
		investments = append(investments, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating investments: %w", err)
	}
	return investments, nil
}

func getInvestment(ctx context.Context, q queryable, id string) (*model.Investment, error) {
	inv, err := scanInvestment(q.QueryRowContext(ctx,
		`SELECT `+investmentColumns+` FROM investments WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err, "investment", id)
	}
	return &inv, nil
}
