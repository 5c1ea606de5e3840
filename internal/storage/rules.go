package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Veraticus/runway/internal/model"
)

func saveRecurringRules(ctx context.Context, q queryable, rules []model.RecurringRule) error {
	for i := range rules {
		r := &rules[i]
		interval := r.Interval
		if interval < 1 {
			interval = 1
		}
		_, err := q.ExecContext(ctx, `
			INSERT OR REPLACE INTO recurring_rules (
				id, name, type, amount, currency_code, frequency, repeat_interval,
				start_date, end_date, active, account_id, category_id
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, r.Name, string(r.Type), r.Amount.String(), r.CurrencyCode,
			string(r.Frequency), interval, formatDate(r.StartDate), formatNullDate(r.EndDate),
			r.Active, r.AccountID, r.CategoryID,
		)
		if err != nil {
			return fmt.Errorf("failed to save recurring rule %s: %w", r.ID, classify(err))
		}
	}
	return nil
}

func getRecurringRules(ctx context.Context, q queryable) ([]model.RecurringRule, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, name, type, amount, currency_code, frequency, repeat_interval,
		       start_date, end_date, active, account_id, category_id
		FROM recurring_rules
		ORDER BY start_date, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query recurring rules: %w", classify(err))
	}
	defer func() { _ = rows.Close() }()

	var rules []model.RecurringRule
	for rows.Next() {
		var r model.RecurringRule
		var ruleType, frequency, start string
		var end sql.NullString
		if err := rows.Scan(&r.ID, &r.Name, &ruleType, &r.Amount, &r.CurrencyCode, &frequency,
			&r.Interval, &start, &end, &r.Active, &r.AccountID, &r.CategoryID); err != nil {
			return nil, fmt.Errorf("failed to scan recurring rule: %w", err)
		}
		r.Type = model.TransactionType(ruleType)
		r.Frequency = model.Frequency(frequency)
		if r.StartDate, err = parseDate(start); err != nil {
			return nil, err
		}
		if r.EndDate, err = parseNullDate(end); err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating recurring rules: %w", err)
	}
	return rules, nil
}
