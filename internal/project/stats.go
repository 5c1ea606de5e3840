// Package project computes profit and loss figures scoped to a single project.
package project

import (
	"context"

	"github.com/Veraticus/runway/internal/fx"
	"github.com/Veraticus/runway/internal/model"
	"github.com/Veraticus/runway/internal/money"
)

// Stats summarizes a project in the base currency.
//
// AmortizedDailyCost and ProjectDays are only set for trips and events with an end
// date. ROI is only set for earning projects with a positive cost, and
// BudgetUtilization only when the project has a positive budget.
type Stats struct {
	ROI                *float64 `json:"roi"`
	BudgetUtilization  *float64 `json:"budget_utilization"`
	AmortizedDailyCost *float64 `json:"amortized_daily_cost"`
	ProjectID          string   `json:"project_id"`
	BaseCurrency       string   `json:"base_currency"`
	Income             float64  `json:"income"`
	Expenses           float64  `json:"expenses"`
	Transfers          float64  `json:"transfers"`
	Depreciation       float64  `json:"depreciation"`
	NetResult          float64  `json:"net_result"`
	ProjectDays        int      `json:"project_days"`
	Transactions       int      `json:"transactions"`
	UsingFallbackRates bool     `json:"using_fallback_rates"`
}

// Calculator computes project statistics.
type Calculator struct {
	converter fx.Converter
}

// NewCalculator creates a calculator converting through converter.
func NewCalculator(converter fx.Converter) *Calculator {
	return &Calculator{converter: converter}
}

// Stats sums the transactions and investments linked to p. Entries belonging to
// other projects are ignored, so callers may pass unfiltered snapshots.
func (c *Calculator) Stats(ctx context.Context, p *model.Project, txs []model.Transaction, investments []model.Investment, base string) Stats {
	base = money.NormalizeCode(base)
	s := Stats{ProjectID: p.ID, BaseCurrency: base}

	converter := fx.Pin(ctx, c.converter)
	convert := func(amount float64, currency string) float64 {
		converted, q := converter.Convert(ctx, amount, currency, base)
		if q.Fallback {
			s.UsingFallbackRates = true
		}
		return converted
	}

	for i := range txs {
		tx := &txs[i]
		if tx.ProjectID != p.ID {
			continue
		}
		amount := convert(money.Float(tx.Amount), tx.CurrencyCode)
		switch tx.Type {
		case model.TransactionTypeIncome:
			s.Income += amount
		case model.TransactionTypeExpense:
			s.Expenses += amount
		case model.TransactionTypeTransfer:
			s.Transfers += amount
		default:
			continue
		}
		s.Transactions++
	}

	for i := range investments {
		inv := &investments[i]
		if inv.ProjectID != p.ID || inv.Type != model.InvestmentTypeAsset {
			continue
		}
		if !inv.PurchasePrice.Valid || !inv.CurrentAmount.Valid {
			continue
		}
		delta := money.Float(inv.PurchasePrice.Decimal) - money.Float(inv.CurrentAmount.Decimal)
		if delta > 0 {
			s.Depreciation += convert(delta, inv.CurrencyCode)
		}
	}

	s.NetResult = s.Income - s.Expenses - s.Depreciation

	if p.IsTimeBoxed() && p.EndDate != nil {
		s.ProjectDays = model.WholeDaysBetween(p.StartDate, *p.EndDate) + 1
		daily := s.Expenses / float64(s.ProjectDays)
		s.AmortizedDailyCost = &daily
	}

	if p.IsEarning() {
		if cost := s.Expenses + s.Depreciation; cost > 0 {
			roi := (s.Income - cost) / cost * 100
			s.ROI = &roi
		}
	}

	if budget := money.FloatOr(p.TotalBudget, 0); budget > 0 {
		if p.CurrencyCode != "" {
			budget = convert(budget, p.CurrencyCode)
		}
		if budget > 0 {
			used := s.Expenses / budget * 100
			s.BudgetUtilization = &used
		}
	}

	return s
}
