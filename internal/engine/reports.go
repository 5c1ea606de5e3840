package engine

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/Veraticus/runway/internal/depreciation"
	"github.com/Veraticus/runway/internal/ledger"
	"github.com/Veraticus/runway/internal/metrics"
	"github.com/Veraticus/runway/internal/model"
	"github.com/Veraticus/runway/internal/money"
	"github.com/Veraticus/runway/internal/project"
	"github.com/Veraticus/runway/internal/service"
	"github.com/Veraticus/runway/internal/valuation"
)

// BalanceReport compares an account's cached balance with its recomputed one.
type BalanceReport struct {
	AccountID    string  `json:"account_id"`
	Name         string  `json:"name"`
	CurrencyCode string  `json:"currency_code"`
	Stored       float64 `json:"stored"`
	Computed     float64 `json:"computed"`
	InSync       bool    `json:"in_sync"`
}

// Balance recomputes a single account from its transactions.
func (e *Engine) Balance(ctx context.Context, accountID string) (BalanceReport, error) {
	acc, err := e.storage.GetAccount(ctx, accountID)
	if err != nil {
		return BalanceReport{}, err
	}
	txs, err := e.storage.GetTransactions(ctx, service.TransactionFilter{AccountID: accountID})
	if err != nil {
		return BalanceReport{}, fmt.Errorf("failed to load transactions: %w", err)
	}

	stored := money.Float(acc.CurrentBalance)
	computed := ledger.Balance(*acc, txs)
	return BalanceReport{
		AccountID:    acc.ID,
		Name:         acc.Name,
		CurrencyCode: acc.CurrencyCode,
		Stored:       stored,
		Computed:     computed,
		InSync:       math.Abs(stored-computed) <= ledger.Tolerance,
	}, nil
}

// Series builds the daily metrics series from start to end inclusive.
func (e *Engine) Series(ctx context.Context, start, end time.Time) (metrics.Series, error) {
	snap, err := e.Snapshot(ctx)
	if err != nil {
		return metrics.Series{}, err
	}
	return e.builder.Build(ctx, metrics.Input{
		Start:        start,
		End:          end,
		BaseCurrency: e.base,
		Transactions: snap.Transactions,
		Rules:        snap.Rules,
		Investments:  snap.Investments,
		Accounts:     snap.Accounts,
		Categories:   snap.Categories,
	})
}

// PnLReport is the monthly profit and loss over a range.
type PnLReport struct {
	BaseCurrency       string                 `json:"base_currency"`
	Months             []metrics.MonthlyPoint `json:"months"`
	UsingFallbackRates bool                   `json:"using_fallback_rates"`
}

// MonthlyPnL groups the daily series of a range by month.
func (e *Engine) MonthlyPnL(ctx context.Context, start, end time.Time) (PnLReport, error) {
	series, err := e.Series(ctx, start, end)
	if err != nil {
		return PnLReport{}, err
	}
	return PnLReport{
		BaseCurrency:       series.BaseCurrency,
		Months:             metrics.MonthlyPnL(series.Points),
		UsingFallbackRates: series.UsingFallbackRates,
	}, nil
}

// NetWorth values every account and investment on asOf.
func (e *Engine) NetWorth(ctx context.Context, asOf time.Time) (valuation.NetWorth, error) {
	snap, err := e.Snapshot(ctx)
	if err != nil {
		return valuation.NetWorth{}, err
	}
	return e.aggregator.NetWorth(ctx, snap.Accounts, snap.Investments, e.base, asOf), nil
}

// ProjectStats computes the profit and loss of one project.
func (e *Engine) ProjectStats(ctx context.Context, projectID string) (project.Stats, error) {
	p, err := e.storage.GetProject(ctx, projectID)
	if err != nil {
		return project.Stats{}, err
	}
	txs, err := e.storage.GetTransactions(ctx, service.TransactionFilter{ProjectID: projectID})
	if err != nil {
		return project.Stats{}, fmt.Errorf("failed to load transactions: %w", err)
	}
	investments, err := e.storage.GetInvestments(ctx)
	if err != nil {
		return project.Stats{}, fmt.Errorf("failed to load investments: %w", err)
	}
	return e.projects.Stats(ctx, p, txs, investments, e.base), nil
}

// DepreciationReport is the depreciation state of an asset with its yearly schedule.
type DepreciationReport struct {
	AsOf         time.Time                `json:"as_of"`
	InvestmentID string                   `json:"investment_id"`
	Name         string                   `json:"name"`
	CurrencyCode string                   `json:"currency_code"`
	Method       model.DepreciationMethod `json:"method"`
	Schedule     []depreciation.YearEnd   `json:"schedule"`
	Result       model.DepreciationResult `json:"result"`
}

// Depreciation reports an asset's book value on asOf. Investments that are not
// depreciable assets yield depreciation.ErrNotDepreciable.
func (e *Engine) Depreciation(ctx context.Context, investmentID string, asOf time.Time) (DepreciationReport, error) {
	inv, err := e.storage.GetInvestment(ctx, investmentID)
	if err != nil {
		return DepreciationReport{}, err
	}
	p, err := depreciation.ParamsFor(inv)
	if err != nil {
		return DepreciationReport{}, err
	}
	result, err := depreciation.Calculate(p, asOf)
	if err != nil {
		return DepreciationReport{}, fmt.Errorf("investment %s: %w", inv.ID, err)
	}
	schedule, err := depreciation.Schedule(p, 0)
	if err != nil {
		return DepreciationReport{}, fmt.Errorf("investment %s: %w", inv.ID, err)
	}
	return DepreciationReport{
		AsOf:         model.Day(asOf),
		InvestmentID: inv.ID,
		Name:         inv.Name,
		CurrencyCode: inv.CurrencyCode,
		Method:       p.Method,
		Schedule:     schedule,
		Result:       result,
	}, nil
}

// UpdateProject saves changes to a project owned by ownerID.
func (e *Engine) UpdateProject(ctx context.Context, ownerID string, p *model.Project) error {
	return e.storage.UpdateProject(ctx, ownerID, p)
}
