// Package metrics builds the daily income, cost, cash and capital series used by
// reports, and derives burn rate and runway from it.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/runway/internal/depreciation"
	"github.com/Veraticus/runway/internal/fx"
	"github.com/Veraticus/runway/internal/ledger"
	"github.com/Veraticus/runway/internal/model"
	"github.com/Veraticus/runway/internal/money"
	"github.com/Veraticus/runway/internal/valuation"
)

// DaysPerMonth converts a daily runway into months.
const DaysPerMonth = 30.0

// ErrInvalidRange is returned when the end of a range precedes its start.
var ErrInvalidRange = errors.New("end date is before start date")

// Input is the snapshot a series is computed from.
type Input struct {
	Start        time.Time
	End          time.Time
	BaseCurrency string
	Transactions []model.Transaction
	Rules        []model.RecurringRule
	Investments  []model.Investment
	Accounts     []model.Account
	Categories   []model.Category
}

// Series is the per-day breakdown of a date range with its KPIs.
//
// When AvgDailyBurn is zero RunwayMonths is 0 and RunwayInfinite is set, so no
// NaN or Inf ever reaches a consumer.
type Series struct {
	BaseCurrency       string                   `json:"base_currency"`
	Points             []model.DailyMetricPoint `json:"points"`
	CashOnly           float64                  `json:"cash_only"`
	AvgDailyBurn       float64                  `json:"avg_daily_burn"`
	RunwayMonths       float64                  `json:"runway_months"`
	RunwayInfinite     bool                     `json:"runway_infinite"`
	UsingFallbackRates bool                     `json:"using_fallback_rates"`
}

// Builder computes daily series.
type Builder struct {
	converter fx.Converter
}

// NewBuilder creates a builder converting through converter.
func NewBuilder(converter fx.Converter) *Builder {
	return &Builder{converter: converter}
}

// daily accumulates the transaction-driven figures of one day.
type daily struct {
	income      float64
	ordinary    float64
	project     float64
	cashChanges float64
}

// Build returns one point per calendar day from in.Start to in.End inclusive.
// Rates are resolved once for the whole series.
func (b *Builder) Build(ctx context.Context, in Input) (Series, error) {
	start, end := model.Day(in.Start), model.Day(in.End)
	if end.Before(start) {
		return Series{}, fmt.Errorf("%w: %s > %s", ErrInvalidRange, start.Format(model.DateFormat), end.Format(model.DateFormat))
	}

	base := money.NormalizeCode(in.BaseCurrency)
	series := Series{BaseCurrency: base}

	converter := fx.Pin(ctx, b.converter)
	aggregator := valuation.NewAggregator(converter)
	convert := func(amount float64, currency string) float64 {
		converted, q := converter.Convert(ctx, amount, currency, base)
		if q.Fallback {
			series.UsingFallbackRates = true
		}
		return converted
	}

	categories := model.NewCategoryIndex(in.Categories)

	cashAccounts := make(map[string]model.Account)
	for _, acc := range in.Accounts {
		if acc.Type.IsCash() {
			cashAccounts[acc.ID] = acc
		}
	}

	// Opening cash is every cash account replayed up to the day before the range.
	var cash float64
	grouped := ledger.GroupByAccount(in.Transactions)
	opening := start.AddDate(0, 0, -1)
	for id, acc := range cashAccounts {
		cash += convert(ledger.BalanceAsOf(acc, grouped[id], opening), acc.CurrencyCode)
	}

	days := make(map[time.Time]*daily)
	bucket := func(d time.Time) *daily {
		if days[d] == nil {
			days[d] = &daily{}
		}
		return days[d]
	}

	for i := range in.Transactions {
		tx := &in.Transactions[i]
		d := model.Day(tx.Date)
		if d.Before(start) || d.After(end) {
			continue
		}
		bucket(d).cashChanges += b.cashEffect(tx, cashAccounts, convert)

		// System categories book internal movements, which are neither
		// income nor ordinary cost. Project spending counts regardless.
		system := categories.IsSystem(tx.CategoryID)
		switch tx.Type {
		case model.TransactionTypeIncome:
			if !system {
				bucket(d).income += convert(money.Float(tx.Amount), tx.CurrencyCode)
			}
		case model.TransactionTypeExpense:
			switch {
			case tx.ProjectID != "":
				bucket(d).project += convert(money.Float(tx.Amount), tx.CurrencyCode)
			case tx.InvestmentID == "" && !system:
				bucket(d).ordinary += convert(money.Float(tx.Amount), tx.CurrencyCode)
			}
		}
	}

	holdings := valuation.Holdings(in.Investments)
	assets := depreciableAssets(holdings)

	for _, d := range model.DaysInRange(start, end) {
		if err := ctx.Err(); err != nil {
			return Series{}, err
		}

		p := model.DailyMetricPoint{Date: d}
		if dd := days[d]; dd != nil {
			p.Income = dd.income
			p.OrdinaryCost = dd.ordinary
			p.ProjectCost = dd.project
			cash += dd.cashChanges
		}

		for i := range in.Rules {
			rule := &in.Rules[i]
			if rule.Type == model.TransactionTypeExpense && rule.OccursOn(d) {
				p.RecurringCost += convert(money.Float(rule.Amount), rule.CurrencyCode)
			}
		}

		for _, a := range assets {
			dep, err := depreciation.Daily(a.params, d)
			if err != nil {
				continue
			}
			p.DepreciationCost += convert(dep, a.currency)
		}

		p.TotalDailyCost = p.OrdinaryCost + p.RecurringCost + p.ProjectCost
		p.NetProfit = p.Income - p.TotalDailyCost - p.DepreciationCost
		p.CashLevel = cash

		capital, fallback := aggregator.CapitalOn(ctx, holdings, base, d)
		if fallback {
			series.UsingFallbackRates = true
		}
		p.CapitalLevel = cash + capital

		series.Points = append(series.Points, p)
	}

	series.CashOnly, series.AvgDailyBurn, series.RunwayMonths, series.RunwayInfinite = Runway(series.Points)
	return series, nil
}

// cashEffect returns the converted change a transaction causes across all cash accounts.
func (b *Builder) cashEffect(tx *model.Transaction, cashAccounts map[string]model.Account, convert func(float64, string) float64) float64 {
	var total float64
	if acc, ok := cashAccounts[tx.AccountID]; ok {
		total += convert(ledger.Effect(acc.ID, tx), acc.CurrencyCode)
	}
	if tx.TransferToAccountID != tx.AccountID {
		if acc, ok := cashAccounts[tx.TransferToAccountID]; ok {
			total += convert(ledger.Effect(acc.ID, tx), acc.CurrencyCode)
		}
	}
	return total
}

type asset struct {
	params   depreciation.Params
	currency string
}

func depreciableAssets(holdings []valuation.Holding) []asset {
	var assets []asset
	for _, h := range holdings {
		if p, ok := h.Depreciation(); ok {
			assets = append(assets, asset{params: p, currency: h.Investment().CurrencyCode})
		}
	}
	return assets
}

// Runway derives the cash KPIs from a series: the cash of the last day, the mean
// daily cash burn and the months of runway left at that burn. With no burn the
// runway is 0 and infinite is true.
func Runway(points []model.DailyMetricPoint) (cashOnly, avgDailyBurn, months float64, infinite bool) {
	if len(points) == 0 {
		return 0, 0, 0, true
	}

	cashOnly = points[len(points)-1].CashLevel
	avgDailyBurn = AverageCost(points, false)
	if avgDailyBurn <= 0 {
		return cashOnly, avgDailyBurn, 0, true
	}
	return cashOnly, avgDailyBurn, cashOnly / avgDailyBurn / DaysPerMonth, false
}
