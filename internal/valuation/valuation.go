// Package valuation values investments and aggregates net worth across
// currencies.
package valuation

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/Veraticus/runway/internal/depreciation"
	"github.com/Veraticus/runway/internal/fx"
	"github.com/Veraticus/runway/internal/model"
	"github.com/Veraticus/runway/internal/money"
)

// CurrentValue returns the value of an investment on asOf, in its own currency.
//
// Depreciable assets are worth their book value. Deposits with an interest rate
// accrue simple interest on the initial amount from the start date until asOf or
// the end date, whichever comes first. Everything else is worth its current
// amount, or its initial amount when no current amount is recorded.
func CurrentValue(inv *model.Investment, asOf time.Time) float64 {
	return NewHolding(inv).ValueOn(asOf)
}

// Holding is an investment prepared for repeated valuation. Its depreciation
// setup is checked once, so a series over many days reports a bad setup once.
type Holding struct {
	inv    *model.Investment
	params *depreciation.Params
}

// NewHolding prepares inv. An invalid depreciation setup is logged here and the
// holding is valued at its initial amount from then on.
func NewHolding(inv *model.Investment) Holding {
	h := Holding{inv: inv}
	if !inv.IsDepreciable() {
		return h
	}

	p, err := depreciation.ParamsFor(inv)
	if err == nil {
		_, err = depreciation.Calculate(p, p.StartDate)
	}
	if err != nil {
		slog.Warn("Invalid depreciation setup, valuing asset at initial amount",
			"investment_id", inv.ID,
			"error", err)
		return h
	}
	h.params = &p
	return h
}

// Holdings prepares every active investment.
func Holdings(investments []model.Investment) []Holding {
	var holdings []Holding
	for i := range investments {
		if investments[i].IsActive() {
			holdings = append(holdings, NewHolding(&investments[i]))
		}
	}
	return holdings
}

// Investment returns the prepared investment.
func (h Holding) Investment() *model.Investment {
	return h.inv
}

// Depreciation returns the validated depreciation setup of the holding, if any.
func (h Holding) Depreciation() (depreciation.Params, bool) {
	if h.params == nil {
		return depreciation.Params{}, false
	}
	return *h.params, true
}

// ValueOn returns the value of the holding on asOf, in its own currency.
func (h Holding) ValueOn(asOf time.Time) float64 {
	inv := h.inv
	switch {
	case h.params != nil:
		if r, err := depreciation.Calculate(*h.params, asOf); err == nil {
			return r.BookValue
		}
		return money.Float(inv.InitialAmount)

	case inv.IsDepreciable():
		return money.Float(inv.InitialAmount)

	case inv.Type == model.InvestmentTypeDeposit && inv.InterestRate.Valid:
		return DepositValue(inv, asOf)

	default:
		return money.FloatOr(inv.CurrentAmount, money.Float(inv.InitialAmount))
	}
}

// DepositValue accrues simple interest using 365-day years.
func DepositValue(inv *model.Investment, asOf time.Time) float64 {
	principal := money.Float(inv.InitialAmount)
	rate := money.FloatOr(inv.InterestRate, 0) / 100

	end := asOf
	if inv.EndDate != nil && inv.EndDate.Before(end) {
		end = *inv.EndDate
	}

	years := math.Max(0, model.DaysBetween(inv.StartDate, end)/depreciation.DaysPerYear)
	return principal + principal*rate*years
}

// NetWorth is a capital snapshot converted to a single currency.
type NetWorth struct {
	ByCurrency         map[string]float64 `json:"by_currency"`
	BaseCurrency       string             `json:"base_currency"`
	Cash               float64            `json:"cash"`
	Investments        float64            `json:"investments"`
	Assets             float64            `json:"assets"`
	Total              float64            `json:"total"`
	UsingFallbackRates bool               `json:"using_fallback_rates"`
}

// Aggregator sums accounts and investments into a net worth figure.
type Aggregator struct {
	converter fx.Converter
}

// NewAggregator creates an aggregator converting through converter.
func NewAggregator(converter fx.Converter) *Aggregator {
	return &Aggregator{converter: converter}
}

// NetWorth sums the cash accounts, the active financial investments and the book
// value of active fixed assets, each converted to base before summing.
//
// Account balances are taken from CurrentBalance; callers are expected to have
// resynchronized them. Investment and asset accounts are skipped because their
// value is already represented by the investments.
func (a *Aggregator) NetWorth(ctx context.Context, accounts []model.Account, investments []model.Investment, base string, asOf time.Time) NetWorth {
	base = money.NormalizeCode(base)
	nw := NetWorth{
		BaseCurrency: base,
		ByCurrency:   make(map[string]float64),
	}

	converter := fx.Pin(ctx, a.converter)
	convert := func(amount float64, currency string) float64 {
		converted, q := converter.Convert(ctx, amount, currency, base)
		if q.Fallback {
			nw.UsingFallbackRates = true
		}
		return converted
	}

	for _, acc := range accounts {
		if !acc.Type.IsCash() {
			continue
		}
		balance := money.Float(acc.CurrentBalance)
		nw.ByCurrency[money.NormalizeCode(acc.CurrencyCode)] += balance
		nw.Cash += convert(balance, acc.CurrencyCode)
	}

	for _, h := range Holdings(investments) {
		inv := h.Investment()
		value := h.ValueOn(asOf)
		nw.ByCurrency[money.NormalizeCode(inv.CurrencyCode)] += value
		if inv.Type == model.InvestmentTypeAsset {
			nw.Assets += convert(value, inv.CurrencyCode)
		} else {
			nw.Investments += convert(value, inv.CurrencyCode)
		}
	}

	nw.Total = nw.Cash + nw.Investments + nw.Assets
	return nw
}

// CapitalOn returns the value of every holding started on or before day,
// converted to base. The second result reports fallback rate usage.
func (a *Aggregator) CapitalOn(ctx context.Context, holdings []Holding, base string, day time.Time) (float64, bool) {
	var total float64
	var fallback bool
	day = model.Day(day)
	for _, h := range holdings {
		inv := h.Investment()
		if model.Day(inv.StartDate).After(day) {
			continue
		}
		converted, q := a.converter.Convert(ctx, h.ValueOn(day), inv.CurrencyCode, base)
		total += converted
		fallback = fallback || q.Fallback
	}
	return total, fallback
}
