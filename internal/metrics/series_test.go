package metrics

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/runway/internal/fx"
	"github.com/Veraticus/runway/internal/model"
)

func day(n int) time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n) }

func dec(f float64) decimal.Decimal      { return decimal.NewFromFloat(f) }
func null(f float64) decimal.NullDecimal { return decimal.NewNullDecimal(decimal.NewFromFloat(f)) }

func builder() *Builder {
	return NewBuilder(fx.NewProvider(fx.FetcherFunc(func(context.Context) (map[string]float64, error) {
		return map[string]float64{"USD": 1, "EUR": 0.5}, nil
	}), nil))
}

func TestBuild_CostsAndProfit(t *testing.T) {
	in := Input{
		Start:        day(0),
		End:          day(1),
		BaseCurrency: "USD",
		Accounts: []model.Account{
			{ID: "checking", Type: model.AccountTypeBank, CurrencyCode: "USD", InitialBalance: dec(1000)},
		},
		Transactions: []model.Transaction{
			{ID: "coffee", AccountID: "checking", Type: model.TransactionTypeExpense, Amount: dec(10), CurrencyCode: "USD", Date: day(0), CategoryID: "food"},
		},
		Rules: []model.RecurringRule{
			{ID: "music", Type: model.TransactionTypeExpense, Amount: dec(5), CurrencyCode: "USD", Frequency: model.FrequencyMonthly, StartDate: day(1), Active: true},
		},
		Categories: []model.Category{{ID: "food", Name: "Food"}},
	}

	series, err := builder().Build(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, series.Points, 2)

	assert.Equal(t, 10.0, series.Points[0].TotalDailyCost)
	assert.Equal(t, 5.0, series.Points[1].TotalDailyCost)
	assert.Equal(t, 10.0, series.Points[0].OrdinaryCost)
	assert.Equal(t, 5.0, series.Points[1].RecurringCost)

	for _, p := range series.Points {
		assert.Equal(t, p.Income-p.TotalDailyCost-p.DepreciationCost, p.NetProfit)
	}

	assert.Equal(t, 990.0, series.Points[0].CashLevel)
	assert.Equal(t, 990.0, series.Points[1].CashLevel)
	assert.Equal(t, 990.0, series.CashOnly)
	assert.InDelta(t, 7.5, series.AvgDailyBurn, 1e-9)
	assert.InDelta(t, 990/7.5/30, series.RunwayMonths, 1e-9)
	assert.False(t, series.RunwayInfinite)
	assert.False(t, series.UsingFallbackRates)
}

func TestBuild_ExpenseClassification(t *testing.T) {
	in := Input{
		Start:        day(0),
		End:          day(0),
		BaseCurrency: "USD",
		Categories: []model.Category{
			{ID: "dep", Name: "Depreciation", IsSystemGenerated: true},
			{ID: "salary", Name: "Salary"},
		},
		Transactions: []model.Transaction{
			{Type: model.TransactionTypeExpense, Amount: dec(40), CurrencyCode: "EUR", Date: day(0)},
			{Type: model.TransactionTypeExpense, Amount: dec(999), CurrencyCode: "USD", Date: day(0), CategoryID: "dep"},
			{Type: model.TransactionTypeExpense, Amount: dec(500), CurrencyCode: "USD", Date: day(0), InvestmentID: "laptop"},
			{Type: model.TransactionTypeExpense, Amount: dec(30), CurrencyCode: "USD", Date: day(0), ProjectID: "trip"},
			{Type: model.TransactionTypeIncome, Amount: dec(200), CurrencyCode: "USD", Date: day(0), CategoryID: "salary"},
			{Type: model.TransactionTypeIncome, Amount: dec(77), CurrencyCode: "USD", Date: day(0).Add(23 * time.Hour)},
			{Type: model.TransactionTypeTransfer, Amount: dec(1000), CurrencyCode: "USD", Date: day(0)},
			{Type: model.TransactionTypeExpense, Amount: dec(1), CurrencyCode: "USD", Date: day(1)},
		},
	}

	series, err := builder().Build(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, series.Points, 1)

	p := series.Points[0]
	assert.InDelta(t, 80, p.OrdinaryCost, 1e-9, "EUR expense converted at 2 USD/EUR")
	assert.InDelta(t, 30, p.ProjectCost, 1e-9)
	assert.InDelta(t, 277, p.Income, 1e-9)
	assert.InDelta(t, 110, p.TotalDailyCost, 1e-9)
}

func TestBuild_DepreciationIsNotCashBurn(t *testing.T) {
	in := Input{
		Start:        day(0),
		End:          day(2),
		BaseCurrency: "USD",
		Investments: []model.Investment{
			{
				ID: "car", Type: model.InvestmentTypeAsset, Status: model.InvestmentStatusActive,
				CurrencyCode: "USD", InitialAmount: dec(730), PurchasePrice: null(730), UsefulLife: null(2),
				DepreciationType: model.DepreciationStraightLine, StartDate: day(1),
			},
			{
				ID: "retired", Type: model.InvestmentTypeAsset, Status: model.InvestmentStatusSold,
				CurrencyCode: "USD", InitialAmount: dec(730), PurchasePrice: null(730), UsefulLife: null(2),
				DepreciationType: model.DepreciationStraightLine, StartDate: day(0),
			},
		},
	}

	series, err := builder().Build(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, series.Points, 3)

	assert.Zero(t, series.Points[0].DepreciationCost, "asset not yet acquired")
	assert.InDelta(t, 1, series.Points[1].DepreciationCost, 1e-9)
	assert.InDelta(t, 1, series.Points[2].DepreciationCost, 1e-9)

	for _, p := range series.Points {
		assert.Zero(t, p.TotalDailyCost)
		assert.InDelta(t, -p.DepreciationCost, p.NetProfit, 1e-9)
	}

	assert.Zero(t, series.Points[0].CapitalLevel)
	assert.InDelta(t, 730, series.Points[1].CapitalLevel, 1e-9)
	assert.InDelta(t, 729, series.Points[2].CapitalLevel, 1e-9)

	assert.Zero(t, series.AvgDailyBurn)
	assert.Zero(t, series.RunwayMonths)
	assert.True(t, series.RunwayInfinite)
	assert.False(t, math.IsNaN(series.RunwayMonths) || math.IsInf(series.RunwayMonths, 0))
}

func TestBuild_CashLevel(t *testing.T) {
	in := Input{
		Start:        day(1),
		End:          day(3),
		BaseCurrency: "USD",
		Accounts: []model.Account{
			{ID: "usd", Type: model.AccountTypeCash, CurrencyCode: "USD", InitialBalance: dec(100)},
			{ID: "eur", Type: model.AccountTypeBank, CurrencyCode: "EUR", InitialBalance: dec(50)},
			{ID: "broker", Type: model.AccountTypeInvestment, CurrencyCode: "USD", InitialBalance: dec(5000)},
		},
		Transactions: []model.Transaction{
			// Before the range: part of the opening balance.
			{AccountID: "usd", Type: model.TransactionTypeIncome, Amount: dec(20), CurrencyCode: "USD", Date: day(0)},
			// Cross-currency transfer between two cash accounts.
			{AccountID: "usd", TransferToAccountID: "eur", Type: model.TransactionTypeTransfer, Amount: dec(10), TargetAmount: null(5), CurrencyCode: "USD", Date: day(2)},
			// Money moved to the broker leaves cash.
			{AccountID: "usd", TransferToAccountID: "broker", Type: model.TransactionTypeTransfer, Amount: dec(30), CurrencyCode: "USD", Date: day(3)},
			// After the range: ignored.
			{AccountID: "usd", Type: model.TransactionTypeExpense, Amount: dec(1000), CurrencyCode: "USD", Date: day(9)},
		},
	}

	series, err := builder().Build(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, series.Points, 3)

	assert.InDelta(t, 220, series.Points[0].CashLevel, 1e-9)
	assert.InDelta(t, 220, series.Points[1].CashLevel, 1e-9)
	assert.InDelta(t, 190, series.Points[2].CashLevel, 1e-9)
	assert.InDelta(t, 190, series.CashOnly, 1e-9)
}

func TestBuild_FallbackRatesAreFlagged(t *testing.T) {
	in := Input{
		Start:        day(0),
		End:          day(0),
		BaseCurrency: "USD",
		Transactions: []model.Transaction{
			{Type: model.TransactionTypeExpense, Amount: dec(92), CurrencyCode: "EUR", Date: day(0)},
		},
	}

	series, err := NewBuilder(fx.NewProvider(nil, nil)).Build(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, series.UsingFallbackRates)
	assert.InDelta(t, 100, series.Points[0].OrdinaryCost, 1e-9)
}

func TestBuild_InvalidRange(t *testing.T) {
	_, err := builder().Build(context.Background(), Input{Start: day(2), End: day(1)})
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestRunway_Empty(t *testing.T) {
	cash, burn, months, infinite := Runway(nil)
	assert.Zero(t, cash)
	assert.Zero(t, burn)
	assert.Zero(t, months)
	assert.True(t, infinite)
}

func TestBuild_FailedFetchIsNotRetried(t *testing.T) {
	var calls int
	b := NewBuilder(fx.NewProvider(fx.FetcherFunc(func(context.Context) (map[string]float64, error) {
		calls++
		return nil, errors.New("i/o timeout")
	}), nil))

	in := Input{
		Start:        day(0),
		End:          day(29),
		BaseCurrency: "USD",
		Accounts: []model.Account{
			{ID: "giro", Type: model.AccountTypeBank, CurrencyCode: "EUR", InitialBalance: dec(920)},
		},
		Investments: []model.Investment{
			{ID: "etf", Type: model.InvestmentTypeStock, Status: model.InvestmentStatusActive, CurrencyCode: "EUR", InitialAmount: dec(92), StartDate: day(0)},
		},
		Transactions: []model.Transaction{
			{AccountID: "giro", Type: model.TransactionTypeExpense, Amount: dec(9.2), CurrencyCode: "EUR", Date: day(3)},
		},
		Rules: []model.RecurringRule{
			{ID: "rent", Type: model.TransactionTypeExpense, Amount: dec(1), CurrencyCode: "EUR", Frequency: model.FrequencyDaily, Interval: 1, StartDate: day(0), Active: true},
		},
	}

	series, err := b.Build(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, series.Points, 30)
	assert.True(t, series.UsingFallbackRates)
	assert.Equal(t, 1, calls)
	assert.InDelta(t, 1000+100, series.Points[0].CapitalLevel, 1e-9)
}

func TestBuild_SystemCategoriesOnlyHideOrdinaryFlows(t *testing.T) {
	in := Input{
		Start:        day(0),
		End:          day(0),
		BaseCurrency: "USD",
		Categories: []model.Category{
			{ID: "internal", Name: "Investment purchase", IsSystemGenerated: true},
		},
		Transactions: []model.Transaction{
			{Type: model.TransactionTypeExpense, Amount: dec(400), CurrencyCode: "USD", Date: day(0), CategoryID: "internal"},
			{Type: model.TransactionTypeIncome, Amount: dec(300), CurrencyCode: "USD", Date: day(0), CategoryID: "internal"},
			{Type: model.TransactionTypeExpense, Amount: dec(25), CurrencyCode: "USD", Date: day(0), CategoryID: "internal", ProjectID: "trip"},
		},
	}

	series, err := builder().Build(context.Background(), in)
	require.NoError(t, err)

	p := series.Points[0]
	assert.Zero(t, p.OrdinaryCost)
	assert.Zero(t, p.Income)
	assert.InDelta(t, 25, p.ProjectCost, 1e-9, "project spending counts in any category")
	assert.InDelta(t, 25, p.TotalDailyCost, 1e-9)
}
