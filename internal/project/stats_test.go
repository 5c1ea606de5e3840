package project

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/runway/internal/fx"
	"github.com/Veraticus/runway/internal/model"
)

var start = time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

func dec(f float64) decimal.Decimal      { return decimal.NewFromFloat(f) }
func null(f float64) decimal.NullDecimal { return decimal.NewNullDecimal(decimal.NewFromFloat(f)) }

func calculator() *Calculator {
	return NewCalculator(fx.NewProvider(fx.FetcherFunc(func(context.Context) (map[string]float64, error) {
		return map[string]float64{"USD": 1, "EUR": 0.5}, nil
	}), nil))
}

func TestStats_Trip(t *testing.T) {
	end := start.AddDate(0, 0, 4)
	p := &model.Project{
		ID: "japan", Type: model.ProjectTypeTrip, StartDate: start, EndDate: &end,
		TotalBudget: null(500), CurrencyCode: "EUR",
	}
	txs := []model.Transaction{
		{ProjectID: "japan", Type: model.TransactionTypeExpense, Amount: dec(300), CurrencyCode: "USD"},
		{ProjectID: "japan", Type: model.TransactionTypeExpense, Amount: dec(100), CurrencyCode: "EUR"},
		{ProjectID: "japan", Type: model.TransactionTypeTransfer, Amount: dec(50), CurrencyCode: "USD"},
		{ProjectID: "japan", Type: model.TransactionTypeIncome, Amount: dec(20), CurrencyCode: "USD"},
		{ProjectID: "other", Type: model.TransactionTypeExpense, Amount: dec(9999), CurrencyCode: "USD"},
	}

	s := calculator().Stats(context.Background(), p, txs, nil, "USD")

	assert.Equal(t, "japan", s.ProjectID)
	assert.Equal(t, 4, s.Transactions)
	assert.InDelta(t, 500, s.Expenses, 1e-9)
	assert.InDelta(t, 20, s.Income, 1e-9)
	assert.InDelta(t, 50, s.Transfers, 1e-9)
	assert.InDelta(t, -480, s.NetResult, 1e-9)

	assert.Equal(t, 5, s.ProjectDays)
	require.NotNil(t, s.AmortizedDailyCost)
	assert.InDelta(t, 100, *s.AmortizedDailyCost, 1e-9)

	assert.Nil(t, s.ROI, "trips are not earning projects")

	require.NotNil(t, s.BudgetUtilization)
	assert.InDelta(t, 50, *s.BudgetUtilization, 1e-9, "500 EUR budget is 1000 USD")
	assert.False(t, s.UsingFallbackRates)
}

func TestStats_PartialDayRoundsUp(t *testing.T) {
	end := start.Add(36 * time.Hour)
	p := &model.Project{ID: "gig", Type: model.ProjectTypeEvent, StartDate: start, EndDate: &end}
	txs := []model.Transaction{
		{ProjectID: "gig", Type: model.TransactionTypeExpense, Amount: dec(90), CurrencyCode: "USD"},
	}

	s := calculator().Stats(context.Background(), p, txs, nil, "USD")
	assert.Equal(t, 3, s.ProjectDays)
	require.NotNil(t, s.AmortizedDailyCost)
	assert.InDelta(t, 30, *s.AmortizedDailyCost, 1e-9)
}

func TestStats_SideHustle(t *testing.T) {
	p := &model.Project{ID: "shop", Type: model.ProjectTypeSideHustle, StartDate: start}
	txs := []model.Transaction{
		{ProjectID: "shop", Type: model.TransactionTypeExpense, Amount: dec(100), CurrencyCode: "USD"},
		{ProjectID: "shop", Type: model.TransactionTypeIncome, Amount: dec(300), CurrencyCode: "USD"},
	}
	investments := []model.Investment{
		{ProjectID: "shop", Type: model.InvestmentTypeAsset, CurrencyCode: "USD", PurchasePrice: null(1000), CurrentAmount: null(900)},
		{ProjectID: "shop", Type: model.InvestmentTypeAsset, CurrencyCode: "USD", PurchasePrice: null(100), CurrentAmount: null(150)},
		{ProjectID: "shop", Type: model.InvestmentTypeAsset, CurrencyCode: "USD", PurchasePrice: null(500)},
		{ProjectID: "shop", Type: model.InvestmentTypeStock, CurrencyCode: "USD", PurchasePrice: null(500), CurrentAmount: null(1)},
		{ProjectID: "else", Type: model.InvestmentTypeAsset, CurrencyCode: "USD", PurchasePrice: null(500), CurrentAmount: null(1)},
	}

	s := calculator().Stats(context.Background(), p, txs, investments, "USD")

	assert.InDelta(t, 100, s.Depreciation, 1e-9)
	assert.InDelta(t, 100, s.NetResult, 1e-9)
	require.NotNil(t, s.ROI)
	assert.InDelta(t, 50, *s.ROI, 1e-9)
	assert.Nil(t, s.AmortizedDailyCost)
	assert.Zero(t, s.ProjectDays)
	assert.Nil(t, s.BudgetUtilization)
}

func TestStats_NoCostMeansNoROI(t *testing.T) {
	p := &model.Project{ID: "job", Type: model.ProjectTypeJob, StartDate: start, TotalBudget: null(0)}
	txs := []model.Transaction{
		{ProjectID: "job", Type: model.TransactionTypeIncome, Amount: dec(300), CurrencyCode: "USD"},
	}

	s := calculator().Stats(context.Background(), p, txs, nil, "USD")
	assert.Nil(t, s.ROI)
	assert.Nil(t, s.BudgetUtilization)
	assert.InDelta(t, 300, s.NetResult, 1e-9)
}

func TestStats_FallbackRates(t *testing.T) {
	p := &model.Project{ID: "x", Type: model.ProjectTypeOther, StartDate: start}
	txs := []model.Transaction{
		{ProjectID: "x", Type: model.TransactionTypeExpense, Amount: dec(92), CurrencyCode: "EUR"},
	}

	s := NewCalculator(fx.NewProvider(nil, nil)).Stats(context.Background(), p, txs, nil, "usd")
	assert.Equal(t, "USD", s.BaseCurrency)
	assert.True(t, s.UsingFallbackRates)
	assert.InDelta(t, 100, s.Expenses, 1e-9)
}

func TestStats_FailedFetchIsNotRetried(t *testing.T) {
	var calls int
	c := NewCalculator(fx.NewProvider(fx.FetcherFunc(func(context.Context) (map[string]float64, error) {
		calls++
		return nil, errors.New("service unavailable")
	}), nil))

	p := &model.Project{ID: "x", Type: model.ProjectTypeOther, StartDate: start}
	txs := []model.Transaction{
		{ProjectID: "x", Type: model.TransactionTypeExpense, Amount: dec(92), CurrencyCode: "EUR"},
		{ProjectID: "x", Type: model.TransactionTypeExpense, Amount: dec(72), CurrencyCode: "CNY"},
		{ProjectID: "x", Type: model.TransactionTypeIncome, Amount: dec(79), CurrencyCode: "GBP"},
	}

	s := c.Stats(context.Background(), p, txs, nil, "USD")
	assert.True(t, s.UsingFallbackRates)
	assert.InDelta(t, 110, s.Expenses, 1e-9)
	assert.InDelta(t, 100, s.Income, 1e-9)
	assert.Equal(t, 1, calls)
}
