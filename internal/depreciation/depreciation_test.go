package depreciation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/runway/internal/model"
)

var start = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

func days(n int) time.Time { return start.AddDate(0, 0, n) }

func TestCalculate_StraightLine(t *testing.T) {
	p := Params{
		PurchasePrice:   1200,
		SalvageValue:    0,
		UsefulLifeYears: 2,
		Method:          model.DepreciationStraightLine,
		StartDate:       start,
	}

	t.Run("one year in", func(t *testing.T) {
		r, err := Calculate(p, days(365))
		require.NoError(t, err)
		assert.InDelta(t, 600, r.AccumulatedDepreciation, 1e-9)
		assert.InDelta(t, 600, r.BookValue, 1e-9)
		assert.InDelta(t, 600, r.AnnualDepreciation, 1e-9)
		assert.InDelta(t, 600.0/365, r.DailyDepreciation, 1e-9)
		assert.InDelta(t, 1, r.RemainingLife, 1e-9)
	})

	t.Run("on start date nothing is depreciated", func(t *testing.T) {
		r, err := Calculate(p, start)
		require.NoError(t, err)
		assert.InDelta(t, 0, r.AccumulatedDepreciation, 1e-9)
		assert.InDelta(t, 1200, r.BookValue, 1e-9)
		assert.InDelta(t, 2, r.RemainingLife, 1e-9)
	})

	t.Run("past useful life book value is salvage", func(t *testing.T) {
		withSalvage := p
		withSalvage.SalvageValue = 200
		for _, n := range []int{730, 731, 2000} {
			r, err := Calculate(withSalvage, days(n))
			require.NoError(t, err)
			assert.InDelta(t, 200, r.BookValue, 1e-9, "day %d", n)
			assert.InDelta(t, 1000, r.AccumulatedDepreciation, 1e-9, "day %d", n)
			assert.Zero(t, r.RemainingLife, "day %d", n)
		}
	})

	t.Run("partial day counts as a whole day", func(t *testing.T) {
		r, err := Calculate(p, start.Add(36*time.Hour))
		require.NoError(t, err)
		assert.InDelta(t, 2*1200.0/730, r.AccumulatedDepreciation, 1e-9)
	})
}

func TestCalculate_DecliningBalance(t *testing.T) {
	p := Params{
		PurchasePrice:   1000,
		SalvageValue:    100,
		UsefulLifeYears: 5,
		Method:          model.DepreciationDecliningBalance,
		StartDate:       start,
	}

	t.Run("first year charges twice the straight-line rate", func(t *testing.T) {
		r, err := Calculate(p, days(365))
		require.NoError(t, err)
		assert.InDelta(t, 400, r.AccumulatedDepreciation, 1e-9)
		assert.InDelta(t, 600, r.BookValue, 1e-9)
		assert.InDelta(t, 4, r.RemainingLife, 1e-9)
		assert.InDelta(t, 240, r.AnnualDepreciation, 1e-9)
		assert.InDelta(t, 240.0/365, r.DailyDepreciation, 1e-9)
	})

	t.Run("fractional year is prorated", func(t *testing.T) {
		r, err := Calculate(p, days(365+73))
		require.NoError(t, err)
		// 600 * 0.4 * 0.2 = 48
		assert.InDelta(t, 552, r.BookValue, 1e-9)
	})

	t.Run("salvage floor stops the loop", func(t *testing.T) {
		r, err := Calculate(p, days(365*10))
		require.NoError(t, err)
		assert.InDelta(t, 100, r.BookValue, 1e-9)
		assert.InDelta(t, 900, r.AccumulatedDepreciation, 1e-9)
		assert.Zero(t, r.RemainingLife)
		assert.Zero(t, r.DailyDepreciation)
		assert.Zero(t, r.AnnualDepreciation)
	})

	t.Run("short life never overshoots salvage", func(t *testing.T) {
		short := p
		short.UsefulLifeYears = 1
		r, err := Calculate(short, days(200))
		require.NoError(t, err)
		assert.GreaterOrEqual(t, r.BookValue, short.SalvageValue)
	})

	t.Run("annual charge is capped at book less salvage", func(t *testing.T) {
		high := p
		high.SalvageValue = 400
		r, err := Calculate(high, days(365))
		require.NoError(t, err)
		assert.InDelta(t, 600, r.BookValue, 1e-9)
		assert.InDelta(t, 4, r.RemainingLife, 1e-9)
		// book * rate would be 240, which would carry the book below salvage.
		assert.InDelta(t, 200, r.AnnualDepreciation, 1e-9)
		assert.InDelta(t, 200.0/365, r.DailyDepreciation, 1e-9)
	})
}

func TestCalculate_BookValueMonotoneAndBounded(t *testing.T) {
	for _, method := range []model.DepreciationMethod{model.DepreciationStraightLine, model.DepreciationDecliningBalance} {
		t.Run(string(method), func(t *testing.T) {
			p := Params{
				PurchasePrice:   5000,
				SalvageValue:    500,
				UsefulLifeYears: 3,
				Method:          method,
				StartDate:       start,
			}

			previous := p.PurchasePrice
			for n := 0; n <= 365*5; n += 7 {
				r, err := Calculate(p, days(n))
				require.NoError(t, err)
				assert.LessOrEqual(t, r.BookValue, previous+1e-9, "day %d", n)
				assert.GreaterOrEqual(t, r.BookValue, p.SalvageValue-1e-9, "day %d", n)
				assert.LessOrEqual(t, r.BookValue, p.PurchasePrice+1e-9, "day %d", n)
				assert.GreaterOrEqual(t, r.AccumulatedDepreciation, 0.0, "day %d", n)
				assert.LessOrEqual(t, r.AccumulatedDepreciation, p.PurchasePrice-p.SalvageValue+1e-9, "day %d", n)
				previous = r.BookValue
			}
		})
	}
}

func TestCalculate_Preconditions(t *testing.T) {
	base := Params{PurchasePrice: 100, UsefulLifeYears: 1, Method: model.DepreciationStraightLine, StartDate: start}

	tests := []struct {
		mutate func(*Params)
		want   error
		name   string
	}{
		{name: "zero useful life", mutate: func(p *Params) { p.UsefulLifeYears = 0 }, want: ErrInvalidUsefulLife},
		{name: "negative useful life", mutate: func(p *Params) { p.UsefulLifeYears = -2 }, want: ErrInvalidUsefulLife},
		{name: "salvage above price", mutate: func(p *Params) { p.SalvageValue = 150 }, want: ErrInvalidSalvage},
		{name: "unknown method", mutate: func(p *Params) { p.Method = "SUM_OF_YEARS" }, want: ErrUnknownMethod},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base
			tt.mutate(&p)
			_, err := Calculate(p, days(10))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDaily(t *testing.T) {
	p := Params{PurchasePrice: 730, UsefulLifeYears: 2, Method: model.DepreciationStraightLine, StartDate: start}

	before, err := Daily(p, days(-1))
	require.NoError(t, err)
	assert.Zero(t, before)

	during, err := Daily(p, days(100))
	require.NoError(t, err)
	assert.InDelta(t, 1, during, 1e-9)

	after, err := Daily(p, days(730))
	require.NoError(t, err)
	assert.Zero(t, after)
}

func TestParamsFor(t *testing.T) {
	inv := &model.Investment{
		ID:               "laptop",
		Type:             model.InvestmentTypeAsset,
		PurchasePrice:    decimal.NewNullDecimal(decimal.NewFromInt(2000)),
		UsefulLife:       decimal.NewNullDecimal(decimal.NewFromInt(4)),
		DepreciationType: model.DepreciationStraightLine,
		StartDate:        start,
	}

	p, err := ParamsFor(inv)
	require.NoError(t, err)
	assert.Equal(t, 2000.0, p.PurchasePrice)
	assert.Zero(t, p.SalvageValue)
	assert.Equal(t, 4.0, p.UsefulLifeYears)

	inv.DepreciationType = ""
	_, err = ParamsFor(inv)
	assert.ErrorIs(t, err, ErrNotDepreciable)
}

func TestSchedule(t *testing.T) {
	p := Params{PurchasePrice: 1000, SalvageValue: 100, UsefulLifeYears: 5, Method: model.DepreciationDecliningBalance, StartDate: start}

	schedule, err := Schedule(p, 0)
	require.NoError(t, err)
	require.Len(t, schedule, 5)

	assert.InDelta(t, 400, schedule[0].Depreciation, 1e-9)
	assert.InDelta(t, 240, schedule[1].Depreciation, 1e-9)
	assert.InDelta(t, 144, schedule[2].Depreciation, 1e-9)
	for _, y := range schedule {
		assert.GreaterOrEqual(t, y.BookValue, 100.0)
	}
}
