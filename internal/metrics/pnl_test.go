package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/runway/internal/model"
)

func TestCost(t *testing.T) {
	p := model.DailyMetricPoint{TotalDailyCost: 12, DepreciationCost: 3}
	assert.Equal(t, 12.0, Cost(p, false))
	assert.Equal(t, 15.0, Cost(p, true))
}

func TestBurnRate(t *testing.T) {
	points := []model.DailyMetricPoint{
		{TotalDailyCost: 100, DepreciationCost: 50},
		{TotalDailyCost: 10},
		{TotalDailyCost: 20},
	}

	assert.InDelta(t, 130.0/3, BurnRate(points, 0), 1e-9)
	assert.InDelta(t, 15, BurnRate(points, 2), 1e-9)
	assert.InDelta(t, 130.0/3, BurnRate(points, 10), 1e-9)
	assert.Zero(t, BurnRate(nil, 7))
}

func TestMonthlyPnL(t *testing.T) {
	may := time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC)
	points := []model.DailyMetricPoint{
		{Date: may, Income: 100, TotalDailyCost: 40, DepreciationCost: 10},
		{Date: may.AddDate(0, 0, 1), Income: 0, TotalDailyCost: 5, DepreciationCost: 10},
		{Date: may.AddDate(0, 0, 2), Income: 30, TotalDailyCost: 0, DepreciationCost: 10},
	}

	months := MonthlyPnL(points)
	require.Len(t, months, 2)

	assert.Equal(t, "2024-05", months[0].Month)
	assert.InDelta(t, 100, months[0].Income, 1e-9)
	assert.InDelta(t, 50, months[0].AmortizedCost, 1e-9)
	assert.InDelta(t, 50, months[0].NetProfit, 1e-9)

	assert.Equal(t, "2024-06", months[1].Month)
	assert.InDelta(t, 30, months[1].Income, 1e-9)
	assert.InDelta(t, 25, months[1].AmortizedCost, 1e-9)
	assert.InDelta(t, 5, months[1].NetProfit, 1e-9)
}

func TestMonthlyPnL_Empty(t *testing.T) {
	assert.Empty(t, MonthlyPnL(nil))
}
