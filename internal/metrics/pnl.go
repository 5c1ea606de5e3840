package metrics

import "github.com/Veraticus/runway/internal/model"

// Cost returns the cost of a day. Cash burn excludes depreciation; amortized cost,
// used for profit and loss, includes it.
func Cost(p model.DailyMetricPoint, includeDepreciation bool) float64 {
	if includeDepreciation {
		return p.TotalDailyCost + p.DepreciationCost
	}
	return p.TotalDailyCost
}

// AverageCost returns the mean daily cost of the points.
func AverageCost(points []model.DailyMetricPoint, includeDepreciation bool) float64 {
	if len(points) == 0 {
		return 0
	}
	var total float64
	for _, p := range points {
		total += Cost(p, includeDepreciation)
	}
	return total / float64(len(points))
}

// BurnRate returns the mean daily cash burn over the trailing window days. A
// window of zero or larger than the series uses every point.
func BurnRate(points []model.DailyMetricPoint, window int) float64 {
	if window > 0 && window < len(points) {
		points = points[len(points)-window:]
	}
	return AverageCost(points, false)
}

// MonthlyPoint is the profit and loss of one calendar month.
type MonthlyPoint struct {
	Month         string  `json:"month"`
	Income        float64 `json:"income"`
	AmortizedCost float64 `json:"amortized_cost"`
	NetProfit     float64 `json:"net_profit"`
}

// MonthlyPnL groups a daily series by calendar month. Months appear in the order
// of the series.
func MonthlyPnL(points []model.DailyMetricPoint) []MonthlyPoint {
	var months []MonthlyPoint
	index := make(map[string]int)

	for _, p := range points {
		key := p.Date.Format("2006-01")
		i, ok := index[key]
		if !ok {
			i = len(months)
			index[key] = i
			months = append(months, MonthlyPoint{Month: key})
		}
		months[i].Income += p.Income
		months[i].AmortizedCost += Cost(p, true)
	}

	for i := range months {
		months[i].NetProfit = months[i].Income - months[i].AmortizedCost
	}
	return months
}
