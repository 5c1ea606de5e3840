package model

import "time"

// DailyMetricPoint holds the derived figures of a single calendar day, in base currency.
//
// TotalDailyCost is the cash burn of the day and excludes depreciation, which is a
// non-cash cost reported separately in DepreciationCost.
type DailyMetricPoint struct {
	Date             time.Time `json:"date"`
	Income           float64   `json:"income"`
	OrdinaryCost     float64   `json:"ordinary_cost"`
	RecurringCost    float64   `json:"recurring_cost"`
	DepreciationCost float64   `json:"depreciation_cost"`
	ProjectCost      float64   `json:"project_cost"`
	TotalDailyCost   float64   `json:"total_daily_cost"`
	NetProfit        float64   `json:"net_profit"`
	CashLevel        float64   `json:"cash_level"`
	CapitalLevel     float64   `json:"capital_level"`
}
