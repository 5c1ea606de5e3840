package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Frequency is the period unit of a recurring rule.
type Frequency string

// Frequency constants.
const (
	FrequencyDaily   Frequency = "DAILY"
	FrequencyWeekly  Frequency = "WEEKLY"
	FrequencyMonthly Frequency = "MONTHLY"
	FrequencyYearly  Frequency = "YEARLY"
)

// RecurringRule describes a scheduled income or expense such as rent or a subscription.
type RecurringRule struct {
	StartDate    time.Time
	EndDate      *time.Time
	Amount       decimal.Decimal
	ID           string
	Name         string
	CurrencyCode string
	AccountID    string
	CategoryID   string
	Type         TransactionType
	Frequency    Frequency
	Interval     int
	Active       bool
}

// OccursOn reports whether the rule is scheduled on the given calendar day.
//
// Monthly and yearly rules anchored on a day missing from a month (the 31st, or
// February 29th) fall on the last day of that month.
func (r *RecurringRule) OccursOn(day time.Time) bool {
	if !r.Active {
		return false
	}

	day = Day(day)
	start := Day(r.StartDate)
	if day.Before(start) {
		return false
	}
	if r.EndDate != nil && day.After(Day(*r.EndDate)) {
		return false
	}

	interval := r.Interval
	if interval < 1 {
		interval = 1
	}

	switch r.Frequency {
	case FrequencyDaily:
		return WholeDaysBetween(start, day)%interval == 0
	case FrequencyWeekly:
		return WholeDaysBetween(start, day)%(7*interval) == 0
	case FrequencyMonthly:
		months := (day.Year()-start.Year())*12 + int(day.Month()-start.Month())
		if months%interval != 0 {
			return false
		}
		return day.Day() == anchorDay(start.Day(), day.Year(), day.Month())
	case FrequencyYearly:
		years := day.Year() - start.Year()
		if years%interval != 0 || day.Month() != start.Month() {
			return false
		}
		return day.Day() == anchorDay(start.Day(), day.Year(), day.Month())
	default:
		return false
	}
}

func anchorDay(day, year int, month time.Month) int {
	return min(day, lastDayOfMonth(year, month))
}
