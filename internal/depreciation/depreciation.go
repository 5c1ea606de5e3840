// Package depreciation computes the book value of fixed assets over time.
package depreciation

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/Veraticus/runway/internal/model"
	"github.com/Veraticus/runway/internal/money"
)

// DaysPerYear is the year length used by every schedule.
const DaysPerYear = 365.0

// Precondition errors. These indicate a programming or data-entry mistake and are
// never mapped to a zero result.
var (
	ErrInvalidUsefulLife = errors.New("useful life must be positive")
	ErrInvalidSalvage    = errors.New("salvage value must be between zero and purchase price")
	ErrUnknownMethod     = errors.New("unknown depreciation method")
	ErrNotDepreciable    = errors.New("investment is not a depreciable asset")
)

// Params describes a depreciable asset.
type Params struct {
	StartDate       time.Time
	Method          model.DepreciationMethod
	PurchasePrice   float64
	SalvageValue    float64
	UsefulLifeYears float64
}

// ParamsFor extracts the depreciation parameters of an investment.
// A missing salvage value counts as zero.
func ParamsFor(inv *model.Investment) (Params, error) {
	if !inv.IsDepreciable() {
		return Params{}, fmt.Errorf("%w: %s", ErrNotDepreciable, inv.ID)
	}
	return Params{
		PurchasePrice:   money.FloatOr(inv.PurchasePrice, 0),
		SalvageValue:    money.FloatOr(inv.SalvageValue, 0),
		UsefulLifeYears: money.FloatOr(inv.UsefulLife, 0),
		Method:          inv.DepreciationType,
		StartDate:       inv.StartDate,
	}, nil
}

func (p Params) validate() error {
	if p.UsefulLifeYears <= 0 || math.IsNaN(p.UsefulLifeYears) {
		return fmt.Errorf("%w: got %v", ErrInvalidUsefulLife, p.UsefulLifeYears)
	}
	if p.SalvageValue < 0 || p.SalvageValue > p.PurchasePrice {
		return fmt.Errorf("%w: salvage %v, price %v", ErrInvalidSalvage, p.SalvageValue, p.PurchasePrice)
	}
	return nil
}

// Calculate returns the depreciation state of the asset on asOf.
func Calculate(p Params, asOf time.Time) (model.DepreciationResult, error) {
	if err := p.validate(); err != nil {
		return model.DepreciationResult{}, err
	}

	days := float64(model.WholeDaysBetween(p.StartDate, asOf))

	switch p.Method {
	case model.DepreciationStraightLine:
		return straightLine(p, days), nil
	case model.DepreciationDecliningBalance:
		return decliningBalance(p, days), nil
	default:
		return model.DepreciationResult{}, fmt.Errorf("%w: %q", ErrUnknownMethod, p.Method)
	}
}

// CalculateToday returns the depreciation state of the asset today.
func CalculateToday(p Params) (model.DepreciationResult, error) {
	return Calculate(p, model.Today())
}

// Daily returns the depreciation charged on a given day, which is zero outside the
// asset's useful life.
func Daily(p Params, day time.Time) (float64, error) {
	start := model.Day(p.StartDate)
	day = model.Day(day)
	if day.Before(start) {
		return 0, p.validate()
	}
	r, err := Calculate(p, day)
	if err != nil {
		return 0, err
	}
	if r.RemainingLife <= 0 {
		return 0, nil
	}
	return r.DailyDepreciation, nil
}

func straightLine(p Params, days float64) model.DepreciationResult {
	depreciable := p.PurchasePrice - p.SalvageValue
	annual := depreciable / p.UsefulLifeYears
	daily := annual / DaysPerYear

	accumulated := math.Min(days*daily, depreciable)
	book := math.Max(p.PurchasePrice-accumulated, p.SalvageValue)
	remaining := math.Max(0, p.UsefulLifeYears*DaysPerYear-days) / DaysPerYear

	return model.DepreciationResult{
		BookValue:               book,
		AccumulatedDepreciation: accumulated,
		RemainingLife:           remaining,
		DailyDepreciation:       daily,
		AnnualDepreciation:      annual,
	}
}

// decliningBalance applies double-declining depreciation year by year. The loop
// is kept instead of a closed-form power because the salvage floor can stop it
// mid-way, where the two diverge.
func decliningBalance(p Params, days float64) model.DepreciationResult {
	rate := 2 / p.UsefulLifeYears
	years := days / DaysPerYear

	book := p.PurchasePrice
	accumulated := 0.0

	whole := int(math.Floor(years))
	for i := 0; i < whole && book > p.SalvageValue; i++ {
		dep := math.Min(book*rate, book-p.SalvageValue)
		book -= dep
		accumulated += dep
	}

	if frac := years - float64(whole); frac > 0 && book > p.SalvageValue {
		dep := math.Min(book*rate*frac, book-p.SalvageValue)
		book -= dep
		accumulated += dep
	}

	book = clamp(book, p.SalvageValue, p.PurchasePrice)
	accumulated = clamp(accumulated, 0, p.PurchasePrice-p.SalvageValue)
	remaining := math.Max(0, p.UsefulLifeYears-years)

	var annual, daily float64
	if remaining > 0 {
		annual = math.Min(book*rate, book-p.SalvageValue)
		daily = annual / DaysPerYear
	}

	return model.DepreciationResult{
		BookValue:               book,
		AccumulatedDepreciation: accumulated,
		RemainingLife:           remaining,
		DailyDepreciation:       daily,
		AnnualDepreciation:      annual,
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

// YearEnd is the state of an asset at the end of one year of its schedule.
type YearEnd struct {
	Year                    int     `json:"year"`
	Depreciation            float64 `json:"depreciation"`
	BookValue               float64 `json:"book_value"`
	AccumulatedDepreciation float64 `json:"accumulated_depreciation"`
}

// Schedule returns the year-end states for the given number of years, defaulting
// to the rounded-up useful life.
func Schedule(p Params, years int) ([]YearEnd, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	if years <= 0 {
		years = int(math.Ceil(p.UsefulLifeYears))
	}

	start := model.Day(p.StartDate)
	schedule := make([]YearEnd, 0, years)
	previous := 0.0
	for y := 1; y <= years; y++ {
		r, err := Calculate(p, start.AddDate(0, 0, y*int(DaysPerYear)))
		if err != nil {
			return nil, err
		}
		schedule = append(schedule, YearEnd{
			Year:                    y,
			Depreciation:            r.AccumulatedDepreciation - previous,
			BookValue:               r.BookValue,
			AccumulatedDepreciation: r.AccumulatedDepreciation,
		})
		previous = r.AccumulatedDepreciation
	}
	return schedule, nil
}
