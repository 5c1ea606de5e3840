package cli

import (
	"fmt"
	"math"
	"time"

	"github.com/Veraticus/runway/internal/model"
	"github.com/Veraticus/runway/internal/money"
)

// FormatMoney renders an amount in its currency's notation.
func FormatMoney(amount float64, code string) string {
	return money.Format(amount, code)
}

// FormatSignedMoney renders an amount colored by its sign.
func FormatSignedMoney(amount float64, code string) string {
	s := FormatMoney(amount, code)
	switch {
	case amount > 0:
		return SuccessStyle.Render(s)
	case amount < 0:
		return ErrorStyle.Render(s)
	}
	return s
}

// FormatPercent renders an optional percentage; nil means not applicable.
func FormatPercent(p *float64) string {
	if p == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", *p)
}

// FormatOptionalMoney renders an optional amount; nil means not applicable.
func FormatOptionalMoney(amount *float64, code string) string {
	if amount == nil {
		return "n/a"
	}
	return FormatMoney(*amount, code)
}

// FormatRunway renders runway months, or "∞" when nothing is being burned.
func FormatRunway(months float64, infinite bool) string {
	if infinite || math.IsInf(months, 1) {
		return "∞"
	}
	return fmt.Sprintf("%.1f months", months)
}

// FormatDate renders a calendar day.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(model.DateFormat)
}

// FallbackNotice returns a warning line when figures use fallback rates.
func FallbackNotice(usingFallback bool) string {
	if !usingFallback {
		return ""
	}
	return FormatWarning("Live exchange rates unavailable; figures use approximate fallback rates.")
}
