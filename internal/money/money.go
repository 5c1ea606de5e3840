// Package money converts stored decimal amounts to floating point values for
// computation and formats amounts for display.
package money

import (
	"fmt"
	"strings"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// persistPlaces is the number of decimal places kept when a computed value is
// written back to storage.
const persistPlaces = 8

// Float returns d as a float64.
func Float(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

// NullFloat returns a pointer to the float value of d, or nil when d is null.
func NullFloat(d decimal.NullDecimal) *float64 {
	if !d.Valid {
		return nil
	}
	f := d.Decimal.InexactFloat64()
	return &f
}

// FloatOr returns the float value of d, or fallback when d is null.
func FloatOr(d decimal.NullDecimal, fallback float64) float64 {
	if !d.Valid {
		return fallback
	}
	return d.Decimal.InexactFloat64()
}

// NonZero returns the float value of d and true when d is present and not zero.
func NonZero(d decimal.NullDecimal) (float64, bool) {
	if !d.Valid || d.Decimal.IsZero() {
		return 0, false
	}
	return d.Decimal.InexactFloat64(), true
}

// FromFloat converts a computed value back to a decimal suitable for storage.
func FromFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f).Round(persistPlaces)
}

// Null wraps a float into a valid NullDecimal.
func Null(f float64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromFloat(f))
}

// NormalizeCode upper-cases and trims an ISO 4217 currency code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsKnownCurrency reports whether code is an ISO 4217 currency.
func IsKnownCurrency(code string) bool {
	return gomoney.GetCurrency(NormalizeCode(code)) != nil
}

// Format renders amount in the conventional notation of its currency.
// Amounts are rounded half away from zero to the currency's minor unit.
// Unknown currencies fall back to "1234.56 XYZ".
func Format(amount float64, code string) string {
	code = NormalizeCode(code)
	currency := gomoney.GetCurrency(code)
	if currency == nil {
		return fmt.Sprintf("%.2f %s", amount, code)
	}
	minor := decimal.NewFromFloat(amount).Shift(int32(currency.Fraction)).Round(0).IntPart()
	return gomoney.New(minor, code).Display()
}
