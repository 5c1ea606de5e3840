package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNullFloat(t *testing.T) {
	t.Run("null stays null", func(t *testing.T) {
		assert.Nil(t, NullFloat(decimal.NullDecimal{}))
	})

	t.Run("value is converted", func(t *testing.T) {
		got := NullFloat(decimal.NewNullDecimal(decimal.RequireFromString("12.34")))
		require.NotNil(t, got)
		assert.InDelta(t, 12.34, *got, 1e-9)
	})

	t.Run("zero is not null", func(t *testing.T) {
		got := NullFloat(decimal.NewNullDecimal(decimal.Zero))
		require.NotNil(t, got)
		assert.Zero(t, *got)
	})
}

func TestFloatOr(t *testing.T) {
	assert.Equal(t, 7.0, FloatOr(decimal.NullDecimal{}, 7))
	assert.Equal(t, 0.5, FloatOr(decimal.NewNullDecimal(decimal.RequireFromString("0.5")), 7))
}

func TestNonZero(t *testing.T) {
	_, ok := NonZero(decimal.NullDecimal{})
	assert.False(t, ok)

	_, ok = NonZero(decimal.NewNullDecimal(decimal.Zero))
	assert.False(t, ok)

	v, ok := NonZero(decimal.NewNullDecimal(decimal.NewFromInt(720)))
	assert.True(t, ok)
	assert.Equal(t, 720.0, v)
}

func TestFromFloat(t *testing.T) {
	assert.True(t, FromFloat(0.1+0.2).Equal(decimal.RequireFromString("0.3")))
	assert.True(t, FromFloat(120).Equal(decimal.NewFromInt(120)))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "$1,234.50", Format(1234.5, "usd"))
	assert.Equal(t, "12.00 XYZ", Format(12, "XYZ"))
	assert.Equal(t, "$12.35", Format(12.345, "USD"))
	assert.Equal(t, "-$0.01", Format(-0.005, "USD"))
	assert.Equal(t, "¥1,500", Format(1499.6, "JPY"))
}

func TestIsKnownCurrency(t *testing.T) {
	assert.True(t, IsKnownCurrency("EUR"))
	assert.True(t, IsKnownCurrency(" cny "))
	assert.False(t, IsKnownCurrency("NOPE"))
}
