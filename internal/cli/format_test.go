package cli

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		name   string
		code   string
		want   string
		amount float64
	}{
		{name: "dollars", amount: 1234.5, code: "USD", want: "$1,234.50"},
		{name: "negative", amount: -12, code: "usd", want: "-$12.00"},
		{name: "yen has no fraction", amount: 1500, code: "JPY", want: "¥1,500"},
		{name: "unknown currency", amount: 3.5, code: "ZZZ", want: "3.50 ZZZ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatMoney(tt.amount, tt.code))
		})
	}

	assert.Contains(t, FormatSignedMoney(-5, "USD"), "-$5.00")
	assert.Contains(t, FormatSignedMoney(0, "USD"), "$0.00")
}

func TestFormatOptional(t *testing.T) {
	v := 12.345
	assert.Equal(t, "12.3%", FormatPercent(&v))
	assert.Equal(t, "n/a", FormatPercent(nil))
	assert.Equal(t, "$12.35", FormatOptionalMoney(&v, "USD"))
	assert.Equal(t, "n/a", FormatOptionalMoney(nil, "USD"))
}

func TestFormatRunway(t *testing.T) {
	assert.Equal(t, "∞", FormatRunway(0, true))
	assert.Equal(t, "∞", FormatRunway(math.Inf(1), false))
	assert.Equal(t, "7.5 months", FormatRunway(7.49, false))
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "2024-02-29", FormatDate(time.Date(2024, 2, 29, 13, 0, 0, 0, time.UTC)))
	assert.Equal(t, "-", FormatDate(time.Time{}))
}

func TestFallbackNotice(t *testing.T) {
	assert.Empty(t, FallbackNotice(false))
	assert.Contains(t, FallbackNotice(true), "fallback rates")
}

func TestRenderTable(t *testing.T) {
	out := RenderTable(
		[]string{"Day", "Cost"},
		[][]string{{"2024-01-01", "$10.00"}, {"2024-01-02", "$5.00"}},
		1,
	)

	assert.Contains(t, out, "Day")
	assert.Contains(t, out, "2024-01-02")
	assert.Contains(t, out, "$10.00")
	assert.Equal(t, 1, strings.Count(out, "Cost"))
}

func TestRenderKeyValues(t *testing.T) {
	out := RenderKeyValues([][2]string{{"Cash", "$1.00"}, {"Net worth", "$2.00"}})
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 2)
	assert.Equal(t, strings.Index(lines[0], "$"), strings.Index(lines[1], "$"), "values are aligned")
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, "Reconciling")

	p.Finish()
	assert.Empty(t, buf.String(), "nothing is drawn before the first update")

	p.Update(0, 0)
	assert.Nil(t, p.bar)

	p.Update(1, 2)
	p.Update(2, 2)
	p.Finish()
	assert.Contains(t, buf.String(), "Reconciling")
	assert.Contains(t, buf.String(), "2/2")
}
