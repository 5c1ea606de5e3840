package fx

import (
	"context"

	"github.com/Veraticus/runway/internal/money"
)

// Rates is a rate table resolved once and reused for every conversion of a
// report, so a failing rate service is asked at most once per report.
type Rates struct {
	table    map[string]float64
	fallback bool
}

// NewRates wraps a USD-based table. Fallback marks every quote derived from it.
func NewRates(table map[string]float64, fallback bool) *Rates {
	return &Rates{table: table, fallback: fallback}
}

// Rate returns the number of units of to per unit of from.
func (r *Rates) Rate(from, to string) Quote {
	from, to = money.NormalizeCode(from), money.NormalizeCode(to)
	if from == to || from == "" || to == "" {
		return Quote{Rate: 1}
	}
	return Quote{
		Rate:     lookup(r.table, to) / lookup(r.table, from),
		Fallback: r.fallback,
	}
}

// Convert implements Converter.
func (r *Rates) Convert(_ context.Context, amount float64, from, to string) (float64, Quote) {
	q := r.Rate(from, to)
	return amount * q.Rate, q
}

// Fallback reports whether the table is the static fallback table.
func (r *Rates) Fallback() bool {
	return r.fallback
}

// Snapshotter is a Converter that can pin its current table.
type Snapshotter interface {
	Snapshot(ctx context.Context) *Rates
}

// Pin returns a converter fixed to c's current table when c supports it, and c
// itself otherwise.
func Pin(ctx context.Context, c Converter) Converter {
	if s, ok := c.(Snapshotter); ok {
		return s.Snapshot(ctx)
	}
	return c
}
