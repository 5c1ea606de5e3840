// Package fx resolves currency conversion rates.
//
// Rates come from a USD-based table fetched from a remote service and cached for
// a day. When the service is unreachable or not configured, a static table of
// approximate rates is used instead and every quote derived from it is flagged,
// so financial figures keep rendering during a provider outage.
package fx

import (
	"context"
	"log/slog"
	"maps"
	"time"

	"github.com/Veraticus/runway/internal/money"
)

// BaseCurrency is the implicit base of every rate table.
const BaseCurrency = "USD"

// fallbackRates are approximate units of currency per 1 USD.
var fallbackRates = map[string]float64{
	"USD": 1,
	"CNY": 7.2,
	"EUR": 0.92,
	"GBP": 0.79,
	"JPY": 150,
	"CAD": 1.36,
	"AUD": 1.53,
	"HKD": 7.8,
	"SGD": 1.34,
	"KRW": 1330,
}

// FallbackRates returns a copy of the static rate table.
func FallbackRates() map[string]float64 {
	return maps.Clone(fallbackRates)
}

// Quote is a conversion rate between two currencies.
type Quote struct {
	Rate     float64 `json:"rate"`
	Fallback bool    `json:"fallback"`
}

// Converter converts amounts between currencies.
type Converter interface {
	Convert(ctx context.Context, amount float64, from, to string) (float64, Quote)
}

// Status describes the state of the rate source.
type Status struct {
	FetchedAt time.Time `json:"fetched_at,omitempty"`
	Expiry    time.Time `json:"expiry,omitempty"`
	Error     string    `json:"error,omitempty"`
	Success   bool      `json:"success"`
}

// Provider resolves rates through a cache backed by a fetcher.
type Provider struct {
	fetcher Fetcher
	cache   *Cache
}

// NewProvider creates a provider. A nil fetcher always yields fallback rates and
// a nil cache gets a fresh one with the default TTL.
func NewProvider(fetcher Fetcher, cache *Cache) *Provider {
	if cache == nil {
		cache = NewCache(DefaultTTL, nil)
	}
	return &Provider{fetcher: fetcher, cache: cache}
}

// Rate returns the number of units of to per unit of from.
//
// Identical currencies return exactly 1 without touching the rate source.
// Currencies absent from the table count as 1, which degrades the conversion to
// a no-op rather than failing.
func (p *Provider) Rate(ctx context.Context, from, to string) Quote {
	from, to = money.NormalizeCode(from), money.NormalizeCode(to)
	if from == to || from == "" || to == "" {
		return Quote{Rate: 1}
	}
	return p.Snapshot(ctx).Rate(from, to)
}

// Snapshot resolves the current table once. Conversions through the result
// never fetch again, whether the table is live or the fallback.
func (p *Provider) Snapshot(ctx context.Context) *Rates {
	table, fallback := p.table(ctx)
	return NewRates(table, fallback)
}

// Convert multiplies amount by the rate from one currency to another.
func (p *Provider) Convert(ctx context.Context, amount float64, from, to string) (float64, Quote) {
	q := p.Rate(ctx, from, to)
	return amount * q.Rate, q
}

// Table returns the current USD-based table and whether it is the fallback.
func (p *Provider) Table(ctx context.Context) (map[string]float64, bool) {
	table, fallback := p.table(ctx)
	return maps.Clone(table), fallback
}

// Status reports whether live rates are available. It never returns an error:
// configuration problems are surfaced in the result.
func (p *Provider) Status(ctx context.Context) Status {
	if _, ok := p.cache.Get(); ok {
		return Status{Success: true, FetchedAt: p.cache.FetchedAt(), Expiry: p.cache.Expiry()}
	}
	if p.fetcher == nil {
		return Status{Error: ErrMissingAPIKey.Error()}
	}

	rates, err := p.fetcher.Fetch(ctx)
	if err != nil {
		return Status{Error: err.Error()}
	}
	p.cache.Set(rates)
	return Status{Success: true, FetchedAt: p.cache.FetchedAt(), Expiry: p.cache.Expiry()}
}

func (p *Provider) table(ctx context.Context) (map[string]float64, bool) {
	if rates, ok := p.cache.Get(); ok {
		return rates, false
	}

	if p.fetcher == nil {
		slog.Debug("No exchange rate fetcher configured, using fallback rates")
		return fallbackRates, true
	}

	rates, err := p.fetcher.Fetch(ctx)
	if err != nil {
		slog.Warn("Exchange rate fetch failed, using fallback rates", "error", err)
		return fallbackRates, true
	}

	p.cache.Set(rates)
	slog.Debug("Refreshed exchange rates",
		"currencies", len(rates),
		"expires", p.cache.Expiry())

	return rates, false
}

func lookup(table map[string]float64, code string) float64 {
	if r, ok := table[code]; ok && r > 0 {
		return r
	}
	return 1
}
