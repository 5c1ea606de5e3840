package fx

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProvider_Snapshot_FetchesOnce(t *testing.T) {
	ctx := context.Background()
	fetcher := &countingFetcher{err: errors.New("connection refused")}
	p := NewProvider(fetcher, NewCache(DefaultTTL, newFakeClock()))

	rates := p.Snapshot(ctx)
	assert.True(t, rates.Fallback())
	for range 50 {
		got, q := rates.Convert(ctx, 72, "CNY", "USD")
		assert.InDelta(t, 10, got, 1e-9)
		assert.True(t, q.Fallback)
	}
	assert.Equal(t, int32(1), fetcher.calls.Load())
}

func TestRates_Rate(t *testing.T) {
	rates := NewRates(liveRates(), false)

	assert.Equal(t, Quote{Rate: 1}, rates.Rate("eur", "EUR"))
	assert.InDelta(t, 7.0/0.9, rates.Rate("EUR", "CNY").Rate, 1e-12)
	assert.Equal(t, 1.0, rates.Rate("USD", "ZZZ").Rate)
	assert.False(t, rates.Rate("USD", "JPY").Fallback)

	fallback := NewRates(FallbackRates(), true)
	assert.True(t, fallback.Rate("USD", "JPY").Fallback)
	assert.False(t, fallback.Rate("JPY", "JPY").Fallback, "identical currencies are exact")
}

func TestPin(t *testing.T) {
	ctx := context.Background()
	fetcher := &countingFetcher{rates: liveRates()}
	p := NewProvider(fetcher, NewCache(DefaultTTL, newFakeClock()))

	pinned := Pin(ctx, p)
	_, ok := pinned.(*Rates)
	assert.True(t, ok)
	assert.Equal(t, int32(1), fetcher.calls.Load())

	plain := converterFunc(func(_ context.Context, amount float64, _, _ string) (float64, Quote) {
		return amount, Quote{Rate: 1}
	})
	got, _ := Pin(ctx, plain).Convert(ctx, 5, "USD", "EUR")
	assert.Equal(t, 5.0, got, "converters without snapshots are used as is")
}

type converterFunc func(ctx context.Context, amount float64, from, to string) (float64, Quote)

func (f converterFunc) Convert(ctx context.Context, amount float64, from, to string) (float64, Quote) {
	return f(ctx, amount, from, to)
}
