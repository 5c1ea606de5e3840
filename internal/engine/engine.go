// Package engine loads ledger snapshots from storage and drives the reporting
// components over them.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/runway/internal/common"
	"github.com/Veraticus/runway/internal/fx"
	"github.com/Veraticus/runway/internal/ledger"
	"github.com/Veraticus/runway/internal/metrics"
	"github.com/Veraticus/runway/internal/model"
	"github.com/Veraticus/runway/internal/money"
	"github.com/Veraticus/runway/internal/project"
	"github.com/Veraticus/runway/internal/service"
	"github.com/Veraticus/runway/internal/valuation"
)

// RateSource is the exchange rate provider used by reports.
type RateSource interface {
	fx.Converter
	Rate(ctx context.Context, from, to string) fx.Quote
	Status(ctx context.Context) fx.Status
}

// Engine answers reporting queries against a storage backend.
type Engine struct {
	storage    service.Storage
	rates      RateSource
	builder    *metrics.Builder
	aggregator *valuation.Aggregator
	projects   *project.Calculator
	now        func() time.Time
	base       string
	retry      service.RetryOptions
}

// Config holds configuration options for the engine.
type Config struct {
	Now          func() time.Time
	BaseCurrency string
	Retry        service.RetryOptions
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		BaseCurrency: fx.BaseCurrency,
		Retry:        common.DefaultRetryOptions(),
		Now:          time.Now,
	}
}

// New creates an engine with the default configuration.
func New(storage service.Storage, rates RateSource) *Engine {
	return NewWithConfig(storage, rates, DefaultConfig())
}

// NewWithConfig creates an engine with custom configuration.
func NewWithConfig(storage service.Storage, rates RateSource, config Config) *Engine {
	if config.Now == nil {
		config.Now = time.Now
	}
	base := money.NormalizeCode(config.BaseCurrency)
	if base == "" {
		base = fx.BaseCurrency
	}
	return &Engine{
		storage:    storage,
		rates:      rates,
		builder:    metrics.NewBuilder(rates),
		aggregator: valuation.NewAggregator(rates),
		projects:   project.NewCalculator(rates),
		now:        config.Now,
		base:       base,
		retry:      config.Retry,
	}
}

// BaseCurrency returns the currency reports are expressed in.
func (e *Engine) BaseCurrency() string {
	return e.base
}

// Today returns the current calendar day.
func (e *Engine) Today() time.Time {
	return model.Day(e.now())
}

// Snapshot is every entity needed for reporting, read once per request.
type Snapshot struct {
	Accounts     []model.Account
	Transactions []model.Transaction
	Categories   []model.Category
	Rules        []model.RecurringRule
	Investments  []model.Investment
	Projects     []model.Project
}

// Snapshot reads the whole ledger. Account balances are recomputed in memory so
// reports never depend on a stale cached balance.
func (e *Engine) Snapshot(ctx context.Context) (*Snapshot, error) {
	var s Snapshot
	var err error

	if s.Accounts, err = e.storage.GetAccounts(ctx); err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}
	if s.Transactions, err = e.storage.GetTransactions(ctx, service.TransactionFilter{}); err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	if s.Categories, err = e.storage.GetCategories(ctx); err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	if s.Rules, err = e.storage.GetRecurringRules(ctx); err != nil {
		return nil, fmt.Errorf("failed to load recurring rules: %w", err)
	}
	if s.Investments, err = e.storage.GetInvestments(ctx); err != nil {
		return nil, fmt.Errorf("failed to load investments: %w", err)
	}
	if s.Projects, err = e.storage.GetProjects(ctx); err != nil {
		return nil, fmt.Errorf("failed to load projects: %w", err)
	}

	s.Accounts = ledger.Resync(s.Accounts, s.Transactions)

	slog.Debug("Loaded snapshot",
		"accounts", len(s.Accounts),
		"transactions", len(s.Transactions),
		"investments", len(s.Investments),
		"projects", len(s.Projects))

	return &s, nil
}

// Reconcile writes recomputed balances back to storage.
func (e *Engine) Reconcile(ctx context.Context, opts ...ledger.Option) (ledger.Report, error) {
	opts = append([]ledger.Option{ledger.WithRetryOptions(e.retry)}, opts...)
	return ledger.NewReconciler(e.storage, opts...).Reconcile(ctx)
}

// Rate returns the exchange rate between two currencies.
func (e *Engine) Rate(ctx context.Context, from, to string) fx.Quote {
	return e.rates.Rate(ctx, from, to)
}

// RateStatus reports whether live exchange rates are available.
func (e *Engine) RateStatus(ctx context.Context) fx.Status {
	return e.rates.Status(ctx)
}
