package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/runway/internal/common"
	"github.com/Veraticus/runway/internal/model"
	"github.com/Veraticus/runway/internal/money"
	"github.com/Veraticus/runway/internal/service"
)

// Tolerance is the largest difference between a stored and a recomputed balance
// that is still considered in sync.
const Tolerance = 0.01

// Store is the persistence the reconciler reads from and writes back to.
type Store interface {
	GetAccounts(ctx context.Context) ([]model.Account, error)
	GetTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error)
	UpdateAccountBalance(ctx context.Context, id string, balance decimal.Decimal) error
}

// Change records a balance that was out of sync.
type Change struct {
	AccountID  string  `json:"account_id"`
	Name       string  `json:"name"`
	Currency   string  `json:"currency"`
	Stored     float64 `json:"stored"`
	Recomputed float64 `json:"recomputed"`
}

// Report summarizes a reconciliation run.
type Report struct {
	Changes []Change `json:"changes"`
	Updated int      `json:"updated"`
	Skipped int      `json:"skipped"`
	Failed  int      `json:"failed"`
	DryRun  bool     `json:"dry_run"`
}

// Reconciler recomputes stored account balances from transactions.
//
// Runs are not atomic with respect to concurrent transaction writes: a
// transaction saved while a run is in progress may leave a stale balance, which
// the next run corrects.
type Reconciler struct {
	store    Store
	progress func(done, total int)
	retry    service.RetryOptions
	dryRun   bool
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithProgress registers a callback invoked after each account.
func WithProgress(fn func(done, total int)) Option {
	return func(r *Reconciler) { r.progress = fn }
}

// WithDryRun reports mismatches without writing them back.
func WithDryRun(dryRun bool) Option {
	return func(r *Reconciler) { r.dryRun = dryRun }
}

// WithRetryOptions overrides the retry policy of balance writes.
func WithRetryOptions(opts service.RetryOptions) Option {
	return func(r *Reconciler) { r.retry = opts }
}

// NewReconciler creates a reconciler over store.
func NewReconciler(store Store, opts ...Option) *Reconciler {
	r := &Reconciler{
		store: store,
		retry: common.DefaultRetryOptions(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Reconcile compares every stored balance with the recomputed one and updates
// only those that differ by more than Tolerance. A failed write is logged and
// counted; it does not stop the run.
func (r *Reconciler) Reconcile(ctx context.Context) (Report, error) {
	report := Report{DryRun: r.dryRun}

	accounts, err := r.store.GetAccounts(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to load accounts: %w", err)
	}

	txs, err := r.store.GetTransactions(ctx, service.TransactionFilter{})
	if err != nil {
		return report, fmt.Errorf("failed to load transactions: %w", err)
	}

	grouped := GroupByAccount(txs)

	for i, acc := range accounts {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}

		stored := money.Float(acc.CurrentBalance)
		recomputed := Balance(acc, grouped[acc.ID])

		if math.Abs(stored-recomputed) <= Tolerance {
			report.Skipped++
			r.tick(i+1, len(accounts))
			continue
		}

		change := Change{
			AccountID:  acc.ID,
			Name:       acc.Name,
			Currency:   acc.CurrencyCode,
			Stored:     stored,
			Recomputed: recomputed,
		}

		if !r.dryRun {
			if err := r.write(ctx, acc.ID, recomputed); err != nil {
				report.Failed++
				common.LogError(err, "Failed to update account balance", common.Fields{
					"account_id": acc.ID,
					"stored":     stored,
					"recomputed": recomputed,
				})
				r.tick(i+1, len(accounts))
				continue
			}
		}

		report.Updated++
		report.Changes = append(report.Changes, change)
		r.tick(i+1, len(accounts))
	}

	slog.Info("Reconciled account balances",
		"accounts", len(accounts),
		"updated", report.Updated,
		"skipped", report.Skipped,
		"failed", report.Failed,
		"dry_run", r.dryRun)

	return report, nil
}

func (r *Reconciler) write(ctx context.Context, id string, balance float64) error {
	return common.WithRetry(ctx, func() error {
		err := r.store.UpdateAccountBalance(ctx, id, money.FromFloat(balance))
		if err != nil && !common.IsRetryable(err) {
			return common.Permanent(err)
		}
		return err
	}, r.retry)
}

func (r *Reconciler) tick(done, total int) {
	if r.progress != nil {
		r.progress(done, total)
	}
}
