package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/runway/internal/common"
	"github.com/Veraticus/runway/internal/model"
	"github.com/Veraticus/runway/internal/service"
)

// memoryStore is an in-memory Store with injectable write failures.
type memoryStore struct {
	failures map[string][]error
	balances map[string]decimal.Decimal
	accounts []model.Account
	txs      []model.Transaction
	writes   int
	mu       sync.Mutex
}

func (m *memoryStore) GetAccounts(_ context.Context) ([]model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Account, len(m.accounts))
	for i, acc := range m.accounts {
		if b, ok := m.balances[acc.ID]; ok {
			acc.CurrentBalance = b
		}
		out[i] = acc
	}
	return out, nil
}

func (m *memoryStore) GetTransactions(_ context.Context, _ service.TransactionFilter) ([]model.Transaction, error) {
	return m.txs, nil
}

func (m *memoryStore) UpdateAccountBalance(_ context.Context, id string, balance decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if errs := m.failures[id]; len(errs) > 0 {
		m.failures[id] = errs[1:]
		return errs[0]
	}
	if m.balances == nil {
		m.balances = make(map[string]decimal.Decimal)
	}
	m.balances[id] = balance
	return nil
}

func fixtureStore() *memoryStore {
	return &memoryStore{
		accounts: []model.Account{
			{ID: "in-sync", Name: "Wallet", InitialBalance: dec(100), CurrentBalance: dec(70.005)},
			{ID: "stale", Name: "Checking", InitialBalance: dec(500), CurrentBalance: dec(500)},
			{ID: "empty", Name: "Savings", InitialBalance: dec(10), CurrentBalance: dec(10)},
		},
		txs: []model.Transaction{
			{AccountID: "in-sync", Type: model.TransactionTypeExpense, Amount: dec(30), Date: day(0)},
			{AccountID: "stale", Type: model.TransactionTypeExpense, Amount: dec(120), Date: day(1)},
		},
	}
}

func fastRetry() service.RetryOptions {
	return service.RetryOptions{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond}
}

func TestReconciler_UpdatesOnlyMismatches(t *testing.T) {
	store := fixtureStore()
	var ticks []int

	report, err := NewReconciler(store,
		WithRetryOptions(fastRetry()),
		WithProgress(func(done, _ int) { ticks = append(ticks, done) }),
	).Reconcile(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, 2, report.Skipped)
	assert.Zero(t, report.Failed)
	require.Len(t, report.Changes, 1)
	assert.Equal(t, "stale", report.Changes[0].AccountID)
	assert.InDelta(t, 380, report.Changes[0].Recomputed, 1e-9)

	assert.Equal(t, 1, store.writes)
	assert.True(t, store.balances["stale"].Equal(dec(380)))
	assert.Equal(t, []int{1, 2, 3}, ticks)
}

func TestReconciler_SecondRunIsNoop(t *testing.T) {
	store := fixtureStore()
	r := NewReconciler(store, WithRetryOptions(fastRetry()))

	_, err := r.Reconcile(context.Background())
	require.NoError(t, err)

	report, err := r.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.Updated)
	assert.Equal(t, 3, report.Skipped)
	assert.Equal(t, 1, store.writes)
}

func TestReconciler_DryRun(t *testing.T) {
	store := fixtureStore()

	report, err := NewReconciler(store, WithDryRun(true)).Reconcile(context.Background())
	require.NoError(t, err)
	assert.True(t, report.DryRun)
	assert.Equal(t, 1, report.Updated)
	assert.Zero(t, store.writes)
}

func TestReconciler_WriteFailures(t *testing.T) {
	t.Run("busy database is retried", func(t *testing.T) {
		store := fixtureStore()
		store.failures = map[string][]error{"stale": {common.ErrDatabaseBusy}}

		report, err := NewReconciler(store, WithRetryOptions(fastRetry())).Reconcile(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, report.Updated)
		assert.Equal(t, 2, store.writes)
	})

	t.Run("permanent failure is counted, not fatal", func(t *testing.T) {
		store := fixtureStore()
		store.failures = map[string][]error{"stale": {errors.New("disk I/O error")}}

		report, err := NewReconciler(store, WithRetryOptions(fastRetry())).Reconcile(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, report.Failed)
		assert.Zero(t, report.Updated)
		assert.Equal(t, 2, report.Skipped)
		assert.Equal(t, 1, store.writes)
	})
}
