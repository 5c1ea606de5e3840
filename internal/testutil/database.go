// Package testutil provides test databases and ledger fixtures.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/runway/internal/model"
	"github.com/Veraticus/runway/internal/service"
	"github.com/Veraticus/runway/internal/snapshot"
	"github.com/Veraticus/runway/internal/storage"
)

// TestDB represents a test database with associated test utilities.
type TestDB struct {
	Storage service.Storage
	t       *testing.T
}

// Fixture is a ledger snapshot to seed a test database with. Empty sections are skipped.
type Fixture = snapshot.Ledger

// SetupTestDB creates a new migrated in-memory database seeded with the given
// fixtures. It is closed automatically when the test ends.
//
// Example:
//
//	db := testutil.SetupTestDB(t, testutil.StandardFixture())
func SetupTestDB(t *testing.T, fixtures ...Fixture) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	db := &TestDB{Storage: store, t: t}
	for _, f := range fixtures {
		db.Seed(f)
	}
	return db
}

// Seed saves every entity in f or fails the test.
func (db *TestDB) Seed(f Fixture) {
	db.t.Helper()
	if err := Load(context.Background(), db.Storage, f); err != nil {
		db.t.Fatalf("failed to seed fixture: %v", err)
	}
}

// Load saves every non-empty section of f.
func Load(ctx context.Context, s service.Storage, f Fixture) error {
	return snapshot.Save(ctx, s, f)
}

// WithTransaction executes the given function within a database transaction.
// The transaction is automatically rolled back after the function completes.
func (db *TestDB) WithTransaction(fn func(tx service.Transaction) error) error {
	ctx := context.Background()
	tx, err := db.Storage.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() { _ = tx.Rollback() }()

	return fn(tx)
}

// FixtureStart is the first day of StandardFixture.
var FixtureStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// StandardFixture is a small two-currency ledger:
//
//   - checking (USD, opening 1000): salary +3000, rent -1200, transfer of 100 to
//     savings (arrives as 720 CNY), a 50 trip expense
//   - savings (CNY, opening 0)
//   - a laptop bought for 1200 depreciating straight line over 2 years
//   - a trip project owned by "owner"
//   - a monthly 15 USD subscription
func StandardFixture() Fixture {
	d := func(days int) time.Time { return FixtureStart.AddDate(0, 0, days) }
	tripEnd := d(13)

	return Fixture{
		Categories: []model.Category{
			{ID: "cat-salary", Name: "Salary", Type: model.CategoryTypeIncome},
			{ID: "cat-housing", Name: "Housing", Type: model.CategoryTypeExpense},
			{ID: "cat-travel", Name: "Travel", Type: model.CategoryTypeExpense},
			{ID: "cat-investment", Name: "Investment purchase", Type: model.CategoryTypeExpense, IsSystemGenerated: true},
		},
		Accounts: []model.Account{
			{ID: "checking", Name: "Checking", Type: model.AccountTypeBank, CurrencyCode: "USD", InitialBalance: decimal.NewFromInt(1000)},
			{ID: "savings", Name: "Savings", Type: model.AccountTypeBank, CurrencyCode: "CNY", InitialBalance: decimal.Zero},
		},
		Transactions: []model.Transaction{
			{ID: "tx-salary", Date: d(0), Type: model.TransactionTypeIncome, Amount: decimal.NewFromInt(3000), CurrencyCode: "USD", AccountID: "checking", CategoryID: "cat-salary"},
			{ID: "tx-rent", Date: d(1), Type: model.TransactionTypeExpense, Amount: decimal.NewFromInt(1200), CurrencyCode: "USD", AccountID: "checking", CategoryID: "cat-housing"},
			{ID: "tx-transfer", Date: d(2), Type: model.TransactionTypeTransfer, Amount: decimal.NewFromInt(100), TargetAmount: decimal.NewNullDecimal(decimal.NewFromInt(720)), CurrencyCode: "USD", AccountID: "checking", TransferToAccountID: "savings"},
			{ID: "tx-trip", Date: d(10), Type: model.TransactionTypeExpense, Amount: decimal.NewFromInt(50), CurrencyCode: "USD", AccountID: "checking", CategoryID: "cat-travel", ProjectID: "trip"},
		},
		Rules: []model.RecurringRule{
			{ID: "rule-music", Name: "Music", Type: model.TransactionTypeExpense, Amount: decimal.NewFromInt(15), CurrencyCode: "USD", Frequency: model.FrequencyMonthly, Interval: 1, StartDate: d(4), Active: true},
		},
		Investments: []model.Investment{
			{
				ID: "laptop", Name: "Laptop", Type: model.InvestmentTypeAsset, Status: model.InvestmentStatusActive,
				CurrencyCode: "USD", InitialAmount: decimal.NewFromInt(1200),
				PurchasePrice: decimal.NewNullDecimal(decimal.NewFromInt(1200)), UsefulLife: decimal.NewNullDecimal(decimal.NewFromInt(2)),
				DepreciationType: model.DepreciationStraightLine, StartDate: d(0),
			},
		},
		Projects: []model.Project{
			{
				ID: "trip", OwnerID: "owner", Name: "Weekend trip", Type: model.ProjectTypeTrip, Status: model.ProjectStatusActive,
				StartDate: d(10), EndDate: &tripEnd, TotalBudget: decimal.NewNullDecimal(decimal.NewFromInt(200)), CurrencyCode: "USD",
			},
		},
	}
}
