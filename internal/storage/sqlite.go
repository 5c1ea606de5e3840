package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/runway/internal/model"
	"github.com/Veraticus/runway/internal/service"
)

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	dbPath string
}

// queryable is satisfied by both *sql.DB and *sql.Tx.
type queryable interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// NewSQLiteStorage opens (creating if needed) the database at dbPath.
// ":memory:" opens a private in-memory database.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	dsn := ":memory:"
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = dbPath + "?_journal_mode=WAL&_busy_timeout=5000"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps an in-memory database alive and serializes writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", classify(err))
	}

	return &SQLiteStorage{db: db, dbPath: dbPath}, nil
}

// Path returns the database location.
func (s *SQLiteStorage) Path() string {
	return s.dbPath
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new database transaction.
func (s *SQLiteStorage) BeginTx(ctx context.Context) (service.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", classify(err))
	}
	return &sqliteTransaction{tx: tx}, nil
}

// inTx runs fn inside a transaction that is committed when fn succeeds.
func (s *SQLiteStorage) inTx(ctx context.Context, fn func(q queryable) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", classify(err))
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", classify(err))
	}
	return nil
}

// SaveAccounts inserts or replaces accounts.
func (s *SQLiteStorage) SaveAccounts(ctx context.Context, accounts []model.Account) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateAccounts(accounts); err != nil {
		return err
	}
	return s.inTx(ctx, func(q queryable) error { return saveAccounts(ctx, q, accounts) })
}

// GetAccounts returns every account ordered by name.
func (s *SQLiteStorage) GetAccounts(ctx context.Context) ([]model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getAccounts(ctx, s.db)
}

// GetAccount returns a single account or common.ErrNotFound.
func (s *SQLiteStorage) GetAccount(ctx context.Context, id string) (*model.Account, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return getAccount(ctx, s.db, id)
}

// UpdateAccountBalance overwrites the cached balance of an account.
func (s *SQLiteStorage) UpdateAccountBalance(ctx context.Context, id string, balance decimal.Decimal) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	return updateAccountBalance(ctx, s.db, id, balance)
}

// SaveTransactions inserts or replaces transactions.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, transactions []model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransactions(transactions); err != nil {
		return err
	}
	return s.inTx(ctx, func(q queryable) error { return saveTransactions(ctx, q, transactions) })
}

// GetTransactions returns the transactions matching filter ordered by date.
func (s *SQLiteStorage) GetTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	return getTransactions(ctx, s.db, filter)
}

// GetTransactionByID returns a single transaction or common.ErrNotFound.
func (s *SQLiteStorage) GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return getTransactionByID(ctx, s.db, id)
}

// SaveCategories inserts or replaces categories.
func (s *SQLiteStorage) SaveCategories(ctx context.Context, categories []model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCategories(categories); err != nil {
		return err
	}
	return s.inTx(ctx, func(q queryable) error { return saveCategories(ctx, q, categories) })
}

// GetCategories returns every category ordered by name.
func (s *SQLiteStorage) GetCategories(ctx context.Context) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getCategories(ctx, s.db)
}

// SaveRecurringRules inserts or replaces recurring rules.
func (s *SQLiteStorage) SaveRecurringRules(ctx context.Context, rules []model.RecurringRule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRecurringRules(rules); err != nil {
		return err
	}
	return s.inTx(ctx, func(q queryable) error { return saveRecurringRules(ctx, q, rules) })
}

// GetRecurringRules returns every recurring rule.
func (s *SQLiteStorage) GetRecurringRules(ctx context.Context) ([]model.RecurringRule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getRecurringRules(ctx, s.db)
}

// SaveInvestments inserts or replaces investments.
func (s *SQLiteStorage) SaveInvestments(ctx context.Context, investments []model.Investment) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateInvestments(investments); err != nil {
		return err
	}
	return s.inTx(ctx, func(q queryable) error { return saveInvestments(ctx, q, investments) })
}

// GetInvestments returns every investment.
func (s *SQLiteStorage) GetInvestments(ctx context.Context) ([]model.Investment, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getInvestments(ctx, s.db)
}

// GetInvestment returns a single investment or common.ErrNotFound.
func (s *SQLiteStorage) GetInvestment(ctx context.Context, id string) (*model.Investment, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return getInvestment(ctx, s.db, id)
}

// SaveProjects inserts or replaces projects.
func (s *SQLiteStorage) SaveProjects(ctx context.Context, projects []model.Project) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateProjects(projects); err != nil {
		return err
	}
	return s.inTx(ctx, func(q queryable) error { return saveProjects(ctx, q, projects) })
}

// GetProjects returns every project.
func (s *SQLiteStorage) GetProjects(ctx context.Context) ([]model.Project, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getProjects(ctx, s.db)
}

// GetProject returns a single project or common.ErrNotFound.
func (s *SQLiteStorage) GetProject(ctx context.Context, id string) (*model.Project, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return getProject(ctx, s.db, id)
}

// UpdateProject overwrites a project owned by ownerID. It returns
// common.ErrUnauthorized when the stored project belongs to someone else.
func (s *SQLiteStorage) UpdateProject(ctx context.Context, ownerID string, project *model.Project) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(ownerID, "ownerID"); err != nil {
		return err
	}
	if project != nil && project.OwnerID == "" {
		project.OwnerID = ownerID
	}
	if err := validateProject(project); err != nil {
		return err
	}
	return s.inTx(ctx, func(q queryable) error { return updateProject(ctx, q, ownerID, project) })
}

// sqliteTransaction wraps sql.Tx to implement service.Transaction.
type sqliteTransaction struct {
	tx *sql.Tx
}

func (t *sqliteTransaction) Commit() error {
	return classify(t.tx.Commit())
}

func (t *sqliteTransaction) Rollback() error {
	return t.tx.Rollback()
}

func (t *sqliteTransaction) SaveAccounts(ctx context.Context, accounts []model.Account) error {
	if err := validateAccounts(accounts); err != nil {
		return err
	}
	return saveAccounts(ctx, t.tx, accounts)
}

func (t *sqliteTransaction) GetAccounts(ctx context.Context) ([]model.Account, error) {
	return getAccounts(ctx, t.tx)
}

func (t *sqliteTransaction) GetAccount(ctx context.Context, id string) (*model.Account, error) {
	return getAccount(ctx, t.tx, id)
}

func (t *sqliteTransaction) UpdateAccountBalance(ctx context.Context, id string, balance decimal.Decimal) error {
	return updateAccountBalance(ctx, t.tx, id, balance)
}

func (t *sqliteTransaction) SaveTransactions(ctx context.Context, transactions []model.Transaction) error {
	if err := validateTransactions(transactions); err != nil {
		return err
	}
	return saveTransactions(ctx, t.tx, transactions)
}

func (t *sqliteTransaction) GetTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	return getTransactions(ctx, t.tx, filter)
}

func (t *sqliteTransaction) GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error) {
	return getTransactionByID(ctx, t.tx, id)
}

func (t *sqliteTransaction) SaveCategories(ctx context.Context, categories []model.Category) error {
	if err := validateCategories(categories); err != nil {
		return err
	}
	return saveCategories(ctx, t.tx, categories)
}

func (t *sqliteTransaction) GetCategories(ctx context.Context) ([]model.Category, error) {
	return getCategories(ctx, t.tx)
}

func (t *sqliteTransaction) SaveRecurringRules(ctx context.Context, rules []model.RecurringRule) error {
	if err := validateRecurringRules(rules); err != nil {
		return err
	}
	return saveRecurringRules(ctx, t.tx, rules)
}

func (t *sqliteTransaction) GetRecurringRules(ctx context.Context) ([]model.RecurringRule, error) {
	return getRecurringRules(ctx, t.tx)
}

func (t *sqliteTransaction) SaveInvestments(ctx context.Context, investments []model.Investment) error {
	if err := validateInvestments(investments); err != nil {
		return err
	}
	return saveInvestments(ctx, t.tx, investments)
}

func (t *sqliteTransaction) GetInvestments(ctx context.Context) ([]model.Investment, error) {
	return getInvestments(ctx, t.tx)
}

func (t *sqliteTransaction) GetInvestment(ctx context.Context, id string) (*model.Investment, error) {
	return getInvestment(ctx, t.tx, id)
}

func (t *sqliteTransaction) SaveProjects(ctx context.Context, projects []model.Project) error {
	if err := validateProjects(projects); err != nil {
		return err
	}
	return saveProjects(ctx, t.tx, projects)
}

func (t *sqliteTransaction) GetProjects(ctx context.Context) ([]model.Project, error) {
	return getProjects(ctx, t.tx)
}

func (t *sqliteTransaction) GetProject(ctx context.Context, id string) (*model.Project, error) {
	return getProject(ctx, t.tx, id)
}

func (t *sqliteTransaction) UpdateProject(ctx context.Context, ownerID string, project *model.Project) error {
	if project != nil && project.OwnerID == "" {
		project.OwnerID = ownerID
	}
	if err := validateProject(project); err != nil {
		return err
	}
	return updateProject(ctx, t.tx, ownerID, project)
}

func (t *sqliteTransaction) Migrate(_ context.Context) error {
	return fmt.Errorf("migrations cannot be run within a transaction")
}

func (t *sqliteTransaction) BeginTx(_ context.Context) (service.Transaction, error) {
	return nil, fmt.Errorf("nested transactions not supported")
}

func (t *sqliteTransaction) Close() error {
	return fmt.Errorf("transactions must be committed or rolled back, not closed")
}
