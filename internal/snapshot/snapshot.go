// Package snapshot loads whole ledgers into storage, either from YAML documents
// or from in-memory sections.
package snapshot

import (
	"context"
	"fmt"

	"github.com/Veraticus/runway/internal/common"
	"github.com/Veraticus/runway/internal/model"
	"github.com/Veraticus/runway/internal/service"
)

// Ledger is a set of entities saved together. Empty sections are skipped.
type Ledger struct {
	Accounts     []model.Account
	Categories   []model.Category
	Transactions []model.Transaction
	Rules        []model.RecurringRule
	Investments  []model.Investment
	Projects     []model.Project
}

// Counts returns the number of entities per section.
func (l *Ledger) Counts() map[string]int {
	return map[string]int{
		"accounts":        len(l.Accounts),
		"categories":      len(l.Categories),
		"transactions":    len(l.Transactions),
		"recurring_rules": len(l.Rules),
		"investments":     len(l.Investments),
		"projects":        len(l.Projects),
	}
}

// Empty reports whether the ledger has no entities at all.
func (l *Ledger) Empty() bool {
	for _, n := range l.Counts() {
		if n > 0 {
			return false
		}
	}
	return true
}

// Save writes every non-empty section of l inside one database transaction.
func Save(ctx context.Context, store service.Storage, l Ledger) error {
	if ctx == nil {
		return fmt.Errorf("%w: context cannot be nil", common.ErrInvalidInput)
	}
	if l.Empty() {
		return nil
	}

	tx, err := store.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = write(ctx, tx, l); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit ledger: %w", err)
	}

	common.LogInfo("Saved ledger snapshot", common.Fields{
		"accounts":     len(l.Accounts),
		"transactions": len(l.Transactions),
		"investments":  len(l.Investments),
		"projects":     len(l.Projects),
	})
	return nil
}

func write(ctx context.Context, s service.Storage, l Ledger) error {
	steps := []struct {
		save  func() error
		name  string
		count int
	}{
		{func() error { return s.SaveCategories(ctx, l.Categories) }, "categories", len(l.Categories)},
		{func() error { return s.SaveAccounts(ctx, l.Accounts) }, "accounts", len(l.Accounts)},
		{func() error { return s.SaveTransactions(ctx, l.Transactions) }, "transactions", len(l.Transactions)},
		{func() error { return s.SaveRecurringRules(ctx, l.Rules) }, "recurring rules", len(l.Rules)},
		{func() error { return s.SaveInvestments(ctx, l.Investments) }, "investments", len(l.Investments)},
		{func() error { return s.SaveProjects(ctx, l.Projects) }, "projects", len(l.Projects)},
	}
	for _, step := range steps {
		if step.count == 0 {
			continue
		}
		if err := step.save(); err != nil {
			return fmt.Errorf("failed to save %s: %w", step.name, err)
		}
	}
	return nil
}
