// Package storage provides the SQLite persistence layer for runway.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/runway/internal/model"
	"github.com/Veraticus/runway/internal/service"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrEmptySlice         = errors.New("slice cannot be empty")
	ErrInvalidDateRange   = errors.New("start date must be before end date")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidAccount     = errors.New("invalid account")
	ErrInvalidCategory    = errors.New("invalid category")
	ErrInvalidRule        = errors.New("invalid recurring rule")
	ErrInvalidInvestment  = errors.New("invalid investment")
	ErrInvalidProject     = errors.New("invalid project")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateSlice rejects nil and empty batches.
func validateSlice[T any](items []T, paramName string) error {
	if items == nil {
		return fmt.Errorf("%w: %s", ErrNilParameter, paramName)
	}
	if len(items) == 0 {
		return fmt.Errorf("%w: %s", ErrEmptySlice, paramName)
	}
	return nil
}

func validateFilter(f service.TransactionFilter) error {
	if f.StartDate != nil && f.EndDate != nil && f.EndDate.Before(*f.StartDate) {
		return fmt.Errorf("%w: end date %s is before start date %s",
			ErrInvalidDateRange, formatDate(*f.EndDate), formatDate(*f.StartDate))
	}
	if f.Limit < 0 || f.Offset < 0 {
		return fmt.Errorf("%w: limit and offset must not be negative", ErrInvalidTransaction)
	}
	return nil
}

func validateAccounts(accounts []model.Account) error {
	if err := validateSlice(accounts, "accounts"); err != nil {
		return err
	}
	for i := range accounts {
		if err := validateAccount(&accounts[i]); err != nil {
			return fmt.Errorf("account at index %d: %w", i, err)
		}
	}
	return nil
}

func validateAccount(a *model.Account) error {
	if a == nil {
		return fmt.Errorf("%w: account", ErrNilParameter)
	}
	if strings.TrimSpace(a.ID) == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidAccount)
	}
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidAccount)
	}
	if strings.TrimSpace(a.CurrencyCode) == "" {
		return fmt.Errorf("%w: missing currency code", ErrInvalidAccount)
	}
	if a.Type == "" {
		return fmt.Errorf("%w: missing type", ErrInvalidAccount)
	}
	return nil
}

func validateTransactions(transactions []model.Transaction) error {
	if err := validateSlice(transactions, "transactions"); err != nil {
		return err
	}
	for i := range transactions {
		if err := validateTransaction(&transactions[i]); err != nil {
			return fmt.Errorf("transaction at index %d: %w", i, err)
		}
	}
	return nil
}

func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if txn.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidTransaction)
	}
	if txn.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidTransaction)
	}
	if !txn.Type.IsValid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidTransaction, txn.Type)
	}
	if txn.Amount.IsNegative() {
		return fmt.Errorf("%w: negative amount", ErrInvalidTransaction)
	}
	if txn.TargetAmount.Valid && txn.TargetAmount.Decimal.IsNegative() {
		return fmt.Errorf("%w: negative target amount", ErrInvalidTransaction)
	}
	if strings.TrimSpace(txn.CurrencyCode) == "" {
		return fmt.Errorf("%w: missing currency code", ErrInvalidTransaction)
	}
	if txn.IsTransfer() && (txn.AccountID == "" || txn.TransferToAccountID == "") {
		return fmt.Errorf("%w: transfer needs source and destination accounts", ErrInvalidTransaction)
	}
	return nil
}

func validateCategories(categories []model.Category) error {
	if err := validateSlice(categories, "categories"); err != nil {
		return err
	}
	for i, c := range categories {
		if strings.TrimSpace(c.ID) == "" || strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("category at index %d: %w: missing ID or name", i, ErrInvalidCategory)
		}
		if c.Type != model.CategoryTypeIncome && c.Type != model.CategoryTypeExpense {
			return fmt.Errorf("category at index %d: %w: unknown type %q", i, ErrInvalidCategory, c.Type)
		}
	}
	return nil
}

func validateRecurringRules(rules []model.RecurringRule) error {
	if err := validateSlice(rules, "rules"); err != nil {
		return err
	}
	for i := range rules {
		r := &rules[i]
		var problem string
		switch {
		case strings.TrimSpace(r.ID) == "":
			problem = "missing ID"
		case r.Type != model.TransactionTypeExpense && r.Type != model.TransactionTypeIncome:
			problem = fmt.Sprintf("unsupported type %q", r.Type)
		case r.Amount.IsNegative():
			problem = "negative amount"
		case r.StartDate.IsZero():
			problem = "missing start date"
		case r.Interval < 0:
			problem = "negative interval"
		}
		switch r.Frequency {
		case model.FrequencyDaily, model.FrequencyWeekly, model.FrequencyMonthly, model.FrequencyYearly:
		default:
			if problem == "" {
				problem = fmt.Sprintf("unknown frequency %q", r.Frequency)
			}
		}
		if problem != "" {
			return fmt.Errorf("rule at index %d: %w: %s", i, ErrInvalidRule, problem)
		}
	}
	return nil
}

func validateInvestments(investments []model.Investment) error {
	if err := validateSlice(investments, "investments"); err != nil {
		return err
	}
	for i := range investments {
		inv := &investments[i]
		var problem string
		switch {
		case strings.TrimSpace(inv.ID) == "":
			problem = "missing ID"
		case strings.TrimSpace(inv.Name) == "":
			problem = "missing name"
		case inv.Type == "":
			problem = "missing type"
		case inv.Status == "":
			problem = "missing status"
		case strings.TrimSpace(inv.CurrencyCode) == "":
			problem = "missing currency code"
		case inv.StartDate.IsZero():
			problem = "missing start date"
		case inv.EndDate != nil && inv.EndDate.Before(inv.StartDate):
			problem = "end date before start date"
		}
		if problem != "" {
			return fmt.Errorf("investment at index %d: %w: %s", i, ErrInvalidInvestment, problem)
		}
	}
	return nil
}

func validateProjects(projects []model.Project) error {
	if err := validateSlice(projects, "projects"); err != nil {
		return err
	}
	for i := range projects {
		if err := validateProject(&projects[i]); err != nil {
			return fmt.Errorf("project at index %d: %w", i, err)
		}
	}
	return nil
}

func validateProject(p *model.Project) error {
	if p == nil {
		return fmt.Errorf("%w: project", ErrNilParameter)
	}
	switch {
	case strings.TrimSpace(p.ID) == "":
		return fmt.Errorf("%w: missing ID", ErrInvalidProject)
	case strings.TrimSpace(p.OwnerID) == "":
		return fmt.Errorf("%w: missing owner", ErrInvalidProject)
	case strings.TrimSpace(p.Name) == "":
		return fmt.Errorf("%w: missing name", ErrInvalidProject)
	case p.Type == "":
		return fmt.Errorf("%w: missing type", ErrInvalidProject)
	case p.StartDate.IsZero():
		return fmt.Errorf("%w: missing start date", ErrInvalidProject)
	case p.EndDate != nil && p.EndDate.Before(p.StartDate):
		return fmt.Errorf("%w: end date before start date", ErrInvalidProject)
	}
	return nil
}
