// Package model defines the core domain models used throughout the application.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType indicates how a transaction moves money.
type TransactionType string

// Transaction type constants.
const (
	TransactionTypeExpense  TransactionType = "EXPENSE"
	TransactionTypeIncome   TransactionType = "INCOME"
	TransactionTypeTransfer TransactionType = "TRANSFER"
)

// IsValid reports whether t is a known transaction type.
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeExpense, TransactionTypeIncome, TransactionTypeTransfer:
		return true
	}
	return false
}

// Transaction represents a single recorded money movement.
//
// For transfers AccountID is the source and TransferToAccountID the destination.
// Amount is denominated in the source account's currency and TargetAmount, when
// present, in the destination account's currency.
type Transaction struct {
	Date                time.Time
	TargetAmount        decimal.NullDecimal
	Amount              decimal.Decimal
	ID                  string
	CurrencyCode        string
	AccountID           string
	TransferToAccountID string
	CategoryID          string
	InvestmentID        string
	ProjectID           string
	Note                string
	Type                TransactionType
}

// IsTransfer reports whether the transaction moves money between two accounts.
func (t *Transaction) IsTransfer() bool {
	return t.Type == TransactionTypeTransfer
}

// Touches reports whether the transaction references the account as source or destination.
func (t *Transaction) Touches(accountID string) bool {
	if accountID == "" {
		return false
	}
	return t.AccountID == accountID || t.TransferToAccountID == accountID
}
