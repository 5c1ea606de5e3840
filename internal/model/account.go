package model

import "github.com/shopspring/decimal"

// AccountType classifies accounts.
type AccountType string

// Account type constants.
const (
	AccountTypeCash       AccountType = "CASH"
	AccountTypeBank       AccountType = "BANK"
	AccountTypeCredit     AccountType = "CREDIT"
	AccountTypeInvestment AccountType = "INVESTMENT"
	AccountTypeAsset      AccountType = "ASSET"
	AccountTypeOther      AccountType = "OTHER"
)

// IsCash reports whether balances of this account type count as cash.
// Investment and asset accounts are valued through the investments table instead.
func (t AccountType) IsCash() bool {
	return t != AccountTypeInvestment && t != AccountTypeAsset
}

// Account holds money in a single currency.
//
// CurrentBalance is a denormalized cache of InitialBalance plus the net effect of
// every transaction referencing the account. It is not authoritative until it has
// been reconciled.
type Account struct {
	InitialBalance decimal.Decimal
	CurrentBalance decimal.Decimal
	ID             string
	Name           string
	CurrencyCode   string
	Type           AccountType
}
