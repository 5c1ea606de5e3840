package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvestmentType classifies investments.
type InvestmentType string

// Investment type constants.
const (
	InvestmentTypeAsset   InvestmentType = "ASSET"
	InvestmentTypeDeposit InvestmentType = "DEPOSIT"
	InvestmentTypeStock   InvestmentType = "STOCK"
	InvestmentTypeFund    InvestmentType = "FUND"
	InvestmentTypeBond    InvestmentType = "BOND"
	InvestmentTypeCrypto  InvestmentType = "CRYPTO"
	InvestmentTypeOther   InvestmentType = "OTHER"
)

// InvestmentStatus is the lifecycle state of an investment.
type InvestmentStatus string

// Investment status constants.
const (
	InvestmentStatusActive  InvestmentStatus = "ACTIVE"
	InvestmentStatusSold    InvestmentStatus = "SOLD"
	InvestmentStatusMatured InvestmentStatus = "MATURED"
	InvestmentStatusClosed  InvestmentStatus = "CLOSED"
)

// DepreciationMethod selects the depreciation schedule of a fixed asset.
type DepreciationMethod string

// Depreciation method constants.
const (
	DepreciationStraightLine     DepreciationMethod = "STRAIGHT_LINE"
	DepreciationDecliningBalance DepreciationMethod = "DECLINING_BALANCE"
)

// Investment is a financial investment or a fixed asset.
//
// ASSET investments with PurchasePrice, UsefulLife and DepreciationType set are
// valued by their depreciation schedule. DEPOSIT investments with InterestRate
// accrue simple interest. Everything else uses CurrentAmount or InitialAmount.
type Investment struct {
	StartDate        time.Time
	EndDate          *time.Time
	CurrentAmount    decimal.NullDecimal
	PurchasePrice    decimal.NullDecimal
	SalvageValue     decimal.NullDecimal
	UsefulLife       decimal.NullDecimal // years
	InterestRate     decimal.NullDecimal // percent per year
	InitialAmount    decimal.Decimal
	ID               string
	Name             string
	CurrencyCode     string
	ProjectID        string
	Type             InvestmentType
	Status           InvestmentStatus
	DepreciationType DepreciationMethod
}

// IsActive reports whether the investment contributes to capital.
func (i *Investment) IsActive() bool {
	return i.Status == InvestmentStatusActive
}

// IsDepreciable reports whether the investment is a fixed asset with a complete
// depreciation setup.
func (i *Investment) IsDepreciable() bool {
	return i.Type == InvestmentTypeAsset &&
		i.PurchasePrice.Valid &&
		i.UsefulLife.Valid &&
		i.DepreciationType != ""
}

// DepreciationResult is the depreciation state of an asset on a given day.
type DepreciationResult struct {
	BookValue               float64 `json:"book_value"`
	AccumulatedDepreciation float64 `json:"accumulated_depreciation"`
	RemainingLife           float64 `json:"remaining_life"`
	DailyDepreciation       float64 `json:"daily_depreciation"`
	AnnualDepreciation      float64 `json:"annual_depreciation"`
}
