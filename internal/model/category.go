package model

// CategoryType indicates whether a category is for income or expense.
type CategoryType string

const (
	// CategoryTypeIncome represents categories for income transactions.
	CategoryTypeIncome CategoryType = "INCOME"
	// CategoryTypeExpense represents categories for expense transactions.
	CategoryTypeExpense CategoryType = "EXPENSE"
)

// Category labels transactions for reporting.
//
// IsSystemGenerated marks synthetic categories (investment purchases, depreciation,
// internal transfers) that are created by the application rather than the user.
// It is fixed when the category is created and never derived from the name.
type Category struct {
	ID                string
	Name              string
	Type              CategoryType
	IsSystemGenerated bool
}

// CategoryIndex maps category IDs to categories.
type CategoryIndex map[string]Category

// NewCategoryIndex builds an index from a slice of categories.
func NewCategoryIndex(categories []Category) CategoryIndex {
	idx := make(CategoryIndex, len(categories))
	for _, c := range categories {
		idx[c.ID] = c
	}
	return idx
}

// IsSystem reports whether the category with the given ID is system generated.
// Unknown or empty IDs are treated as user categories.
func (idx CategoryIndex) IsSystem(id string) bool {
	if id == "" {
		return false
	}
	c, ok := idx[id]
	return ok && c.IsSystemGenerated
}
