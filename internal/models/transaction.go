package models

import "time"

// TransactionType distinguishes money coming in from money going out.
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// UncategorizedCategory is reported for transactions without a category name.
const UncategorizedCategory = "Uncategorized"

// CategoryRef is the denormalised category stored on a transaction.
type CategoryRef struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// Transaction is a single income or expense entry.
type Transaction struct {
	ID          string          `json:"id"`
	UserID      string          `json:"userId"`
	Description string          `json:"description"`
	Amount      float64         `json:"amount"`
	Type        TransactionType `json:"type"`
	Category    CategoryRef     `json:"category"`
	Date        time.Time       `json:"date"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// CategoryName returns the category name or UncategorizedCategory.
func (t *Transaction) CategoryName() string {
	if t.Category.Name == "" {
		return UncategorizedCategory
	}
	return t.Category.Name
}
