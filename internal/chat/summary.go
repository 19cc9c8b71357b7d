// Package chat implements the financial assistant's response pipeline: it
// summarises a user's finances, decides whether the language model may be
// called at all, and degrades to locally generated answers when it may not.
package chat

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/hamid26126/CashMate/internal/models"
	"github.com/hamid26126/CashMate/internal/store"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=summary.go -destination=chat_mock.go -package=chat

// ErrUserNotFound is returned by BuildSummary when the user does not exist.
var ErrUserNotFound = errors.New("user not found")

const (
	// DefaultRecentWindow is how many transactions feed the window analytics.
	DefaultRecentWindow = 30
	// RecentViewSize is how many transactions the summary exposes.
	RecentViewSize = 5
)

var hundred = decimal.NewFromInt(100)

// FinanceReader is the slice of the store the summary needs.
type FinanceReader interface {
	GetUser(ctx context.Context, userID string) (*models.User, error)
	ListRecentTransactions(ctx context.Context, userID string, limit int) ([]*models.Transaction, error)
}

// RecentTransaction is the simplified view of a transaction shown to the model.
type RecentTransaction struct {
	Description string                 `json:"description"`
	Category    string                 `json:"category"`
	Amount      decimal.Decimal        `json:"amount"`
	Type        models.TransactionType `json:"type"`
	Date        time.Time              `json:"date"`
}

// Summary is derived per request and never cached.
//
// TotalIncome, TotalExpense and CurrentBalance come from the user's lifetime
// totals; WindowIncome, WindowExpense and ExpensesByCategory only cover the
// fetched recent window.
type Summary struct {
	UserName           string
	TotalIncome        decimal.Decimal
	TotalExpense       decimal.Decimal
	CurrentBalance     decimal.Decimal
	SavingsRate        decimal.Decimal // percent, two decimals
	HealthScore        int             // 0..100
	MonthlyIncome      decimal.Decimal
	WindowIncome       decimal.Decimal
	WindowExpense      decimal.Decimal
	ExpensesByCategory map[string]decimal.Decimal
	RecentTransactions []RecentTransaction // newest first
	TransactionCount   int
}

// TopCategory returns the expense category with the largest total. Ties go to
// the alphabetically first name. ok is false when there are no expenses.
func (s *Summary) TopCategory() (name string, amount decimal.Decimal, ok bool) {
	names := make([]string, 0, len(s.ExpensesByCategory))
	for n := range s.ExpensesByCategory {
		names = append(names, n)
	}
	sort.Strings(names)

	for _, n := range names {
		v := s.ExpensesByCategory[n]
		if !ok || v.GreaterThan(amount) {
			name, amount, ok = n, v, true
		}
	}
	return name, amount, ok
}

// BuildSummary loads the user and up to window recent transactions and
// derives the summary. A missing user yields ErrUserNotFound; any other
// store failure is returned wrapped.
func BuildSummary(ctx context.Context, reader FinanceReader, userID string, window int) (*Summary, error) {
	if window <= 0 {
		window = DefaultRecentWindow
	}

	user, err := reader.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}

	txs, err := reader.ListRecentTransactions(ctx, userID, window)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	if len(txs) > window {
		txs = txs[:window]
	}

	s := &Summary{
		UserName:           user.FullName,
		TotalIncome:        decimal.NewFromFloat(user.TotalIncome),
		TotalExpense:       decimal.NewFromFloat(user.TotalExpense),
		MonthlyIncome:      decimal.NewFromFloat(user.MonthlyIncome),
		HealthScore:        clampScore(user.FinancialHealth),
		ExpensesByCategory: make(map[string]decimal.Decimal),
		TransactionCount:   len(txs),
	}
	s.CurrentBalance = s.TotalIncome.Sub(s.TotalExpense)
	s.SavingsRate = savingsRate(s.TotalIncome, s.TotalExpense)

	for i, tx := range txs {
		amount := decimal.NewFromFloat(tx.Amount)
		switch tx.Type {
		case models.TransactionTypeIncome:
			s.WindowIncome = s.WindowIncome.Add(amount)
		case models.TransactionTypeExpense:
			s.WindowExpense = s.WindowExpense.Add(amount)
			category := tx.CategoryName()
			s.ExpensesByCategory[category] = s.ExpensesByCategory[category].Add(amount)
		}
		if i < RecentViewSize {
			s.RecentTransactions = append(s.RecentTransactions, RecentTransaction{
				Description: tx.Description,
				Category:    tx.CategoryName(),
				Amount:      amount,
				Type:        tx.Type,
				Date:        tx.Date,
			})
		}
	}

	return s, nil
}

func savingsRate(income, expense decimal.Decimal) decimal.Decimal {
	if !income.IsPositive() {
		return decimal.Zero
	}
	return income.Sub(expense).Div(income).Mul(hundred).Round(2)
}

func clampScore(v float64) int {
	score := decimal.NewFromFloat(v).Round(0).IntPart()
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return int(score)
}
