package chat

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/hamid26126/CashMate/internal/models"
	"github.com/hamid26126/CashMate/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func tx(desc, category string, amount float64, typ models.TransactionType, daysAgo int) *models.Transaction {
	return &models.Transaction{
		Description: desc,
		Category:    models.CategoryRef{Name: category},
		Amount:      amount,
		Type:        typ,
		Date:        time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -daysAgo),
	}
}

func TestBuildSummary(t *testing.T) {
	ctrl := gomock.NewController(t)
	reader := NewMockFinanceReader(ctrl)

	reader.EXPECT().GetUser(gomock.Any(), "user-1").Return(&models.User{
		ID:              "user-1",
		FullName:        "Sam Rivera",
		TotalIncome:     1000,
		TotalExpense:    400,
		MonthlyIncome:   2500,
		FinancialHealth: 80.4,
	}, nil)
	reader.EXPECT().ListRecentTransactions(gomock.Any(), "user-1", 30).Return([]*models.Transaction{
		tx("Groceries", "Food", 40.25, models.TransactionTypeExpense, 0),
		tx("Salary", "Work", 900, models.TransactionTypeIncome, 1),
		tx("Dinner", "Food", 19.75, models.TransactionTypeExpense, 2),
		tx("Bus", "", 3.5, models.TransactionTypeExpense, 3),
		tx("Cinema", "Fun", 12, models.TransactionTypeExpense, 4),
		tx("Refund", "Fun", 5, models.TransactionTypeIncome, 5),
	}, nil)

	s, err := BuildSummary(context.Background(), reader, "user-1", 0)
	require.NoError(t, err)

	assert.Equal(t, "Sam Rivera", s.UserName)
	assert.Equal(t, "600", s.CurrentBalance.String())
	assert.True(t, s.CurrentBalance.Equal(s.TotalIncome.Sub(s.TotalExpense)))
	assert.Equal(t, "60.00", s.SavingsRate.StringFixed(2))
	assert.Equal(t, 80, s.HealthScore)
	assert.Equal(t, "2500", s.MonthlyIncome.String())

	// Window analytics only cover the fetched transactions.
	assert.Equal(t, "905", s.WindowIncome.String())
	assert.Equal(t, "75.5", s.WindowExpense.String())
	assert.Equal(t, "60", s.ExpensesByCategory["Food"].String())
	assert.Equal(t, "3.5", s.ExpensesByCategory[models.UncategorizedCategory].String())
	assert.Equal(t, "12", s.ExpensesByCategory["Fun"].String())
	assert.Len(t, s.ExpensesByCategory, 3)

	assert.Equal(t, 6, s.TransactionCount)
	require.Len(t, s.RecentTransactions, RecentViewSize)
	assert.Equal(t, "Groceries", s.RecentTransactions[0].Description)
	assert.Equal(t, models.UncategorizedCategory, s.RecentTransactions[3].Category)
}

func TestBuildSummary_BalanceInvariant(t *testing.T) {
	totals := []struct{ income, expense float64 }{
		{0, 0}, {1000, 400}, {100, 250.5}, {0.1, 0.2}, {123456.78, 0.01},
	}
	for _, tt := range totals {
		t.Run(fmt.Sprintf("%v-%v", tt.income, tt.expense), func(t *testing.T) {
			ctrl := gomock.NewController(t)
			reader := NewMockFinanceReader(ctrl)
			reader.EXPECT().GetUser(gomock.Any(), "u").Return(&models.User{TotalIncome: tt.income, TotalExpense: tt.expense}, nil)
			reader.EXPECT().ListRecentTransactions(gomock.Any(), "u", gomock.Any()).Return(nil, nil)

			s, err := BuildSummary(context.Background(), reader, "u", 30)
			require.NoError(t, err)
			assert.True(t, s.CurrentBalance.Equal(s.TotalIncome.Sub(s.TotalExpense)))
		})
	}
}

func TestBuildSummary_SavingsRateZeroIncome(t *testing.T) {
	ctrl := gomock.NewController(t)
	reader := NewMockFinanceReader(ctrl)
	reader.EXPECT().GetUser(gomock.Any(), "u").Return(&models.User{TotalExpense: 50}, nil)
	reader.EXPECT().ListRecentTransactions(gomock.Any(), "u", 30).Return(nil, nil)

	s, err := BuildSummary(context.Background(), reader, "u", 30)
	require.NoError(t, err)
	assert.True(t, s.SavingsRate.IsZero())
	assert.Equal(t, "-50", s.CurrentBalance.String())
}

func TestBuildSummary_HealthScoreClamped(t *testing.T) {
	for raw, want := range map[float64]int{-20: 0, 0: 0, 49.5: 50, 100: 100, 140: 100} {
		ctrl := gomock.NewController(t)
		reader := NewMockFinanceReader(ctrl)
		reader.EXPECT().GetUser(gomock.Any(), "u").Return(&models.User{FinancialHealth: raw}, nil)
		reader.EXPECT().ListRecentTransactions(gomock.Any(), "u", 30).Return(nil, nil)

		s, err := BuildSummary(context.Background(), reader, "u", 30)
		require.NoError(t, err)
		assert.Equal(t, want, s.HealthScore, "raw %v", raw)
	}
}

func TestBuildSummary_UserNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	reader := NewMockFinanceReader(ctrl)
	reader.EXPECT().GetUser(gomock.Any(), "ghost").Return(nil, fmt.Errorf("user ghost: %w", store.ErrNotFound))

	_, err := BuildSummary(context.Background(), reader, "ghost", 30)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestBuildSummary_StoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	reader := NewMockFinanceReader(ctrl)
	reader.EXPECT().GetUser(gomock.Any(), "u").Return(&models.User{}, nil)
	reader.EXPECT().ListRecentTransactions(gomock.Any(), "u", 30).Return(nil, errors.New("connection reset"))

	_, err := BuildSummary(context.Background(), reader, "u", 30)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUserNotFound)
}

func TestSummary_TopCategoryTieBreak(t *testing.T) {
	s := &Summary{ExpensesByCategory: map[string]decimal.Decimal{
		"Travel": decimal.NewFromInt(50),
		"Food":   decimal.NewFromInt(50),
		"Fun":    decimal.NewFromInt(10),
	}}

	name, amount, ok := s.TopCategory()
	require.True(t, ok)
	assert.Equal(t, "Food", name)
	assert.Equal(t, "50", amount.String())

	_, _, ok = (&Summary{}).TopCategory()
	assert.False(t, ok)
}
