package service

import (
	"strings"

	"github.com/hamid26126/CashMate/internal/models"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	healthBase   = decimal.NewFromInt(100)
	healthWeight = decimal.NewFromInt(50)
)

// applyToTotals adds delta to the lifetime total matching txType and
// recomputes the user's financial health.
func applyToTotals(user *models.User, txType models.TransactionType, delta decimal.Decimal) {
	switch txType {
	case models.TransactionTypeIncome:
		user.TotalIncome = decimal.NewFromFloat(user.TotalIncome).Add(delta).InexactFloat64()
	case models.TransactionTypeExpense:
		user.TotalExpense = decimal.NewFromFloat(user.TotalExpense).Add(delta).InexactFloat64()
	}
	user.FinancialHealth = financialHealth(user.TotalIncome, user.TotalExpense)
}

// financialHealth is 100 - expense/income*50 clamped to [0, 100]. A zero
// income is treated as 1.
func financialHealth(income, expense float64) float64 {
	in := decimal.NewFromFloat(income)
	if in.IsZero() {
		in = decimal.NewFromInt(1)
	}
	score := healthBase.Sub(decimal.NewFromFloat(expense).Div(in).Mul(healthWeight))
	if score.LessThan(decimal.Zero) {
		return 0
	}
	if score.GreaterThan(healthBase) {
		return 100
	}
	return score.Round(2).InexactFloat64()
}

// normalizeCategory trims and title-cases a category name so "food " and
// "Food" group together.
func normalizeCategory(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return ""
	}
	// Casers are stateful and cannot be shared between goroutines.
	return cases.Title(language.English).String(name)
}

// sumAmounts adds amounts with decimal precision.
func sumAmounts(amounts ...float64) float64 {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(decimal.NewFromFloat(a))
	}
	return total.InexactFloat64()
}
