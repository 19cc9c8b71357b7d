package chat

import (
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

const (
	// UnavailableText is returned when no summary can be built for the user.
	UnavailableText = "I couldn't load your financial data right now. Please try again in a moment."
	// ApologyText is returned when every degradation path is exhausted.
	ApologyText = "Sorry, I'm having trouble answering right now. Please try again later."
)

var twenty = decimal.NewFromInt(20)

// fallbackRule answers a message when one of its words starts with a stem,
// or equals one of its exact words.
type fallbackRule struct {
	stems  []string
	exact  []string
	answer func(s *Summary) string
}

// fallbackRules are evaluated in order; the first match wins.
var fallbackRules = []fallbackRule{
	{stems: []string{"balance", "money"}, exact: []string{"left"}, answer: balanceAnswer},
	{stems: []string{"spend", "spent", "expense"}, answer: spendingAnswer},
	{stems: []string{"income", "earn"}, answer: incomeAnswer},
	{stems: []string{"health", "score"}, answer: healthAnswer},
	{stems: []string{"save", "saving", "goal"}, answer: savingAnswer},
}

func (r fallbackRule) matches(words []string) bool {
	for _, w := range words {
		for _, stem := range r.stems {
			if strings.HasPrefix(w, stem) {
				return true
			}
		}
		if slices.Contains(r.exact, w) {
			return true
		}
	}
	return false
}

// Fallback produces a deterministic, keyword-driven answer from the summary
// alone. It never touches the network and is safe to call concurrently.
func Fallback(message string, s *Summary) string {
	if s == nil {
		return UnavailableText
	}

	words := strings.FieldsFunc(strings.ToLower(message), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, rule := range fallbackRules {
		if rule.matches(words) {
			return rule.answer(s)
		}
	}
	return defaultAnswer(s)
}

func balanceAnswer(s *Summary) string {
	return fmt.Sprintf("Your current balance is %s. You've earned %s in total and spent %s.",
		money(s.CurrentBalance), money(s.TotalIncome), money(s.TotalExpense))
}

func spendingAnswer(s *Summary) string {
	name, amount, ok := s.TopCategory()
	if !ok {
		return fmt.Sprintf("You haven't recorded any expenses recently. Your total expenses are %s.", money(s.TotalExpense))
	}
	return fmt.Sprintf("Your top spending category is %s at %s. Your total expenses are %s.",
		name, money(amount), money(s.TotalExpense))
}

func incomeAnswer(s *Summary) string {
	return fmt.Sprintf("Your total income is %s and your savings rate is %s%%.",
		money(s.TotalIncome), s.SavingsRate.StringFixed(2))
}

func healthAnswer(s *Summary) string {
	var qualifier string
	switch {
	case s.HealthScore >= 80:
		qualifier = "You're in great shape. Keep it up!"
	case s.HealthScore >= 50:
		qualifier = "You're doing okay, but there's room to improve."
	default:
		qualifier = "Try reducing your expenses to improve it."
	}
	return fmt.Sprintf("Your financial health score is %d/100. %s", s.HealthScore, qualifier)
}

func savingAnswer(s *Summary) string {
	if !s.MonthlyIncome.IsPositive() {
		return "Set your monthly income in your profile and I can suggest how much to save toward your goals."
	}
	suggested := s.MonthlyIncome.Mul(twenty).Div(hundred)
	return fmt.Sprintf("Try setting aside 20%% of your monthly income (%s) toward your goals each month.", money(suggested))
}

func defaultAnswer(s *Summary) string {
	return fmt.Sprintf("Your current balance is %s and your financial health score is %d/100. "+
		"Ask me about your balance, spending, income, health score or savings goals.",
		money(s.CurrentBalance), s.HealthScore)
}

// money formats d as dollars with two decimals, e.g. $600.00 or -$12.50.
func money(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-$" + d.Neg().StringFixed(2)
	}
	return "$" + d.StringFixed(2)
}
