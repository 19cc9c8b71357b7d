package chat

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hamid26126/CashMate/internal/llm"
	"github.com/shopspring/decimal"
)

const maxPromptCategories = 5

// Turn is one earlier message of the conversation. Role is "user" or "bot".
type Turn struct {
	Role    string
	Message string
}

// systemPrompt renders the summary as a bounded fact sheet for the model.
func systemPrompt(s *Summary) string {
	var b strings.Builder
	b.WriteString("You are CashMate, a friendly personal finance assistant. ")
	b.WriteString("Answer in at most three sentences using only the facts below. ")
	b.WriteString("Never invent figures; if the facts do not cover the question, say so.\n\n")

	name := s.UserName
	if name == "" {
		name = "the user"
	}
	fmt.Fprintf(&b, "User: %s\n", name)
	fmt.Fprintf(&b, "Current balance: %s\n", money(s.CurrentBalance))
	fmt.Fprintf(&b, "Total income: %s\n", money(s.TotalIncome))
	fmt.Fprintf(&b, "Total expenses: %s\n", money(s.TotalExpense))
	fmt.Fprintf(&b, "Savings rate: %s%%\n", s.SavingsRate.StringFixed(2))
	fmt.Fprintf(&b, "Financial health score: %d/100\n", s.HealthScore)
	fmt.Fprintf(&b, "Monthly income: %s\n", money(s.MonthlyIncome))

	if len(s.ExpensesByCategory) > 0 {
		b.WriteString("Spending by category (recent): ")
		b.WriteString(strings.Join(topCategories(s.ExpensesByCategory, maxPromptCategories), ", "))
		b.WriteString("\n")
	}

	if len(s.RecentTransactions) > 0 {
		b.WriteString("Recent transactions:\n")
		for _, tx := range s.RecentTransactions {
			fmt.Fprintf(&b, "- %s %s (%s, %s) %s\n",
				tx.Date.Format("2006-01-02"), tx.Description, tx.Category, tx.Type, money(tx.Amount))
		}
	}
	return b.String()
}

func topCategories(byCategory map[string]decimal.Decimal, n int) []string {
	names := make([]string, 0, len(byCategory))
	for name := range byCategory {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ai, aj := byCategory[names[i]], byCategory[names[j]]
		if !ai.Equal(aj) {
			return ai.GreaterThan(aj)
		}
		return names[i] < names[j]
	})
	if len(names) > n {
		names = names[:n]
	}

	out := make([]string, len(names))
	for i, name := range names {
		out[i] = name + " " + money(byCategory[name])
	}
	return out
}

// historyMessages keeps the last turns entries, each cut to maxChars runes.
func historyMessages(history []Turn, turns, maxChars int) []llm.Message {
	if turns <= 0 {
		return nil
	}
	if len(history) > turns {
		history = history[len(history)-turns:]
	}

	out := make([]llm.Message, 0, len(history))
	for _, t := range history {
		role := "user"
		if t.Role == "bot" || t.Role == "assistant" {
			role = "assistant"
		}
		out = append(out, llm.Message{Role: role, Content: truncateRunes(t.Message, maxChars)})
	}
	return out
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
