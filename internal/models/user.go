// Package models holds the persisted records of the CashMate backend.
package models

import "time"

// DefaultFinancialHealth is the score a freshly registered user starts with.
const DefaultFinancialHealth = 50

// User is an account holder together with the running lifetime totals that
// every transaction mutation keeps up to date.
type User struct {
	ID              string    `json:"id"`
	FullName        string    `json:"fullName"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"-"`
	AvatarURL       string    `json:"avatarUrl,omitempty"`
	AvatarObject    string    `json:"-"`
	MonthlyIncome   float64   `json:"monthlyIncome"`
	TotalIncome     float64   `json:"totalIncome"`
	TotalExpense    float64   `json:"totalExpense"`
	FinancialHealth float64   `json:"financialHealth"`
	MemberSince     time.Time `json:"memberSince"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Balance is lifetime income minus lifetime expense.
func (u *User) Balance() float64 {
	return u.TotalIncome - u.TotalExpense
}
