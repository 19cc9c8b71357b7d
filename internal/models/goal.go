package models

import "time"

type GoalStatus string

const (
	GoalStatusActive    GoalStatus = "active"
	GoalStatusCompleted GoalStatus = "completed"
	GoalStatusAbandoned GoalStatus = "abandoned"
)

func (s GoalStatus) Valid() bool {
	switch s {
	case GoalStatusActive, GoalStatusCompleted, GoalStatusAbandoned:
		return true
	}
	return false
}

// Goal is a savings target the user allocates money towards.
type Goal struct {
	ID             string     `json:"id"`
	UserID         string     `json:"userId"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	TargetAmount   float64    `json:"targetAmount"`
	AchievedAmount float64    `json:"achievedAmount"`
	TargetDate     time.Time  `json:"targetDate"`
	Status         GoalStatus `json:"status"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

type SavingStatus string

const (
	SavingStatusAllocated SavingStatus = "allocated"
	SavingStatusRefunded  SavingStatus = "refunded"
)

// Saving is an amount allocated from the user's balance to a goal.
type Saving struct {
	ID        string       `json:"id"`
	UserID    string       `json:"userId"`
	GoalID    string       `json:"goalId"`
	Amount    float64      `json:"amount"`
	Status    SavingStatus `json:"status"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}
