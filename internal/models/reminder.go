package models

import "time"

type ReminderFrequency string

const (
	FrequencyOnce    ReminderFrequency = "once"
	FrequencyDaily   ReminderFrequency = "daily"
	FrequencyWeekly  ReminderFrequency = "weekly"
	FrequencyMonthly ReminderFrequency = "monthly"
	FrequencyYearly  ReminderFrequency = "yearly"
)

func (f ReminderFrequency) Valid() bool {
	switch f {
	case FrequencyOnce, FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	}
	return false
}

// Next returns the date of the occurrence after from. Once reminders do not
// recur and return from unchanged.
func (f ReminderFrequency) Next(from time.Time) time.Time {
	switch f {
	case FrequencyDaily:
		return from.AddDate(0, 0, 1)
	case FrequencyWeekly:
		return from.AddDate(0, 0, 7)
	case FrequencyMonthly:
		return from.AddDate(0, 1, 0)
	case FrequencyYearly:
		return from.AddDate(1, 0, 0)
	default:
		return from
	}
}

// Reminder fires a notification at Time (HH:MM, 24h) on Date and, for
// recurring reminders, on every following occurrence while Active.
type Reminder struct {
	ID            string            `json:"id"`
	UserID        string            `json:"userId"`
	Title         string            `json:"title"`
	Description   string            `json:"description"`
	Date          time.Time         `json:"date"`
	Time          string            `json:"time"`
	Frequency     ReminderFrequency `json:"frequency"`
	IsCompleted   bool              `json:"isCompleted"`
	Active        bool              `json:"active"`
	Notified      bool              `json:"notified"`
	LastTriggered *time.Time        `json:"lastTriggered,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}
