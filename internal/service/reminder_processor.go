package service

import (
	"context"
	"fmt"
	"time"

	"github.com/hamid26126/CashMate/internal/models"
	"github.com/sirupsen/logrus"
)

// ReminderRunStats summarises one pass of the reminder processor.
type ReminderRunStats struct {
	Triggered int
	Errors    int
}

// ProcessDueReminders fires every active, not yet notified reminder
// scheduled for now's HH:MM on or before today. Recurring reminders move to
// their next occurrence. A failure on one reminder does not stop the others.
// It is driven by the per-minute cron job and needs no authenticated user.
func (s *FinanceService) ProcessDueReminders(ctx context.Context, now time.Time) (ReminderRunStats, error) {
	var stats ReminderRunStats

	hhmm := now.Format("15:04")
	dayEnd := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, now.Location())

	reminders, err := s.store.ListDueReminders(ctx, hhmm, dayEnd)
	if err != nil {
		return stats, fmt.Errorf("list due reminders: %w", err)
	}

	for _, reminder := range reminders {
		if err := s.triggerReminder(ctx, reminder, now); err != nil {
			s.log.WithError(err).WithFields(logrus.Fields{
				"reminder_id": reminder.ID,
				"user_id":     reminder.UserID,
			}).Error("failed to trigger reminder")
			stats.Errors++
			continue
		}
		stats.Triggered++
	}

	s.log.WithFields(logrus.Fields{
		"time":      hhmm,
		"due":       len(reminders),
		"triggered": stats.Triggered,
		"errors":    stats.Errors,
	}).Debug("reminder check completed")

	return stats, nil
}

func (s *FinanceService) triggerReminder(ctx context.Context, reminder *models.Reminder, now time.Time) error {
	if err := s.notifier.NotifyReminder(ctx, reminder); err != nil {
		return err
	}

	triggered := now
	reminder.Notified = true
	reminder.LastTriggered = &triggered
	reminder.UpdatedAt = now

	if reminder.Frequency != models.FrequencyOnce {
		reminder.Date = reminder.Frequency.Next(reminder.Date)
		reminder.Notified = false
	}

	if err := s.store.UpdateReminder(ctx, reminder); err != nil {
		return fmt.Errorf("update reminder: %w", err)
	}
	return nil
}
