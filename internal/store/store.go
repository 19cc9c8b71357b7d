package store

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/hamid26126/CashMate/internal/models"
)

// ErrNotFound is returned (wrapped) by every lookup that misses.
var ErrNotFound = errors.New("not found")

// ErrAlreadyExists is returned when a unique field such as an email is taken.
var ErrAlreadyExists = errors.New("already exists")

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
}

// Store defines the interface for all database operations used by the service
type Store interface {
	// User operations
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, userID string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// UpdateUserFunc reads the user, applies fn and saves the result as one
	// atomic step, returning the saved record. An error from fn aborts the
	// update and is returned unchanged. fn may run more than once.
	UpdateUserFunc(ctx context.Context, userID string, fn func(*models.User) error) (*models.User, error)
	// DeleteUser removes the user and every record owned by them.
	DeleteUser(ctx context.Context, userID string) error

	// Transaction operations
	CreateTransaction(ctx context.Context, tx *models.Transaction) error
	GetTransaction(ctx context.Context, txID string) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, tx *models.Transaction) error
	DeleteTransaction(ctx context.Context, txID string) error
	// ListRecentTransactions returns up to limit transactions, newest first.
	// A non-positive limit returns all of them.
	ListRecentTransactions(ctx context.Context, userID string, limit int) ([]*models.Transaction, error)
	ListTransactions(ctx context.Context, userID string, txType models.TransactionType, pageSize int32, pageToken string) ([]*models.Transaction, string, error)

	// Goal operations
	CreateGoal(ctx context.Context, goal *models.Goal) error
	GetGoal(ctx context.Context, goalID string) (*models.Goal, error)
	UpdateGoalFunc(ctx context.Context, goalID string, fn func(*models.Goal) error) (*models.Goal, error)
	// DeleteGoal removes the goal together with its savings.
	DeleteGoal(ctx context.Context, goalID string) error
	ListGoals(ctx context.Context, userID string, status models.GoalStatus) ([]*models.Goal, error)

	// Saving operations
	CreateSaving(ctx context.Context, saving *models.Saving) error
	GetSaving(ctx context.Context, savingID string) (*models.Saving, error)
	UpdateSavingFunc(ctx context.Context, savingID string, fn func(*models.Saving) error) (*models.Saving, error)
	ListSavings(ctx context.Context, userID, goalID string, status models.SavingStatus) ([]*models.Saving, error)

	// Reminder operations
	CreateReminder(ctx context.Context, reminder *models.Reminder) error
	GetReminder(ctx context.Context, reminderID string) (*models.Reminder, error)
	UpdateReminder(ctx context.Context, reminder *models.Reminder) error
	DeleteReminder(ctx context.Context, reminderID string) error
	// ListReminders returns the user's reminders ordered by date then time.
	ListReminders(ctx context.Context, userID string) ([]*models.Reminder, error)
	// ListDueReminders returns active, not yet notified reminders of every
	// user scheduled at hhmm on or before dayEnd.
	ListDueReminders(ctx context.Context, hhmm string, dayEnd time.Time) ([]*models.Reminder, error)

	// Notification operations
	CreateNotification(ctx context.Context, notification *models.Notification) error
	GetNotification(ctx context.Context, notificationID string) (*models.Notification, error)
	ListNotifications(ctx context.Context, userID string, unreadOnly bool, pageSize int32, pageToken string) ([]*models.Notification, string, error)
	MarkNotificationRead(ctx context.Context, notificationID string) error
	MarkAllNotificationsRead(ctx context.Context, userID string) error
	DeleteNotification(ctx context.Context, notificationID string) error
	GetUnreadNotificationCount(ctx context.Context, userID string) (int32, error)
	GetNotificationPreferences(ctx context.Context, userID string) (*models.NotificationPreferences, error)
	UpdateNotificationPreferences(ctx context.Context, prefs *models.NotificationPreferences) error

	// Chat history operations
	CreateChatMessage(ctx context.Context, msg *models.ChatMessage) error
	// ListChatMessages returns the last limit messages of a conversation,
	// oldest first. An empty conversationID lists across conversations.
	ListChatMessages(ctx context.Context, userID, conversationID string, limit int) ([]*models.ChatMessage, error)
	DeleteChatMessages(ctx context.Context, userID string) error
}

// defaultNotificationPreferences is used for users that never saved any.
func defaultNotificationPreferences(userID string) *models.NotificationPreferences {
	return &models.NotificationPreferences{
		UserID:         userID,
		PushEnabled:    true,
		EmailReminders: false,
	}
}

// EncodePageToken encodes a document ID into a page token.
func EncodePageToken(docID string) string {
	if docID == "" {
		return ""
	}
	return base64.URLEncoding.EncodeToString([]byte(docID))
}

// DecodePageToken decodes a page token back to a document ID.
func DecodePageToken(token string) (string, error) {
	if token == "" {
		return "", nil
	}
	b, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
