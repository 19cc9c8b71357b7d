package service

//go:generate mockgen -source=deps.go -destination=deps_mock.go -package=service

import (
	"context"

	"firebase.google.com/go/v4/messaging"
	"github.com/hamid26126/CashMate/internal/chat"
	"github.com/hamid26126/CashMate/internal/models"
	"github.com/hamid26126/CashMate/internal/search"
)

// TransactionIndex keeps a full-text index of transactions.
type TransactionIndex interface {
	IndexTransaction(ctx context.Context, tx *models.Transaction) error
	RemoveTransaction(ctx context.Context, txID string) error
	Search(ctx context.Context, params search.SearchParams) (*search.SearchResponse, error)
}

// ChatResponder answers a chat message for a user.
type ChatResponder interface {
	SendMessage(ctx context.Context, userID, message string, history []chat.Turn) (chat.Reply, error)
}

// PushSender delivers a push message. *messaging.Client implements it.
type PushSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// ReminderMailer emails a fired reminder. *mailer.Sender implements it.
type ReminderMailer interface {
	SendReminder(user *models.User, reminder *models.Reminder) error
}

// AvatarStorage persists profile photos.
type AvatarStorage interface {
	// Upload stores data and returns the object name and its public URL.
	Upload(ctx context.Context, userID, ext, contentType string, data []byte) (object, url string, err error)
	Delete(ctx context.Context, object string) error
}
