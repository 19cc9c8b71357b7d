package service

import (
	"context"
	"fmt"
	"time"

	"firebase.google.com/go/v4/messaging"
	"github.com/google/uuid"
	"github.com/hamid26126/CashMate/internal/models"
	"github.com/hamid26126/CashMate/internal/store"
	"github.com/sirupsen/logrus"
)

// Notifier records in-app notifications and fans them out to push and email
// when the user has enabled those channels.
type Notifier struct {
	store  store.Store
	push   PushSender
	mailer ReminderMailer
	log    logrus.FieldLogger
	now    func() time.Time
}

func NewNotifier(store store.Store, log logrus.FieldLogger) *Notifier {
	return &Notifier{
		store: store,
		log:   log.WithField("component", "notifier"),
		now:   time.Now,
	}
}

// SetPushSender enables push delivery through Firebase Cloud Messaging.
func (n *Notifier) SetPushSender(push PushSender) {
	n.push = push
}

// SetMailer enables reminder emails.
func (n *Notifier) SetMailer(mailer ReminderMailer) {
	n.mailer = mailer
}

// Notify creates a notification and pushes it. Failures are logged, never
// returned.
func (n *Notifier) Notify(ctx context.Context, userID string, typ models.NotificationType, title, message string, metadata map[string]string) {
	if _, err := n.create(ctx, userID, typ, title, message, metadata); err != nil {
		n.log.WithError(err).WithField("user_id", userID).Error("failed to create notification")
	}
}

func (n *Notifier) create(ctx context.Context, userID string, typ models.NotificationType, title, message string, metadata map[string]string) (*models.Notification, error) {
	notification := &models.Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      typ,
		Title:     title,
		Message:   message,
		Metadata:  metadata,
		CreatedAt: n.now(),
	}
	if err := n.store.CreateNotification(ctx, notification); err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}

	n.sendPush(ctx, userID, title, message)
	return notification, nil
}

// NotifyReminder delivers a fired reminder in-app, by push and, when the
// user opted in, by email. Only a failure to record the notification is
// returned.
func (n *Notifier) NotifyReminder(ctx context.Context, reminder *models.Reminder) error {
	body := reminder.Description
	if body == "" {
		body = fmt.Sprintf("Reminder set for %s", reminder.Time)
	}

	_, err := n.create(ctx, reminder.UserID, models.NotificationTypeReminder,
		"⏰ "+reminder.Title, body, map[string]string{"reminderId": reminder.ID})
	if err != nil {
		return err
	}

	n.sendEmail(ctx, reminder)
	return nil
}

// sendPush is fire-and-forget.
func (n *Notifier) sendPush(ctx context.Context, userID, title, body string) {
	if n.push == nil {
		return
	}

	prefs, err := n.store.GetNotificationPreferences(ctx, userID)
	if err != nil || !prefs.PushEnabled || prefs.FCMToken == "" {
		return
	}

	message := &messaging.Message{
		Token: prefs.FCMToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Webpush: &messaging.WebpushConfig{
			FCMOptions: &messaging.WebpushFCMOptions{
				Link: "/notifications",
			},
		},
	}

	if _, err := n.push.Send(ctx, message); err != nil {
		n.log.WithError(err).WithField("user_id", userID).Warn("failed to send push notification")
	}
}

func (n *Notifier) sendEmail(ctx context.Context, reminder *models.Reminder) {
	if n.mailer == nil {
		return
	}

	prefs, err := n.store.GetNotificationPreferences(ctx, reminder.UserID)
	if err != nil || !prefs.EmailReminders {
		return
	}

	user, err := n.store.GetUser(ctx, reminder.UserID)
	if err != nil {
		n.log.WithError(err).WithField("user_id", reminder.UserID).Warn("cannot email reminder")
		return
	}
	if user.Email == "" {
		return
	}

	// The mailer logs its own failures.
	_ = n.mailer.SendReminder(user, reminder)
}
