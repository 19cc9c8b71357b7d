package models

import "time"

type NotificationType string

const (
	NotificationTypeReminder NotificationType = "reminder"
	NotificationTypeSuccess  NotificationType = "success"
	NotificationTypeInfo     NotificationType = "info"
	NotificationTypeWarning  NotificationType = "warning"
)

// Notification is an in-app message shown to the user.
type Notification struct {
	ID        string            `json:"id"`
	UserID    string            `json:"userId"`
	Type      NotificationType  `json:"type"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	IsRead    bool              `json:"isRead"`
	ReadAt    *time.Time        `json:"readAt,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}

// NotificationPreferences controls the delivery channels beyond the in-app
// notification list.
type NotificationPreferences struct {
	UserID         string `json:"userId"`
	PushEnabled    bool   `json:"pushEnabled"`
	FCMToken       string `json:"-"`
	EmailReminders bool   `json:"emailReminders"`
}
