package service

import (
	"context"
	"fmt"
	"time"

	"connectrpc.com/connect"
	"github.com/hamid26126/CashMate/internal/auth"
	"github.com/hamid26126/CashMate/internal/models"
)

type ListNotificationsRequest struct {
	UnreadOnly bool   `json:"unreadOnly"`
	PageSize   int32  `json:"pageSize"`
	PageToken  string `json:"pageToken"`
}

// NotificationView is a notification with its age rendered for display.
type NotificationView struct {
	*models.Notification
	Timestamp string `json:"timestamp"`
}

type ListNotificationsResponse struct {
	Notifications []NotificationView `json:"notifications"`
	UnreadCount   int32              `json:"unreadCount"`
	NextPageToken string             `json:"nextPageToken,omitempty"`
}

type RegisterPushTokenRequest struct {
	FCMToken string `json:"fcmToken"`
}

type UpdateNotificationPreferencesRequest struct {
	EmailReminders *bool `json:"emailReminders"`
	PushEnabled    *bool `json:"pushEnabled"`
}

type NotificationPreferencesResponse struct {
	Preferences *models.NotificationPreferences `json:"preferences"`
}

// relativeTime renders the age of t as "Just now", "5m ago", "3h ago",
// "2d ago" or, past a week, the date.
func relativeTime(t, now time.Time) string {
	age := now.Sub(t)
	switch {
	case age < time.Minute:
		return "Just now"
	case age < time.Hour:
		return fmt.Sprintf("%dm ago", int(age/time.Minute))
	case age < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(age/time.Hour))
	case age < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(age/(24*time.Hour)))
	}
	return t.Format("01/02/2006")
}

func (s *FinanceService) ListNotifications(ctx context.Context, req *connect.Request[ListNotificationsRequest]) (*connect.Response[ListNotificationsResponse], error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}

	notifications, next, err := s.store.ListNotifications(ctx, claims.UID, req.Msg.UnreadOnly, auth.NormalizePageSize(req.Msg.PageSize), req.Msg.PageToken)
	if err != nil {
		return nil, storeError("list notifications", err)
	}
	unread, err := s.store.GetUnreadNotificationCount(ctx, claims.UID)
	if err != nil {
		return nil, storeError("count notifications", err)
	}

	now := s.now()
	views := make([]NotificationView, 0, len(notifications))
	for _, n := range notifications {
		views = append(views, NotificationView{Notification: n, Timestamp: relativeTime(n.CreatedAt, now)})
	}

	return connect.NewResponse(&ListNotificationsResponse{
		Notifications: views,
		UnreadCount:   unread,
		NextPageToken: next,
	}), nil
}

func (s *FinanceService) MarkNotificationRead(ctx context.Context, req *connect.Request[IDRequest]) (*connect.Response[Empty], error) {
	if _, err := s.ownedNotification(ctx, req.Msg.ID); err != nil {
		return nil, err
	}
	if err := s.store.MarkNotificationRead(ctx, req.Msg.ID); err != nil {
		return nil, storeError("mark notification read", err)
	}
	return connect.NewResponse(&Empty{}), nil
}

func (s *FinanceService) MarkAllNotificationsRead(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[Empty], error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.store.MarkAllNotificationsRead(ctx, claims.UID); err != nil {
		return nil, storeError("mark notifications read", err)
	}
	return connect.NewResponse(&Empty{}), nil
}

func (s *FinanceService) DeleteNotification(ctx context.Context, req *connect.Request[IDRequest]) (*connect.Response[Empty], error) {
	if _, err := s.ownedNotification(ctx, req.Msg.ID); err != nil {
		return nil, err
	}
	if err := s.store.DeleteNotification(ctx, req.Msg.ID); err != nil {
		return nil, storeError("delete notification", err)
	}
	return connect.NewResponse(&Empty{}), nil
}

func (s *FinanceService) ownedNotification(ctx context.Context, notificationID string) (*models.Notification, error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}
	if notificationID == "" {
		return nil, invalidArgument("notification id is required")
	}

	n, err := s.store.GetNotification(ctx, notificationID)
	if err != nil {
		return nil, storeError("get notification", err)
	}
	if err := auth.RequireOwnership(claims, n.UserID); err != nil {
		return nil, err
	}
	return n, nil
}

// RegisterPushToken registers an FCM token for push notifications.
func (s *FinanceService) RegisterPushToken(ctx context.Context, req *connect.Request[RegisterPushTokenRequest]) (*connect.Response[NotificationPreferencesResponse], error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}
	if req.Msg.FCMToken == "" {
		return nil, invalidArgument("fcmToken is required")
	}

	prefs, err := s.store.GetNotificationPreferences(ctx, claims.UID)
	if err != nil {
		return nil, storeError("get notification preferences", err)
	}
	prefs.PushEnabled = true
	prefs.FCMToken = req.Msg.FCMToken

	if err := s.store.UpdateNotificationPreferences(ctx, prefs); err != nil {
		return nil, storeError("update notification preferences", err)
	}

	s.log.WithField("user_id", claims.UID).Info("registered push token")
	return connect.NewResponse(&NotificationPreferencesResponse{Preferences: prefs}), nil
}

// UnregisterPushToken removes the FCM token and disables push notifications.
func (s *FinanceService) UnregisterPushToken(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[NotificationPreferencesResponse], error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}

	prefs, err := s.store.GetNotificationPreferences(ctx, claims.UID)
	if err != nil {
		return nil, storeError("get notification preferences", err)
	}
	prefs.PushEnabled = false
	prefs.FCMToken = ""

	if err := s.store.UpdateNotificationPreferences(ctx, prefs); err != nil {
		return nil, storeError("update notification preferences", err)
	}

	s.log.WithField("user_id", claims.UID).Info("unregistered push token")
	return connect.NewResponse(&NotificationPreferencesResponse{Preferences: prefs}), nil
}

func (s *FinanceService) UpdateNotificationPreferences(ctx context.Context, req *connect.Request[UpdateNotificationPreferencesRequest]) (*connect.Response[NotificationPreferencesResponse], error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}

	prefs, err := s.store.GetNotificationPreferences(ctx, claims.UID)
	if err != nil {
		return nil, storeError("get notification preferences", err)
	}
	if req.Msg.EmailReminders != nil {
		prefs.EmailReminders = *req.Msg.EmailReminders
	}
	if req.Msg.PushEnabled != nil {
		prefs.PushEnabled = *req.Msg.PushEnabled
	}

	if err := s.store.UpdateNotificationPreferences(ctx, prefs); err != nil {
		return nil, storeError("update notification preferences", err)
	}
	return connect.NewResponse(&NotificationPreferencesResponse{Preferences: prefs}), nil
}
