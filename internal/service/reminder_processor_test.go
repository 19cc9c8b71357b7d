package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"connectrpc.com/connect"
	"firebase.google.com/go/v4/messaging"
	"github.com/hamid26126/CashMate/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func createReminder(t *testing.T, svc *FinanceService, userID string, req *CreateReminderRequest) *models.Reminder {
	t.Helper()
	resp, err := svc.CreateReminder(testContext(userID), connect.NewRequest(req))
	require.NoError(t, err)
	return resp.Msg.Reminder
}

func TestCreateReminder_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := testContext("user-1")

	tests := []struct {
		name string
		req  *CreateReminderRequest
	}{
		{"missing title", &CreateReminderRequest{Date: "2026-03-10", Time: "09:30"}},
		{"missing time", &CreateReminderRequest{Title: "Rent", Date: "2026-03-10"}},
		{"hour out of range", &CreateReminderRequest{Title: "Rent", Date: "2026-03-10", Time: "24:00"}},
		{"single digit hour", &CreateReminderRequest{Title: "Rent", Date: "2026-03-10", Time: "9:30"}},
		{"unknown frequency", &CreateReminderRequest{Title: "Rent", Date: "2026-03-10", Time: "09:30", Frequency: "hourly"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateReminder(ctx, connect.NewRequest(tt.req))
			requireCode(t, err, connect.CodeInvalidArgument)
		})
	}

	reminder := createReminder(t, svc, "user-1", &CreateReminderRequest{Title: "Rent", Date: "2026-03-10", Time: "09:30"})
	assert.Equal(t, models.FrequencyOnce, reminder.Frequency)
	assert.True(t, reminder.Active)
	assert.False(t, reminder.Notified)
}

func TestListReminders_OrderedByDateThenTime(t *testing.T) {
	svc, _ := newTestService(t)

	createReminder(t, svc, "user-1", &CreateReminderRequest{Title: "Gym fee", Date: "2026-03-11", Time: "06:45"})
	createReminder(t, svc, "user-1", &CreateReminderRequest{Title: "Pay rent", Date: "2026-03-10", Time: "17:30"})
	createReminder(t, svc, "user-1", &CreateReminderRequest{Title: "Check budget", Date: "2026-03-10", Time: "08:00"})
	createReminder(t, svc, "user-2", &CreateReminderRequest{Title: "Someone else", Date: "2026-03-09", Time: "07:00"})

	resp, err := svc.ListReminders(testContext("user-1"), connect.NewRequest(&Empty{}))
	require.NoError(t, err)

	titles := make([]string, len(resp.Msg.Reminders))
	for i, r := range resp.Msg.Reminders {
		titles[i] = r.Title
	}
	assert.Equal(t, []string{"Check budget", "Pay rent", "Gym fee"}, titles)
}

func TestProcessDueReminders_OnceFiresOnce(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	reminder := createReminder(t, svc, "user-1", &CreateReminderRequest{Title: "Pay rent", Date: "2026-03-10", Time: "09:30"})

	stats, err := svc.ProcessDueReminders(ctx, testNow)
	require.NoError(t, err)
	assert.Equal(t, ReminderRunStats{Triggered: 1}, stats)

	stored, err := st.GetReminder(ctx, reminder.ID)
	require.NoError(t, err)
	assert.True(t, stored.Notified)
	require.NotNil(t, stored.LastTriggered)
	assert.Equal(t, testNow, *stored.LastTriggered)

	notifications, _, err := st.ListNotifications(ctx, "user-1", false, 10, "")
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, "⏰ Pay rent", notifications[0].Title)
	assert.Equal(t, "Reminder set for 09:30", notifications[0].Message)
	assert.Equal(t, models.NotificationTypeReminder, notifications[0].Type)
	assert.Equal(t, reminder.ID, notifications[0].Metadata["reminderId"])

	stats, err = svc.ProcessDueReminders(ctx, testNow)
	require.NoError(t, err)
	assert.Zero(t, stats.Triggered)
}

func TestProcessDueReminders_RecurringAdvances(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	reminder := createReminder(t, svc, "user-1", &CreateReminderRequest{
		Title:       "Log expenses",
		Description: "Add today's receipts",
		Date:        "2026-03-10",
		Time:        "09:30",
		Frequency:   models.FrequencyDaily,
	})

	stats, err := svc.ProcessDueReminders(ctx, testNow)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Triggered)

	stored, err := st.GetReminder(ctx, reminder.ID)
	require.NoError(t, err)
	assert.False(t, stored.Notified)
	assert.Equal(t, time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC), stored.Date)

	// Tomorrow's occurrence is not due today.
	stats, err = svc.ProcessDueReminders(ctx, testNow)
	require.NoError(t, err)
	assert.Zero(t, stats.Triggered)

	stats, err = svc.ProcessDueReminders(ctx, testNow.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Triggered)

	notifications, _, err := st.ListNotifications(ctx, "user-1", false, 10, "")
	require.NoError(t, err)
	require.Len(t, notifications, 2)
	assert.Equal(t, "Add today's receipts", notifications[0].Message)
}

func TestProcessDueReminders_Skips(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	createReminder(t, svc, "user-1", &CreateReminderRequest{Title: "Other time", Date: "2026-03-10", Time: "10:00"})
	createReminder(t, svc, "user-1", &CreateReminderRequest{Title: "Future", Date: "2026-03-12", Time: "09:30"})
	ended := createReminder(t, svc, "user-1", &CreateReminderRequest{Title: "Ended", Date: "2026-03-10", Time: "09:30", Frequency: models.FrequencyWeekly})
	done := createReminder(t, svc, "user-1", &CreateReminderRequest{Title: "Done", Date: "2026-03-10", Time: "09:30"})

	_, err := svc.EndReminder(testContext("user-1"), connect.NewRequest(&IDRequest{ID: ended.ID}))
	require.NoError(t, err)
	_, err = svc.CompleteReminder(testContext("user-1"), connect.NewRequest(&IDRequest{ID: done.ID}))
	require.NoError(t, err)

	stats, err := svc.ProcessDueReminders(ctx, testNow)
	require.NoError(t, err)
	assert.Zero(t, stats.Triggered)
}

func TestProcessDueReminders_MissedDayStillFires(t *testing.T) {
	svc, _ := newTestService(t)

	createReminder(t, svc, "user-1", &CreateReminderRequest{Title: "Overdue", Date: "2026-03-01", Time: "09:30"})

	stats, err := svc.ProcessDueReminders(context.Background(), testNow)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Triggered)
}

func TestProcessDueReminders_PushAndEmail(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, st := newTestService(t)
	ctx := testContext("user-1")
	seedUser(t, st, "user-1")

	push := NewMockPushSender(ctrl)
	mailer := NewMockReminderMailer(ctrl)
	svc.notifier.SetPushSender(push)
	svc.notifier.SetMailer(mailer)

	_, err := svc.RegisterPushToken(ctx, connect.NewRequest(&RegisterPushTokenRequest{FCMToken: "device-token"}))
	require.NoError(t, err)
	enabled := true
	_, err = svc.UpdateNotificationPreferences(ctx, connect.NewRequest(&UpdateNotificationPreferencesRequest{EmailReminders: &enabled}))
	require.NoError(t, err)

	reminder := createReminder(t, svc, "user-1", &CreateReminderRequest{Title: "Budget review", Date: "2026-03-10", Time: "09:30"})

	push.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, msg *messaging.Message) (string, error) {
		assert.Equal(t, "device-token", msg.Token)
		assert.Equal(t, "⏰ Budget review", msg.Notification.Title)
		return "message-id", nil
	})
	mailer.EXPECT().SendReminder(gomock.Any(), gomock.Any()).DoAndReturn(func(user *models.User, r *models.Reminder) error {
		assert.Equal(t, "user-1@test.com", user.Email)
		assert.Equal(t, reminder.ID, r.ID)
		return nil
	})

	stats, err := svc.ProcessDueReminders(context.Background(), testNow)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Triggered)
}

func TestProcessDueReminders_PushFailureDoesNotFail(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, _ := newTestService(t)
	ctx := testContext("user-1")

	push := NewMockPushSender(ctrl)
	svc.notifier.SetPushSender(push)

	_, err := svc.RegisterPushToken(ctx, connect.NewRequest(&RegisterPushTokenRequest{FCMToken: "stale-token"}))
	require.NoError(t, err)
	createReminder(t, svc, "user-1", &CreateReminderRequest{Title: "Savings", Date: "2026-03-10", Time: "09:30"})

	push.EXPECT().Send(gomock.Any(), gomock.Any()).Return("", errors.New("registration-token-not-registered"))

	stats, err := svc.ProcessDueReminders(context.Background(), testNow)
	require.NoError(t, err)
	assert.Equal(t, ReminderRunStats{Triggered: 1}, stats)
}

func TestUpdateReminder_RearmsOnReschedule(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := testContext("user-1")

	reminder := createReminder(t, svc, "user-1", &CreateReminderRequest{Title: "Rent", Date: "2026-03-10", Time: "09:30"})
	_, err := svc.ProcessDueReminders(context.Background(), testNow)
	require.NoError(t, err)

	resp, err := svc.UpdateReminder(ctx, connect.NewRequest(&UpdateReminderRequest{ID: reminder.ID, Time: "18:00"}))
	require.NoError(t, err)
	assert.False(t, resp.Msg.Reminder.Notified)
	assert.Equal(t, "18:00", resp.Msg.Reminder.Time)

	_, err = svc.UpdateReminder(ctx, connect.NewRequest(&UpdateReminderRequest{ID: reminder.ID, Time: "6pm"}))
	requireCode(t, err, connect.CodeInvalidArgument)

	_, err = svc.GetReminder(testContext("user-2"), connect.NewRequest(&IDRequest{ID: reminder.ID}))
	requireCode(t, err, connect.CodePermissionDenied)
}
