package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hamid26126/CashMate/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()

	user := &models.User{ID: "user-1", Email: "ada@example.com", TotalIncome: 100}
	require.NoError(t, st.CreateUser(ctx, user))
	user.TotalIncome = 999

	got, err := st.GetUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 100.0, got.TotalIncome)

	got.TotalIncome = 500
	again, err := st.GetUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 100.0, again.TotalIncome)

	n := &models.Notification{ID: "n-1", UserID: "user-1", Metadata: map[string]string{"goalId": "g-1"}}
	require.NoError(t, st.CreateNotification(ctx, n))
	listed, _, err := st.ListNotifications(ctx, "user-1", false, 10, "")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	listed[0].Metadata["goalId"] = "changed"

	stored, err := st.GetNotification(ctx, "n-1")
	require.NoError(t, err)
	assert.Equal(t, "g-1", stored.Metadata["goalId"])
}

func TestMemoryStore_UpdateUserFunc(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	require.NoError(t, st.CreateUser(ctx, &models.User{ID: "user-1", Email: "ada@example.com"}))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := st.UpdateUserFunc(ctx, "user-1", func(u *models.User) error {
				u.TotalIncome += 2
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	user, err := st.GetUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 100.0, user.TotalIncome)

	rejected := errors.New("rejected")
	_, err = st.UpdateUserFunc(ctx, "user-1", func(u *models.User) error {
		u.TotalIncome = 0
		return rejected
	})
	assert.ErrorIs(t, err, rejected)

	user, err = st.GetUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 100.0, user.TotalIncome)

	_, err = st.UpdateUserFunc(ctx, "missing", func(u *models.User) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_UpdateSavingFunc(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	require.NoError(t, st.CreateSaving(ctx, &models.Saving{ID: "s-1", UserID: "user-1", Status: models.SavingStatusAllocated}))

	refund := func(sv *models.Saving) error {
		if sv.Status == models.SavingStatusRefunded {
			return errors.New("already refunded")
		}
		sv.Status = models.SavingStatusRefunded
		return nil
	}

	saved, err := st.UpdateSavingFunc(ctx, "s-1", refund)
	require.NoError(t, err)
	assert.Equal(t, models.SavingStatusRefunded, saved.Status)

	_, err = st.UpdateSavingFunc(ctx, "s-1", refund)
	assert.EqualError(t, err, "already refunded")
}

func TestMemoryStore_ListRemindersOrdersByDateThenTime(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	for _, r := range []*models.Reminder{
		{ID: "late", UserID: "user-1", Date: day, Time: "18:00"},
		{ID: "tomorrow", UserID: "user-1", Date: day.AddDate(0, 0, 1), Time: "07:00"},
		{ID: "early", UserID: "user-1", Date: day, Time: "08:15"},
	} {
		require.NoError(t, st.CreateReminder(ctx, r))
	}

	reminders, err := st.ListReminders(ctx, "user-1")
	require.NoError(t, err)
	ids := make([]string, len(reminders))
	for i, r := range reminders {
		ids[i] = r.ID
	}
	assert.Equal(t, []string{"early", "late", "tomorrow"}, ids)
}
