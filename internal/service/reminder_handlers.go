package service

import (
	"context"
	"regexp"
	"strings"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/hamid26126/CashMate/internal/auth"
	"github.com/hamid26126/CashMate/internal/models"
)

var reminderTimePattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

type CreateReminderRequest struct {
	Title       string                   `json:"title"`
	Description string                   `json:"description"`
	Date        string                   `json:"date"`
	Time        string                   `json:"time"`
	Frequency   models.ReminderFrequency `json:"frequency"`
}

type UpdateReminderRequest struct {
	ID          string                   `json:"id"`
	Title       string                   `json:"title"`
	Description *string                  `json:"description"`
	Date        string                   `json:"date"`
	Time        string                   `json:"time"`
	Frequency   models.ReminderFrequency `json:"frequency"`
}

type ReminderResponse struct {
	Reminder *models.Reminder `json:"reminder"`
}

type RemindersResponse struct {
	Reminders []*models.Reminder `json:"reminders"`
}

func (s *FinanceService) CreateReminder(ctx context.Context, req *connect.Request[CreateReminderRequest]) (*connect.Response[ReminderResponse], error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}

	msg := req.Msg
	title := strings.TrimSpace(msg.Title)
	if title == "" || msg.Date == "" || msg.Time == "" {
		return nil, invalidArgument("title, date and time are required")
	}
	if !reminderTimePattern.MatchString(msg.Time) {
		return nil, invalidArgument("time must be in HH:MM format")
	}
	frequency := msg.Frequency
	if frequency == "" {
		frequency = models.FrequencyOnce
	}
	if !frequency.Valid() {
		return nil, invalidArgument("unknown frequency %q", frequency)
	}

	now := s.now()
	date, err := parseDate(msg.Date, now)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	reminder := &models.Reminder{
		ID:          uuid.New().String(),
		UserID:      claims.UID,
		Title:       title,
		Description: strings.TrimSpace(msg.Description),
		Date:        date,
		Time:        msg.Time,
		Frequency:   frequency,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateReminder(ctx, reminder); err != nil {
		return nil, storeError("create reminder", err)
	}

	return connect.NewResponse(&ReminderResponse{Reminder: reminder}), nil
}

func (s *FinanceService) ListReminders(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[RemindersResponse], error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}

	reminders, err := s.store.ListReminders(ctx, claims.UID)
	if err != nil {
		return nil, storeError("list reminders", err)
	}
	return connect.NewResponse(&RemindersResponse{Reminders: reminders}), nil
}

func (s *FinanceService) GetReminder(ctx context.Context, req *connect.Request[IDRequest]) (*connect.Response[ReminderResponse], error) {
	reminder, err := s.ownedReminder(ctx, req.Msg.ID)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&ReminderResponse{Reminder: reminder}), nil
}

// UpdateReminder edits a reminder. Moving it to a new date or time re-arms
// it for that occurrence.
func (s *FinanceService) UpdateReminder(ctx context.Context, req *connect.Request[UpdateReminderRequest]) (*connect.Response[ReminderResponse], error) {
	msg := req.Msg
	if msg.Time != "" && !reminderTimePattern.MatchString(msg.Time) {
		return nil, invalidArgument("time must be in HH:MM format")
	}
	if msg.Frequency != "" && !msg.Frequency.Valid() {
		return nil, invalidArgument("unknown frequency %q", msg.Frequency)
	}

	reminder, err := s.ownedReminder(ctx, msg.ID)
	if err != nil {
		return nil, err
	}

	if t := strings.TrimSpace(msg.Title); t != "" {
		reminder.Title = t
	}
	if msg.Description != nil {
		reminder.Description = strings.TrimSpace(*msg.Description)
	}
	if msg.Date != "" {
		date, err := parseDate(msg.Date, reminder.Date)
		if err != nil {
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
		reminder.Date = date
		reminder.Notified = false
	}
	if msg.Time != "" {
		reminder.Time = msg.Time
		reminder.Notified = false
	}
	if msg.Frequency != "" {
		reminder.Frequency = msg.Frequency
	}
	reminder.UpdatedAt = s.now()

	if err := s.store.UpdateReminder(ctx, reminder); err != nil {
		return nil, storeError("update reminder", err)
	}
	return connect.NewResponse(&ReminderResponse{Reminder: reminder}), nil
}

// CompleteReminder marks the reminder done so it no longer fires for the
// current occurrence.
func (s *FinanceService) CompleteReminder(ctx context.Context, req *connect.Request[IDRequest]) (*connect.Response[ReminderResponse], error) {
	reminder, err := s.ownedReminder(ctx, req.Msg.ID)
	if err != nil {
		return nil, err
	}

	reminder.IsCompleted = true
	reminder.Notified = true
	reminder.UpdatedAt = s.now()
	if err := s.store.UpdateReminder(ctx, reminder); err != nil {
		return nil, storeError("update reminder", err)
	}
	return connect.NewResponse(&ReminderResponse{Reminder: reminder}), nil
}

// EndReminder deactivates a recurring reminder.
func (s *FinanceService) EndReminder(ctx context.Context, req *connect.Request[IDRequest]) (*connect.Response[ReminderResponse], error) {
	reminder, err := s.ownedReminder(ctx, req.Msg.ID)
	if err != nil {
		return nil, err
	}

	reminder.Active = false
	reminder.UpdatedAt = s.now()
	if err := s.store.UpdateReminder(ctx, reminder); err != nil {
		return nil, storeError("update reminder", err)
	}
	return connect.NewResponse(&ReminderResponse{Reminder: reminder}), nil
}

func (s *FinanceService) DeleteReminder(ctx context.Context, req *connect.Request[IDRequest]) (*connect.Response[Empty], error) {
	reminder, err := s.ownedReminder(ctx, req.Msg.ID)
	if err != nil {
		return nil, err
	}
	if err := s.store.DeleteReminder(ctx, reminder.ID); err != nil {
		return nil, storeError("delete reminder", err)
	}
	return connect.NewResponse(&Empty{}), nil
}

func (s *FinanceService) ownedReminder(ctx context.Context, reminderID string) (*models.Reminder, error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}
	if reminderID == "" {
		return nil, invalidArgument("reminder id is required")
	}

	reminder, err := s.store.GetReminder(ctx, reminderID)
	if err != nil {
		return nil, storeError("get reminder", err)
	}
	if err := auth.RequireOwnership(claims, reminder.UserID); err != nil {
		return nil, err
	}
	return reminder, nil
}
