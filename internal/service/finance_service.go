// Package service implements the CashMate FinanceService Connect handlers.
package service

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/hamid26126/CashMate/internal/auth"
	"github.com/hamid26126/CashMate/internal/store"
	"github.com/sirupsen/logrus"
)

type FinanceService struct {
	store     store.Store
	log       logrus.FieldLogger
	issuer    *auth.TokenIssuer
	assistant ChatResponder
	notifier  *Notifier
	index     TransactionIndex
	avatars   AvatarStorage
	now       func() time.Time
}

func NewFinanceService(store store.Store, log logrus.FieldLogger) *FinanceService {
	return &FinanceService{
		store:    store,
		log:      log.WithField("component", "finance_service"),
		notifier: NewNotifier(store, log),
		now:      time.Now,
	}
}

// SetTokenIssuer enables Register and Login.
func (s *FinanceService) SetTokenIssuer(issuer *auth.TokenIssuer) {
	s.issuer = issuer
}

// SetAssistant sets the chat assistant used by SendChatMessage.
func (s *FinanceService) SetAssistant(assistant ChatResponder) {
	s.assistant = assistant
}

// SetNotifier replaces the default store-only notifier.
func (s *FinanceService) SetNotifier(n *Notifier) {
	s.notifier = n
}

// SetTransactionIndex enables Algolia-backed transaction search.
func (s *FinanceService) SetTransactionIndex(index TransactionIndex) {
	s.index = index
}

// SetAvatarStorage enables UploadProfilePhoto.
func (s *FinanceService) SetAvatarStorage(avatars AvatarStorage) {
	s.avatars = avatars
}

// SetClock overrides the service clock. Intended for tests.
func (s *FinanceService) SetClock(now func() time.Time) {
	s.now = now
	s.notifier.now = now
}

// Procedure returns the full Connect procedure path for name.
func Procedure(name string) string {
	return auth.ServicePath + name
}

// Handler returns an http.Handler serving every FinanceService procedure.
func (s *FinanceService) Handler(opts ...connect.HandlerOption) http.Handler {
	opts = append(opts, connect.WithCodec(jsonCodec{}))

	mux := http.NewServeMux()
	handle := func(name string, h http.Handler) {
		mux.Handle(Procedure(name), h)
	}

	// Auth
	handle("Register", connect.NewUnaryHandler(Procedure("Register"), s.Register, opts...))
	handle("Login", connect.NewUnaryHandler(Procedure("Login"), s.Login, opts...))

	// User
	handle("GetInfo", connect.NewUnaryHandler(Procedure("GetInfo"), s.GetInfo, opts...))
	handle("GetProfile", connect.NewUnaryHandler(Procedure("GetProfile"), s.GetProfile, opts...))
	handle("UpdateProfile", connect.NewUnaryHandler(Procedure("UpdateProfile"), s.UpdateProfile, opts...))
	handle("UpdateProfilePhoto", connect.NewUnaryHandler(Procedure("UpdateProfilePhoto"), s.UpdateProfilePhoto, opts...))
	handle("UploadProfilePhoto", connect.NewUnaryHandler(Procedure("UploadProfilePhoto"), s.UploadProfilePhoto, opts...))
	handle("ChangePassword", connect.NewUnaryHandler(Procedure("ChangePassword"), s.ChangePassword, opts...))
	handle("DeleteAccount", connect.NewUnaryHandler(Procedure("DeleteAccount"), s.DeleteAccount, opts...))
	handle("GetCategoricalExpenses", connect.NewUnaryHandler(Procedure("GetCategoricalExpenses"), s.GetCategoricalExpenses, opts...))

	// Transactions
	handle("AddTransaction", connect.NewUnaryHandler(Procedure("AddTransaction"), s.AddTransaction, opts...))
	handle("UpdateTransaction", connect.NewUnaryHandler(Procedure("UpdateTransaction"), s.UpdateTransaction, opts...))
	handle("DeleteTransaction", connect.NewUnaryHandler(Procedure("DeleteTransaction"), s.DeleteTransaction, opts...))
	handle("GetRecentTransactions", connect.NewUnaryHandler(Procedure("GetRecentTransactions"), s.GetRecentTransactions, opts...))
	handle("ListTransactions", connect.NewUnaryHandler(Procedure("ListTransactions"), s.ListTransactions, opts...))
	handle("SearchTransactions", connect.NewUnaryHandler(Procedure("SearchTransactions"), s.SearchTransactions, opts...))

	// Goals
	handle("CreateGoal", connect.NewUnaryHandler(Procedure("CreateGoal"), s.CreateGoal, opts...))
	handle("ListGoals", connect.NewUnaryHandler(Procedure("ListGoals"), s.ListGoals, opts...))
	handle("GetGoal", connect.NewUnaryHandler(Procedure("GetGoal"), s.GetGoal, opts...))
	handle("UpdateGoal", connect.NewUnaryHandler(Procedure("UpdateGoal"), s.UpdateGoal, opts...))
	handle("DeleteGoal", connect.NewUnaryHandler(Procedure("DeleteGoal"), s.DeleteGoal, opts...))

	// Savings
	handle("AllocateSaving", connect.NewUnaryHandler(Procedure("AllocateSaving"), s.AllocateSaving, opts...))
	handle("ListSavings", connect.NewUnaryHandler(Procedure("ListSavings"), s.ListSavings, opts...))
	handle("ListGoalSavings", connect.NewUnaryHandler(Procedure("ListGoalSavings"), s.ListGoalSavings, opts...))
	handle("RefundSaving", connect.NewUnaryHandler(Procedure("RefundSaving"), s.RefundSaving, opts...))
	handle("GetTotalSaved", connect.NewUnaryHandler(Procedure("GetTotalSaved"), s.GetTotalSaved, opts...))

	// Reminders
	handle("CreateReminder", connect.NewUnaryHandler(Procedure("CreateReminder"), s.CreateReminder, opts...))
	handle("ListReminders", connect.NewUnaryHandler(Procedure("ListReminders"), s.ListReminders, opts...))
	handle("GetReminder", connect.NewUnaryHandler(Procedure("GetReminder"), s.GetReminder, opts...))
	handle("UpdateReminder", connect.NewUnaryHandler(Procedure("UpdateReminder"), s.UpdateReminder, opts...))
	handle("CompleteReminder", connect.NewUnaryHandler(Procedure("CompleteReminder"), s.CompleteReminder, opts...))
	handle("EndReminder", connect.NewUnaryHandler(Procedure("EndReminder"), s.EndReminder, opts...))
	handle("DeleteReminder", connect.NewUnaryHandler(Procedure("DeleteReminder"), s.DeleteReminder, opts...))

	// Notifications
	handle("ListNotifications", connect.NewUnaryHandler(Procedure("ListNotifications"), s.ListNotifications, opts...))
	handle("MarkNotificationRead", connect.NewUnaryHandler(Procedure("MarkNotificationRead"), s.MarkNotificationRead, opts...))
	handle("MarkAllNotificationsRead", connect.NewUnaryHandler(Procedure("MarkAllNotificationsRead"), s.MarkAllNotificationsRead, opts...))
	handle("DeleteNotification", connect.NewUnaryHandler(Procedure("DeleteNotification"), s.DeleteNotification, opts...))
	handle("RegisterPushToken", connect.NewUnaryHandler(Procedure("RegisterPushToken"), s.RegisterPushToken, opts...))
	handle("UnregisterPushToken", connect.NewUnaryHandler(Procedure("UnregisterPushToken"), s.UnregisterPushToken, opts...))
	handle("UpdateNotificationPreferences", connect.NewUnaryHandler(Procedure("UpdateNotificationPreferences"), s.UpdateNotificationPreferences, opts...))

	// Chat
	handle("GetChatContext", connect.NewUnaryHandler(Procedure("GetChatContext"), s.GetChatContext, opts...))
	handle("SendChatMessage", connect.NewUnaryHandler(Procedure("SendChatMessage"), s.SendChatMessage, opts...))
	handle("GetChatHistory", connect.NewUnaryHandler(Procedure("GetChatHistory"), s.GetChatHistory, opts...))
	handle("ClearChatHistory", connect.NewUnaryHandler(Procedure("ClearChatHistory"), s.ClearChatHistory, opts...))

	return mux
}

// Empty is the request or response of procedures without a payload.
type Empty struct{}

// IDRequest addresses a single record.
type IDRequest struct {
	ID string `json:"id"`
}

func invalidArgument(format string, args ...any) error {
	return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf(format, args...))
}

// storeError maps a store failure onto a Connect error.
func storeError(op string, err error) error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr
	}
	switch {
	case errors.Is(err, store.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, store.ErrAlreadyExists):
		return connect.NewError(connect.CodeAlreadyExists, err)
	}
	return connect.NewError(connect.CodeInternal, fmt.Errorf("%s: %w", op, err))
}

// parseDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates. An empty
// value yields def.
func parseDate(value string, def time.Time) (time.Time, error) {
	if value == "" {
		return def, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, value, def.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or RFC 3339", value)
	}
	return t, nil
}
