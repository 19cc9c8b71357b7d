package store

import (
	"context"
	"maps"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hamid26126/CashMate/internal/models"
)

// MemoryStore implements Store interface with in-memory storage
type MemoryStore struct {
	mu sync.RWMutex

	users         map[string]*models.User
	transactions  map[string]*models.Transaction
	goals         map[string]*models.Goal
	savings       map[string]*models.Saving
	reminders     map[string]*models.Reminder
	notifications map[string]*models.Notification
	preferences   map[string]*models.NotificationPreferences
	chatMessages  map[string]*models.ChatMessage
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:         make(map[string]*models.User),
		transactions:  make(map[string]*models.Transaction),
		goals:         make(map[string]*models.Goal),
		savings:       make(map[string]*models.Saving),
		reminders:     make(map[string]*models.Reminder),
		notifications: make(map[string]*models.Notification),
		preferences:   make(map[string]*models.NotificationPreferences),
		chatMessages:  make(map[string]*models.ChatMessage),
	}
}

// Records are copied in and out so callers never share the store's own
// values with concurrent readers.

func cloneUser(u *models.User) *models.User {
	c := *u
	return &c
}

func cloneTransaction(tx *models.Transaction) *models.Transaction {
	c := *tx
	return &c
}

func cloneGoal(g *models.Goal) *models.Goal {
	c := *g
	return &c
}

func cloneSaving(sv *models.Saving) *models.Saving {
	c := *sv
	return &c
}

func cloneReminder(r *models.Reminder) *models.Reminder {
	c := *r
	if r.LastTriggered != nil {
		t := *r.LastTriggered
		c.LastTriggered = &t
	}
	return &c
}

func cloneNotification(n *models.Notification) *models.Notification {
	c := *n
	if n.ReadAt != nil {
		t := *n.ReadAt
		c.ReadAt = &t
	}
	c.Metadata = maps.Clone(n.Metadata)
	return &c
}

func clonePreferences(p *models.NotificationPreferences) *models.NotificationPreferences {
	c := *p
	return &c
}

func cloneChatMessage(msg *models.ChatMessage) *models.ChatMessage {
	c := *msg
	c.Metadata = maps.Clone(msg.Metadata)
	return &c
}

func cloneAll[T any](items []*T, clone func(*T) *T) []*T {
	if items == nil {
		return nil
	}
	out := make([]*T, len(items))
	for i, item := range items {
		out[i] = clone(item)
	}
	return out
}

// pageAfter applies cursor-based pagination to an already ordered slice.
// The cursor is the ID of the last item of the previous page.
func pageAfter[T any](items []T, idOf func(T) string, pageSize int32, pageToken string) ([]T, string) {
	if pageSize <= 0 {
		pageSize = 50
	}

	if pageToken != "" {
		cursorID, err := DecodePageToken(pageToken)
		if err == nil {
			for i, item := range items {
				if idOf(item) == cursorID {
					items = items[i+1:]
					break
				}
			}
		}
	}

	var nextToken string
	if int32(len(items)) > pageSize {
		items = items[:pageSize]
		nextToken = EncodePageToken(idOf(items[pageSize-1]))
	}
	return items, nextToken
}

// User operations

func (m *MemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	email := strings.ToLower(user.Email)
	for _, u := range m.users {
		if email != "" && strings.ToLower(u.Email) == email {
			return ErrAlreadyExists
		}
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	m.users[user.ID] = cloneUser(user)
	return nil
}

func (m *MemoryStore) GetUser(ctx context.Context, userID string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[userID]
	if !ok {
		return nil, notFound("user", userID)
	}
	return cloneUser(user), nil
}

func (m *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	email = strings.ToLower(email)
	for _, u := range m.users {
		if strings.ToLower(u.Email) == email {
			return cloneUser(u), nil
		}
	}
	return nil, notFound("user", email)
}

// UpdateUserFunc applies fn to the stored user under the write lock.
func (m *MemoryStore) UpdateUserFunc(ctx context.Context, userID string, fn func(*models.User) error) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.users[userID]
	if !ok {
		return nil, notFound("user", userID)
	}
	user := cloneUser(current)
	if err := fn(user); err != nil {
		return nil, err
	}
	m.users[userID] = user
	return cloneUser(user), nil
}

func (m *MemoryStore) DeleteUser(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[userID]; !ok {
		return notFound("user", userID)
	}
	delete(m.users, userID)
	delete(m.preferences, userID)
	for id, tx := range m.transactions {
		if tx.UserID == userID {
			delete(m.transactions, id)
		}
	}
	for id, g := range m.goals {
		if g.UserID == userID {
			delete(m.goals, id)
		}
	}
	for id, s := range m.savings {
		if s.UserID == userID {
			delete(m.savings, id)
		}
	}
	for id, r := range m.reminders {
		if r.UserID == userID {
			delete(m.reminders, id)
		}
	}
	for id, n := range m.notifications {
		if n.UserID == userID {
			delete(m.notifications, id)
		}
	}
	for id, c := range m.chatMessages {
		if c.UserID == userID {
			delete(m.chatMessages, id)
		}
	}
	return nil
}

// Transaction operations

func (m *MemoryStore) CreateTransaction(ctx context.Context, tx *models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	m.transactions[tx.ID] = cloneTransaction(tx)
	return nil
}

func (m *MemoryStore) GetTransaction(ctx context.Context, txID string) (*models.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tx, ok := m.transactions[txID]
	if !ok {
		return nil, notFound("transaction", txID)
	}
	return cloneTransaction(tx), nil
}

func (m *MemoryStore) UpdateTransaction(ctx context.Context, tx *models.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.transactions[tx.ID]; !ok {
		return notFound("transaction", tx.ID)
	}
	m.transactions[tx.ID] = cloneTransaction(tx)
	return nil
}

func (m *MemoryStore) DeleteTransaction(ctx context.Context, txID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.transactions[txID]; !ok {
		return notFound("transaction", txID)
	}
	delete(m.transactions, txID)
	return nil
}

// userTransactions returns the user's transactions newest first. Callers
// must hold the read lock.
func (m *MemoryStore) userTransactions(userID string, txType models.TransactionType) []*models.Transaction {
	var result []*models.Transaction
	for _, tx := range m.transactions {
		if tx.UserID != userID {
			continue
		}
		if txType != "" && tx.Type != txType {
			continue
		}
		result = append(result, tx)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.After(result[j].Date)
		}
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result
}

func (m *MemoryStore) ListRecentTransactions(ctx context.Context, userID string, limit int) ([]*models.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := m.userTransactions(userID, "")
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return cloneAll(result, cloneTransaction), nil
}

func (m *MemoryStore) ListTransactions(ctx context.Context, userID string, txType models.TransactionType, pageSize int32, pageToken string) ([]*models.Transaction, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	page, next := pageAfter(m.userTransactions(userID, txType), func(tx *models.Transaction) string { return tx.ID }, pageSize, pageToken)
	return cloneAll(page, cloneTransaction), next, nil
}

// Goal operations

func (m *MemoryStore) CreateGoal(ctx context.Context, goal *models.Goal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if goal.ID == "" {
		goal.ID = uuid.New().String()
	}
	m.goals[goal.ID] = cloneGoal(goal)
	return nil
}

func (m *MemoryStore) GetGoal(ctx context.Context, goalID string) (*models.Goal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	goal, ok := m.goals[goalID]
	if !ok {
		return nil, notFound("goal", goalID)
	}
	return cloneGoal(goal), nil
}

// UpdateGoalFunc applies fn to the stored goal under the write lock.
func (m *MemoryStore) UpdateGoalFunc(ctx context.Context, goalID string, fn func(*models.Goal) error) (*models.Goal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.goals[goalID]
	if !ok {
		return nil, notFound("goal", goalID)
	}
	goal := cloneGoal(current)
	if err := fn(goal); err != nil {
		return nil, err
	}
	m.goals[goalID] = goal
	return cloneGoal(goal), nil
}

func (m *MemoryStore) DeleteGoal(ctx context.Context, goalID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.goals[goalID]; !ok {
		return notFound("goal", goalID)
	}
	delete(m.goals, goalID)
	for id, s := range m.savings {
		if s.GoalID == goalID {
			delete(m.savings, id)
		}
	}
	return nil
}

func (m *MemoryStore) ListGoals(ctx context.Context, userID string, status models.GoalStatus) ([]*models.Goal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*models.Goal
	for _, g := range m.goals {
		if g.UserID != userID {
			continue
		}
		if status != "" && g.Status != status {
			continue
		}
		result = append(result, g)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return cloneAll(result, cloneGoal), nil
}

// Saving operations

func (m *MemoryStore) CreateSaving(ctx context.Context, saving *models.Saving) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if saving.ID == "" {
		saving.ID = uuid.New().String()
	}
	m.savings[saving.ID] = cloneSaving(saving)
	return nil
}

func (m *MemoryStore) GetSaving(ctx context.Context, savingID string) (*models.Saving, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	saving, ok := m.savings[savingID]
	if !ok {
		return nil, notFound("saving", savingID)
	}
	return cloneSaving(saving), nil
}

// UpdateSavingFunc applies fn to the stored saving under the write lock.
func (m *MemoryStore) UpdateSavingFunc(ctx context.Context, savingID string, fn func(*models.Saving) error) (*models.Saving, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.savings[savingID]
	if !ok {
		return nil, notFound("saving", savingID)
	}
	saving := cloneSaving(current)
	if err := fn(saving); err != nil {
		return nil, err
	}
	m.savings[savingID] = saving
	return cloneSaving(saving), nil
}

func (m *MemoryStore) ListSavings(ctx context.Context, userID, goalID string, status models.SavingStatus) ([]*models.Saving, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*models.Saving
	for _, s := range m.savings {
		if s.UserID != userID {
			continue
		}
		if goalID != "" && s.GoalID != goalID {
			continue
		}
		if status != "" && s.Status != status {
			continue
		}
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return cloneAll(result, cloneSaving), nil
}

// Reminder operations

func (m *MemoryStore) CreateReminder(ctx context.Context, reminder *models.Reminder) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if reminder.ID == "" {
		reminder.ID = uuid.New().String()
	}
	m.reminders[reminder.ID] = cloneReminder(reminder)
	return nil
}

func (m *MemoryStore) GetReminder(ctx context.Context, reminderID string) (*models.Reminder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	reminder, ok := m.reminders[reminderID]
	if !ok {
		return nil, notFound("reminder", reminderID)
	}
	return cloneReminder(reminder), nil
}

func (m *MemoryStore) UpdateReminder(ctx context.Context, reminder *models.Reminder) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.reminders[reminder.ID]; !ok {
		return notFound("reminder", reminder.ID)
	}
	m.reminders[reminder.ID] = cloneReminder(reminder)
	return nil
}

func (m *MemoryStore) DeleteReminder(ctx context.Context, reminderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.reminders[reminderID]; !ok {
		return notFound("reminder", reminderID)
	}
	delete(m.reminders, reminderID)
	return nil
}

func (m *MemoryStore) ListReminders(ctx context.Context, userID string) ([]*models.Reminder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*models.Reminder
	for _, r := range m.reminders {
		if r.UserID == userID {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].Time < result[j].Time
	})
	return cloneAll(result, cloneReminder), nil
}

func (m *MemoryStore) ListDueReminders(ctx context.Context, hhmm string, dayEnd time.Time) ([]*models.Reminder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*models.Reminder
	for _, r := range m.reminders {
		if !r.Active || r.Notified || r.Time != hhmm {
			continue
		}
		if r.Date.After(dayEnd) {
			continue
		}
		result = append(result, r)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return cloneAll(result, cloneReminder), nil
}

// Notification operations

func (m *MemoryStore) CreateNotification(ctx context.Context, notification *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if notification.ID == "" {
		notification.ID = uuid.New().String()
	}
	m.notifications[notification.ID] = cloneNotification(notification)
	return nil
}

func (m *MemoryStore) GetNotification(ctx context.Context, notificationID string) (*models.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n, ok := m.notifications[notificationID]
	if !ok {
		return nil, notFound("notification", notificationID)
	}
	return cloneNotification(n), nil
}

func (m *MemoryStore) ListNotifications(ctx context.Context, userID string, unreadOnly bool, pageSize int32, pageToken string) ([]*models.Notification, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*models.Notification
	for _, n := range m.notifications {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		result = append(result, n)
	}

	// Newest first
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})

	page, next := pageAfter(result, func(n *models.Notification) string { return n.ID }, pageSize, pageToken)
	return cloneAll(page, cloneNotification), next, nil
}

func (m *MemoryStore) MarkNotificationRead(ctx context.Context, notificationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, ok := m.notifications[notificationID]
	if !ok {
		return notFound("notification", notificationID)
	}
	now := time.Now()
	n.IsRead = true
	n.ReadAt = &now
	return nil
}

func (m *MemoryStore) MarkAllNotificationsRead(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for _, n := range m.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			n.ReadAt = &now
		}
	}
	return nil
}

func (m *MemoryStore) DeleteNotification(ctx context.Context, notificationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.notifications[notificationID]; !ok {
		return notFound("notification", notificationID)
	}
	delete(m.notifications, notificationID)
	return nil
}

func (m *MemoryStore) GetUnreadNotificationCount(ctx context.Context, userID string) (int32, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var count int32
	for _, n := range m.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (m *MemoryStore) GetNotificationPreferences(ctx context.Context, userID string) (*models.NotificationPreferences, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if prefs, ok := m.preferences[userID]; ok {
		return clonePreferences(prefs), nil
	}
	return defaultNotificationPreferences(userID), nil
}

func (m *MemoryStore) UpdateNotificationPreferences(ctx context.Context, prefs *models.NotificationPreferences) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.preferences[prefs.UserID] = clonePreferences(prefs)
	return nil
}

// Chat history operations

func (m *MemoryStore) CreateChatMessage(ctx context.Context, msg *models.ChatMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	m.chatMessages[msg.ID] = cloneChatMessage(msg)
	return nil
}

func (m *MemoryStore) ListChatMessages(ctx context.Context, userID, conversationID string, limit int) ([]*models.ChatMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*models.ChatMessage
	for _, c := range m.chatMessages {
		if c.UserID != userID {
			continue
		}
		if conversationID != "" && c.ConversationID != conversationID {
			continue
		}
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		// A user turn and its reply can share a timestamp on coarse clocks.
		if result[i].Role != result[j].Role {
			return result[i].Role == models.ChatRoleUser
		}
		return result[i].ID < result[j].ID
	})
	if limit > 0 && len(result) > limit {
		result = result[len(result)-limit:]
	}
	return cloneAll(result, cloneChatMessage), nil
}

func (m *MemoryStore) DeleteChatMessages(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, c := range m.chatMessages {
		if c.UserID == userID {
			delete(m.chatMessages, id)
		}
	}
	return nil
}
