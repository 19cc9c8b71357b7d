package store

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/hamid26126/CashMate/internal/models"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	usersCollection         = "users"
	transactionsCollection  = "transactions"
	goalsCollection         = "goals"
	savingsCollection       = "savings"
	remindersCollection     = "reminders"
	notificationsCollection = "notifications"
	preferencesCollection   = "notificationPreferences"
	chatCollection          = "chatHistory"

	// Firestore rejects batches larger than 500 writes.
	maxBatchWrites = 400
)

// FirestoreStore implements the Store interface using Firestore
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore creates a new Firestore-backed store
func NewFirestoreStore(client *firestore.Client) Store {
	return &FirestoreStore{
		client: client,
	}
}

// getDoc loads a document into dst, mapping a missing document onto ErrNotFound.
func (s *FirestoreStore) getDoc(ctx context.Context, collection, kind, id string, dst any) error {
	if id == "" {
		return notFound(kind, id)
	}
	doc, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return notFound(kind, id)
		}
		return fmt.Errorf("failed to get %s: %w", kind, err)
	}
	if err := doc.DataTo(dst); err != nil {
		return fmt.Errorf("failed to parse %s: %w", kind, err)
	}
	return nil
}

// updateDoc overwrites an existing document. Update semantics require the
// document to exist, so a precondition keeps Set from creating one.
func (s *FirestoreStore) updateDoc(ctx context.Context, collection, kind, id string, data any) error {
	ref := s.client.Collection(collection).Doc(id)
	if _, err := ref.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return notFound(kind, id)
		}
		return fmt.Errorf("failed to get %s: %w", kind, err)
	}
	if _, err := ref.Set(ctx, data); err != nil {
		return fmt.Errorf("failed to update %s: %w", kind, err)
	}
	return nil
}

// updateInTransaction reads a document, applies fn and writes it back inside
// one Firestore transaction. Contention makes Firestore retry, so fn must
// only touch the record it is given.
func updateInTransaction[T any](ctx context.Context, client *firestore.Client, collection, kind, id string, fn func(*T) error) (*T, error) {
	if id == "" {
		return nil, notFound(kind, id)
	}
	ref := client.Collection(collection).Doc(id)

	var result *T
	err := client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return notFound(kind, id)
			}
			return fmt.Errorf("failed to get %s: %w", kind, err)
		}
		var record T
		if err := doc.DataTo(&record); err != nil {
			return fmt.Errorf("failed to parse %s: %w", kind, err)
		}
		if err := fn(&record); err != nil {
			return err
		}
		if err := tx.Set(ref, &record); err != nil {
			return fmt.Errorf("failed to update %s: %w", kind, err)
		}
		result = &record
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *FirestoreStore) deleteDoc(ctx context.Context, collection, kind, id string) error {
	ref := s.client.Collection(collection).Doc(id)
	if _, err := ref.Delete(ctx, firestore.Exists); err != nil {
		if status.Code(err) == codes.NotFound {
			return notFound(kind, id)
		}
		return fmt.Errorf("failed to delete %s: %w", kind, err)
	}
	return nil
}

// deleteWhere removes every document matched by query in chunked batches.
func (s *FirestoreStore) deleteWhere(ctx context.Context, query firestore.Query) error {
	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return err
	}
	for start := 0; start < len(docs); start += maxBatchWrites {
		end := start + maxBatchWrites
		if end > len(docs) {
			end = len(docs)
		}
		batch := s.client.Batch()
		for _, doc := range docs[start:end] {
			batch.Delete(doc.Ref)
		}
		if _, err := batch.Commit(ctx); err != nil {
			return err
		}
	}
	return nil
}

// User operations

func (s *FirestoreStore) CreateUser(ctx context.Context, user *models.User) error {
	users := s.client.Collection(usersCollection)
	var ref *firestore.DocumentRef
	if user.ID == "" {
		ref = users.NewDoc()
		user.ID = ref.ID
	} else {
		ref = users.Doc(user.ID)
	}

	return s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if user.Email != "" {
			existing, err := tx.Documents(users.Where("Email", "==", user.Email).Limit(1)).GetAll()
			if err != nil {
				return fmt.Errorf("failed to check email: %w", err)
			}
			if len(existing) > 0 {
				return ErrAlreadyExists
			}
		}
		return tx.Create(ref, user)
	})
}

func (s *FirestoreStore) GetUser(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := s.getDoc(ctx, usersCollection, "user", userID, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *FirestoreStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	docs, err := s.client.Collection(usersCollection).
		Where("Email", "==", email).
		Limit(1).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to query user by email: %w", err)
	}
	if len(docs) == 0 {
		return nil, notFound("user", email)
	}
	var user models.User
	if err := docs[0].DataTo(&user); err != nil {
		return nil, fmt.Errorf("failed to parse user: %w", err)
	}
	return &user, nil
}

func (s *FirestoreStore) UpdateUserFunc(ctx context.Context, userID string, fn func(*models.User) error) (*models.User, error) {
	return updateInTransaction(ctx, s.client, usersCollection, "user", userID, fn)
}

func (s *FirestoreStore) DeleteUser(ctx context.Context, userID string) error {
	for _, collection := range []string{
		transactionsCollection,
		savingsCollection,
		goalsCollection,
		remindersCollection,
		notificationsCollection,
		chatCollection,
	} {
		if err := s.deleteWhere(ctx, s.client.Collection(collection).Where("UserID", "==", userID)); err != nil {
			return fmt.Errorf("failed to delete %s for user: %w", collection, err)
		}
	}
	if _, err := s.client.Collection(preferencesCollection).Doc(userID).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete notification preferences: %w", err)
	}
	return s.deleteDoc(ctx, usersCollection, "user", userID)
}

// Transaction operations

func (s *FirestoreStore) CreateTransaction(ctx context.Context, tx *models.Transaction) error {
	if tx.ID == "" {
		tx.ID = s.client.Collection(transactionsCollection).NewDoc().ID
	}
	_, err := s.client.Collection(transactionsCollection).Doc(tx.ID).Set(ctx, tx)
	return err
}

func (s *FirestoreStore) GetTransaction(ctx context.Context, txID string) (*models.Transaction, error) {
	var tx models.Transaction
	if err := s.getDoc(ctx, transactionsCollection, "transaction", txID, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

func (s *FirestoreStore) UpdateTransaction(ctx context.Context, tx *models.Transaction) error {
	return s.updateDoc(ctx, transactionsCollection, "transaction", tx.ID, tx)
}

func (s *FirestoreStore) DeleteTransaction(ctx context.Context, txID string) error {
	return s.deleteDoc(ctx, transactionsCollection, "transaction", txID)
}

func (s *FirestoreStore) ListRecentTransactions(ctx context.Context, userID string, limit int) ([]*models.Transaction, error) {
	query := s.client.Collection(transactionsCollection).
		Where("UserID", "==", userID).
		OrderBy("Date", firestore.Desc).
		OrderBy("CreatedAt", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return decodeTransactions(docs)
}

func (s *FirestoreStore) ListTransactions(ctx context.Context, userID string, txType models.TransactionType, pageSize int32, pageToken string) ([]*models.Transaction, string, error) {
	query := s.client.Collection(transactionsCollection).Where("UserID", "==", userID)
	if txType != "" {
		query = query.Where("Type", "==", string(txType))
	}
	query = query.OrderBy("Date", firestore.Desc).OrderBy(firestore.DocumentID, firestore.Asc)

	if pageToken != "" {
		docID, err := DecodePageToken(pageToken)
		if err != nil {
			return nil, "", fmt.Errorf("invalid page token: %w", err)
		}
		// The cursor needs the Date of the last document as well as its ID.
		cursorDoc, err := s.client.Collection(transactionsCollection).Doc(docID).Get(ctx)
		if err != nil {
			return nil, "", fmt.Errorf("failed to fetch cursor document: %w", err)
		}
		query = query.StartAfter(cursorDoc.Data()["Date"], docID)
	}

	if pageSize <= 0 {
		pageSize = 50
	}
	query = query.Limit(int(pageSize) + 1)

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, "", fmt.Errorf("failed to list transactions: %w", err)
	}

	var nextPageToken string
	if len(docs) > int(pageSize) {
		docs = docs[:pageSize]
		nextPageToken = EncodePageToken(docs[pageSize-1].Ref.ID)
	}

	txs, err := decodeTransactions(docs)
	if err != nil {
		return nil, "", err
	}
	return txs, nextPageToken, nil
}

func decodeTransactions(docs []*firestore.DocumentSnapshot) ([]*models.Transaction, error) {
	txs := make([]*models.Transaction, 0, len(docs))
	for _, doc := range docs {
		var tx models.Transaction
		if err := doc.DataTo(&tx); err != nil {
			return nil, fmt.Errorf("failed to parse transaction: %w", err)
		}
		txs = append(txs, &tx)
	}
	return txs, nil
}

// Goal operations

func (s *FirestoreStore) CreateGoal(ctx context.Context, goal *models.Goal) error {
	if goal.ID == "" {
		goal.ID = s.client.Collection(goalsCollection).NewDoc().ID
	}
	_, err := s.client.Collection(goalsCollection).Doc(goal.ID).Set(ctx, goal)
	return err
}

func (s *FirestoreStore) GetGoal(ctx context.Context, goalID string) (*models.Goal, error) {
	var goal models.Goal
	if err := s.getDoc(ctx, goalsCollection, "goal", goalID, &goal); err != nil {
		return nil, err
	}
	return &goal, nil
}

func (s *FirestoreStore) UpdateGoalFunc(ctx context.Context, goalID string, fn func(*models.Goal) error) (*models.Goal, error) {
	return updateInTransaction(ctx, s.client, goalsCollection, "goal", goalID, fn)
}

func (s *FirestoreStore) DeleteGoal(ctx context.Context, goalID string) error {
	if err := s.deleteWhere(ctx, s.client.Collection(savingsCollection).Where("GoalID", "==", goalID)); err != nil {
		return fmt.Errorf("failed to delete goal savings: %w", err)
	}
	return s.deleteDoc(ctx, goalsCollection, "goal", goalID)
}

func (s *FirestoreStore) ListGoals(ctx context.Context, userID string, status models.GoalStatus) ([]*models.Goal, error) {
	query := s.client.Collection(goalsCollection).Where("UserID", "==", userID)
	if status != "" {
		query = query.Where("Status", "==", string(status))
	}
	docs, err := query.OrderBy("CreatedAt", firestore.Desc).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}

	goals := make([]*models.Goal, 0, len(docs))
	for _, doc := range docs {
		var goal models.Goal
		if err := doc.DataTo(&goal); err != nil {
			return nil, fmt.Errorf("failed to parse goal: %w", err)
		}
		goals = append(goals, &goal)
	}
	return goals, nil
}

// Saving operations

func (s *FirestoreStore) CreateSaving(ctx context.Context, saving *models.Saving) error {
	if saving.ID == "" {
		saving.ID = s.client.Collection(savingsCollection).NewDoc().ID
	}
	_, err := s.client.Collection(savingsCollection).Doc(saving.ID).Set(ctx, saving)
	return err
}

func (s *FirestoreStore) GetSaving(ctx context.Context, savingID string) (*models.Saving, error) {
	var saving models.Saving
	if err := s.getDoc(ctx, savingsCollection, "saving", savingID, &saving); err != nil {
		return nil, err
	}
	return &saving, nil
}

func (s *FirestoreStore) UpdateSavingFunc(ctx context.Context, savingID string, fn func(*models.Saving) error) (*models.Saving, error) {
	return updateInTransaction(ctx, s.client, savingsCollection, "saving", savingID, fn)
}

func (s *FirestoreStore) ListSavings(ctx context.Context, userID, goalID string, status models.SavingStatus) ([]*models.Saving, error) {
	query := s.client.Collection(savingsCollection).Where("UserID", "==", userID)
	if goalID != "" {
		query = query.Where("GoalID", "==", goalID)
	}
	if status != "" {
		query = query.Where("Status", "==", string(status))
	}
	docs, err := query.OrderBy("CreatedAt", firestore.Desc).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list savings: %w", err)
	}

	savings := make([]*models.Saving, 0, len(docs))
	for _, doc := range docs {
		var saving models.Saving
		if err := doc.DataTo(&saving); err != nil {
			return nil, fmt.Errorf("failed to parse saving: %w", err)
		}
		savings = append(savings, &saving)
	}
	return savings, nil
}

// Reminder operations

func (s *FirestoreStore) CreateReminder(ctx context.Context, reminder *models.Reminder) error {
	if reminder.ID == "" {
		reminder.ID = s.client.Collection(remindersCollection).NewDoc().ID
	}
	_, err := s.client.Collection(remindersCollection).Doc(reminder.ID).Set(ctx, reminder)
	return err
}

func (s *FirestoreStore) GetReminder(ctx context.Context, reminderID string) (*models.Reminder, error) {
	var reminder models.Reminder
	if err := s.getDoc(ctx, remindersCollection, "reminder", reminderID, &reminder); err != nil {
		return nil, err
	}
	return &reminder, nil
}

func (s *FirestoreStore) UpdateReminder(ctx context.Context, reminder *models.Reminder) error {
	return s.updateDoc(ctx, remindersCollection, "reminder", reminder.ID, reminder)
}

func (s *FirestoreStore) DeleteReminder(ctx context.Context, reminderID string) error {
	return s.deleteDoc(ctx, remindersCollection, "reminder", reminderID)
}

func (s *FirestoreStore) ListReminders(ctx context.Context, userID string) ([]*models.Reminder, error) {
	docs, err := s.client.Collection(remindersCollection).
		Where("UserID", "==", userID).
		OrderBy("Date", firestore.Asc).
		OrderBy("Time", firestore.Asc).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	return decodeReminders(docs)
}

func (s *FirestoreStore) ListDueReminders(ctx context.Context, hhmm string, dayEnd time.Time) ([]*models.Reminder, error) {
	docs, err := s.client.Collection(remindersCollection).
		Where("Active", "==", true).
		Where("Notified", "==", false).
		Where("Time", "==", hhmm).
		Where("Date", "<=", dayEnd).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to query due reminders: %w", err)
	}
	return decodeReminders(docs)
}

func decodeReminders(docs []*firestore.DocumentSnapshot) ([]*models.Reminder, error) {
	reminders := make([]*models.Reminder, 0, len(docs))
	for _, doc := range docs {
		var reminder models.Reminder
		if err := doc.DataTo(&reminder); err != nil {
			return nil, fmt.Errorf("failed to parse reminder: %w", err)
		}
		reminders = append(reminders, &reminder)
	}
	return reminders, nil
}

// Notification operations

func (s *FirestoreStore) CreateNotification(ctx context.Context, notification *models.Notification) error {
	if notification.ID == "" {
		notification.ID = s.client.Collection(notificationsCollection).NewDoc().ID
	}
	_, err := s.client.Collection(notificationsCollection).Doc(notification.ID).Set(ctx, notification)
	return err
}

func (s *FirestoreStore) GetNotification(ctx context.Context, notificationID string) (*models.Notification, error) {
	var notification models.Notification
	if err := s.getDoc(ctx, notificationsCollection, "notification", notificationID, &notification); err != nil {
		return nil, err
	}
	return &notification, nil
}

func (s *FirestoreStore) ListNotifications(ctx context.Context, userID string, unreadOnly bool, pageSize int32, pageToken string) ([]*models.Notification, string, error) {
	query := s.client.Collection(notificationsCollection).Where("UserID", "==", userID)

	if unreadOnly {
		query = query.Where("IsRead", "==", false)
	}

	query = query.OrderBy("CreatedAt", firestore.Desc)

	if pageToken != "" {
		docID, err := DecodePageToken(pageToken)
		if err != nil {
			return nil, "", fmt.Errorf("invalid page token: %w", err)
		}
		cursorDoc, err := s.client.Collection(notificationsCollection).Doc(docID).Get(ctx)
		if err != nil {
			return nil, "", fmt.Errorf("invalid page token document: %w", err)
		}
		query = query.StartAfter(cursorDoc.Data()["CreatedAt"])
	}

	if pageSize <= 0 {
		pageSize = 50
	}
	query = query.Limit(int(pageSize) + 1)

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, "", fmt.Errorf("failed to list notifications: %w", err)
	}

	var nextPageToken string
	if len(docs) > int(pageSize) {
		docs = docs[:pageSize]
		nextPageToken = EncodePageToken(docs[pageSize-1].Ref.ID)
	}

	notifications := make([]*models.Notification, 0, len(docs))
	for _, doc := range docs {
		var notification models.Notification
		if err := doc.DataTo(&notification); err != nil {
			return nil, "", fmt.Errorf("failed to parse notification: %w", err)
		}
		notifications = append(notifications, &notification)
	}
	return notifications, nextPageToken, nil
}

func (s *FirestoreStore) MarkNotificationRead(ctx context.Context, notificationID string) error {
	_, err := s.client.Collection(notificationsCollection).Doc(notificationID).Update(ctx, []firestore.Update{
		{Path: "IsRead", Value: true},
		{Path: "ReadAt", Value: time.Now()},
	})
	if status.Code(err) == codes.NotFound {
		return notFound("notification", notificationID)
	}
	return err
}

func (s *FirestoreStore) MarkAllNotificationsRead(ctx context.Context, userID string) error {
	docs, err := s.client.Collection(notificationsCollection).
		Where("UserID", "==", userID).
		Where("IsRead", "==", false).
		Documents(ctx).GetAll()
	if err != nil {
		return fmt.Errorf("failed to query unread notifications: %w", err)
	}

	now := time.Now()
	for start := 0; start < len(docs); start += maxBatchWrites {
		end := start + maxBatchWrites
		if end > len(docs) {
			end = len(docs)
		}
		batch := s.client.Batch()
		for _, doc := range docs[start:end] {
			batch.Update(doc.Ref, []firestore.Update{
				{Path: "IsRead", Value: true},
				{Path: "ReadAt", Value: now},
			})
		}
		if _, err := batch.Commit(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (s *FirestoreStore) DeleteNotification(ctx context.Context, notificationID string) error {
	return s.deleteDoc(ctx, notificationsCollection, "notification", notificationID)
}

func (s *FirestoreStore) GetUnreadNotificationCount(ctx context.Context, userID string) (int32, error) {
	docs, err := s.client.Collection(notificationsCollection).
		Where("UserID", "==", userID).
		Where("IsRead", "==", false).
		Documents(ctx).GetAll()
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	return int32(len(docs)), nil
}

func (s *FirestoreStore) GetNotificationPreferences(ctx context.Context, userID string) (*models.NotificationPreferences, error) {
	var prefs models.NotificationPreferences
	err := s.getDoc(ctx, preferencesCollection, "notification preferences", userID, &prefs)
	if err == nil {
		return &prefs, nil
	}
	if isNotFound(err) {
		return defaultNotificationPreferences(userID), nil
	}
	return nil, err
}

func (s *FirestoreStore) UpdateNotificationPreferences(ctx context.Context, prefs *models.NotificationPreferences) error {
	_, err := s.client.Collection(preferencesCollection).Doc(prefs.UserID).Set(ctx, prefs)
	return err
}

// Chat history operations

func (s *FirestoreStore) CreateChatMessage(ctx context.Context, msg *models.ChatMessage) error {
	if msg.ID == "" {
		msg.ID = s.client.Collection(chatCollection).NewDoc().ID
	}
	_, err := s.client.Collection(chatCollection).Doc(msg.ID).Set(ctx, msg)
	return err
}

func (s *FirestoreStore) ListChatMessages(ctx context.Context, userID, conversationID string, limit int) ([]*models.ChatMessage, error) {
	query := s.client.Collection(chatCollection).Where("UserID", "==", userID)
	if conversationID != "" {
		query = query.Where("ConversationID", "==", conversationID)
	}
	// Newest first so Limit keeps the tail of the conversation.
	query = query.OrderBy("CreatedAt", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}

	messages := make([]*models.ChatMessage, len(docs))
	for i, doc := range docs {
		var msg models.ChatMessage
		if err := doc.DataTo(&msg); err != nil {
			return nil, fmt.Errorf("failed to parse chat message: %w", err)
		}
		messages[len(docs)-1-i] = &msg
	}
	return messages, nil
}

func (s *FirestoreStore) DeleteChatMessages(ctx context.Context, userID string) error {
	if err := s.deleteWhere(ctx, s.client.Collection(chatCollection).Where("UserID", "==", userID)); err != nil {
		return fmt.Errorf("failed to clear chat history: %w", err)
	}
	return nil
}
