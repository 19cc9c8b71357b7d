package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/hamid26126/CashMate/internal/auth"
	"github.com/hamid26126/CashMate/internal/chat"
	"github.com/hamid26126/CashMate/internal/models"
)

const (
	// DefaultConversationID groups messages sent without a conversation.
	DefaultConversationID = "default"

	maxChatMessageRunes = 2000
	// historyFetchLimit bounds the history loaded per message; the
	// assistant keeps only the latest turns of it.
	historyFetchLimit  = 10
	chatContextRecents = 5
)

// ChatUser is the profile slice shown beside the chat.
type ChatUser struct {
	FullName  string `json:"fullName"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// ChatContextResponse carries the profile, totals and recent transactions for the chat screen.
type ChatContextResponse struct {
	User               ChatUser              `json:"user"`
	FinancialInfo      UserInfo              `json:"financialInfo"`
	RecentTransactions []*models.Transaction `json:"recentTransactions"`
}

// SendChatMessageRequest is one user message, optionally continuing a conversation.
type SendChatMessageRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversationId"`
}

type SendChatMessageResponse struct {
	UserMessage *models.ChatMessage `json:"userMessage"`
	BotMessage  *models.ChatMessage `json:"botMessage"`
	Source      chat.Source         `json:"source"`
}

type GetChatHistoryRequest struct {
	ConversationID string `json:"conversationId"`
}

// ChatHistoryResponse lists a conversation's messages oldest first.
type ChatHistoryResponse struct {
	Messages []*models.ChatMessage `json:"messages"`
}

// GetChatContext returns the profile, totals and latest transactions the
// chat screen shows next to the conversation.
func (s *FinanceService) GetChatContext(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[ChatContextResponse], error) {
	user, err := s.requireUser(ctx)
	if err != nil {
		return nil, err
	}

	recent, err := s.store.ListRecentTransactions(ctx, user.ID, chatContextRecents)
	if err != nil {
		return nil, storeError("list transactions", err)
	}

	return connect.NewResponse(&ChatContextResponse{
		User: ChatUser{
			FullName:  user.FullName,
			Email:     user.Email,
			AvatarURL: user.AvatarURL,
		},
		FinancialInfo: UserInfo{
			TotalIncome:      user.TotalIncome,
			TotalExpense:     user.TotalExpense,
			RemainingBalance: sumAmounts(user.TotalIncome, -user.TotalExpense),
			FinancialHealth:  user.FinancialHealth,
			MonthlyIncome:    user.MonthlyIncome,
		},
		RecentTransactions: recent,
	}), nil
}

// SendChatMessage stores the user's message, asks the assistant for a reply
// and stores that too. History is read before the new message is written so
// the assistant does not see it twice.
func (s *FinanceService) SendChatMessage(ctx context.Context, req *connect.Request[SendChatMessageRequest]) (*connect.Response[SendChatMessageResponse], error) {
	if s.assistant == nil {
		return nil, connect.NewError(connect.CodeUnimplemented, errors.New("chat assistant is not configured"))
	}

	message := strings.TrimSpace(req.Msg.Message)
	if message == "" {
		return nil, invalidArgument("message is required")
	}
	if utf8.RuneCountInString(message) > maxChatMessageRunes {
		return nil, invalidArgument("message exceeds %d characters", maxChatMessageRunes)
	}
	conversationID := req.Msg.ConversationID
	if conversationID == "" {
		conversationID = DefaultConversationID
	}

	user, err := s.requireUser(ctx)
	if err != nil {
		return nil, err
	}

	previous, err := s.store.ListChatMessages(ctx, user.ID, conversationID, historyFetchLimit)
	if err != nil {
		return nil, storeError("load chat history", err)
	}
	history := make([]chat.Turn, 0, len(previous))
	for _, m := range previous {
		history = append(history, chat.Turn{Role: string(m.Role), Message: m.Message})
	}

	userMessage := &models.ChatMessage{
		ID:             uuid.New().String(),
		UserID:         user.ID,
		ConversationID: conversationID,
		Role:           models.ChatRoleUser,
		Message:        message,
		CreatedAt:      s.now(),
	}
	if err := s.store.CreateChatMessage(ctx, userMessage); err != nil {
		return nil, storeError("save chat message", err)
	}

	reply, err := s.assistant.SendMessage(ctx, user.ID, message, history)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	botMessage := &models.ChatMessage{
		ID:             uuid.New().String(),
		UserID:         user.ID,
		ConversationID: conversationID,
		Role:           models.ChatRoleBot,
		Message:        reply.Text,
		Metadata:       map[string]string{"source": string(reply.Source)},
		CreatedAt:      s.now(),
	}
	if err := s.store.CreateChatMessage(ctx, botMessage); err != nil {
		return nil, storeError("save chat reply", err)
	}

	return connect.NewResponse(&SendChatMessageResponse{
		UserMessage: userMessage,
		BotMessage:  botMessage,
		Source:      reply.Source,
	}), nil
}

// GetChatHistory returns a conversation oldest first. Without a
// conversation id every message of the user is returned.
func (s *FinanceService) GetChatHistory(ctx context.Context, req *connect.Request[GetChatHistoryRequest]) (*connect.Response[ChatHistoryResponse], error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}

	messages, err := s.store.ListChatMessages(ctx, claims.UID, req.Msg.ConversationID, 0)
	if err != nil {
		return nil, storeError("list chat messages", err)
	}
	return connect.NewResponse(&ChatHistoryResponse{Messages: messages}), nil
}

func (s *FinanceService) ClearChatHistory(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[Empty], error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.store.DeleteChatMessages(ctx, claims.UID); err != nil {
		return nil, storeError("clear chat history", err)
	}
	return connect.NewResponse(&Empty{}), nil
}
