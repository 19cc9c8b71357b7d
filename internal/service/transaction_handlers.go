package service

import (
	"context"
	"strings"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/hamid26126/CashMate/internal/auth"
	"github.com/hamid26126/CashMate/internal/models"
	"github.com/hamid26126/CashMate/internal/search"
	"github.com/shopspring/decimal"
)

const (
	defaultRecentLimit = 10
	maxRecentLimit     = 100
)

type AddTransactionRequest struct {
	Description string                 `json:"description"`
	Category    string                 `json:"category"`
	Amount      float64                `json:"amount"`
	Type        models.TransactionType `json:"type"`
	Date        string                 `json:"date"`
}

type UpdateTransactionRequest struct {
	ID          string   `json:"id"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Amount      *float64 `json:"amount"`
	Date        string   `json:"date"`
}

type TransactionResponse struct {
	Transaction *models.Transaction `json:"transaction"`
}

type GetRecentTransactionsRequest struct {
	Limit int `json:"limit"`
}

type ListTransactionsRequest struct {
	Type      models.TransactionType `json:"type"`
	PageSize  int32                  `json:"pageSize"`
	PageToken string                 `json:"pageToken"`
}

type TransactionsResponse struct {
	Transactions  []*models.Transaction `json:"transactions"`
	NextPageToken string                `json:"nextPageToken,omitempty"`
}

type SearchTransactionsRequest struct {
	Query    string                 `json:"query"`
	Category string                 `json:"category"`
	Type     models.TransactionType `json:"type"`
	Page     int                    `json:"page"`
	PageSize int                    `json:"pageSize"`
}

type SearchTransactionsResponse struct {
	Results    []*search.SearchResult `json:"results"`
	TotalCount int                    `json:"totalCount"`
	Page       int                    `json:"page"`
}

// AddTransaction records an income or expense and updates the user's
// lifetime totals.
func (s *FinanceService) AddTransaction(ctx context.Context, req *connect.Request[AddTransactionRequest]) (*connect.Response[TransactionResponse], error) {
	msg := req.Msg
	description := strings.TrimSpace(msg.Description)
	if description == "" {
		return nil, invalidArgument("description is required")
	}
	if !msg.Type.Valid() {
		return nil, invalidArgument("type must be income or expense")
	}
	if msg.Amount <= 0 {
		return nil, invalidArgument("amount must be greater than 0")
	}

	user, err := s.requireUser(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	date, err := parseDate(msg.Date, now)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	tx := &models.Transaction{
		ID:          uuid.New().String(),
		UserID:      user.ID,
		Description: description,
		Amount:      msg.Amount,
		Type:        msg.Type,
		Category:    models.CategoryRef{Name: normalizeCategory(msg.Category)},
		Date:        date,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateTransaction(ctx, tx); err != nil {
		return nil, storeError("create transaction", err)
	}

	if err := s.adjustTotals(ctx, user.ID, tx.Type, decimal.NewFromFloat(tx.Amount)); err != nil {
		// Keep totals and ledger consistent
		if delErr := s.store.DeleteTransaction(ctx, tx.ID); delErr != nil {
			s.log.WithError(delErr).WithField("transaction_id", tx.ID).Error("failed to roll back transaction")
		}
		return nil, err
	}

	s.reindex(ctx, tx)
	return connect.NewResponse(&TransactionResponse{Transaction: tx}), nil
}

// UpdateTransaction edits a transaction. Totals move by the amount
// difference; the type cannot change.
func (s *FinanceService) UpdateTransaction(ctx context.Context, req *connect.Request[UpdateTransactionRequest]) (*connect.Response[TransactionResponse], error) {
	msg := req.Msg
	if msg.ID == "" {
		return nil, invalidArgument("id is required")
	}
	if msg.Amount != nil && *msg.Amount <= 0 {
		return nil, invalidArgument("amount must be greater than 0")
	}

	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := s.store.GetTransaction(ctx, msg.ID)
	if err != nil {
		return nil, storeError("get transaction", err)
	}
	if err := auth.RequireOwnership(claims, tx.UserID); err != nil {
		return nil, err
	}

	if d := strings.TrimSpace(msg.Description); d != "" {
		tx.Description = d
	}
	if c := normalizeCategory(msg.Category); c != "" {
		tx.Category = models.CategoryRef{Name: c}
	}
	if msg.Date != "" {
		date, err := parseDate(msg.Date, tx.Date)
		if err != nil {
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
		tx.Date = date
	}

	diff := decimal.Zero
	if msg.Amount != nil {
		diff = decimal.NewFromFloat(*msg.Amount).Sub(decimal.NewFromFloat(tx.Amount))
		tx.Amount = *msg.Amount
	}
	tx.UpdatedAt = s.now()

	if err := s.store.UpdateTransaction(ctx, tx); err != nil {
		return nil, storeError("update transaction", err)
	}

	if !diff.IsZero() {
		if err := s.adjustTotals(ctx, claims.UID, tx.Type, diff); err != nil {
			return nil, err
		}
	}

	s.reindex(ctx, tx)
	return connect.NewResponse(&TransactionResponse{Transaction: tx}), nil
}

// DeleteTransaction removes a transaction and reverses its effect on the
// user's totals.
func (s *FinanceService) DeleteTransaction(ctx context.Context, req *connect.Request[IDRequest]) (*connect.Response[Empty], error) {
	if req.Msg.ID == "" {
		return nil, invalidArgument("id is required")
	}

	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := s.store.GetTransaction(ctx, req.Msg.ID)
	if err != nil {
		return nil, storeError("get transaction", err)
	}
	if err := auth.RequireOwnership(claims, tx.UserID); err != nil {
		return nil, err
	}

	if err := s.adjustTotals(ctx, claims.UID, tx.Type, decimal.NewFromFloat(tx.Amount).Neg()); err != nil {
		return nil, err
	}
	if err := s.store.DeleteTransaction(ctx, tx.ID); err != nil {
		return nil, storeError("delete transaction", err)
	}

	s.unindex(ctx, tx.ID)
	return connect.NewResponse(&Empty{}), nil
}

// adjustTotals moves the user's lifetime totals by delta in one atomic
// store update.
func (s *FinanceService) adjustTotals(ctx context.Context, userID string, txType models.TransactionType, delta decimal.Decimal) error {
	now := s.now()
	_, err := s.store.UpdateUserFunc(ctx, userID, func(u *models.User) error {
		applyToTotals(u, txType, delta)
		u.UpdatedAt = now
		return nil
	})
	if err != nil {
		return storeError("update user totals", err)
	}
	return nil
}

// GetRecentTransactions returns the newest transactions, 10 by default.
func (s *FinanceService) GetRecentTransactions(ctx context.Context, req *connect.Request[GetRecentTransactionsRequest]) (*connect.Response[TransactionsResponse], error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}

	limit := req.Msg.Limit
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	txs, err := s.store.ListRecentTransactions(ctx, claims.UID, limit)
	if err != nil {
		return nil, storeError("list transactions", err)
	}
	return connect.NewResponse(&TransactionsResponse{Transactions: txs}), nil
}

func (s *FinanceService) ListTransactions(ctx context.Context, req *connect.Request[ListTransactionsRequest]) (*connect.Response[TransactionsResponse], error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}
	if req.Msg.Type != "" && !req.Msg.Type.Valid() {
		return nil, invalidArgument("type must be income or expense")
	}

	txs, next, err := s.store.ListTransactions(ctx, claims.UID, req.Msg.Type, auth.NormalizePageSize(req.Msg.PageSize), req.Msg.PageToken)
	if err != nil {
		return nil, storeError("list transactions", err)
	}
	return connect.NewResponse(&TransactionsResponse{Transactions: txs, NextPageToken: next}), nil
}

// SearchTransactions runs a full-text search through the index when one is
// configured and falls back to scanning the store.
func (s *FinanceService) SearchTransactions(ctx context.Context, req *connect.Request[SearchTransactionsRequest]) (*connect.Response[SearchTransactionsResponse], error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}

	params := search.SearchParams{
		Query:    strings.TrimSpace(req.Msg.Query),
		UserID:   claims.UID,
		Category: normalizeCategory(req.Msg.Category),
		Type:     req.Msg.Type,
		Page:     req.Msg.Page,
		PageSize: req.Msg.PageSize,
	}

	if s.index != nil {
		resp, err := s.index.Search(ctx, params)
		if err == nil {
			return connect.NewResponse(&SearchTransactionsResponse{
				Results:    resp.Results,
				TotalCount: resp.TotalCount,
				Page:       resp.Page,
			}), nil
		}
		s.log.WithError(err).WithField("user_id", claims.UID).Warn("search index unavailable, scanning store")
	}

	txs, err := s.store.ListRecentTransactions(ctx, claims.UID, 0)
	if err != nil {
		return nil, storeError("list transactions", err)
	}
	return connect.NewResponse(scanTransactions(txs, params)), nil
}

// scanTransactions filters txs in memory with the same semantics as the
// search index: case-insensitive substring on description or category.
func scanTransactions(txs []*models.Transaction, params search.SearchParams) *SearchTransactionsResponse {
	query := strings.ToLower(params.Query)

	var matches []*search.SearchResult
	for _, tx := range txs {
		if params.Type.Valid() && tx.Type != params.Type {
			continue
		}
		if params.Category != "" && !strings.EqualFold(tx.CategoryName(), params.Category) {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(tx.Description), query) &&
			!strings.Contains(strings.ToLower(tx.CategoryName()), query) {
			continue
		}
		matches = append(matches, &search.SearchResult{
			ID:          tx.ID,
			Description: tx.Description,
			Category:    tx.CategoryName(),
			Amount:      tx.Amount,
			Type:        tx.Type,
			Date:        tx.Date,
		})
	}

	pageSize := params.PageSize
	if pageSize <= 0 {
		pageSize = 25
	}
	pageSize = min(pageSize, 100)
	page := max(params.Page, 0)

	start := min(page*pageSize, len(matches))
	end := min(start+pageSize, len(matches))

	return &SearchTransactionsResponse{
		Results:    matches[start:end],
		TotalCount: len(matches),
		Page:       page,
	}
}

func (s *FinanceService) reindex(ctx context.Context, tx *models.Transaction) {
	if s.index == nil {
		return
	}
	if err := s.index.IndexTransaction(ctx, tx); err != nil {
		s.log.WithError(err).WithField("transaction_id", tx.ID).Warn("failed to index transaction")
	}
}

func (s *FinanceService) unindex(ctx context.Context, txID string) {
	if s.index == nil {
		return
	}
	if err := s.index.RemoveTransaction(ctx, txID); err != nil {
		s.log.WithError(err).WithField("transaction_id", txID).Warn("failed to remove transaction from index")
	}
}
