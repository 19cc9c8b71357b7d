package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"connectrpc.com/connect"
	"github.com/hamid26126/CashMate/internal/chat"
	"github.com/hamid26126/CashMate/internal/models"
	"github.com/hamid26126/CashMate/internal/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestAddTransaction_UpdatesTotalsAndHealth(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := testContext("user-1")

	addTx(t, svc, "user-1", models.TransactionTypeIncome, 1000, "salary")
	tx := addTx(t, svc, "user-1", models.TransactionTypeExpense, 400, " food ")

	assert.Equal(t, "Food", tx.Category.Name)
	assert.Equal(t, testNow, tx.Date)

	info, err := svc.GetInfo(ctx, connect.NewRequest(&Empty{}))
	require.NoError(t, err)
	assert.Equal(t, 1000.0, info.Msg.TotalIncome)
	assert.Equal(t, 400.0, info.Msg.TotalExpense)
	assert.Equal(t, 600.0, info.Msg.RemainingBalance)
	assert.Equal(t, 80.0, info.Msg.FinancialHealth)
}

func TestAddTransaction_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := testContext("user-1")

	tests := []struct {
		name string
		req  *AddTransactionRequest
	}{
		{"missing description", &AddTransactionRequest{Amount: 10, Type: models.TransactionTypeExpense}},
		{"unknown type", &AddTransactionRequest{Description: "x", Amount: 10, Type: "transfer"}},
		{"zero amount", &AddTransactionRequest{Description: "x", Type: models.TransactionTypeIncome}},
		{"negative amount", &AddTransactionRequest{Description: "x", Amount: -5, Type: models.TransactionTypeIncome}},
		{"bad date", &AddTransactionRequest{Description: "x", Amount: 5, Type: models.TransactionTypeIncome, Date: "yesterday"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddTransaction(ctx, connect.NewRequest(tt.req))
			requireCode(t, err, connect.CodeInvalidArgument)
		})
	}
}

func TestAddTransaction_RequiresAuth(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.AddTransaction(context.Background(), connect.NewRequest(&AddTransactionRequest{
		Description: "x", Amount: 1, Type: models.TransactionTypeIncome,
	}))
	requireCode(t, err, connect.CodeUnauthenticated)
}

func TestUpdateTransaction_AdjustsByDifference(t *testing.T) {
	svc, st := newTestService(t)
	ctx := testContext("user-1")

	addTx(t, svc, "user-1", models.TransactionTypeIncome, 1000, "salary")
	expense := addTx(t, svc, "user-1", models.TransactionTypeExpense, 400, "food")

	amount := 500.0
	resp, err := svc.UpdateTransaction(ctx, connect.NewRequest(&UpdateTransactionRequest{
		ID:       expense.ID,
		Amount:   &amount,
		Category: "groceries",
	}))
	require.NoError(t, err)
	assert.Equal(t, 500.0, resp.Msg.Transaction.Amount)
	assert.Equal(t, "Groceries", resp.Msg.Transaction.Category.Name)

	user, err := st.GetUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 500.0, user.TotalExpense)
	assert.Equal(t, 75.0, user.FinancialHealth)
}

func TestUpdateTransaction_OtherUsersRecord(t *testing.T) {
	svc, _ := newTestService(t)

	tx := addTx(t, svc, "owner", models.TransactionTypeIncome, 100, "salary")

	amount := 1.0
	_, err := svc.UpdateTransaction(testContext("intruder"), connect.NewRequest(&UpdateTransactionRequest{ID: tx.ID, Amount: &amount}))
	requireCode(t, err, connect.CodePermissionDenied)

	_, err = svc.DeleteTransaction(testContext("intruder"), connect.NewRequest(&IDRequest{ID: tx.ID}))
	requireCode(t, err, connect.CodePermissionDenied)
}

func TestDeleteTransaction_ReversesTotals(t *testing.T) {
	svc, st := newTestService(t)
	ctx := testContext("user-1")

	addTx(t, svc, "user-1", models.TransactionTypeIncome, 1000, "salary")
	expense := addTx(t, svc, "user-1", models.TransactionTypeExpense, 250.25, "rent")

	_, err := svc.DeleteTransaction(ctx, connect.NewRequest(&IDRequest{ID: expense.ID}))
	require.NoError(t, err)

	user, err := st.GetUser(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 0.0, user.TotalExpense)
	assert.Equal(t, 100.0, user.FinancialHealth)

	_, err = svc.DeleteTransaction(ctx, connect.NewRequest(&IDRequest{ID: expense.ID}))
	requireCode(t, err, connect.CodeNotFound)
}

func TestGetRecentTransactions_DefaultLimit(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := testContext("user-1")

	for i := 0; i < 12; i++ {
		addTx(t, svc, "user-1", models.TransactionTypeIncome, float64(i+1), "misc")
	}

	resp, err := svc.GetRecentTransactions(ctx, connect.NewRequest(&GetRecentTransactionsRequest{}))
	require.NoError(t, err)
	assert.Len(t, resp.Msg.Transactions, defaultRecentLimit)

	resp, err = svc.GetRecentTransactions(ctx, connect.NewRequest(&GetRecentTransactionsRequest{Limit: 3}))
	require.NoError(t, err)
	assert.Len(t, resp.Msg.Transactions, 3)
}

func TestGetCategoricalExpenses(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := testContext("user-1")

	addTx(t, svc, "user-1", models.TransactionTypeIncome, 1000, "salary")
	addTx(t, svc, "user-1", models.TransactionTypeExpense, 30, "food")
	addTx(t, svc, "user-1", models.TransactionTypeExpense, 20.5, "Food")
	addTx(t, svc, "user-1", models.TransactionTypeExpense, 70, "rent")
	addTx(t, svc, "user-1", models.TransactionTypeExpense, 5, "")

	resp, err := svc.GetCategoricalExpenses(ctx, connect.NewRequest(&Empty{}))
	require.NoError(t, err)
	assert.Equal(t, []CategoryExpense{
		{CategoryName: "Rent", Amount: 70},
		{CategoryName: "Food", Amount: 50.5},
		{CategoryName: models.UncategorizedCategory, Amount: 5},
	}, resp.Msg.Categories)
}

func TestSearchTransactions_StoreScan(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := testContext("user-1")

	addTx(t, svc, "user-1", models.TransactionTypeExpense, 12, "coffee")
	addTx(t, svc, "user-1", models.TransactionTypeExpense, 60, "groceries")
	addTx(t, svc, "user-1", models.TransactionTypeIncome, 900, "salary")
	addTx(t, svc, "user-2", models.TransactionTypeExpense, 15, "coffee")

	resp, err := svc.SearchTransactions(ctx, connect.NewRequest(&SearchTransactionsRequest{Query: "COFFEE"}))
	require.NoError(t, err)
	require.Len(t, resp.Msg.Results, 1)
	assert.Equal(t, 12.0, resp.Msg.Results[0].Amount)

	resp, err = svc.SearchTransactions(ctx, connect.NewRequest(&SearchTransactionsRequest{Type: models.TransactionTypeExpense}))
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Msg.TotalCount)

	resp, err = svc.SearchTransactions(ctx, connect.NewRequest(&SearchTransactionsRequest{Type: models.TransactionTypeExpense, PageSize: 1, Page: 1}))
	require.NoError(t, err)
	assert.Len(t, resp.Msg.Results, 1)
	assert.Equal(t, 2, resp.Msg.TotalCount)
}

func TestSearchTransactions_UsesIndex(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, _ := newTestService(t)
	index := NewMockTransactionIndex(ctrl)
	svc.SetTransactionIndex(index)

	index.EXPECT().IndexTransaction(gomock.Any(), gomock.Any()).Return(nil)
	addTx(t, svc, "user-1", models.TransactionTypeExpense, 12, "coffee")

	index.EXPECT().
		Search(gomock.Any(), search.SearchParams{Query: "latte", UserID: "user-1", Category: "Coffee"}).
		Return(&search.SearchResponse{Results: []*search.SearchResult{{ID: "hit-1"}}, TotalCount: 1}, nil)

	resp, err := svc.SearchTransactions(testContext("user-1"), connect.NewRequest(&SearchTransactionsRequest{Query: " latte ", Category: "coffee"}))
	require.NoError(t, err)
	require.Len(t, resp.Msg.Results, 1)
	assert.Equal(t, "hit-1", resp.Msg.Results[0].ID)
}

func TestSearchTransactions_IndexFailureFallsBackToScan(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, _ := newTestService(t)
	index := NewMockTransactionIndex(ctrl)
	svc.SetTransactionIndex(index)

	index.EXPECT().IndexTransaction(gomock.Any(), gomock.Any()).Return(errors.New("algolia down"))
	addTx(t, svc, "user-1", models.TransactionTypeExpense, 12, "coffee")

	index.EXPECT().Search(gomock.Any(), gomock.Any()).Return(nil, errors.New("algolia down"))

	resp, err := svc.SearchTransactions(testContext("user-1"), connect.NewRequest(&SearchTransactionsRequest{Query: "coffee"}))
	require.NoError(t, err)
	assert.Len(t, resp.Msg.Results, 1)
}

func TestDeleteTransaction_RemovesFromIndex(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, _ := newTestService(t)
	index := NewMockTransactionIndex(ctrl)
	svc.SetTransactionIndex(index)

	index.EXPECT().IndexTransaction(gomock.Any(), gomock.Any()).Return(nil)
	tx := addTx(t, svc, "user-1", models.TransactionTypeIncome, 10, "gift")

	index.EXPECT().RemoveTransaction(gomock.Any(), tx.ID).Return(nil)
	_, err := svc.DeleteTransaction(testContext("user-1"), connect.NewRequest(&IDRequest{ID: tx.ID}))
	require.NoError(t, err)
}

func TestFinancialHealth(t *testing.T) {
	tests := []struct {
		name            string
		income, expense float64
		want            float64
	}{
		{"no activity", 0, 0, 100},
		{"balanced", 1000, 400, 80},
		{"spent everything", 1000, 1000, 50},
		{"double spend", 1000, 2000, 0},
		{"expense without income", 0, 10, 0},
		{"negative clamps to zero", 100, 500, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, financialHealth(tt.income, tt.expense))
		})
	}
}

func TestNormalizeCategory(t *testing.T) {
	assert.Equal(t, "", normalizeCategory("   "))
	assert.Equal(t, "Eating Out", normalizeCategory("  eating   OUT "))
}

func TestAddTransaction_ConcurrentWithSummary(t *testing.T) {
	svc, st := newTestService(t)
	seedUser(t, st, "user-1")
	ctx := testContext("user-1")

	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := svc.AddTransaction(ctx, connect.NewRequest(&AddTransactionRequest{
				Description: "Freelance",
				Category:    "work",
				Amount:      10,
				Type:        models.TransactionTypeIncome,
			}))
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			summary, err := chat.BuildSummary(context.Background(), st, "user-1", chat.DefaultRecentWindow)
			if assert.NoError(t, err) {
				assert.True(t, summary.CurrentBalance.Equal(summary.TotalIncome.Sub(summary.TotalExpense)))
			}
		}()
	}
	wg.Wait()

	user, err := st.GetUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 200.0, user.TotalIncome)

	txs, err := st.ListRecentTransactions(context.Background(), "user-1", 0)
	require.NoError(t, err)
	assert.Len(t, txs, writers)
}
