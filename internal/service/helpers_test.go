package service

import (
	"context"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/hamid26126/CashMate/internal/auth"
	"github.com/hamid26126/CashMate/internal/models"
	"github.com/hamid26126/CashMate/internal/store"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

// testContext creates a context with authenticated user claims for testing
func testContext(userID string) context.Context {
	return auth.WithUserClaims(context.Background(), &auth.UserClaims{
		UID:         userID,
		Email:       userID + "@test.com",
		DisplayName: "Test User",
		Verified:    true,
	})
}

func newTestService(t *testing.T) (*FinanceService, *store.MemoryStore) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	st := store.NewMemoryStore()
	svc := NewFinanceService(st, logger)
	svc.SetTokenIssuer(auth.NewTokenIssuer("test-secret", time.Hour))
	svc.SetClock(func() time.Time { return testNow })
	return svc, st
}

func seedUser(t *testing.T, st store.Store, id string) *models.User {
	t.Helper()
	user := &models.User{
		ID:              id,
		FullName:        "User " + id,
		Email:           id + "@test.com",
		FinancialHealth: models.DefaultFinancialHealth,
		CreatedAt:       testNow,
	}
	require.NoError(t, st.CreateUser(context.Background(), user))
	return user
}

func addTx(t *testing.T, svc *FinanceService, userID string, txType models.TransactionType, amount float64, category string) *models.Transaction {
	t.Helper()
	resp, err := svc.AddTransaction(testContext(userID), connect.NewRequest(&AddTransactionRequest{
		Description: string(txType) + " " + category,
		Category:    category,
		Amount:      amount,
		Type:        txType,
	}))
	require.NoError(t, err)
	return resp.Msg.Transaction
}

func requireCode(t *testing.T, err error, code connect.Code) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, code, connect.CodeOf(err), "unexpected error: %v", err)
}
