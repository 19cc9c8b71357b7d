package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"connectrpc.com/connect"
	"github.com/hamid26126/CashMate/internal/auth"
	"github.com/hamid26126/CashMate/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func register(t *testing.T, svc *FinanceService, email, password string) *AuthResponse {
	t.Helper()
	resp, err := svc.Register(context.Background(), connect.NewRequest(&RegisterRequest{
		FullName: "Ada Lovelace",
		Email:    email,
		Password: password,
	}))
	require.NoError(t, err)
	return resp.Msg
}

func TestRegister(t *testing.T) {
	svc, st := newTestService(t)

	resp := register(t, svc, "Ada@Example.com", "secret1")
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "ada@example.com", resp.User.Email)
	assert.Equal(t, float64(models.DefaultFinancialHealth), resp.User.FinancialHealth)
	assert.Equal(t, testNow, resp.User.MemberSince)

	stored, err := st.GetUserByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", stored.PasswordHash)

	_, err = svc.Register(context.Background(), connect.NewRequest(&RegisterRequest{
		FullName: "Someone Else",
		Email:    "ada@example.com",
		Password: "another1",
	}))
	requireCode(t, err, connect.CodeAlreadyExists)
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newTestService(t)

	tests := []struct {
		name string
		req  *RegisterRequest
	}{
		{"missing name", &RegisterRequest{Email: "a@b.co", Password: "secret1"}},
		{"bad email", &RegisterRequest{FullName: "A", Email: "not-an-email", Password: "secret1"}},
		{"short password", &RegisterRequest{FullName: "A", Email: "a@b.co", Password: "12345"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), connect.NewRequest(tt.req))
			requireCode(t, err, connect.CodeInvalidArgument)
		})
	}
}

func TestLogin(t *testing.T) {
	svc, _ := newTestService(t)
	register(t, svc, "ada@example.com", "secret1")

	resp, err := svc.Login(context.Background(), connect.NewRequest(&LoginRequest{Email: " ADA@example.com", Password: "secret1"}))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Msg.Token)

	_, err = svc.Login(context.Background(), connect.NewRequest(&LoginRequest{Email: "ada@example.com", Password: "wrong-password"}))
	requireCode(t, err, connect.CodeUnauthenticated)

	_, err = svc.Login(context.Background(), connect.NewRequest(&LoginRequest{Email: "nobody@example.com", Password: "secret1"}))
	requireCode(t, err, connect.CodeUnauthenticated)
}

func TestLogin_Disabled(t *testing.T) {
	svc, _ := newTestService(t)
	svc.SetTokenIssuer(nil)

	_, err := svc.Login(context.Background(), connect.NewRequest(&LoginRequest{Email: "a@b.co", Password: "secret1"}))
	requireCode(t, err, connect.CodeUnimplemented)
}

func TestChangePassword(t *testing.T) {
	svc, _ := newTestService(t)
	resp := register(t, svc, "ada@example.com", "secret1")
	ctx := testContext(resp.User.ID)

	_, err := svc.ChangePassword(ctx, connect.NewRequest(&ChangePasswordRequest{Current: "secret1", New: "newpass1", Confirm: "newpass2"}))
	requireCode(t, err, connect.CodeInvalidArgument)

	_, err = svc.ChangePassword(ctx, connect.NewRequest(&ChangePasswordRequest{Current: "wrong", New: "newpass1", Confirm: "newpass1"}))
	requireCode(t, err, connect.CodeUnauthenticated)

	_, err = svc.ChangePassword(ctx, connect.NewRequest(&ChangePasswordRequest{Current: "secret1", New: "newpass1", Confirm: "newpass1"}))
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), connect.NewRequest(&LoginRequest{Email: "ada@example.com", Password: "newpass1"}))
	require.NoError(t, err)
}

func TestHandler_AuthenticatesOverHTTP(t *testing.T) {
	svc, _ := newTestService(t)
	issuer := auth.NewTokenIssuer("http-secret", 0)
	svc.SetTokenIssuer(issuer)

	server := httptest.NewServer(svc.Handler(connect.WithInterceptors(auth.AuthInterceptor(issuer))))
	defer server.Close()

	registerClient := NewClient[RegisterRequest, AuthResponse](http.DefaultClient, server.URL, "Register")
	infoClient := NewClient[Empty, UserInfo](http.DefaultClient, server.URL+"/", "GetInfo")

	registered, err := registerClient.CallUnary(context.Background(), connect.NewRequest(&RegisterRequest{
		FullName: "Ada Lovelace",
		Email:    "ada@example.com",
		Password: "secret1",
	}))
	require.NoError(t, err)
	require.NotEmpty(t, registered.Msg.Token)

	_, err = infoClient.CallUnary(context.Background(), connect.NewRequest(&Empty{}))
	requireCode(t, err, connect.CodeUnauthenticated)

	req := connect.NewRequest(&Empty{})
	req.Header().Set("Authorization", "Bearer "+registered.Msg.Token)
	info, err := infoClient.CallUnary(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, float64(models.DefaultFinancialHealth), info.Msg.FinancialHealth)
}
