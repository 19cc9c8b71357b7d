package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/hamid26126/CashMate/internal/auth"
	"github.com/hamid26126/CashMate/internal/models"
	"github.com/hamid26126/CashMate/internal/store"
)

const minPasswordLength = 6

var errInvalidCredentials = errors.New("invalid credentials")

type RegisterRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

// Register creates an account and signs the user in.
func (s *FinanceService) Register(ctx context.Context, req *connect.Request[RegisterRequest]) (*connect.Response[AuthResponse], error) {
	if s.issuer == nil {
		return nil, connect.NewError(connect.CodeUnimplemented, fmt.Errorf("local accounts are disabled"))
	}

	fullName := strings.TrimSpace(req.Msg.FullName)
	email := strings.ToLower(strings.TrimSpace(req.Msg.Email))
	if fullName == "" || email == "" || req.Msg.Password == "" {
		return nil, invalidArgument("fullName, email and password are required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, invalidArgument("invalid email address")
	}
	if len(req.Msg.Password) < minPasswordLength {
		return nil, invalidArgument("password must be at least %d characters", minPasswordLength)
	}

	hash, err := auth.HashPassword(req.Msg.Password)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	now := s.now()
	user := &models.User{
		ID:              uuid.New().String(),
		FullName:        fullName,
		Email:           email,
		PasswordHash:    hash,
		FinancialHealth: models.DefaultFinancialHealth,
		MemberSince:     now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, storeError("create user", err)
	}

	s.log.WithField("user_id", user.ID).Info("user registered")
	return s.signIn(user)
}

// Login exchanges email and password for a session token.
func (s *FinanceService) Login(ctx context.Context, req *connect.Request[LoginRequest]) (*connect.Response[AuthResponse], error) {
	if s.issuer == nil {
		return nil, connect.NewError(connect.CodeUnimplemented, fmt.Errorf("local accounts are disabled"))
	}

	email := strings.ToLower(strings.TrimSpace(req.Msg.Email))
	if email == "" || req.Msg.Password == "" {
		return nil, invalidArgument("email and password are required")
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, connect.NewError(connect.CodeUnauthenticated, errInvalidCredentials)
		}
		return nil, storeError("get user", err)
	}
	if !auth.CheckPassword(user.PasswordHash, req.Msg.Password) {
		return nil, connect.NewError(connect.CodeUnauthenticated, errInvalidCredentials)
	}

	return s.signIn(user)
}

func (s *FinanceService) signIn(user *models.User) (*connect.Response[AuthResponse], error) {
	token, expiresAt, err := s.issuer.Issue(user.ID, user.Email, user.FullName)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(&AuthResponse{Token: token, ExpiresAt: expiresAt, User: user}), nil
}
