package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"connectrpc.com/connect"
	"github.com/hamid26126/CashMate/internal/auth"
	"github.com/hamid26126/CashMate/internal/models"
	"github.com/hamid26126/CashMate/internal/store"
	"github.com/shopspring/decimal"
)

type UserInfo struct {
	TotalIncome      float64 `json:"totalIncome"`
	TotalExpense     float64 `json:"totalExpense"`
	RemainingBalance float64 `json:"remainingBalance"`
	FinancialHealth  float64 `json:"financialHealth"`
	MonthlyIncome    float64 `json:"monthlyIncome"`
}

type Profile struct {
	FullName      string  `json:"fullName"`
	Email         string  `json:"email"`
	MonthlyIncome float64 `json:"monthlyIncome"`
	AvatarURL     string  `json:"avatarUrl,omitempty"`
}

type UpdateProfileRequest struct {
	FullName      string   `json:"fullName"`
	MonthlyIncome *float64 `json:"monthlyIncome"`
	AvatarURL     string   `json:"avatarUrl"`
}

type UpdateProfilePhotoRequest struct {
	AvatarURL string `json:"avatarUrl"`
}

type UploadProfilePhotoRequest struct {
	ContentType string `json:"contentType"`
	Data        []byte `json:"data"`
}

type ChangePasswordRequest struct {
	Current string `json:"current"`
	New     string `json:"new"`
	Confirm string `json:"confirm"`
}

type CategoryExpense struct {
	CategoryName string  `json:"categoryName"`
	Amount       float64 `json:"amount"`
}

type CategoricalExpensesResponse struct {
	Categories []CategoryExpense `json:"categories"`
}

// requireUser returns the authenticated user's record. Users authenticated
// by an external provider get a record on first use.
func (s *FinanceService) requireUser(ctx context.Context) (*models.User, error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.store.GetUser(ctx, claims.UID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, storeError("get user", err)
	}

	name := claims.DisplayName
	if name == "" {
		name, _, _ = strings.Cut(claims.Email, "@")
	}
	now := s.now()
	user = &models.User{
		ID:              claims.UID,
		FullName:        name,
		Email:           strings.ToLower(claims.Email),
		FinancialHealth: models.DefaultFinancialHealth,
		MemberSince:     now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, storeError("create user", err)
	}
	s.log.WithField("user_id", user.ID).Info("provisioned user from token claims")
	return user, nil
}

func profileOf(user *models.User) *Profile {
	return &Profile{
		FullName:      user.FullName,
		Email:         user.Email,
		MonthlyIncome: user.MonthlyIncome,
		AvatarURL:     user.AvatarURL,
	}
}

// GetInfo returns the user's lifetime totals and financial health.
func (s *FinanceService) GetInfo(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[UserInfo], error) {
	user, err := s.requireUser(ctx)
	if err != nil {
		return nil, err
	}

	return connect.NewResponse(&UserInfo{
		TotalIncome:      user.TotalIncome,
		TotalExpense:     user.TotalExpense,
		RemainingBalance: sumAmounts(user.TotalIncome, -user.TotalExpense),
		FinancialHealth:  user.FinancialHealth,
		MonthlyIncome:    user.MonthlyIncome,
	}), nil
}

func (s *FinanceService) GetProfile(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[Profile], error) {
	user, err := s.requireUser(ctx)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(profileOf(user)), nil
}

// UpdateProfile changes the fields that are set in the request.
func (s *FinanceService) UpdateProfile(ctx context.Context, req *connect.Request[UpdateProfileRequest]) (*connect.Response[Profile], error) {
	if req.Msg.MonthlyIncome != nil && *req.Msg.MonthlyIncome < 0 {
		return nil, invalidArgument("monthlyIncome cannot be negative")
	}

	user, err := s.requireUser(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	user, err = s.store.UpdateUserFunc(ctx, user.ID, func(u *models.User) error {
		if name := strings.TrimSpace(req.Msg.FullName); name != "" {
			u.FullName = name
		}
		if req.Msg.MonthlyIncome != nil {
			u.MonthlyIncome = *req.Msg.MonthlyIncome
		}
		if req.Msg.AvatarURL != "" {
			u.AvatarURL = req.Msg.AvatarURL
		}
		u.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, storeError("update user", err)
	}
	return connect.NewResponse(profileOf(user)), nil
}

func (s *FinanceService) UpdateProfilePhoto(ctx context.Context, req *connect.Request[UpdateProfilePhotoRequest]) (*connect.Response[Profile], error) {
	if strings.TrimSpace(req.Msg.AvatarURL) == "" {
		return nil, invalidArgument("avatarUrl is required")
	}

	user, err := s.requireUser(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	user, err = s.store.UpdateUserFunc(ctx, user.ID, func(u *models.User) error {
		u.AvatarURL = strings.TrimSpace(req.Msg.AvatarURL)
		u.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, storeError("update user", err)
	}
	return connect.NewResponse(profileOf(user)), nil
}

// UploadProfilePhoto stores the image in object storage and points the
// profile at it. The previous uploaded image is removed.
func (s *FinanceService) UploadProfilePhoto(ctx context.Context, req *connect.Request[UploadProfilePhotoRequest]) (*connect.Response[Profile], error) {
	if s.avatars == nil {
		return nil, connect.NewError(connect.CodeUnimplemented, errors.New("photo uploads are not configured"))
	}

	ext, err := avatarExtension(req.Msg.ContentType)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	if len(req.Msg.Data) == 0 {
		return nil, invalidArgument("data is required")
	}
	if len(req.Msg.Data) > MaxAvatarBytes {
		return nil, invalidArgument("image exceeds %d bytes", MaxAvatarBytes)
	}

	user, err := s.requireUser(ctx)
	if err != nil {
		return nil, err
	}

	object, url, err := s.avatars.Upload(ctx, user.ID, ext, req.Msg.ContentType, req.Msg.Data)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	var previous string
	now := s.now()
	user, err = s.store.UpdateUserFunc(ctx, user.ID, func(u *models.User) error {
		previous = u.AvatarObject
		u.AvatarURL = url
		u.AvatarObject = object
		u.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, storeError("update user", err)
	}

	if previous != "" && previous != object {
		if err := s.avatars.Delete(ctx, previous); err != nil {
			s.log.WithError(err).WithField("object", previous).Warn("failed to delete previous avatar")
		}
	}

	return connect.NewResponse(profileOf(user)), nil
}

func (s *FinanceService) ChangePassword(ctx context.Context, req *connect.Request[ChangePasswordRequest]) (*connect.Response[Empty], error) {
	msg := req.Msg
	if msg.Current == "" || msg.New == "" || msg.Confirm == "" {
		return nil, invalidArgument("current, new and confirm are required")
	}
	if msg.New != msg.Confirm {
		return nil, invalidArgument("new passwords do not match")
	}
	if len(msg.New) < minPasswordLength {
		return nil, invalidArgument("password must be at least %d characters", minPasswordLength)
	}

	user, err := s.requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(user.PasswordHash, msg.Current) {
		return nil, connect.NewError(connect.CodeUnauthenticated, errors.New("current password is incorrect"))
	}

	hash, err := auth.HashPassword(msg.New)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	now := s.now()
	_, err = s.store.UpdateUserFunc(ctx, user.ID, func(u *models.User) error {
		u.PasswordHash = hash
		u.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, storeError("update user", err)
	}

	return connect.NewResponse(&Empty{}), nil
}

// DeleteAccount removes the user and every record they own.
func (s *FinanceService) DeleteAccount(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[Empty], error) {
	user, err := s.requireUser(ctx)
	if err != nil {
		return nil, err
	}

	if s.index != nil {
		txs, err := s.store.ListRecentTransactions(ctx, user.ID, 0)
		if err != nil {
			return nil, storeError("list transactions", err)
		}
		for _, tx := range txs {
			s.unindex(ctx, tx.ID)
		}
	}

	if err := s.store.DeleteUser(ctx, user.ID); err != nil {
		return nil, storeError("delete user", err)
	}

	if s.avatars != nil && user.AvatarObject != "" {
		if err := s.avatars.Delete(ctx, user.AvatarObject); err != nil {
			s.log.WithError(err).WithField("object", user.AvatarObject).Warn("failed to delete avatar")
		}
	}

	s.log.WithField("user_id", user.ID).Info("account deleted")
	return connect.NewResponse(&Empty{}), nil
}

// GetCategoricalExpenses sums every expense transaction by category.
func (s *FinanceService) GetCategoricalExpenses(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[CategoricalExpensesResponse], error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}

	txs, err := s.store.ListRecentTransactions(ctx, claims.UID, 0)
	if err != nil {
		return nil, storeError("list transactions", err)
	}

	totals := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		if tx.Type != models.TransactionTypeExpense {
			continue
		}
		name := tx.CategoryName()
		totals[name] = totals[name].Add(decimal.NewFromFloat(tx.Amount))
	}

	categories := make([]CategoryExpense, 0, len(totals))
	for name, amount := range totals {
		categories = append(categories, CategoryExpense{CategoryName: name, Amount: amount.InexactFloat64()})
	}
	sort.Slice(categories, func(i, j int) bool {
		if categories[i].Amount != categories[j].Amount {
			return categories[i].Amount > categories[j].Amount
		}
		return categories[i].CategoryName < categories[j].CategoryName
	})

	return connect.NewResponse(&CategoricalExpensesResponse{Categories: categories}), nil
}
