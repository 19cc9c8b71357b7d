package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/hamid26126/CashMate/internal/auth"
	"github.com/hamid26126/CashMate/internal/models"
	"github.com/shopspring/decimal"
)

type CreateGoalRequest struct {
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	TargetAmount float64 `json:"targetAmount"`
	TargetDate   string  `json:"targetDate"`
}

type UpdateGoalRequest struct {
	ID           string            `json:"id"`
	Title        string            `json:"title"`
	Description  *string           `json:"description"`
	TargetAmount *float64          `json:"targetAmount"`
	TargetDate   string            `json:"targetDate"`
	Status       models.GoalStatus `json:"status"`
}

type ListGoalsRequest struct {
	Status models.GoalStatus `json:"status"`
}

type GoalResponse struct {
	Goal *models.Goal `json:"goal"`
}

type GoalsResponse struct {
	Goals []*models.Goal `json:"goals"`
}

type AllocateSavingRequest struct {
	GoalID string  `json:"goalId"`
	Amount float64 `json:"amount"`
}

type AllocateSavingResponse struct {
	Saving        *models.Saving `json:"saving"`
	Goal          *models.Goal   `json:"goal"`
	GoalCompleted bool           `json:"goalCompleted"`
}

type SavingResponse struct {
	Saving *models.Saving `json:"saving"`
	Goal   *models.Goal   `json:"goal"`
}

type SavingsResponse struct {
	Savings []*models.Saving `json:"savings"`
}

type TotalSavedResponse struct {
	TotalSaved float64 `json:"totalSaved"`
}

func (s *FinanceService) CreateGoal(ctx context.Context, req *connect.Request[CreateGoalRequest]) (*connect.Response[GoalResponse], error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}

	msg := req.Msg
	title := strings.TrimSpace(msg.Title)
	if title == "" || msg.TargetDate == "" {
		return nil, invalidArgument("title, targetAmount and targetDate are required")
	}
	if msg.TargetAmount <= 0 {
		return nil, invalidArgument("targetAmount must be greater than 0")
	}

	now := s.now()
	targetDate, err := parseDate(msg.TargetDate, now)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	goal := &models.Goal{
		ID:           uuid.New().String(),
		UserID:       claims.UID,
		Title:        title,
		Description:  strings.TrimSpace(msg.Description),
		TargetAmount: msg.TargetAmount,
		TargetDate:   targetDate,
		Status:       models.GoalStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateGoal(ctx, goal); err != nil {
		return nil, storeError("create goal", err)
	}

	return connect.NewResponse(&GoalResponse{Goal: goal}), nil
}

func (s *FinanceService) ListGoals(ctx context.Context, req *connect.Request[ListGoalsRequest]) (*connect.Response[GoalsResponse], error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}
	if req.Msg.Status != "" && !req.Msg.Status.Valid() {
		return nil, invalidArgument("unknown goal status %q", req.Msg.Status)
	}

	goals, err := s.store.ListGoals(ctx, claims.UID, req.Msg.Status)
	if err != nil {
		return nil, storeError("list goals", err)
	}
	return connect.NewResponse(&GoalsResponse{Goals: goals}), nil
}

func (s *FinanceService) GetGoal(ctx context.Context, req *connect.Request[IDRequest]) (*connect.Response[GoalResponse], error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}

	goal, err := s.ownedGoal(ctx, claims, req.Msg.ID)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&GoalResponse{Goal: goal}), nil
}

func (s *FinanceService) UpdateGoal(ctx context.Context, req *connect.Request[UpdateGoalRequest]) (*connect.Response[GoalResponse], error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}

	msg := req.Msg
	if msg.TargetAmount != nil && *msg.TargetAmount <= 0 {
		return nil, invalidArgument("targetAmount must be greater than 0")
	}
	if msg.Status != "" && !msg.Status.Valid() {
		return nil, invalidArgument("unknown goal status %q", msg.Status)
	}

	goal, err := s.ownedGoal(ctx, claims, msg.ID)
	if err != nil {
		return nil, err
	}

	var targetDate time.Time
	if msg.TargetDate != "" {
		targetDate, err = parseDate(msg.TargetDate, goal.TargetDate)
		if err != nil {
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
	}

	now := s.now()
	goal, err = s.store.UpdateGoalFunc(ctx, goal.ID, func(g *models.Goal) error {
		if t := strings.TrimSpace(msg.Title); t != "" {
			g.Title = t
		}
		if msg.Description != nil {
			g.Description = strings.TrimSpace(*msg.Description)
		}
		if msg.TargetAmount != nil {
			g.TargetAmount = *msg.TargetAmount
		}
		if !targetDate.IsZero() {
			g.TargetDate = targetDate
		}
		if msg.Status != "" {
			g.Status = msg.Status
		}
		g.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, storeError("update goal", err)
	}
	return connect.NewResponse(&GoalResponse{Goal: goal}), nil
}

// DeleteGoal removes the goal and its savings.
func (s *FinanceService) DeleteGoal(ctx context.Context, req *connect.Request[IDRequest]) (*connect.Response[Empty], error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}

	goal, err := s.ownedGoal(ctx, claims, req.Msg.ID)
	if err != nil {
		return nil, err
	}
	if err := s.store.DeleteGoal(ctx, goal.ID); err != nil {
		return nil, storeError("delete goal", err)
	}
	return connect.NewResponse(&Empty{}), nil
}

func (s *FinanceService) ownedGoal(ctx context.Context, claims *auth.UserClaims, goalID string) (*models.Goal, error) {
	if goalID == "" {
		return nil, invalidArgument("goal id is required")
	}
	goal, err := s.store.GetGoal(ctx, goalID)
	if err != nil {
		return nil, storeError("get goal", err)
	}
	if err := auth.RequireOwnership(claims, goal.UserID); err != nil {
		return nil, err
	}
	return goal, nil
}

// AllocateSaving moves part of the user's balance into an active goal.
// Reaching the target completes the goal and notifies the user.
func (s *FinanceService) AllocateSaving(ctx context.Context, req *connect.Request[AllocateSavingRequest]) (*connect.Response[AllocateSavingResponse], error) {
	if req.Msg.GoalID == "" || req.Msg.Amount <= 0 {
		return nil, invalidArgument("goalId and a positive amount are required")
	}

	user, err := s.requireUser(ctx)
	if err != nil {
		return nil, err
	}
	claims, _ := auth.GetUserClaims(ctx)

	goal, err := s.ownedGoal(ctx, claims, req.Msg.GoalID)
	if err != nil {
		return nil, err
	}
	if goal.Status != models.GoalStatusActive {
		return nil, errGoalNotActive()
	}
	if req.Msg.Amount > user.Balance() {
		return nil, connect.NewError(connect.CodeFailedPrecondition, errors.New("insufficient balance"))
	}

	now := s.now()
	amount := req.Msg.Amount
	var completed bool
	goal, err = s.store.UpdateGoalFunc(ctx, goal.ID, func(g *models.Goal) error {
		if g.Status != models.GoalStatusActive {
			return errGoalNotActive()
		}
		g.AchievedAmount = sumAmounts(g.AchievedAmount, amount)
		completed = g.AchievedAmount >= g.TargetAmount
		if completed {
			g.Status = models.GoalStatusCompleted
		}
		g.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, storeError("update goal", err)
	}

	saving := &models.Saving{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		GoalID:    goal.ID,
		Amount:    amount,
		Status:    models.SavingStatusAllocated,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateSaving(ctx, saving); err != nil {
		if _, undoErr := s.store.UpdateGoalFunc(ctx, goal.ID, func(g *models.Goal) error {
			releaseSaving(g, amount, now)
			return nil
		}); undoErr != nil {
			s.log.WithError(undoErr).WithField("goal_id", goal.ID).Error("failed to roll back goal allocation")
		}
		return nil, storeError("create saving", err)
	}

	if completed {
		s.notifier.Notify(ctx, user.ID, models.NotificationTypeSuccess,
			"Goal Completed! 🎉",
			fmt.Sprintf("You've reached your goal: %q with $%s!", goal.Title, decimal.NewFromFloat(goal.AchievedAmount).StringFixed(2)),
			map[string]string{"goalId": goal.ID},
		)
	}

	return connect.NewResponse(&AllocateSavingResponse{
		Saving:        saving,
		Goal:          goal,
		GoalCompleted: completed,
	}), nil
}

func (s *FinanceService) ListSavings(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[SavingsResponse], error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}

	savings, err := s.store.ListSavings(ctx, claims.UID, "", "")
	if err != nil {
		return nil, storeError("list savings", err)
	}
	return connect.NewResponse(&SavingsResponse{Savings: savings}), nil
}

func (s *FinanceService) ListGoalSavings(ctx context.Context, req *connect.Request[IDRequest]) (*connect.Response[SavingsResponse], error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}

	goal, err := s.ownedGoal(ctx, claims, req.Msg.ID)
	if err != nil {
		return nil, err
	}
	savings, err := s.store.ListSavings(ctx, claims.UID, goal.ID, "")
	if err != nil {
		return nil, storeError("list savings", err)
	}
	return connect.NewResponse(&SavingsResponse{Savings: savings}), nil
}

// RefundSaving returns an allocation to the balance. A completed goal that
// falls below its target becomes active again.
func (s *FinanceService) RefundSaving(ctx context.Context, req *connect.Request[IDRequest]) (*connect.Response[SavingResponse], error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}
	if req.Msg.ID == "" {
		return nil, invalidArgument("saving id is required")
	}

	saving, err := s.store.GetSaving(ctx, req.Msg.ID)
	if err != nil {
		return nil, storeError("get saving", err)
	}
	if err := auth.RequireOwnership(claims, saving.UserID); err != nil {
		return nil, err
	}

	// The status flip is atomic so concurrent refunds release the amount once.
	now := s.now()
	saving, err = s.store.UpdateSavingFunc(ctx, saving.ID, func(sv *models.Saving) error {
		if sv.Status == models.SavingStatusRefunded {
			return connect.NewError(connect.CodeFailedPrecondition, errors.New("saving has already been refunded"))
		}
		sv.Status = models.SavingStatusRefunded
		sv.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, storeError("update saving", err)
	}

	goal, err := s.store.UpdateGoalFunc(ctx, saving.GoalID, func(g *models.Goal) error {
		releaseSaving(g, saving.Amount, now)
		return nil
	})
	if err != nil {
		return nil, storeError("update goal", err)
	}

	return connect.NewResponse(&SavingResponse{Saving: saving, Goal: goal}), nil
}

// releaseSaving takes amount back out of a goal. A completed goal that falls
// below its target becomes active again.
func releaseSaving(g *models.Goal, amount float64, now time.Time) {
	g.AchievedAmount = max(0, sumAmounts(g.AchievedAmount, -amount))
	if g.Status == models.GoalStatusCompleted && g.AchievedAmount < g.TargetAmount {
		g.Status = models.GoalStatusActive
	}
	g.UpdatedAt = now
}

func errGoalNotActive() error {
	return connect.NewError(connect.CodeFailedPrecondition, errors.New("goal is not active"))
}

// GetTotalSaved sums every allocated, unrefunded saving.
func (s *FinanceService) GetTotalSaved(ctx context.Context, req *connect.Request[Empty]) (*connect.Response[TotalSavedResponse], error) {
	claims, err := auth.RequireAuth(ctx)
	if err != nil {
		return nil, err
	}

	savings, err := s.store.ListSavings(ctx, claims.UID, "", models.SavingStatusAllocated)
	if err != nil {
		return nil, storeError("list savings", err)
	}

	amounts := make([]float64, 0, len(savings))
	for _, sv := range savings {
		amounts = append(amounts, sv.Amount)
	}
	return connect.NewResponse(&TotalSavedResponse{TotalSaved: sumAmounts(amounts...)}), nil
}
