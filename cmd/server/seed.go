package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/hamid26126/CashMate/internal/auth"
	"github.com/hamid26126/CashMate/internal/logging"
	"github.com/hamid26126/CashMate/internal/models"
	"github.com/hamid26126/CashMate/internal/service"
	"github.com/spf13/cobra"
)

var (
	seedAPIURL string
	seedUserID string
	seedToken  string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load demo transactions, goals and reminders through the API",
	Long: `Seed calls a running server. Without --token the server must run with
auth.skip_auth so the X-Debug-Impersonate-User header is honoured.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedAPIURL, "api-url", "http://localhost:8111", "Base URL of the API server")
	seedCmd.Flags().StringVar(&seedUserID, "user", auth.LocalDevUserID, "User to impersonate when no token is given")
	seedCmd.Flags().StringVar(&seedToken, "token", "", "Bearer token to authenticate with")
}

type seedTransaction struct {
	description string
	category    string
	amount      float64
	txType      models.TransactionType
	daysAgo     int
}

var seedTransactions = []seedTransaction{
	{"Monthly salary", "Salary", 4200, models.TransactionTypeIncome, 28},
	{"Freelance design", "Freelance", 650, models.TransactionTypeIncome, 12},
	{"Rent", "Housing", 1450, models.TransactionTypeExpense, 27},
	{"Weekly groceries", "Food", 86.40, models.TransactionTypeExpense, 20},
	{"Weekly groceries", "Food", 92.15, models.TransactionTypeExpense, 13},
	{"Electricity bill", "Utilities", 74.90, models.TransactionTypeExpense, 10},
	{"Train pass", "Transport", 120, models.TransactionTypeExpense, 9},
	{"Dinner with friends", "Eating Out", 58.25, models.TransactionTypeExpense, 4},
	{"Streaming subscription", "Entertainment", 15.99, models.TransactionTypeExpense, 2},
}

func seedInterceptor(userID, token string) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if token != "" {
				req.Header().Set("Authorization", "Bearer "+token)
			} else {
				req.Header().Set("X-Debug-Impersonate-User", userID)
			}
			return next(ctx, req)
		}
	}
}

func runSeed(cmd *cobra.Command, args []string) error {
	logger := logging.New("info", "text")
	log := logger.WithField("api_url", seedAPIURL)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}
	opts := []connect.ClientOption{connect.WithInterceptors(seedInterceptor(seedUserID, seedToken))}

	addTx := service.NewClient[service.AddTransactionRequest, service.TransactionResponse](httpClient, seedAPIURL, "AddTransaction", opts...)
	createGoal := service.NewClient[service.CreateGoalRequest, service.GoalResponse](httpClient, seedAPIURL, "CreateGoal", opts...)
	allocate := service.NewClient[service.AllocateSavingRequest, service.AllocateSavingResponse](httpClient, seedAPIURL, "AllocateSaving", opts...)
	createReminder := service.NewClient[service.CreateReminderRequest, service.ReminderResponse](httpClient, seedAPIURL, "CreateReminder", opts...)
	getInfo := service.NewClient[service.Empty, service.UserInfo](httpClient, seedAPIURL, "GetInfo", opts...)

	now := time.Now().UTC()
	for _, tx := range seedTransactions {
		_, err := addTx.CallUnary(ctx, connect.NewRequest(&service.AddTransactionRequest{
			Description: tx.description,
			Category:    tx.category,
			Amount:      tx.amount,
			Type:        tx.txType,
			Date:        now.AddDate(0, 0, -tx.daysAgo).Format(time.DateOnly),
		}))
		if err != nil {
			return fmt.Errorf("add transaction %q: %w", tx.description, err)
		}
	}
	log.WithField("count", len(seedTransactions)).Info("seeded transactions")

	goal, err := createGoal.CallUnary(ctx, connect.NewRequest(&service.CreateGoalRequest{
		Title:        "Emergency fund",
		Description:  "Three months of expenses",
		TargetAmount: 5000,
		TargetDate:   now.AddDate(0, 6, 0).Format(time.DateOnly),
	}))
	if err != nil {
		return fmt.Errorf("create goal: %w", err)
	}
	if _, err := allocate.CallUnary(ctx, connect.NewRequest(&service.AllocateSavingRequest{
		GoalID: goal.Msg.Goal.ID,
		Amount: 750,
	})); err != nil {
		return fmt.Errorf("allocate saving: %w", err)
	}
	log.WithField("goal_id", goal.Msg.Goal.ID).Info("seeded goal")

	for _, r := range []service.CreateReminderRequest{
		{Title: "Pay rent", Date: now.AddDate(0, 0, 3).Format(time.DateOnly), Time: "09:00", Frequency: models.FrequencyMonthly},
		{Title: "Review budget", Description: "Check this week's spending", Date: now.Format(time.DateOnly), Time: "18:30", Frequency: models.FrequencyWeekly},
	} {
		if _, err := createReminder.CallUnary(ctx, connect.NewRequest(&r)); err != nil {
			return fmt.Errorf("create reminder %q: %w", r.Title, err)
		}
	}
	log.Info("seeded reminders")

	info, err := getInfo.CallUnary(ctx, connect.NewRequest(&service.Empty{}))
	if err != nil {
		return fmt.Errorf("verify seeded data: %w", err)
	}
	log.WithField("balance", info.Msg.RemainingBalance).
		WithField("financial_health", info.Msg.FinancialHealth).
		Info("seed complete")
	return nil
}
