package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	gcsstorage "cloud.google.com/go/storage"
	"connectrpc.com/connect"
	"github.com/hamid26126/CashMate/internal/auth"
	"github.com/hamid26126/CashMate/internal/chat"
	"github.com/hamid26126/CashMate/internal/config"
	"github.com/hamid26126/CashMate/internal/llm"
	"github.com/hamid26126/CashMate/internal/logging"
	"github.com/hamid26126/CashMate/internal/mailer"
	"github.com/hamid26126/CashMate/internal/search"
	"github.com/hamid26126/CashMate/internal/service"
	"github.com/hamid26126/CashMate/internal/store"
	"github.com/robfig/cron/v3"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the API server and the reminder scheduler",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var storeImpl store.Store
	switch cfg.Store.Backend {
	case "firestore":
		client, err := firestore.NewClient(ctx, cfg.Store.ProjectID)
		if err != nil {
			return fmt.Errorf("create firestore client: %w", err)
		}
		defer client.Close()
		storeImpl = store.NewFirestoreStore(client)
		logger.WithField("project_id", cfg.Store.ProjectID).Info("using firestore store")
	default:
		storeImpl = store.NewMemoryStore()
		logger.Info("using in-memory store")
	}

	svc := service.NewFinanceService(storeImpl, logger)
	notifier := service.NewNotifier(storeImpl, logger)

	var verifier auth.TokenVerifier
	if cfg.Auth.JWTSecret != "" {
		issuer := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
		svc.SetTokenIssuer(issuer)
		verifier = issuer
	}

	if cfg.Auth.Firebase {
		app, err := auth.NewFirebaseApp(ctx, cfg.Store.ProjectID, cfg.Auth.CredentialsFile)
		if err != nil {
			return err
		}
		firebaseAuth, err := auth.NewFirebaseAuth(ctx, app)
		if err != nil {
			return err
		}
		verifier = firebaseAuth

		messagingClient, err := app.Messaging(ctx)
		if err != nil {
			logger.WithError(err).Warn("push notifications disabled")
		} else {
			notifier.SetPushSender(messagingClient)
		}
	}

	if cfg.SMTP.Enabled() {
		notifier.SetMailer(mailer.NewSender(cfg.SMTP, logger))
	}
	svc.SetNotifier(notifier)

	if cfg.Search.Enabled() {
		index, err := search.NewAlgoliaClient(search.Config{
			AppID:     cfg.Search.AppID,
			APIKey:    cfg.Search.APIKey,
			IndexName: cfg.Search.IndexName,
		}, logger)
		if err != nil {
			return err
		}
		svc.SetTransactionIndex(index)
	}

	if cfg.Storage.Bucket != "" {
		gcsClient, err := gcsstorage.NewClient(ctx)
		if err != nil {
			return fmt.Errorf("create storage client: %w", err)
		}
		defer gcsClient.Close()
		svc.SetAvatarStorage(service.NewGCSAvatarStorage(gcsClient, cfg.Storage.Bucket))
	}

	retry := llm.DefaultRetryConfig
	retry.MaxRetries = cfg.LLM.MaxRetries
	model := llm.NewClient(llm.Config{
		APIKey:   cfg.LLM.APIKey,
		Endpoint: cfg.LLM.Endpoint,
		Model:    cfg.LLM.Model,
		Timeout:  cfg.LLM.Timeout,
		Retry:    retry,
	}, logger)
	if !model.IsConfigured() {
		logger.Warn("no LLM API key configured; chat answers come from the local fallback")
	}

	limiter := chat.NewRateLimiter(cfg.Chat.RateLimit, cfg.Chat.RateWindow)
	cache := chat.NewResponseCache(cfg.Chat.CacheTTL)
	reaper := chat.NewReaper(cfg.Chat.ReapInterval, logger, limiter, cache)
	reaper.Start()
	defer reaper.Stop()

	svc.SetAssistant(chat.NewAssistant(chat.Config{
		RecentWindow:   cfg.Chat.RecentWindow,
		RequestTimeout: cfg.Chat.RequestTimeout,
		HistoryTurns:   cfg.Chat.HistoryTurns,
		HistoryChars:   cfg.Chat.HistoryChars,
		SimpleKeywords: cfg.Chat.SimpleKeywords,
		Temperature:    cfg.LLM.Temperature,
		MaxTokens:      cfg.LLM.MaxTokens,
	}, storeImpl, model, limiter, cache, logger))

	scheduler := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(logger))))
	if _, err := scheduler.AddFunc("* * * * *", func() {
		if _, err := svc.ProcessDueReminders(ctx, time.Now()); err != nil {
			logger.WithError(err).Error("reminder check failed")
		}
	}); err != nil {
		return fmt.Errorf("schedule reminder job: %w", err)
	}
	scheduler.Start()
	defer func() { <-scheduler.Stop().Done() }()

	interceptors := []connect.Interceptor{auth.DebugAuthInterceptor(cfg.Auth.SkipAuth)}
	switch {
	case cfg.Auth.SkipAuth || verifier == nil:
		logger.Warn("authentication disabled; requests run as the local dev user")
		interceptors = append(interceptors, auth.LocalDevInterceptor())
	default:
		interceptors = append(interceptors, auth.AuthInterceptor(verifier))
	}

	mux := http.NewServeMux()
	mux.Handle(auth.ServicePath, svc.Handler(connect.WithInterceptors(interceptors...)))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           h2c.NewHandler(corsHandler(cfg.CORS).Handler(mux), &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{
			"port":  cfg.Port,
			"env":   cfg.Env,
			"store": cfg.Store.Backend,
		}).Info("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func corsHandler(cfg config.CORSConfig) *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Connect-Protocol-Version",
			"Connect-Timeout-Ms",
			"Content-Type",
			"Grpc-Timeout",
			"User-Agent",
			"X-Grpc-Web",
			"X-User-Agent",
			"X-Debug-Impersonate-User",
		},
		ExposedHeaders: []string{
			"Grpc-Status",
			"Grpc-Message",
			"Grpc-Status-Details-Bin",
		},
		AllowCredentials: true,
	})
}
