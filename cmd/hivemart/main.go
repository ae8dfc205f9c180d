package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/hivemart/hivemart/internal/app"
	"github.com/hivemart/hivemart/internal/auth"
	"github.com/hivemart/hivemart/internal/authz"
	"github.com/hivemart/hivemart/internal/catalog"
	"github.com/hivemart/hivemart/internal/catalog/categories"
	"github.com/hivemart/hivemart/internal/catalog/producers"
	"github.com/hivemart/hivemart/internal/catalog/products"
	"github.com/hivemart/hivemart/internal/favorites"
	"github.com/hivemart/hivemart/internal/moderation"
	"github.com/hivemart/hivemart/internal/observability"
	"github.com/hivemart/hivemart/internal/platform/cache"
	"github.com/hivemart/hivemart/internal/platform/db"
	"github.com/hivemart/hivemart/internal/shared"
	"github.com/hivemart/hivemart/jobs"
)

// decisionNotifier pushes moderation outcomes onto the job queue.
type decisionNotifier struct {
	client *jobs.Client
}

func (n decisionNotifier) NotifyDecision(ctx context.Context, rec moderation.RequestRecord) error {
	payload := jobs.DecisionNoticePayload{
		RequestID:   rec.ID.String(),
		RequestType: string(rec.Type),
		Status:      string(rec.Status),
		SubmittedBy: rec.SubmittedBy,
	}
	if rec.DecidedBy != nil {
		payload.DecidedBy = *rec.DecidedBy
	}
	if rec.DecidedAt != nil {
		payload.DecidedAt = *rec.DecidedAt
	}
	_, err := n.client.EnqueueDecisionNotice(ctx, payload)
	return err
}

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "hivemart_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	guard := authz.Middleware{Logger: logger}

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager)

	auditLogger := shared.NewAuditLogger(dbpool)
	approvalRecorder := shared.NewApprovalRecorder(dbpool, logger)

	categoryRepo := categories.NewRepository(dbpool)
	categoryService := categories.NewService(categoryRepo)
	categoryHandler := categories.NewHandler(logger, categoryService, guard)

	producerRepo := producers.NewRepository(dbpool)
	producerService := producers.NewService(producerRepo)
	producerHandler := producers.NewHandler(logger, producerService, guard)

	productRepo := products.NewRepository(dbpool)
	productCache := products.NewListCache(redisClient, cfg.ProductCacheTTL)
	productService := products.NewService(productRepo, productCache)
	productHandler := products.NewHandler(logger, productService, guard)

	favoritesService := favorites.NewService(redisClient, productService)
	favoritesHandler := favorites.NewHandler(logger, favoritesService, guard)

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()

	mutator := catalog.NewMutator(categoryService, producerService, productService)
	moderationRepo := moderation.NewRepository(dbpool)
	moderationService := moderation.NewService(logger, moderationRepo, mutator, approvalRecorder, auditLogger, decisionNotifier{client: jobClient})
	moderationHandler := moderation.NewHandler(logger, moderationService, guard)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		SessionManager:    sessionManager,
		CSRFManager:       csrfManager,
		Guard:             guard,
		AuthHandler:       authHandler,
		CategoryHandler:   categoryHandler,
		ProducerHandler:   producerHandler,
		ProductHandler:    productHandler,
		FavoritesHandler:  favoritesHandler,
		ModerationHandler: moderationHandler,
		JobHandler:        jobHandler,
		Metrics:           metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
