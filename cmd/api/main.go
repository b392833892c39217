package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/openvoice/feedback-service/internal/api/http"
	"github.com/openvoice/feedback-service/internal/api/http/handlers"
	"github.com/openvoice/feedback-service/internal/auth"
	"github.com/openvoice/feedback-service/internal/config"
	"github.com/openvoice/feedback-service/internal/events"
	"github.com/openvoice/feedback-service/internal/liveview"
	"github.com/openvoice/feedback-service/internal/observability"
	"github.com/openvoice/feedback-service/internal/persistence"
	"github.com/openvoice/feedback-service/internal/repository"
	"github.com/openvoice/feedback-service/internal/service"
	"github.com/openvoice/feedback-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	issueRepo := repository.NewIssueRepository(pg.PoolHandle())
	feed := events.NewRedisFeed(redis.Client, cfg.Feed.Channel, logger)

	issueService := service.NewIssueService(issueRepo, feed, logger)
	notificationService := service.NewNotificationService(feed, logger, cfg.Notification)

	view := liveview.NewView(issueRepo, feed, logger, metrics)
	if err := view.Initialize(ctx); err != nil {
		// The dashboard reports itself stale until a manual refresh succeeds.
		logger.Error("initial bulk fetch failed", zap.Error(err))
	}

	stopWorker, err := worker.StartFeedWorker(ctx, view, notificationService, logger)
	if err != nil {
		logger.Fatal("failed to start feed worker", zap.Error(err))
	}
	defer stopWorker()

	session, err := auth.NewJWTSession(cfg.Auth)
	if err != nil {
		logger.Fatal("failed to init admin session", zap.Error(err))
	}
	authMiddleware := auth.NewMiddleware(session)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Issues:         handlers.NewIssuesHandler(issueService),
		Dashboard:      handlers.NewDashboardHandler(view, issueService),
		Admin:          handlers.NewAdminHandler(session),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
