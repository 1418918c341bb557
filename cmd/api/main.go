package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/moona-liza/natours/internal/api/http"
	"github.com/moona-liza/natours/internal/api/http/handlers"
	"github.com/moona-liza/natours/internal/auth"
	"github.com/moona-liza/natours/internal/config"
	"github.com/moona-liza/natours/internal/events"
	"github.com/moona-liza/natours/internal/mailer"
	"github.com/moona-liza/natours/internal/observability"
	"github.com/moona-liza/natours/internal/persistence"
	"github.com/moona-liza/natours/internal/ratelimit"
	"github.com/moona-liza/natours/internal/repository"
	"github.com/moona-liza/natours/internal/service"
	"github.com/moona-liza/natours/internal/worker"
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

	userRepo := repository.NewUserRepository(pg.PoolHandle())
	notifier := mailer.New(cfg.Notification, logger)
	dispatcher := events.NewInMemoryDispatcher()

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo:   userRepo,
		Notifier:   notifier,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	notificationService := service.NewNotificationService(dispatcher, notifier, logger)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewMiddleware(authService.TokenManager(), userRepo)
	sessionIssuer := auth.NewSessionIssuer(
		authService.TokenManager(),
		time.Duration(cfg.Auth.CookieExpiresDays)*24*time.Hour,
		cfg.App.Production(),
	)

	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService, sessionIssuer, logger),
		Admin:          handlers.NewAdminHandler(metrics),
		AuthMiddleware: authMiddleware,
		RateLimiter:    ratelimit.NewLimiter(redis.Client, cfg.RateLimit, logger),
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
