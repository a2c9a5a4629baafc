package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/tour-service/internal/api/http"
	"github.com/spec-kit/tour-service/internal/api/http/handlers"
	"github.com/spec-kit/tour-service/internal/auth"
	"github.com/spec-kit/tour-service/internal/events"
	"github.com/spec-kit/tour-service/internal/mail"
	"github.com/spec-kit/tour-service/internal/observability"
	"github.com/spec-kit/tour-service/internal/persistence"
	"github.com/spec-kit/tour-service/internal/repository"
	"github.com/spec-kit/tour-service/internal/service"
	"github.com/spec-kit/tour-service/internal/worker"
)

const shutdownGrace = 10 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd)
		},
	}
}

func runServe(cmd *cobra.Command) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Error("failed to connect postgres", zap.Error(err))
		return err
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg, logger); err != nil {
			logger.Error("failed to run migrations", zap.Error(err))
			return err
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	var limiterStorage fiber.Storage
	if redis != nil {
		limiterStorage = persistence.NewRedisStorage(redis.Client)
	} else {
		limiterStorage = persistence.NewMemoryStorage(cfg.RateLimit.Window)
	}

	pool := pg.Pool
	userRepo := repository.NewUserRepository(pool)
	tourRepo := repository.NewTourRepository(pool)
	reviewRepo := repository.NewReviewRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)

	smtpClient, err := mail.NewSMTPClient(cfg.Mail)
	if err != nil {
		logger.Error("failed to configure smtp", zap.Error(err))
		return err
	}
	mailer, err := mail.NewSMTPMailer(smtpClient, cfg.Mail, logger)
	if err != nil {
		logger.Error("failed to load mail templates", zap.Error(err))
		return err
	}

	dispatcher := events.NewInMemoryDispatcher(logger, events.WithAsync())
	notifications := worker.StartNotificationWorker(service.NewNotificationService(dispatcher, mailer, logger), dispatcher, logger)

	gate := auth.NewGate(auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL), userRepo)
	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:   userRepo,
		Gate:       gate,
		Hasher:     auth.NewHasher(cfg.Auth.BcryptCost, cfg.Auth.HashConcurrency),
		Mailer:     mailer,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	userService := service.NewUserService(userRepo, dispatcher, logger)
	tourService := service.NewTourService(tourRepo, reviewRepo)
	reviewService := service.NewReviewService(reviewRepo, tourRepo)
	bookingService := service.NewBookingService(bookingRepo, tourRepo, userRepo, dispatcher, logger)

	metrics := observability.NewMetrics()
	app := httptransport.NewApp(
		httptransport.ServerConfig{AppName: cfg.App.Name, BodyLimit: cfg.App.BodyLimitBytes},
		httptransport.MiddlewareConfig{
			Logger:         logger,
			Metrics:        metrics,
			Timeout:        cfg.App.RequestTimeout(),
			Development:    !cfg.IsProduction(),
			RateLimit:      cfg.RateLimit,
			LimiterStorage: limiterStorage,
		},
		httptransport.RouteConfig{
			Gate:     gate,
			Health:   handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
			Auth:     handlers.NewAuthHandler(authService, *cfg),
			Users:    handlers.NewUsersHandler(userService),
			Tours:    handlers.NewToursHandler(tourService),
			Reviews:  handlers.NewReviewsHandler(reviewService),
			Bookings: handlers.NewBookingsHandler(bookingService),
			Views:    handlers.NewViewsHandler(tourService, bookingService),
		},
	)

	listenErr := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("env", cfg.App.Env))
		listenErr <- app.Listen(cfg.App.Addr())
	}()

	select {
	case err := <-listenErr:
		logger.Error("fiber listen", zap.Error(err))
		return err
	case sig := <-shutdownSignal():
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownGrace)
	defer stop()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Warn("fiber shutdown", zap.Error(err))
	}
	if err := notifications.Stop(shutdownCtx); err != nil {
		logger.Warn("pending notifications dropped", zap.Error(err))
	}
	return nil
}

func shutdownSignal() <-chan os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	return sigCh
}
