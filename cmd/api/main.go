package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/printops/jobtrack/internal/api/http"
	"github.com/printops/jobtrack/internal/api/http/handlers"
	"github.com/printops/jobtrack/internal/auth"
	"github.com/printops/jobtrack/internal/config"
	"github.com/printops/jobtrack/internal/events"
	"github.com/printops/jobtrack/internal/observability"
	"github.com/printops/jobtrack/internal/persistence"
	"github.com/printops/jobtrack/internal/realtime"
	"github.com/printops/jobtrack/internal/repository"
	"github.com/printops/jobtrack/internal/service"
	"github.com/printops/jobtrack/internal/storage"
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

	files, err := storage.NewS3(ctx, cfg.Storage, logger)
	if err != nil {
		logger.Fatal("failed to init object storage", zap.Error(err))
	}

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	deptRepo := repository.NewDepartmentRepository(pool)
	jobRepo := repository.NewJobRepository(pool)
	updateRepo := repository.NewJobUpdateRepository(pool)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	pubsub := realtime.NewRedisPubSub(redis.Client, logger)
	hub := realtime.NewHub(logger, pubsub, pubsub)
	realtime.NewBridge(hub, logger).Attach(dispatcher)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	ssoVerifier := auth.NewSSOVerifier(cfg.Auth.SSOSecret, cfg.Auth.SSOIssuer)

	authService := service.NewAuthService(service.AuthDependencies{
		UserRepo: userRepo,
		Tokens:   tokens,
		SSO:      ssoVerifier,
		Logger:   logger,
	})
	if err := authService.EnsureOwner(ctx, cfg.Auth.OwnerEmail, cfg.Auth.OwnerPassword, cfg.Auth.BcryptCost); err != nil {
		logger.Fatal("failed to bootstrap owner account", zap.Error(err))
	}
	sessionService := service.NewSessionService(service.SessionDependencies{
		Tokens:         tokens,
		UserRepo:       userRepo,
		DepartmentRepo: deptRepo,
	})
	boardService := service.NewBoardService(service.BoardDependencies{JobRepo: jobRepo})
	reaperService := service.NewReaperService(service.ReaperDependencies{
		JobRepo:       jobRepo,
		JobUpdateRepo: updateRepo,
		Files:         files,
		Dispatcher:    dispatcher,
		Logger:        logger,
		Metrics:       metrics,
	})
	jobService := service.NewJobService(service.JobDependencies{
		JobRepo:        jobRepo,
		JobUpdateRepo:  updateRepo,
		DepartmentRepo: deptRepo,
		Files:          files,
		Reaper:         reaperService,
		Dispatcher:     dispatcher,
		Logger:         logger,
		TrackerBase:    cfg.App.PublicBaseURL,
	})
	trackerService := service.NewTrackerService(service.TrackerDependencies{
		JobRepo:        jobRepo,
		DepartmentRepo: deptRepo,
	})
	userService := service.NewUserService(service.UserDependencies{
		UserRepo:       userRepo,
		DepartmentRepo: deptRepo,
		Dispatcher:     dispatcher,
	})
	diagnosisService := service.NewDiagnosisService(cfg.AI.OpenAIKey, cfg.AI.Model)

	authMiddleware := auth.NewAuthMiddleware(tokens, userRepo)

	app := fiber.New(fiber.Config{
		AppName:   cfg.App.Name,
		BodyLimit: storage.MaxUploadSize + 1024*1024,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService, sessionService),
		Board:          handlers.NewBoardHandler(sessionService, boardService),
		Jobs:           handlers.NewJobsHandler(jobService),
		Admin:          handlers.NewAdminHandler(userService, diagnosisService),
		Tracker:        handlers.NewTrackerHandler(trackerService),
		Hub:            hub,
		AuthMiddleware: authMiddleware,
		Logger:         logger,
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
