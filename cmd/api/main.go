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

	httptransport "github.com/campus-desk/request-service/internal/api/http"
	"github.com/campus-desk/request-service/internal/api/http/handlers"
	"github.com/campus-desk/request-service/internal/auth"
	"github.com/campus-desk/request-service/internal/config"
	"github.com/campus-desk/request-service/internal/events"
	"github.com/campus-desk/request-service/internal/observability"
	"github.com/campus-desk/request-service/internal/persistence"
	"github.com/campus-desk/request-service/internal/repository"
	"github.com/campus-desk/request-service/internal/service"
	"github.com/campus-desk/request-service/internal/worker"
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

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	requestRepo := repository.NewRequestRepository(pool)
	timelineRepo := repository.NewTimelineRepository(pool)
	attachmentRepo := repository.NewAttachmentRepository(pool)
	unitRepo := repository.NewUnitRepository(pool)
	categoryRepo := repository.NewCategoryRepository(pool)
	dashboardRepo := repository.NewDashboardRepository(pool)
	unitOfWork := repository.NewUnitOfWork(pool)

	dispatcher := events.NewInMemoryDispatcher()

	authService := service.NewAuthService(*cfg, userRepo)
	lifecycleService := service.NewLifecycleService(service.LifecycleDependencies{
		UnitOfWork:     unitOfWork,
		UnitMembership: userRepo,
		Dispatcher:     dispatcher,
	})
	queryService := service.NewQueryService(service.QueryDependencies{
		RequestRepo:    requestRepo,
		TimelineRepo:   timelineRepo,
		AttachmentRepo: attachmentRepo,
		UserRepo:       userRepo,
	})
	taxonomyService := service.NewTaxonomyService(unitRepo, categoryRepo)
	adminService := service.NewAdminService(userRepo, unitRepo)
	dashboardService := service.NewDashboardService(
		dashboardRepo,
		redis.Client,
		time.Duration(cfg.Redis.DashboardTTLSeconds)*time.Second,
		logger,
	)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)
	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Requests:       handlers.NewRequestsHandler(lifecycleService, queryService, taxonomyService, dashboardService),
		Officer:        handlers.NewOfficerHandler(lifecycleService, queryService, adminService, dashboardService),
		Admin:          handlers.NewAdminHandler(adminService, taxonomyService, queryService, dashboardService),
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
