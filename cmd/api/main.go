package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/eservicedesk/internal/api/http"
	"github.com/spec-kit/eservicedesk/internal/api/http/handlers"
	"github.com/spec-kit/eservicedesk/internal/auth"
	"github.com/spec-kit/eservicedesk/internal/config"
	"github.com/spec-kit/eservicedesk/internal/events"
	"github.com/spec-kit/eservicedesk/internal/observability"
	"github.com/spec-kit/eservicedesk/internal/persistence"
	"github.com/spec-kit/eservicedesk/internal/repository"
	"github.com/spec-kit/eservicedesk/internal/service"
	"github.com/spec-kit/eservicedesk/internal/simrs"
	"github.com/spec-kit/eservicedesk/internal/worker"
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

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	webminRepo := repository.NewWebminRepository(pool)
	logbookRepo := repository.NewLogbookRepository(pool)
	technicianRepo := repository.NewTechnicianStatusRepository(pool)

	simrsClient := simrs.NewClient(cfg.Simrs, logger)
	dispatcher := events.NewInMemoryDispatcher()

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:   userRepo,
		WebminRepo: webminRepo,
	})
	logbookService := service.NewLogbookService(logbookRepo)
	technicianService := service.NewTechnicianService(technicianRepo)
	escalationService := service.NewEscalationService(service.EscalationDependencies{
		Client:           simrsClient,
		LogbookRepo:      logbookRepo,
		Dispatcher:       dispatcher,
		Metrics:          metrics,
		Logger:           logger,
		ConsistencyDelay: cfg.Simrs.ConsistencyDelay(),
		BulkThrottle:     cfg.Simrs.BulkThrottle(),
	})
	workflowService := service.NewWorkflowService(service.WorkflowDependencies{
		Client:     simrsClient,
		Cache:      redis.Client,
		Dispatcher: dispatcher,
		Logger:     logger,
		CacheTTL:   cfg.Simrs.SummaryCacheTTL(),
	})

	notifications := service.NewNotificationService(dispatcher, logger)
	notifications.RegisterHandlers()

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(authService),
		Logbook:        handlers.NewLogbookHandler(logbookService),
		Monitoring:     handlers.NewMonitoringHandler(escalationService, workflowService, authService),
		Technicians:    handlers.NewTechnicianHandler(technicianService),
		AuthMiddleware: authMiddleware,
	})

	var poller *worker.SummaryPoller
	if cfg.Simrs.ServiceUser != "" {
		poller = worker.NewSummaryPoller(workflowService, simrs.Credentials{
			Username: cfg.Simrs.ServiceUser,
			Password: cfg.Simrs.ServicePass,
			BaseURL:  cfg.Simrs.BaseURL,
		}, cfg.Simrs.SummaryPollInterval(), logger)
		poller.Start(ctx)
	}

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
	cancel()
	if poller != nil {
		poller.Wait()
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
