package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/sla-service/internal/api/http"
	"github.com/spec-kit/sla-service/internal/api/http/handlers"
	"github.com/spec-kit/sla-service/internal/auth"
	"github.com/spec-kit/sla-service/internal/config"
	"github.com/spec-kit/sla-service/internal/configstore"
	"github.com/spec-kit/sla-service/internal/events"
	"github.com/spec-kit/sla-service/internal/observability"
	"github.com/spec-kit/sla-service/internal/persistence"
	"github.com/spec-kit/sla-service/internal/repository"
	"github.com/spec-kit/sla-service/internal/service"
	"github.com/spec-kit/sla-service/internal/worker"
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
	txManager := repository.NewTxManager(pool)
	ticketRepo := repository.NewTicketRepository()
	agentRepo := repository.NewAgentRepository()
	assignmentRepo := repository.NewAssignmentRepository()
	historyRepo := repository.NewAssignmentHistoryRepository()
	slaConfigRepo := repository.NewSLAConfigRepository()

	slaConfigStore := configstore.New(
		configstore.RepositoryLoader{DB: pool, Repo: slaConfigRepo},
		cfg.SLA.ConfigCacheTTL(),
		logger,
	)

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	authService := service.NewAuthService(cfg.Auth, txManager, pool, agentRepo)
	ticketService := service.NewTicketService(txManager, pool, ticketRepo, logger)
	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		Tx:             txManager,
		DB:             pool,
		TicketRepo:     ticketRepo,
		AgentRepo:      agentRepo,
		AssignmentRepo: assignmentRepo,
		HistoryRepo:    historyRepo,
		SLAConfig:      slaConfigStore,
		Dispatcher:     dispatcher,
		Logger:         logger,
	})
	slaService := service.NewSLAService(pool, ticketRepo, slaConfigStore, logger)
	metricsService := service.NewMetricsService(pool, ticketRepo, slaConfigStore, redis.Client, cfg.SLA.MetricsCacheTTL(), logger)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)

	worker.StartNotificationWorker(notificationService)
	if cfg.SLA.MonitorEnabled {
		monitor := worker.NewSLAMonitor(pool, ticketRepo, slaService, dispatcher, cfg.SLA.MonitorInterval(), logger)
		go monitor.Run(ctx)
	}

	agentMiddleware := auth.NewAgentMiddleware(authService.TokenManager(), agentRepo, pool)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:          handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:            handlers.NewAuthHandler(authService),
		Tickets:         handlers.NewTicketsHandler(ticketService),
		Assignments:     handlers.NewAssignmentsHandler(assignmentService),
		SLA:             handlers.NewSLAHandler(slaService, metricsService, slaConfigStore, cfg.SLA.DefaultWindowDays),
		AgentMiddleware: agentMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)
	cancel()

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
