package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/hostbay/livechat-service/internal/api/http"
	"github.com/hostbay/livechat-service/internal/api/http/handlers"
	"github.com/hostbay/livechat-service/internal/auth"
	"github.com/hostbay/livechat-service/internal/config"
	"github.com/hostbay/livechat-service/internal/events"
	"github.com/hostbay/livechat-service/internal/observability"
	"github.com/hostbay/livechat-service/internal/persistence"
	"github.com/hostbay/livechat-service/internal/repository"
	"github.com/hostbay/livechat-service/internal/service"
	"github.com/hostbay/livechat-service/internal/worker"
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
	departmentRepo := repository.NewDepartmentRepository(pool)
	agentRepo := repository.NewAgentRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)
	messageRepo := repository.NewMessageRepository(pool)
	historyRepo := repository.NewSessionHistoryRepository(pool)
	loginTokenRepo := repository.NewLoginTokenRepository(pool)
	directoryCache := repository.NewRedisDirectoryCache(redis.Client)

	dispatcher := events.NewInMemoryDispatcher()

	directoryService := service.NewDirectoryService(service.DirectoryDependencies{
		DepartmentRepo: departmentRepo,
		AgentRepo:      agentRepo,
		Cache:          directoryCache,
		CacheTTL:       cfg.Chat.DirectoryCacheTTL(),
		RosterLimit:    cfg.Chat.DirectoryRosterLimit,
		Logger:         logger,
	})
	routingService := service.NewRoutingService(service.RoutingDependencies{
		Directory:   directoryService,
		SessionRepo: sessionRepo,
		AgentRepo:   agentRepo,
		HistoryRepo: historyRepo,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	sessionService := service.NewSessionService(service.SessionDependencies{
		SessionRepo: sessionRepo,
		MessageRepo: messageRepo,
		HistoryRepo: historyRepo,
		Routing:     routingService,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	viewService := service.NewChatViewService(sessionService, departmentRepo, agentRepo)
	agentService := service.NewAgentService(agentRepo)
	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		AgentRepo:      agentRepo,
		LoginTokenRepo: loginTokenRepo,
		Logger:         logger,
	})
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), agentRepo)
	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Departments:    handlers.NewDepartmentsHandler(directoryService),
		Sessions:       handlers.NewSessionsHandler(sessionService, viewService),
		AgentConsole:   handlers.NewAgentConsoleHandler(sessionService, routingService, agentService, viewService),
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
