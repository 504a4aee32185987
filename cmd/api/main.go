package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/cybershield/threat-exchange/internal/api/http"
	"github.com/cybershield/threat-exchange/internal/api/http/handlers"
	"github.com/cybershield/threat-exchange/internal/auth"
	"github.com/cybershield/threat-exchange/internal/config"
	"github.com/cybershield/threat-exchange/internal/events"
	"github.com/cybershield/threat-exchange/internal/observability"
	"github.com/cybershield/threat-exchange/internal/persistence"
	"github.com/cybershield/threat-exchange/internal/repository"
	"github.com/cybershield/threat-exchange/internal/service"
	"github.com/cybershield/threat-exchange/internal/worker"
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
	orgRepo := repository.NewOrganizationRepository(pool)
	reportRepo := repository.NewReportRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)
	actionRepo := repository.NewResponseActionRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	denylist := auth.NewRedisDenylist(redis.Client)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo: userRepo,
		Denylist: denylist,
	})
	orgService := service.NewOrganizationService(orgRepo)
	reportService := service.NewReportService(service.ReportDependencies{
		ReportRepo:         reportRepo,
		OrganizationRepo:   orgRepo,
		ResponseActionRepo: actionRepo,
		Dispatcher:         dispatcher,
	})
	notificationService := service.NewNotificationService(service.NotificationDependencies{
		NotificationRepo: notificationRepo,
		OrganizationRepo: orgRepo,
		UserRepo:         userRepo,
		Dispatcher:       dispatcher,
	}, logger)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewMiddleware(authService.TokenManager(), userRepo, denylist)
	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Users:          handlers.NewUsersHandler(authService),
		Organizations:  handlers.NewOrganizationsHandler(orgService),
		Reports:        handlers.NewReportsHandler(reportService),
		Notifications:  handlers.NewNotificationsHandler(notificationService),
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
