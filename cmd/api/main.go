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

	httptransport "github.com/spec-kit/support-desk/internal/api/http"
	"github.com/spec-kit/support-desk/internal/api/http/handlers"
	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/notify"
	"github.com/spec-kit/support-desk/internal/observability"
	"github.com/spec-kit/support-desk/internal/persistence"
	"github.com/spec-kit/support-desk/internal/repository"
	"github.com/spec-kit/support-desk/internal/repository/memory"
	"github.com/spec-kit/support-desk/internal/service"
	"github.com/spec-kit/support-desk/internal/worker"
)

type repositories struct {
	tickets   repository.TicketRepository
	employees repository.EmployeeRepository
	customers repository.CustomerRepository
	reports   repository.ReportRepository
}

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

	metrics := observability.NewMetrics("support_desk")

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}
	repos := buildRepositories(pg)

	readiness := map[string]handlers.Pinger{}
	if pg.Enabled() {
		readiness["postgres"] = pg
	}

	var notifier service.Notifier = notify.NewLogNotifier(logger, cfg.Notification.EmailFrom)
	workerDone := worker.StartNotificationWorker(ctx, nil)
	if cfg.Notification.Driver == "redis" {
		redis := persistence.NewRedis(ctx, cfg.Redis, logger)
		defer redis.Close()
		readiness["redis"] = redis

		queue := notify.NewRedisQueue(redis.Client, cfg.Notification.QueueKey, cfg.Notification.EmailFrom)
		notifier = queue
		sink := notify.NewLogNotifier(logger, cfg.Notification.EmailFrom)
		workerDone = worker.StartNotificationWorker(ctx,
			worker.NewNotificationWorker(queue, sink, logger, cfg.Notification.PollInterval()))
	}

	dispatcher := events.NewInMemoryDispatcher()
	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		TicketRepo:   repos.tickets,
		EmployeeRepo: repos.employees,
		Logger:       logger,
		Metrics:      metrics,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:   repos.tickets,
		CustomerRepo: repos.customers,
		Assignment:   assignmentService,
		Dispatcher:   dispatcher,
		Logger:       logger,
		Metrics:      metrics,
	})
	reportService := service.NewReportService(service.ReportDependencies{
		ReportRepo:   repos.reports,
		TicketRepo:   repos.tickets,
		EmployeeRepo: repos.employees,
		Logger:       logger,
	})
	service.NewNotificationService(service.NotificationDependencies{
		Dispatcher:   dispatcher,
		CustomerRepo: repos.customers,
		Notifier:     notifier,
		Logger:       logger,
		Metrics:      metrics,
	}).RegisterHandlers()

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, readiness),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Reports:        handlers.NewReportsHandler(reportService),
		AuthMiddleware: auth.NewAuthMiddleware(tokens),
		Metrics:        metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	cancel()
	<-workerDone
}

func buildRepositories(pg *persistence.Postgres) repositories {
	if !pg.Enabled() {
		store := memory.NewStore()
		return repositories{
			tickets:   store.Tickets(),
			employees: store.Employees(),
			customers: store.Customers(),
			reports:   store.Reports(),
		}
	}
	pool := pg.PoolHandle()
	return repositories{
		tickets:   repository.NewTicketRepository(pool),
		employees: repository.NewEmployeeRepository(pool),
		customers: repository.NewCustomerRepository(pool),
		reports:   repository.NewReportRepository(pool),
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
