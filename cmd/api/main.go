package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/Just-andreew/aquagen-farm/api/routes"
	"github.com/Just-andreew/aquagen-farm/internal/activity"
	"github.com/Just-andreew/aquagen-farm/internal/auth"
	"github.com/Just-andreew/aquagen-farm/internal/emergencies"
	"github.com/Just-andreew/aquagen-farm/internal/inventory"
	"github.com/Just-andreew/aquagen-farm/internal/notifications"
	"github.com/Just-andreew/aquagen-farm/internal/reports"
	"github.com/Just-andreew/aquagen-farm/internal/tasks"
	"github.com/Just-andreew/aquagen-farm/internal/users"
	"github.com/Just-andreew/aquagen-farm/pkg/auth/session"
	"github.com/Just-andreew/aquagen-farm/pkg/config"
	"github.com/Just-andreew/aquagen-farm/pkg/db"
	"github.com/Just-andreew/aquagen-farm/pkg/logger"
	"github.com/Just-andreew/aquagen-farm/pkg/migrate"
	"github.com/Just-andreew/aquagen-farm/pkg/outbox"
	"github.com/Just-andreew/aquagen-farm/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	conn := dbClient.DB()
	outboxService := outbox.NewService(outbox.NewRepository(conn), logg)

	usersRepo := users.NewRepository(conn)
	tasksRepo := tasks.NewRepository(conn)
	inventoryRepo := inventory.NewRepository(conn)
	activityRepo := activity.NewRepository(conn)
	emergenciesRepo := emergencies.NewRepository(conn)
	notificationsRepo := notifications.NewRepository(conn)

	authService, err := auth.NewService(usersRepo, sessionManager, cfg.JWT, cfg.Password, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	inventoryService, err := inventory.NewService(dbClient, inventoryRepo, outboxService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory service", err)
		os.Exit(1)
	}

	tasksService, err := tasks.NewService(dbClient, tasksRepo, usersRepo, inventoryService, outboxService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create task service", err)
		os.Exit(1)
	}

	activityService, err := activity.NewService(activityRepo, inventoryService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create activity service", err)
		os.Exit(1)
	}

	emergenciesService, err := emergencies.NewService(dbClient, emergenciesRepo, outboxService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create emergency service", err)
		os.Exit(1)
	}

	notificationsService, err := notifications.NewService(notificationsRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	usersService, err := users.NewService(usersRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}

	reportsService, err := reports.NewService(tasksRepo, activityRepo, inventoryRepo, emergenciesRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create reports service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, sessionManager, routes.Services{
			Auth:          authService,
			Tasks:         tasksService,
			Inventory:     inventoryService,
			Activity:      activityService,
			Emergencies:   emergenciesService,
			Notifications: notificationsService,
			Users:         usersService,
			Reports:       reportsService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
