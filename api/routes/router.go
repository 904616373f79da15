package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Just-andreew/aquagen-farm/api/controllers"
	"github.com/Just-andreew/aquagen-farm/api/middleware"
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
	"github.com/Just-andreew/aquagen-farm/pkg/redis"
)

// Services bundles everything the router needs wired in.
type Services struct {
	Auth          auth.Service
	Tasks         tasks.Service
	Inventory     inventory.Service
	Activity      activity.Service
	Emergencies   emergencies.Service
	Notifications notifications.Service
	Users         users.Service
	Reports       reports.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	sessions session.AccessSessionChecker,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, redisClient, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.AuthLogin(svcs.Auth, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg), middleware.Idempotency(redisClient, logg)).Post("/register", controllers.AuthRegister(svcs.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(svcs.Auth, logg))
		r.Post("/logout", controllers.AuthLogout(svcs.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", controllers.ListTasks(svcs.Tasks, logg))
			r.Post("/", controllers.CreateTask(svcs.Tasks, logg))
			r.Get("/{id}", controllers.GetTask(svcs.Tasks, logg))
			r.Post("/{id}/move", controllers.MoveTask(svcs.Tasks, logg))
			r.Patch("/{id}", controllers.UpdateTask(svcs.Tasks, logg))
			r.Delete("/{id}", controllers.DeleteTask(svcs.Tasks, logg))
		})

		r.Route("/inventory", func(r chi.Router) {
			r.Get("/", controllers.ListInventory(svcs.Inventory, logg))
			r.Post("/", controllers.AddInventoryItem(svcs.Inventory, logg))
			r.Post("/{id}/delta", controllers.ApplyInventoryDelta(svcs.Inventory, logg))
			r.Post("/consume", controllers.ConsumeInventory(svcs.Inventory, logg))
			r.Get("/history", controllers.ListInventoryHistory(svcs.Inventory, logg))
		})

		r.Route("/logs", func(r chi.Router) {
			r.Get("/", controllers.ListActivityLogs(svcs.Activity, logg))
			r.Post("/", controllers.CreateActivityLog(svcs.Activity, logg))
		})

		r.Route("/emergencies", func(r chi.Router) {
			r.Get("/", controllers.ListEmergencies(svcs.Emergencies, logg))
			r.Post("/", controllers.CreateEmergency(svcs.Emergencies, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(svcs.Notifications, logg))
			r.Post("/{id}/read", controllers.MarkNotificationRead(svcs.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(svcs.Notifications, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(middleware.RequireUserManager(logg))

		r.Route("/users", func(r chi.Router) {
			r.Get("/", controllers.AdminListUsers(svcs.Users, logg))
			r.Patch("/{id}", controllers.AdminUpdateUser(svcs.Users, logg))
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/summary", controllers.ReportSummary(svcs.Reports, logg))
			r.Get("/export", controllers.ReportExport(svcs.Reports, logg))
		})
	})

	return r
}
