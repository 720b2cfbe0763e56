package rest

import (
	"log/slog"

	"github.com/frahmantamala/attendance/api"
	"github.com/frahmantamala/attendance/internal/attendance"
	"github.com/frahmantamala/attendance/internal/auth"
	"github.com/frahmantamala/attendance/internal/leave"
	"github.com/frahmantamala/attendance/internal/schedule"
	"github.com/frahmantamala/attendance/internal/settings"
	"github.com/frahmantamala/attendance/internal/status"
	"github.com/frahmantamala/attendance/internal/storage"
	"github.com/frahmantamala/attendance/internal/team"
	"github.com/frahmantamala/attendance/internal/transport/middleware"
	"github.com/frahmantamala/attendance/internal/transport/swagger"
	"github.com/frahmantamala/attendance/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Auth       *auth.Middleware
	User       *user.Handler
	Team       *team.Handler
	Attendance *attendance.Handler
	Schedule   *schedule.Handler
	Leave      *leave.Handler
	Status     *status.Handler
	Settings   *settings.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *storage.DB, h Handlers, allowedOrigins string, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS(allowedOrigins))
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestID(logger))
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.Logging(logger))
	router.Use(h.Auth.Authenticate)

	router.Get("/openapi.yml", api.Handler())
	router.Handle("/swagger/*", swagger.Handler())

	router.Get("/health", healthHandler.healthCheckHandler)
	router.Get("/ping", healthHandler.pingHandler)

	router.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", h.User.Register)
		r.Post("/auth/login", h.User.Login)
		r.Get("/auth/user/{id}", h.User.GetUser)

		r.Get("/teams", h.Team.ListTeams)

		r.Post("/attendance/clock-in", h.Attendance.ClockIn)
		r.Post("/attendance/clock-out", h.Attendance.ClockOut)
		r.Get("/attendance/today/{id}", h.Attendance.Today)
		r.Get("/attendance/weekly/{id}", h.Attendance.Weekly)

		r.Get("/schedule/{user_id}", h.Schedule.GetWeek)
		r.Get("/schedule/{user_id}/{date}", h.Schedule.GetDay)
		r.Post("/schedule", h.Schedule.SaveBatch)
		r.Put("/schedule", h.Schedule.SaveDay)

		r.Post("/leave", h.Leave.RequestLeave)
		r.Delete("/leave/{id}", h.Leave.CancelLeave)
		r.Get("/leave/my/{id}", h.Leave.ListMine)
		r.Get("/leave/user-week/{id}", h.Leave.UserWeek)

		r.Get("/team/status/{team_id}", h.Status.TeamStatus)

		r.Get("/settings", h.Settings.GetSettings)

		// administrator routes
		r.Group(func(ar chi.Router) {
			ar.Use(h.Auth.RequireAdmin)

			ar.Post("/teams", h.Team.CreateTeam)
			ar.Delete("/teams/{id}", h.Team.DeleteTeam)

			ar.Put("/attendance/update", h.Attendance.AdminUpdate)

			ar.Get("/admin/all-status", h.Status.AllStatus)
			ar.Get("/admin/hours", h.Status.Hours)
			ar.Get("/admin/hours/export", h.Status.ExportHours)
			ar.Get("/admin/employees", h.User.ListEmployees)
			ar.Put("/admin/reset-password/{id}", h.User.ResetPassword)

			ar.Put("/user/role", h.User.UpdateRole)
			ar.Put("/user/annual-leave", h.User.UpdateAnnualLeave)
			ar.Put("/user/team", h.User.AssignTeam)

			ar.Put("/settings", h.Settings.UpdateSettings)
		})
	})
}
