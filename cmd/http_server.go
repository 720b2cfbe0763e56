package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/attendance/internal"
	"github.com/frahmantamala/attendance/internal/attendance"
	attendancePostgres "github.com/frahmantamala/attendance/internal/attendance/postgres"
	"github.com/frahmantamala/attendance/internal/auth"
	"github.com/frahmantamala/attendance/internal/clock"
	"github.com/frahmantamala/attendance/internal/leave"
	leavePostgres "github.com/frahmantamala/attendance/internal/leave/postgres"
	"github.com/frahmantamala/attendance/internal/schedule"
	schedulePostgres "github.com/frahmantamala/attendance/internal/schedule/postgres"
	"github.com/frahmantamala/attendance/internal/settings"
	"github.com/frahmantamala/attendance/internal/status"
	statusPostgres "github.com/frahmantamala/attendance/internal/status/postgres"
	"github.com/frahmantamala/attendance/internal/storage"
	"github.com/frahmantamala/attendance/internal/team"
	teamPostgres "github.com/frahmantamala/attendance/internal/team/postgres"
	"github.com/frahmantamala/attendance/internal/transport"
	"github.com/frahmantamala/attendance/internal/transport/rest"
	"github.com/frahmantamala/attendance/internal/user"
	userPostgres "github.com/frahmantamala/attendance/internal/user/postgres"
	"github.com/frahmantamala/attendance/pkg/logger"

	"github.com/go-chi/chi"
	"github.com/spf13/cobra"
)

var (
	migrateOnStart bool
	seedOnStart    bool
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

func init() {
	httpServerCmd.Flags().BoolVar(&migrateOnStart, "migrate", true, "apply pending migrations before serving")
	httpServerCmd.Flags().BoolVar(&seedOnStart, "seed", true, "create the default teams and administrator before serving")
}

type Dependencies struct {
	Config   *internal.Config
	DB       *storage.DB
	Router   *chi.Mux
	Settings *settings.Store
	Users    *user.Service
	Teams    *team.Service
	Logger   *slog.Logger
}

func startHTTPServer() {
	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Env,
		logger.WithFormat(cfg.Observability.Logging.Format),
		logger.WithLevel(cfg.Observability.Logging.Level),
	)
	log := logger.LoggerWrapper()

	db, err := storage.Open(cfg.Database)
	if err != nil {
		log.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}

	deps := NewDependencies(cfg, db, clock.New(cfg.Company.Timezone), log)
	if err := prepare(context.Background(), deps, migrateOnStart, seedOnStart); err != nil {
		log.Error("Failed to apply migrations", "error", err)
		_ = db.Close()
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info("Starting HTTP server", "address", addr, "database", db.Dialect, "timezone", cfg.Company.Timezone)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		log.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Error("Server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed to start", "error", err)
			_ = db.Close()
			os.Exit(1)
		}
	}

	if err := db.Close(); err != nil {
		log.Error("Database close error", "error", err)
	}
	log.Info("Server stopped")
}

// prepare migrates the schema and seeds the defaults before serving. Seeding
// is best-effort: a failure is logged and startup continues.
func prepare(ctx context.Context, deps *Dependencies, migrate, seedDefaults bool) error {
	if migrate {
		if err := deps.DB.Migrate(ctx); err != nil {
			return err
		}
	}
	if seedDefaults {
		if err := seed(ctx, deps); err != nil {
			deps.Logger.Warn("Failed to seed defaults", "error", err)
		}
	}
	return nil
}

// NewDependencies wires repositories, services and handlers over an open
// database and mounts them on a fresh router.
func NewDependencies(cfg *internal.Config, db *storage.DB, clk *clock.Clock, log *slog.Logger) *Dependencies {
	base := transport.NewBaseHandler(log)
	store := settings.NewStore(settings.FromConfig(cfg.Company))

	tokens := auth.NewJWTTokenGenerator(cfg.Security.JWTSecret, cfg.Security.AccessTokenDuration)
	hasher := auth.NewPasswordHasher(cfg.Security.BCryptCost)

	teamService := team.NewService(teamPostgres.NewTeamRepository(db.Gorm), log)
	userService := user.NewService(
		userPostgres.NewUserRepository(db.Gorm),
		teamService,
		tokens,
		hasher,
		cfg.Security.DefaultPassword,
		log,
	)
	attendanceService := attendance.NewService(attendancePostgres.NewAttendanceRepository(db.Gorm), store, clk, log)
	scheduleService := schedule.NewService(schedulePostgres.NewScheduleRepository(db.Gorm), store, clk, log)
	leaveService := leave.NewService(leavePostgres.NewLeaveRepository(db.Gorm), clk, log)
	statusService := status.NewService(statusPostgres.NewStatusRepository(db.Gorm, db.SQL), store, clk, log)

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, db, rest.Handlers{
		Auth:       auth.NewMiddleware(base, tokens, cfg.Security.EnforceAdmin),
		User:       user.NewHandler(base, userService),
		Team:       team.NewHandler(base, teamService),
		Attendance: attendance.NewHandler(base, attendanceService),
		Schedule:   schedule.NewHandler(base, scheduleService),
		Leave:      leave.NewHandler(base, leaveService),
		Status:     status.NewHandler(base, statusService),
		Settings:   settings.NewHandler(base, store),
	}, cfg.Server.AllowedOrigins, log)

	return &Dependencies{
		Config:   cfg,
		DB:       db,
		Router:   router,
		Settings: store,
		Users:    userService,
		Teams:    teamService,
		Logger:   log,
	}
}
