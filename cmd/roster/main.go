package main

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

	"github.com/google/uuid"

	"github.com/example/center-roster/internal/application"
	"github.com/example/center-roster/internal/config"
	"github.com/example/center-roster/internal/grid"
	httptransport "github.com/example/center-roster/internal/http"
	"github.com/example/center-roster/internal/persistence"
	"github.com/example/center-roster/internal/persistence/memory"
	"github.com/example/center-roster/internal/persistence/sqlite"
	"github.com/example/center-roster/internal/scheduler"
	"github.com/example/center-roster/internal/validate"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	repos, closeStorage, err := openRepositories(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := closeStorage(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	handler := newHTTPHandler(cfg, repos, logger)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("roster API listening", "addr", server.Addr, "dev_mode", cfg.DevMode)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

// repositorySet bundles the storage interfaces the services consume.
type repositorySet struct {
	Students persistence.StudentRepository
	Trainers persistence.TrainerRepository
	Sessions persistence.SessionRepository
	Rules    persistence.BlockedDayRuleRepository
}

// openRepositories selects the storage backend from the configuration. Dev
// mode uses the in-memory store; otherwise a SQLite pool is opened and
// migrated. The returned closer releases the backend.
func openRepositories(ctx context.Context, cfg config.Config, logger *slog.Logger) (repositorySet, func() error, error) {
	if cfg.DevMode {
		logger.Warn("dev mode enabled, data is not persisted")
		store := memory.NewStore()
		return repositorySet{
			Students: store,
			Trainers: store,
			Sessions: store,
			Rules:    store,
		}, store.Close, nil
	}

	pool, err := sqlite.NewConnectionPool(cfg.SQLiteDSN)
	if err != nil {
		return repositorySet{}, nil, fmt.Errorf("open sqlite pool: %w", err)
	}
	if err := pool.Migrate(ctx); err != nil {
		closeErr := pool.Close()
		if closeErr != nil {
			logger.Error("failed to close storage after migration failure", "error", closeErr)
		}
		return repositorySet{}, nil, fmt.Errorf("apply migrations: %w", err)
	}

	return repositorySet{
		Students: sqlite.NewStudentRepository(pool),
		Trainers: sqlite.NewTrainerRepository(pool),
		Sessions: sqlite.NewSessionRepository(pool),
		Rules:    sqlite.NewBlockedDayRepository(pool),
	}, pool.Close, nil
}

// newHTTPHandler wires services, handlers and middleware into the root
// handler served by the HTTP server.
func newHTTPHandler(cfg config.Config, repos repositorySet, logger *slog.Logger) http.Handler {
	idGenerator := uuid.NewString
	now := time.Now

	slotOpts := scheduler.SlotOptions{
		Increment:     cfg.Increment,
		MinDuration:   cfg.MinDuration,
		MaxDuration:   cfg.MaxDuration,
		BusinessStart: cfg.BusinessStart,
		BusinessEnd:   cfg.BusinessEnd,
	}
	cacheOpts := application.CacheOptions{
		TTL:        cfg.AvailabilityCacheTTL,
		MaxEntries: cfg.AvailabilityCacheMaxEntries,
	}

	sessionService := application.NewSessionServiceWithLogger(
		repos.Sessions, repos.Students, repos.Trainers, repos.Rules,
		cfg.Seats, slotOpts, cacheOpts, idGenerator, now, logger,
	)
	rosterService := application.NewRosterServiceWithLogger(
		repos.Students, repos.Trainers, repos.Sessions, idGenerator, now, logger,
	)
	blockedDayService := application.NewBlockedDayServiceWithLogger(
		repos.Rules, idGenerator, now, logger,
	)
	analyticsService := application.NewAnalyticsServiceWithLogger(
		repos.Sessions, repos.Trainers, cfg.Seats, cfg.BusinessStart, cfg.BusinessEnd, logger,
	)

	validator := validate.New()

	geometry := grid.DefaultGeometry()
	geometry.BusinessStart = cfg.BusinessStart
	geometry.BusinessEnd = cfg.BusinessEnd
	geometry.Increment = cfg.Increment

	return httptransport.NewRouter(httptransport.RouterConfig{
		Roster:      httptransport.NewRosterHandler(rosterService, validator, logger),
		Sessions:    httptransport.NewSessionHandler(sessionService, validator, logger),
		BlockedDays: httptransport.NewBlockedDayHandler(blockedDayService, validator, logger),
		Grid:        httptransport.NewGridHandler(sessionService, geometry, cfg.Seats, now, logger),
		Analytics:   httptransport.NewAnalyticsHandler(analyticsService, logger),
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
		},
	})
}
