// Package app assembles the store, services, registries and server from
// configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"golang.org/x/sync/errgroup"

	"github.com/productivitybrain/core/internal/adapters/storage"
	"github.com/productivitybrain/core/internal/application/components"
	"github.com/productivitybrain/core/internal/application/registry"
	"github.com/productivitybrain/core/internal/application/services"
	"github.com/productivitybrain/core/internal/application/store"
	"github.com/productivitybrain/core/internal/application/tools"
	"github.com/productivitybrain/core/internal/domain/entities"
	"github.com/productivitybrain/core/internal/infrastructure/config"
	"github.com/productivitybrain/core/internal/infrastructure/database"
	"github.com/productivitybrain/core/internal/infrastructure/logger"
	"github.com/productivitybrain/core/internal/infrastructure/metrics"
	"github.com/productivitybrain/core/internal/infrastructure/server"
	"github.com/productivitybrain/core/internal/ports"
)

const shutdownTimeout = 10 * time.Second

// App owns every long-lived dependency of the service
type App struct {
	Config     *config.Config
	Logger     *logger.Logger
	Metrics    *metrics.Metrics
	Store      *store.Store
	Analytics  *services.AnalyticsService
	Timers     *services.FocusTimers
	Auth       *services.AuthService
	Tools      *registry.Tools
	Components *registry.Components

	// DB is set for the sqlite and postgres drivers
	DB    *database.DB
	redis *redis.Client
}

// New opens the configured storage backend and wires the services on top
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	loc, err := cfg.App.Location()
	if err != nil {
		return nil, err
	}
	weekStart, err := cfg.App.FirstWeekday()
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg, Logger: log}
	if cfg.Metrics.Enabled {
		a.Metrics = metrics.New()
	}

	kv, err := a.openStorage(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Store = store.New(kv, log,
		store.WithLocation(loc),
		store.WithKeyPrefix(cfg.Storage.KeyPrefix),
		store.WithMetrics(a.Metrics),
	)
	a.Analytics = services.NewAnalyticsService(a.Store, weekStart, log)
	a.Timers = services.NewFocusTimers(a.Store, cfg.Focus.TickInterval, cfg.Focus.DefaultDuration, a.Metrics, log)
	a.Timers.OnComplete(a.announceSession)
	a.Timers.SetRetention(cfg.Focus.TimerRetention)
	a.Auth = services.NewAuthService(cfg.Dispatch, log)

	a.Tools = registry.NewTools()
	a.Tools.Observe(a.observe)
	if err := tools.Register(a.Tools, a.Store, a.Analytics); err != nil {
		a.Close()
		return nil, err
	}

	a.Components = registry.NewComponents()
	a.Components.Observe(a.observe)
	deps := components.Deps{Store: a.Store, Analytics: a.Analytics, Timers: a.Timers}
	if err := components.Register(a.Components, deps); err != nil {
		a.Close()
		return nil, err
	}

	log.Infow("Application initialized",
		"storage_driver", cfg.Storage.Driver,
		"key_prefix", cfg.Storage.KeyPrefix,
		"timezone", loc.String(),
		"week_start", weekStart.String(),
		"tools", len(a.Tools.List()),
		"components", len(a.Components.List()),
	)
	return a, nil
}

func (a *App) openStorage(ctx context.Context) (ports.KeyValueStorage, error) {
	cfg := a.Config
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		a.Logger.Warnw("Using in-memory storage, data will not survive a restart")
		return storage.NewMemory(), nil

	case config.DriverFile:
		return storage.NewFile(cfg.Storage.DataDir, a.Logger)

	case config.DriverSQLite, config.DriverPostgres:
		db, err := OpenDatabase(cfg)
		if err != nil {
			return nil, err
		}
		a.DB = db
		if err := db.MigrateUp(); err != nil {
			return nil, err
		}
		return storage.NewSQL(db.DB), nil

	case config.DriverRedis:
		client, err := database.NewRedis(ctx, cfg.Redis, a.Logger)
		if err != nil {
			return nil, err
		}
		a.redis = client
		return storage.NewRedis(client, cfg.Redis.Channel, a.Logger), nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}

// OpenDatabase connects to the SQL database behind the sqlite or postgres driver
func OpenDatabase(cfg *config.Config) (*database.DB, error) {
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		return database.New(cfg.Database, database.DialectSQLite)
	case config.DriverPostgres:
		return database.New(cfg.Database, database.DialectPostgres)
	}
	return nil, fmt.Errorf("storage driver %q has no database", cfg.Storage.Driver)
}

func (a *App) observe(kind, name string, err error, elapsed time.Duration) {
	a.Metrics.ObserveInvocation(kind, name, err, elapsed)
	a.Logger.LogInvocation(kind, name, elapsed, err)
}

func (a *App) announceSession(_ context.Context, session entities.FocusSession) error {
	a.Logger.Infow("Focus session finished, time for a break",
		"session_id", session.ID,
		"task_id", session.TaskID,
		"duration", session.Duration,
	)
	return nil
}

// Serve runs the HTTP server and the external change watcher until ctx is
// done or one of them fails.
func (a *App) Serve(ctx context.Context) error {
	srv, err := server.New(a.Config, server.Dependencies{
		Store:      a.Store,
		Tools:      a.Tools,
		Components: a.Components,
		Auth:       a.Auth,
		Metrics:    a.Metrics,
		DB:         a.DB,
	}, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Start(srv.Address())
	})

	if a.Config.Storage.Watch {
		g.Go(func() error {
			return a.Store.WatchExternal(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Close stops the timers and releases backend connections
func (a *App) Close() error {
	var errs []error
	if a.Timers != nil {
		a.Timers.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close redis: %w", err))
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
