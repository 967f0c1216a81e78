package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/toyrobot"
	"github.com/aretw0/toyrobot/internal/config"
	"github.com/aretw0/toyrobot/internal/logging"
	"github.com/aretw0/toyrobot/pkg/adapters/file"
	"github.com/aretw0/toyrobot/pkg/adapters/memory"
	"github.com/aretw0/toyrobot/pkg/adapters/redis"
	"github.com/aretw0/toyrobot/pkg/observability"
	"github.com/aretw0/toyrobot/pkg/persistence/middleware"
	"github.com/aretw0/toyrobot/pkg/ports"
	"github.com/aretw0/toyrobot/pkg/session"
	"github.com/spf13/afero"
)

// App bundles everything a command needs, built from one Config.
type App struct {
	Config   config.Config
	Engine   *toyrobot.Engine
	Store    ports.StateStore
	Sessions *session.Manager
	Metrics  *observability.Metrics
	Logger   *slog.Logger

	closers []io.Closer
}

// Close releases backend connections.
func (a *App) Close() error {
	var first error
	for _, c := range a.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// NewLogger creates the logger described by cfg. Logs always go to w (usually Stderr).
func NewLogger(cfg config.LogConfig, w io.Writer) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if cfg.Format == "json" {
		return logging.NewJSON(w, level), nil
	}
	if w == nil || w == os.Stderr {
		return logging.New(level), nil
	}
	return logging.NewText(w, level), nil
}

// Build wires the engine, the store and the session manager from cfg.
func Build(cfg config.Config, logger *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	metrics := observability.NewMetrics(nil)
	engine, err := toyrobot.New(
		toyrobot.WithGrid(cfg.GridValue()),
		toyrobot.WithLogger(logger),
		toyrobot.WithLifecycleHooks(metrics.Hooks(logger)),
	)
	if err != nil {
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}

	app := &App{
		Config:  cfg,
		Engine:  engine,
		Metrics: metrics,
		Logger:  logger,
	}

	sessionOpts := []session.Option{
		session.WithGrid(engine.Grid()),
		session.WithLogger(logger),
	}

	var store ports.StateStore
	switch cfg.Store.Driver {
	case config.StoreMemory:
		store = memory.NewStore()
	case config.StoreFile:
		store = file.New(cfg.Store.Path, file.WithFs(afero.NewOsFs()))
	case config.StoreRedis:
		redisOpts := []redis.Option{redis.WithTTL(cfg.Store.Redis.TTL)}
		if cfg.Store.Redis.Prefix != "" {
			redisOpts = append(redisOpts, redis.WithPrefix(cfg.Store.Redis.Prefix))
		}
		rs := redis.New(cfg.Store.Redis.Addr, cfg.Store.Redis.Password, cfg.Store.Redis.DB, redisOpts...)
		if err := rs.Ping(context.Background()); err != nil {
			_ = rs.Close()
			return nil, fmt.Errorf("redis unavailable at %s: %w", cfg.Store.Redis.Addr, err)
		}
		app.closers = append(app.closers, rs)
		store = rs
		if cfg.Store.Redis.Lock {
			sessionOpts = append(sessionOpts, session.WithLocker(redis.NewLocker(rs.Client(), cfg.Store.Redis.Prefix)))
		}
	}

	if cfg.Session.SecretKey != "" {
		mw, err := middleware.NewEncryptionMiddleware(
			middleware.ConfigFromSecrets(cfg.Session.SecretKey, cfg.Session.PreviousKeys...),
		)
		if err != nil {
			_ = app.Close()
			return nil, fmt.Errorf("failed to configure session encryption: %w", err)
		}
		store = middleware.Chain(store, mw)
		logger.Debug("session encryption enabled", "fallback_keys", len(cfg.Session.PreviousKeys))
	}

	app.Store = store
	app.Sessions = session.NewManager(store, sessionOpts...)
	logger.Debug("application ready", "store", cfg.Store.Driver, "grid", engine.Grid().String())
	return app, nil
}
