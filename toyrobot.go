package toyrobot

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/toyrobot/pkg/domain"
)

// Version is the release of this module, embedded from the VERSION file.
//
//go:embed VERSION
var Version string

// Engine is the high-level entry point for the toyrobot library.
// It owns the table configuration and dispatches commands to robots,
// firing lifecycle hooks for every command. An Engine keeps no robot state:
// callers restore a robot, apply commands and dump it again.
type Engine struct {
	grid   domain.Grid
	hooks  domain.LifecycleHooks
	logger *slog.Logger
	now    func() time.Time
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithGrid sets the table size (default 5x5).
func WithGrid(grid domain.Grid) Option {
	return func(e *Engine) {
		e.grid = grid
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New initializes a new Engine.
func New(opts ...Option) (*Engine, error) {
	eng := &Engine{
		grid: domain.DefaultGrid(),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(eng)
	}

	if _, err := domain.NewGrid(eng.grid.Width, eng.grid.Height); err != nil {
		return nil, err
	}

	// Ensure logger is initialized so callers never need nil checks.
	if eng.logger == nil {
		eng.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	eng.logger = eng.logger.With("grid", eng.grid.String())

	return eng, nil
}

// Grid returns the configured table bounds.
func (e *Engine) Grid() domain.Grid {
	return e.grid
}

// NewRobot returns an unplaced robot on the engine's table.
func (e *Engine) NewRobot() *domain.Robot {
	return domain.NewRobot(e.grid)
}

// Restore rebuilds a robot from stored state. A nil state yields an unplaced robot.
func (e *Engine) Restore(state *domain.State) (*domain.Robot, error) {
	if state == nil {
		return e.NewRobot(), nil
	}
	robot, err := domain.Restore(e.grid, *state)
	if err != nil {
		return nil, fmt.Errorf("failed to restore robot: %w", err)
	}
	return robot, nil
}

// Apply runs cmd against robot and notifies the lifecycle hooks.
// The session ID is only used to label logs and events and may be empty.
func (e *Engine) Apply(ctx context.Context, sessionID string, robot *domain.Robot, cmd domain.Command) domain.Result {
	res := robot.Apply(cmd)

	e.logger.Debug("command applied",
		"session_id", sessionID,
		"command", string(res.Command),
		"outcome", string(res.Outcome),
	)

	if e.hooks.OnCommand != nil {
		e.hooks.OnCommand(ctx, &domain.CommandEvent{
			EventBase: domain.EventBase{
				Timestamp: e.now(),
				Type:      domain.EventCommand,
				SessionID: sessionID,
			},
			Result: res,
		})
	}
	return res
}
