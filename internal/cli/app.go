package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/parley"
	"github.com/aretw0/parley/internal/config"
	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/pkg/adapters/memory"
	"github.com/aretw0/parley/pkg/adapters/redis"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/observability"
	"github.com/aretw0/parley/pkg/ports"
)

// App bundles a configured Dialog with the resources it owns.
type App struct {
	Config  config.Config
	Logger  *slog.Logger
	Dialog  *parley.Dialog
	Metrics *observability.Metrics
	Cache   ports.AnswerCache

	closers []func() error
}

type appOptions struct {
	logOutput io.Writer
	hooks     []domain.LifecycleHooks
	service   ports.AnswerService
}

// AppOption configures NewApp.
type AppOption func(*appOptions)

// WithLogOutput sends logs to w instead of stderr.
func WithLogOutput(w io.Writer) AppOption {
	return func(o *appOptions) {
		o.logOutput = w
	}
}

// WithHooks adds lifecycle hooks to the dialog.
func WithHooks(hooks domain.LifecycleHooks) AppOption {
	return func(o *appOptions) {
		o.hooks = append(o.hooks, hooks)
	}
}

// WithService talks to svc instead of the configured base URL.
func WithService(svc ports.AnswerService) AppOption {
	return func(o *appOptions) {
		o.service = svc
	}
}

// NewLogger creates the application logger described by cfg.
func NewLogger(cfg config.Config, w io.Writer) (*slog.Logger, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	if w == nil {
		w = os.Stderr
	}
	return logging.NewWithFormat(w, level, cfg.Log.Format), nil
}

// NewApp wires logging, the answer cache, metrics and audit hooks into a Dialog.
func NewApp(ctx context.Context, cfg config.Config, opts ...AppOption) (*App, error) {
	o := &appOptions{}
	for _, opt := range opts {
		opt(o)
	}

	logger, err := NewLogger(cfg, o.logOutput)
	if err != nil {
		return nil, err
	}
	app := &App{Config: cfg, Logger: logger}

	cache, err := app.openCache(ctx)
	if err != nil {
		return nil, err
	}
	app.Cache = cache

	dialogOpts := []parley.Option{
		parley.WithLogger(logger),
		parley.WithTimeout(cfg.Timeout),
		parley.WithCopy(cfg.DialogCopy()),
		parley.WithLifecycleHooks(observability.AuditHooks(logger)),
	}
	if cache != nil {
		dialogOpts = append(dialogOpts, parley.WithCache(cache))
	}
	if o.service != nil {
		dialogOpts = append(dialogOpts, parley.WithAnswerService(o.service))
	}
	if cfg.Metrics.Enabled {
		m, err := observability.NewMetrics()
		if err != nil {
			_ = app.Close()
			return nil, fmt.Errorf("metrics: %w", err)
		}
		app.Metrics = m
		dialogOpts = append(dialogOpts, parley.WithLifecycleHooks(m.Hooks()))
	}
	for _, h := range o.hooks {
		dialogOpts = append(dialogOpts, parley.WithLifecycleHooks(h))
	}

	d, err := parley.New(cfg.BaseURL, dialogOpts...)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	app.Dialog = d
	return app, nil
}

func (a *App) openCache(ctx context.Context) (ports.AnswerCache, error) {
	c := a.Config.Cache
	switch c.Backend {
	case config.CacheMemory:
		a.Logger.Debug("Answer cache enabled", "backend", c.Backend, "ttl", c.TTL)
		return memory.NewCache(memory.WithCacheTTL(c.TTL)), nil
	case config.CacheRedis:
		rc := redis.New(c.Redis.Addr, c.Redis.Password, c.Redis.DB,
			redis.WithTTL(c.TTL),
			redis.WithPrefix(c.Redis.Prefix),
		)
		if err := rc.Ping(ctx); err != nil {
			_ = rc.Close()
			return nil, fmt.Errorf("redis cache at %s: %w", c.Redis.Addr, err)
		}
		a.closers = append(a.closers, rc.Close)
		a.Logger.Debug("Answer cache enabled", "backend", c.Backend, "addr", c.Redis.Addr, "ttl", c.TTL)
		return rc, nil
	}
	return nil, nil
}

// Close releases the resources opened by NewApp.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
