package providers

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/km-arc/go-yii/framework/alias"
	"github.com/km-arc/go-yii/framework/config"
	"github.com/km-arc/go-yii/framework/container"
	"github.com/km-arc/go-yii/framework/log"
	"github.com/km-arc/go-yii/framework/profile"
	"github.com/km-arc/go-yii/framework/routing"
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider loads the application configuration from .env.
//
// Bound ids:
//   - "config"  → *config.Config (alias "configuration")
type ConfigServiceProvider struct {
	container.BaseProvider
	EnvFiles []string
}

func (p *ConfigServiceProvider) Register(app *container.Container) {
	envFiles := p.EnvFiles
	app.Singleton("config", func(c *container.Container) any {
		return config.Load(envFiles...)
	})
	app.Alias("config", "configuration")
}

// ── AliasServiceProvider ──────────────────────────────────────────────────────

// AliasServiceProvider builds the alias registry.
//
// Bound ids:
//   - "aliases" → *alias.Registry
//
// The registry starts with @app, @runtime, @vendor, @webroot and @web from
// config.Paths, followed by the entries of config.AliasesFile.
type AliasServiceProvider struct {
	container.BaseProvider
}

func (p *AliasServiceProvider) Register(app *container.Container) {
	app.Singleton("aliases", func(c *container.Container) any {
		cfg := container.Resolve[*config.Config](c, "config")
		r, err := NewAliasRegistry(cfg)
		if err != nil {
			panic(err.Error())
		}
		return r
	})
}

// NewAliasRegistry returns a registry seeded from cfg.
func NewAliasRegistry(cfg *config.Config) (*alias.Registry, error) {
	r := alias.New()
	err := r.SetMany([]alias.Definition{
		{Alias: "@app", Path: cfg.Paths.Base},
		{Alias: "@runtime", Path: cfg.Paths.Runtime},
		{Alias: "@vendor", Path: cfg.Paths.Vendor},
		{Alias: "@webroot", Path: cfg.Paths.WebRoot},
		{Alias: "@web", Path: cfg.Paths.Web},
	})
	if err != nil {
		return nil, fmt.Errorf("providers: default aliases: %w", err)
	}

	if cfg.AliasesFile == "" {
		return r, nil
	}
	defs, err := config.LoadAliases(cfg.AliasesFile)
	if err != nil {
		return nil, err
	}
	if err := r.SetMany(defs); err != nil {
		return nil, fmt.Errorf("providers: %s: %w", cfg.AliasesFile, err)
	}
	return r, nil
}

// ── LogServiceProvider ────────────────────────────────────────────────────────

// LogServiceProvider registers the application logger.
//
// Bound ids:
//   - "logger" → log.Logger (*log.ZapLogger)
//
// A logger that cannot be built from config.Log falls back to zap's no-op
// logger rather than failing the bootstrap.
type LogServiceProvider struct {
	container.BaseProvider
}

func (p *LogServiceProvider) Register(app *container.Container) {
	app.Singleton("logger", func(c *container.Container) any {
		cfg := container.Resolve[*config.Config](c, "config")
		z, err := log.New(cfg.Log)
		if err != nil {
			z = zap.NewNop()
		}
		return log.NewZapLogger(z.With(zap.String("app", cfg.App.Name)))
	})
}

// ── ProfileServiceProvider ────────────────────────────────────────────────────

// ProfileServiceProvider registers the profiler lazily.
//
// Bound ids:
//   - "profiler" → profile.Profiler (*profile.Recorder)
//
// Recording is on only when APP_DEBUG is set. Completed blocks are flushed
// to "logger" after every request served by "router" and when
// Application.Run shuts down.
type ProfileServiceProvider struct {
	container.BaseProvider
}

func (p *ProfileServiceProvider) IsDeferred() bool   { return true }
func (p *ProfileServiceProvider) Provides() []string { return []string{"profiler"} }

func (p *ProfileServiceProvider) Register(app *container.Container) {
	app.Singleton("profiler", func(c *container.Container) any {
		cfg := container.Resolve[*config.Config](c, "config")
		var opts []profile.Option
		if l, ok := container.TryResolve[log.Logger](c, "logger"); ok {
			opts = append(opts, profile.WithLogger(l))
		}
		r := profile.NewRecorder(opts...)
		r.SetEnabled(cfg.App.Debug)
		return r
	})
}

// ── RoutingServiceProvider ────────────────────────────────────────────────────

// ResolvedProfiler returns the "profiler" service if something has already
// resolved it, and nil otherwise. It never loads the deferred provider.
func ResolvedProfiler(c *container.Container) profile.Profiler {
	if !c.Resolved("profiler") {
		return nil
	}
	p, _ := container.TryResolve[profile.Profiler](c, "profiler")
	return p
}

// RoutingServiceProvider registers the HTTP router.
//
// Bound ids:
//   - "router" → *routing.Router
//
// Each request ends by flushing the profiler, when one is in use.
type RoutingServiceProvider struct {
	container.BaseProvider
}

func (p *RoutingServiceProvider) Register(app *container.Container) {
	app.Singleton("router", func(c *container.Container) any {
		opts := []routing.Option{
			routing.WithResolver(container.Resolve[*alias.Registry](c, "aliases")),
		}
		if l, ok := container.TryResolve[log.Logger](c, "logger"); ok {
			opts = append(opts, routing.WithLogger(l))
		}
		opts = append(opts, routing.WithMiddleware(profile.Middleware(func() profile.Profiler {
			return ResolvedProfiler(c)
		})))
		return routing.New(opts...)
	})
}
