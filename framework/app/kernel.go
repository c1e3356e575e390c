package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/km-arc/go-yii/framework/alias"
	"github.com/km-arc/go-yii/framework/config"
	"github.com/km-arc/go-yii/framework/container"
	"github.com/km-arc/go-yii/framework/log"
	"github.com/km-arc/go-yii/framework/profile"
	"github.com/km-arc/go-yii/framework/providers"
	"github.com/km-arc/go-yii/framework/routing"
)

// Version is the framework version reported by Application.Version.
const Version = "3.0.0-dev"

// Application is the top-level application container. It embeds the service
// container and provider registry, and carries the convenience methods that
// other frameworks expose as static helpers: aliases, object creation,
// logging and profiling.
type Application struct {
	*container.Container
	Providers *container.ProviderRegistry
}

// New creates the application and registers the framework providers.
func New(envFiles ...string) *Application {
	c := container.New()
	registry := container.NewProviderRegistry(c)

	app := &Application{
		Container: c,
		Providers: registry,
	}
	c.Instance("app", app)

	registry.Register(&providers.ConfigServiceProvider{EnvFiles: envFiles})
	registry.Register(&providers.AliasServiceProvider{})
	registry.Register(&providers.LogServiceProvider{})
	registry.Register(&providers.ProfileServiceProvider{})
	registry.Register(&providers.RoutingServiceProvider{})

	return app
}

// Register adds a ServiceProvider to the application.
func (a *Application) Register(provider container.ServiceProvider) {
	a.Providers.Register(provider)
}

// Boot runs the Boot() phase on all providers.
func (a *Application) Boot() {
	a.Providers.Boot()
}

// ── Services ─────────────────────────────────────────────────────────────────

// Config resolves *config.Config from the container.
func (a *Application) Config() *config.Config {
	return container.Resolve[*config.Config](a.Container, "config")
}

// Aliases resolves the alias registry.
func (a *Application) Aliases() *alias.Registry {
	return container.Resolve[*alias.Registry](a.Container, "aliases")
}

// Router resolves *routing.Router from the container.
func (a *Application) Router() *routing.Router {
	return container.Resolve[*routing.Router](a.Container, "router")
}

// Logger resolves the "logger" service.
func (a *Application) Logger() log.Logger {
	return container.Resolve[log.Logger](a.Container, "logger")
}

// Profiler resolves the "profiler" service.
func (a *Application) Profiler() profile.Profiler {
	return container.Resolve[profile.Profiler](a.Container, "profiler")
}

// ── Aliases ──────────────────────────────────────────────────────────────────

// SetAlias defines a path alias. See alias.Registry.Set.
func (a *Application) SetAlias(name, path string) error {
	return a.Aliases().Set(name, path)
}

// RemoveAlias removes a path alias. See alias.Registry.Remove.
func (a *Application) RemoveAlias(name string) {
	a.Aliases().Remove(name)
}

// GetAlias translates a path alias into a path. Unknown aliases fail with
// *alias.InvalidAliasError.
func (a *Application) GetAlias(name string) (string, error) {
	return a.Aliases().Get(name)
}

// LookupAlias is GetAlias reporting failure as ok == false.
func (a *Application) LookupAlias(name string) (string, bool) {
	return a.Aliases().Lookup(name)
}

// GetRootAlias returns the registered alias that name resolves through.
func (a *Application) GetRootAlias(name string) (string, error) {
	return a.Aliases().Root(name)
}

// ── Objects ──────────────────────────────────────────────────────────────────

// CreateObject builds an object through the container.
// See container.Container.CreateObject.
func (a *Application) CreateObject(cfg any, params ...any) (any, error) {
	return a.Container.CreateObject(cfg, params...)
}

// ── Logging ──────────────────────────────────────────────────────────────────

// Info logs message at info level. category defaults to "application".
func (a *Application) Info(message any, category ...string) {
	a.log(log.LevelInfo, message, category)
}

// Warning logs message at warning level.
func (a *Application) Warning(message any, category ...string) {
	a.log(log.LevelWarning, message, category)
}

// Debug logs message at debug level.
func (a *Application) Debug(message any, category ...string) {
	a.log(log.LevelDebug, message, category)
}

// Error logs message, which may be an error value, at error level.
func (a *Application) Error(message any, category ...string) {
	a.log(log.LevelError, message, category)
}

func (a *Application) log(level log.Level, message any, category []string) {
	a.Logger().Log(level, message, map[string]any{"category": first(category, log.DefaultCategory)})
}

// ── Profiling ────────────────────────────────────────────────────────────────

// BeginProfile marks the start of a profiled block.
//
//	app.BeginProfile("render", "view")
//	defer app.EndProfile("render", "view")
func (a *Application) BeginProfile(token string, category ...string) {
	a.Profiler().Begin(token, map[string]any{"category": first(category, log.DefaultCategory)})
}

// EndProfile marks the end of a block started with the same token and
// category.
func (a *Application) EndProfile(token string, category ...string) error {
	return a.Profiler().End(token, map[string]any{"category": first(category, log.DefaultCategory)})
}

// FlushProfile sends completed profile blocks to the logger. It does nothing
// when the profiler was never used or does not buffer.
func (a *Application) FlushProfile() {
	if f, ok := providers.ResolvedProfiler(a.Container).(profile.Flusher); ok {
		f.Flush()
	}
}

// ── Environment ──────────────────────────────────────────────────────────────

// Environment returns APP_ENV value.
func (a *Application) Environment() string { return a.Config().App.Env }
func (a *Application) IsLocal() bool       { return a.Environment() == "local" }
func (a *Application) IsProduction() bool  { return a.Environment() == "production" }
func (a *Application) IsTesting() bool     { return a.Environment() == "testing" }
func (a *Application) IsDebug() bool       { return a.Config().App.Debug }
func (a *Application) Version() string     { return Version }

// ── Serving ──────────────────────────────────────────────────────────────────

// Run boots the application (if needed) and serves the router on APP_PORT
// until ctx is cancelled.
func (a *Application) Run(ctx context.Context) error {
	if !a.Providers.Booted() {
		a.Boot()
	}
	cfg := a.Config()
	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	a.Info(fmt.Sprintf("%s listening on %s [%s]", cfg.App.Name, srv.Addr, cfg.App.Env), "app")

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		a.FlushProfile()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("app: serving: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		a.FlushProfile()
		return err
	}
}

func first(values []string, fallback string) string {
	if len(values) > 0 && values[0] != "" {
		return values[0]
	}
	return fallback
}
