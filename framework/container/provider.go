package container

import "sync"

// ── ServiceProvider interface ─────────────────────────────────────────────────

// ServiceProvider groups the bindings of one framework service.
//
// Register is called when the provider is added (or, for deferred providers,
// when one of its ids is first resolved). Boot runs after every eager
// provider has been registered, so it may resolve other services.
//
//	type LogServiceProvider struct{ container.BaseProvider }
//
//	func (p *LogServiceProvider) Register(app *container.Container) {
//	    app.Singleton("logger", func(c *container.Container) any { ... })
//	}
type ServiceProvider interface {
	Register(app *Container)
	Boot(app *Container)

	// Provides lists the ids a deferred provider registers.
	Provides() []string

	// IsDeferred returns true if Register should wait until one of
	// Provides() is first resolved.
	IsDeferred() bool
}

// ── BaseProvider ──────────────────────────────────────────────────────────────

// BaseProvider is an embeddable no-op implementation of Boot, Provides and
// IsDeferred.
type BaseProvider struct{}

func (p *BaseProvider) Boot(_ *Container)  {}
func (p *BaseProvider) Provides() []string { return nil }
func (p *BaseProvider) IsDeferred() bool   { return false }

// ── ProviderRegistry ──────────────────────────────────────────────────────────

// ProviderRegistry manages registration and booting of ServiceProviders,
// including deferred (lazy) providers.
type ProviderRegistry struct {
	app *Container

	mu         sync.Mutex
	eager      []ServiceProvider
	loads      map[ServiceProvider]*sync.Once
	registered map[ServiceProvider]bool
	booted     bool
}

// NewProviderRegistry creates a registry bound to app.
func NewProviderRegistry(app *Container) *ProviderRegistry {
	return &ProviderRegistry{
		app:        app,
		loads:      make(map[ServiceProvider]*sync.Once),
		registered: make(map[ServiceProvider]bool),
	}
}

// Register adds a provider and calls its Register() method (unless deferred).
// Adding the same provider twice is a no-op.
func (r *ProviderRegistry) Register(provider ServiceProvider) {
	r.mu.Lock()
	if r.registered[provider] {
		r.mu.Unlock()
		return
	}
	r.registered[provider] = true
	booted := r.booted
	if !provider.IsDeferred() {
		r.eager = append(r.eager, provider)
	}
	r.mu.Unlock()

	if provider.IsDeferred() {
		r.interceptDeferred(provider)
		return
	}

	provider.Register(r.app)
	if booted {
		provider.Boot(r.app)
	}
}

// interceptDeferred binds a placeholder for each id the provider offers.
// The first Get of any of them registers (and, after Boot, boots) the
// provider, which replaces the placeholders with its real bindings.
func (r *ProviderRegistry) interceptDeferred(provider ServiceProvider) {
	for _, id := range provider.Provides() {
		id := id
		r.app.bindDeferred(id, func(c *Container) any {
			r.load(provider)
			return c.Make(id)
		})
	}
}

// load registers a deferred provider once. Concurrent callers wait until
// its real bindings are in place.
func (r *ProviderRegistry) load(provider ServiceProvider) {
	r.mu.Lock()
	once, ok := r.loads[provider]
	if !ok {
		once = new(sync.Once)
		r.loads[provider] = once
	}
	r.mu.Unlock()

	once.Do(func() {
		booted := r.Booted()
		provider.Register(r.app)
		if booted {
			provider.Boot(r.app)
		}
	})
}

// Boot calls Boot() on all eager providers. Later calls are no-ops.
func (r *ProviderRegistry) Boot() {
	r.mu.Lock()
	if r.booted {
		r.mu.Unlock()
		return
	}
	r.booted = true
	providers := append([]ServiceProvider(nil), r.eager...)
	r.mu.Unlock()

	for _, provider := range providers {
		provider.Boot(r.app)
	}
}

// Booted returns true if Boot() has been called.
func (r *ProviderRegistry) Booted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.booted
}

// Providers returns the eager providers in registration order.
func (r *ProviderRegistry) Providers() []ServiceProvider {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ServiceProvider(nil), r.eager...)
}
