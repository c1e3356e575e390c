// Package container provides the service container and service providers
// behind go-yii's Application.
//
// # Container Lifecycle
//
//  1. Create: c := container.New()
//  2. Register providers: registry.Register(&MyProvider{})
//  3. Boot: registry.Boot()        — safe to resolve everything after this
//
// # Bindings
//
//	// Transient — new value every Get
//	c.Bind("singer", func(c *container.Container) any { return &Singer{} })
//
//	// Singleton — built once, reused
//	c.Singleton("logger", func(c *container.Container) any {
//	    return log.NewZapLogger(zap.NewNop())
//	})
//
//	// Pre-built value; Set is the same call
//	c.Instance("config", cfg)
//	c.Set("logger", testLogger)
//
//	// By type, for callable injection
//	container.BindType(c, func(c *container.Container) *Singer { return &Singer{} })
//
// # Resolving
//
//	v, err := c.Get("logger")                       // ErrNotFound if missing
//	v := c.Make("logger")                           // panics if missing
//	cfg := container.Resolve[*config.Config](c, "config")
//
// # Creating objects
//
//	obj, err := c.CreateObject(container.Definition{
//	    "__class":   "singer",
//	    "firstName": "John",
//	})
//
//	ok, err := c.CreateObject(func(s *Singer, a string) bool {
//	    return a == "a"                              // s injected by type
//	}, "a")
//
// Configurations CreateObject cannot use fail with *InvalidConfigError.
//
// # Service Providers
//
//	type AppServiceProvider struct{ container.BaseProvider }
//
//	func (p *AppServiceProvider) Register(app *container.Container) {
//	    app.Singleton("mailer", func(c *container.Container) any { ... })
//	}
//
//	registry := container.NewProviderRegistry(c)
//	registry.Register(&AppServiceProvider{})
//	registry.Boot()
//
// A provider whose IsDeferred returns true is only registered when one of the
// ids from Provides is first resolved.
package container
