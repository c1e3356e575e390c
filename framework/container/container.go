package container

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

// ErrNotFound is returned by Get when nothing is registered under an id.
var ErrNotFound = errors.New("container: not found")

// ── Binding types ─────────────────────────────────────────────────────────────

// Factory is a function that builds a concrete value from the container.
type Factory func(c *Container) any

// binding holds a registered factory and whether it is a singleton.
// A deferred binding stands in for a provider that has not registered yet.
type binding struct {
	factory   Factory
	singleton bool
	deferred  bool
}

// ── Container ─────────────────────────────────────────────────────────────────

// Container is the service container behind Application.
//
// It supports:
//   - Bind / Singleton / Instance (Set) / Alias
//   - Get / Make / Resolve (generic)
//   - CreateObject from ids, "__class" definitions and callables
//   - Rebound and resolved callbacks
type Container struct {
	mu sync.RWMutex

	// id → binding
	bindings map[string]*binding

	// id → resolved singleton instance
	instances map[string]any

	// alias → id (canonical key)
	aliases map[string]string

	// rebound callbacks: id → []func(any)
	reboundCallbacks map[string][]func(any)

	// resolved callbacks: []func(id, instance)
	afterResolving []func(string, any)
}

// New creates an empty container.
func New() *Container {
	c := &Container{
		bindings:         make(map[string]*binding),
		instances:        make(map[string]any),
		aliases:          make(map[string]string),
		reboundCallbacks: make(map[string][]func(any)),
	}
	c.Instance("container", c)
	return c
}

// ── Registration ──────────────────────────────────────────────────────────────

// Bind registers a transient factory: every Get builds a new value.
//
//	c.Bind("singer", func(c *container.Container) any { return &Singer{} })
func (c *Container) Bind(id string, factory Factory) {
	c.register(id, factory, false)
}

// Singleton registers a factory whose result is cached after first resolution.
//
//	c.Singleton("logger", func(c *container.Container) any {
//	    return log.NewZapLogger(zap.NewNop())
//	})
func (c *Container) Singleton(id string, factory Factory) {
	c.register(id, factory, true)
}

// Instance registers a pre-built value as a singleton.
//
//	c.Instance("config", cfg)
func (c *Container) Instance(id string, instance any) {
	c.mu.Lock()
	key := c.canonical(id)
	delete(c.bindings, key)
	c.instances[key] = instance
	c.mu.Unlock()
	c.fireRebound(key, instance)
}

// Set is Instance under the name application code usually reaches for when
// swapping a service, e.g. a test double for "logger".
func (c *Container) Set(id string, instance any) { c.Instance(id, instance) }

func (c *Container) register(id string, factory Factory, singleton bool) {
	c.bindTo(id, &binding{factory: factory, singleton: singleton})
}

// bindDeferred installs a placeholder that loads the real binding on first use.
func (c *Container) bindDeferred(id string, factory Factory) {
	c.bindTo(id, &binding{factory: factory, deferred: true})
}

func (c *Container) bindTo(id string, b *binding) {
	c.mu.Lock()
	key := c.canonical(id)

	// Drop existing singleton instance so it's rebuilt with the new factory
	_, wasResolved := c.instances[key]
	delete(c.instances, key)
	c.bindings[key] = b
	c.mu.Unlock()

	if wasResolved && c.hasRebound(key) {
		if inst, err := c.Get(key); err == nil {
			c.fireRebound(key, inst)
		}
	}
}

// BindType binds factory under TypeKey of T, which is how CreateObject finds
// services for callable parameters.
//
//	container.BindType(c, func(c *container.Container) *Singer { return &Singer{} })
func BindType[T any](c *Container, factory func(c *Container) T) {
	c.Bind(TypeKey((*T)(nil)), func(c *Container) any { return factory(c) })
}

// Alias registers an alternative name for an id.
//
//	c.Alias("config", "configuration")
func (c *Container) Alias(id, alias string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id == alias {
		panic(fmt.Sprintf("container: [%s] is aliased to itself", id))
	}
	c.aliases[alias] = c.canonical(id)
}

// ── Resolution ────────────────────────────────────────────────────────────────

// Get resolves id, returning ErrNotFound when nothing is registered.
func (c *Container) Get(id string) (any, error) {
	c.mu.RLock()
	key := c.canonical(id)
	if inst, ok := c.instances[key]; ok {
		c.mu.RUnlock()
		return inst, nil
	}
	b, ok := c.bindings[key]
	c.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: [%s]", ErrNotFound, id)
	}

	instance := b.factory(c)
	if b.singleton {
		c.mu.Lock()
		// another goroutine may have won the race
		if existing, ok := c.instances[key]; ok {
			instance = existing
		} else {
			c.instances[key] = instance
		}
		c.mu.Unlock()
	}

	c.fireAfterResolving(key, instance)
	return instance, nil
}

// build runs the factory bound to id without reading or filling the
// singleton cache, so every call returns a value of its own. Ids that only
// hold a pre-built instance cannot be built.
func (c *Container) build(id string) (any, error) {
	for {
		c.mu.RLock()
		key := c.canonical(id)
		b, ok := c.bindings[key]
		_, shared := c.instances[key]
		c.mu.RUnlock()

		switch {
		case !ok && shared:
			return nil, invalidConfig("Cannot build [%s]: it is a shared instance without a factory", id)
		case !ok:
			return nil, fmt.Errorf("%w: [%s]", ErrNotFound, id)
		case b.deferred:
			// loads the provider, which replaces the placeholder
			b.factory(c)
			continue
		}

		instance := b.factory(c)
		c.fireAfterResolving(key, instance)
		return instance, nil
	}
}

// Make resolves id and panics when it is not registered. Meant for
// bootstrap code where a missing service is a programming error.
func (c *Container) Make(id string) any {
	instance, err := c.Get(id)
	if err != nil {
		panic(err.Error())
	}
	return instance
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// Has returns true if id has a binding or an instance.
func (c *Container) Has(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	key := c.canonical(id)
	_, hasBinding := c.bindings[key]
	_, hasInstance := c.instances[key]
	return hasBinding || hasInstance
}

// Resolved returns true if id has been resolved as a singleton or instance.
func (c *Container) Resolved(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.instances[c.canonical(id)]
	return ok
}

// Forget removes all registrations for id (binding + instance).
func (c *Container) Forget(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := c.canonical(id)
	delete(c.bindings, key)
	delete(c.instances, key)
}

// Flush resets the entire container.
func (c *Container) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bindings = make(map[string]*binding)
	c.instances = make(map[string]any)
	c.aliases = make(map[string]string)
}

// Bindings returns every registered id (for debugging).
func (c *Container) Bindings() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.bindings)+len(c.instances))
	for k := range c.bindings {
		out = append(out, k)
	}
	for k := range c.instances {
		if _, already := c.bindings[k]; !already {
			out = append(out, k)
		}
	}
	return out
}

// canonical resolves an alias to its canonical key (caller holds mu).
func (c *Container) canonical(id string) string {
	if target, ok := c.aliases[id]; ok {
		return target
	}
	return id
}

// ── Callbacks ─────────────────────────────────────────────────────────────────

// Rebinding registers a callback fired whenever id is re-bound after it has
// been resolved, or replaced through Instance.
func (c *Container) Rebinding(id string, cb func(any)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := c.canonical(id)
	c.reboundCallbacks[key] = append(c.reboundCallbacks[key], cb)
}

// AfterResolving registers a callback fired after any id is built.
func (c *Container) AfterResolving(cb func(id string, instance any)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.afterResolving = append(c.afterResolving, cb)
}

func (c *Container) hasRebound(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.reboundCallbacks[key]) > 0
}

func (c *Container) fireRebound(key string, instance any) {
	c.mu.RLock()
	cbs := c.reboundCallbacks[key]
	c.mu.RUnlock()
	for _, cb := range cbs {
		cb(instance)
	}
}

func (c *Container) fireAfterResolving(key string, instance any) {
	c.mu.RLock()
	cbs := c.afterResolving
	c.mu.RUnlock()
	for _, cb := range cbs {
		cb(key, instance)
	}
}

// ── Reflect helpers ───────────────────────────────────────────────────────────

// TypeKey returns the package-qualified type name of v, used as the id for
// type-based lookups. Pointers are unwrapped.
//
//	key := container.TypeKey((*Singer)(nil))  // "example.com/app.Singer"
func TypeKey(v any) string {
	return typeKey(reflect.TypeOf(v))
}

func typeKey(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.PkgPath() + "." + t.Name()
}

// ── Generics helper ───────────────────────────────────────────────────────────

// Resolve calls Make and type-asserts the result.
//
//	cfg := container.Resolve[*config.Config](c, "config")
func Resolve[T any](c *Container, id string) T {
	instance := c.Make(id)
	typed, ok := instance.(T)
	if !ok {
		panic(fmt.Sprintf("container: Resolve[%T]: [%s] resolved to %T", *new(T), id, instance))
	}
	return typed
}

// TryResolve is like Resolve but reports failure instead of panicking.
func TryResolve[T any](c *Container, id string) (T, bool) {
	instance, err := c.Get(id)
	if err != nil {
		var zero T
		return zero, false
	}
	typed, ok := instance.(T)
	return typed, ok
}
