package routing

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/km-arc/go-yii/framework/alias"
	"github.com/km-arc/go-yii/framework/log"
)

// Router wraps chi.Router and resolves path aliases for static mounts.
type Router struct {
	mux      chi.Router
	resolver alias.Resolver
}

// Option configures New.
type Option func(*options)

type options struct {
	resolver   alias.Resolver
	logger     log.Logger
	middleware []func(http.Handler) http.Handler
}

// WithResolver lets Static accept aliases such as "@webroot/assets".
func WithResolver(r alias.Resolver) Option {
	return func(o *options) { o.resolver = r }
}

// WithMiddleware adds mw to every route. chi only accepts middleware before
// the first route, so services that need a per-request hook pass it here.
func WithMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return func(o *options) { o.middleware = append(o.middleware, mw...) }
}

// WithLogger adds request logging through l.
func WithLogger(l log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New creates a Router with RequestID, RealIP and Recoverer, plus request
// logging when a logger is given and any WithMiddleware handlers.
func New(opts ...Option) *Router {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if o.logger != nil {
		r.Use(log.Middleware(o.logger))
	}
	if len(o.middleware) > 0 {
		r.Use(o.middleware...)
	}
	r.Use(middleware.Recoverer)
	return &Router{mux: r, resolver: o.resolver}
}

// ── HTTP verbs ───────────────────────────────────────────────────────────────

func (r *Router) Get(pattern string, h http.HandlerFunc)    { r.mux.Get(pattern, h) }
func (r *Router) Post(pattern string, h http.HandlerFunc)   { r.mux.Post(pattern, h) }
func (r *Router) Put(pattern string, h http.HandlerFunc)    { r.mux.Put(pattern, h) }
func (r *Router) Patch(pattern string, h http.HandlerFunc)  { r.mux.Patch(pattern, h) }
func (r *Router) Delete(pattern string, h http.HandlerFunc) { r.mux.Delete(pattern, h) }

// ── Groups & Prefixes ────────────────────────────────────────────────────────

// Group creates an inline group sharing middleware.
func (r *Router) Group(fn func(r *Router)) {
	r.mux.Group(func(mx chi.Router) {
		fn(&Router{mux: mx, resolver: r.resolver})
	})
}

// Prefix creates a sub-router mounted under pattern.
func (r *Router) Prefix(pattern string, fn func(r *Router)) {
	r.mux.Route(pattern, func(mx chi.Router) {
		fn(&Router{mux: mx, resolver: r.resolver})
	})
}

// Middleware adds one or more middleware to the router.
func (r *Router) Middleware(mw ...func(http.Handler) http.Handler) {
	r.mux.Use(mw...)
}

// ── Static files ─────────────────────────────────────────────────────────────

// Static serves a directory at prefix. dir may be an alias.
//
//	router.Static("/assets", "@webroot/assets")
func (r *Router) Static(prefix, dir string) error {
	if strings.HasPrefix(dir, alias.Prefix) {
		if r.resolver == nil {
			return fmt.Errorf("routing: static %s: no alias resolver for %s", prefix, dir)
		}
		resolved, err := r.resolver.Get(dir)
		if err != nil {
			return fmt.Errorf("routing: static %s: %w", prefix, err)
		}
		dir = resolved
	}

	prefix = strings.TrimRight(prefix, "/")
	fs := http.StripPrefix(prefix, http.FileServer(http.Dir(dir)))
	r.mux.Get(prefix+"/*", fs.ServeHTTP)
	return nil
}

// ── Params ───────────────────────────────────────────────────────────────────

// Param extracts a URL param.
func Param(r *http.Request, key string) string {
	return chi.URLParam(r, key)
}

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Handler returns the underlying http.Handler.
func (r *Router) Handler() http.Handler {
	return r.mux
}
