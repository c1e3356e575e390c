package alias

import (
	"sort"
	"strings"
	"sync"
)

// Prefix marks a string as an alias.
const Prefix = "@"

// Entry is a single registered alias and the path it resolves to.
type Entry struct {
	Alias string `json:"alias"`
	Path  string `json:"path"`
}

// Definition is an alias to register. Path may itself be an alias.
type Definition struct {
	Alias string `yaml:"alias"`
	Path  string `yaml:"path"`
}

// Resolver is the read side of a Registry, accepted by code that only needs
// to turn aliases into paths (router, CLI).
type Resolver interface {
	Get(alias string) (string, error)
}

// ── Registry ──────────────────────────────────────────────────────────────────

// Registry maps @-prefixed aliases to paths.
//
// Entries are bucketed by root segment ("@yii" for "@yii/gii"); each bucket
// is kept sorted by key descending so the first prefix hit is the longest.
type Registry struct {
	mu    sync.RWMutex
	roots map[string][]Entry
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{roots: make(map[string][]Entry)}
}

// Set defines alias as path.
//
//	r.Set("@yii", "/yii/framework")
//	r.Set("@tii", "@yii/test")      // stored as "/yii/framework/test"
//
// A missing leading "@" is added. Trailing slashes are stripped from
// literal paths; alias paths are resolved against the current entries
// before they are stored, so an alias may be redefined in terms of its old
// value:
//
//	r.Set("@a", "/root")
//	r.Set("@a", "@a/sub") // "@a" is now "/root/sub"
func (r *Registry) Set(alias, path string) error {
	alias = normalize(alias)

	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.HasPrefix(path, Prefix) {
		resolved, ok := r.resolve(path)
		if !ok {
			return &InvalidAliasError{Alias: path}
		}
		path = resolved
	} else {
		path = strings.TrimRight(path, `/\`)
	}

	root := rootOf(alias)
	entries := r.roots[root]
	for i := range entries {
		if entries[i].Alias == alias {
			entries[i].Path = path
			return nil
		}
	}
	entries = append(entries, Entry{Alias: alias, Path: path})
	sort.Slice(entries, func(i, j int) bool { return entries[i].Alias > entries[j].Alias })
	r.roots[root] = entries
	return nil
}

// SetMany applies defs in order, stopping at the first failure.
func (r *Registry) SetMany(defs []Definition) error {
	for _, d := range defs {
		if err := r.Set(d.Alias, d.Path); err != nil {
			return err
		}
	}
	return nil
}

// Remove deletes exactly alias. Aliases nested below it that were defined on
// their own are kept. A root left without entries is dropped.
func (r *Registry) Remove(alias string) {
	alias = normalize(alias)

	r.mu.Lock()
	defer r.mu.Unlock()

	root := rootOf(alias)
	entries, ok := r.roots[root]
	if !ok {
		return
	}
	for i := range entries {
		if entries[i].Alias == alias {
			entries = append(entries[:i], entries[i+1:]...)
			break
		}
	}
	if len(entries) == 0 {
		delete(r.roots, root)
		return
	}
	r.roots[root] = entries
}

// Get translates alias into a path. Strings that do not start with "@" are
// returned unchanged.
//
//	r.Get("@yii/test/file") // "/yii/framework/test/file"
func (r *Registry) Get(alias string) (string, error) {
	if p, ok := r.Lookup(alias); ok {
		return p, nil
	}
	return "", &InvalidAliasError{Alias: alias}
}

// Lookup is Get without the error: ok is false when nothing matches.
func (r *Registry) Lookup(alias string) (string, bool) {
	if !strings.HasPrefix(alias, Prefix) {
		return alias, true
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.resolve(alias)
}

// Root returns the registered alias that Get would use for alias, without
// substituting its path.
//
//	r.Root("@yii/test/file") // "@yii"
func (r *Registry) Root(alias string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if key, ok := r.root(alias); ok {
		return key, nil
	}
	return "", &InvalidAliasError{Alias: alias}
}

// Has reports whether alias resolves.
func (r *Registry) Has(alias string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.root(alias)
	return ok
}

// All returns a snapshot of every entry: roots ascending, and within a root
// the longest key first.
func (r *Registry) All() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	roots := make([]string, 0, len(r.roots))
	for root := range r.roots {
		roots = append(roots, root)
	}
	sort.Strings(roots)

	var out []Entry
	for _, root := range roots {
		out = append(out, r.roots[root]...)
	}
	return out
}

// ── helpers (callers hold mu) ─────────────────────────────────────────────────

func (r *Registry) resolve(alias string) (string, bool) {
	e, ok := r.match(alias)
	if !ok {
		return "", false
	}
	return e.Path + alias[len(e.Alias):], true
}

func (r *Registry) root(alias string) (string, bool) {
	e, ok := r.match(alias)
	return e.Alias, ok
}

func (r *Registry) match(alias string) (Entry, bool) {
	probe := alias + "/"
	for _, e := range r.roots[rootOf(alias)] {
		if strings.HasPrefix(probe, e.Alias+"/") {
			return e, true
		}
	}
	return Entry{}, false
}

func rootOf(alias string) string {
	if i := strings.IndexByte(alias, '/'); i >= 0 {
		return alias[:i]
	}
	return alias
}

func normalize(alias string) string {
	if strings.HasPrefix(alias, Prefix) {
		return alias
	}
	return Prefix + alias
}
