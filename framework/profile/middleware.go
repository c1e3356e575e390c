package profile

import "net/http"

// Flusher is implemented by profilers that buffer completed blocks.
type Flusher interface {
	Flush()
}

// Middleware flushes completed blocks once each request has been handled.
// current is asked for the profiler after the handler returns; a nil
// result, or a profiler that does not buffer, is skipped.
func Middleware(current func() Profiler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)
			if f, ok := current().(Flusher); ok {
				f.Flush()
			}
		})
	}
}
