package middleware

import "net/http"

// MaxBodySize returns a middleware that caps the readable request body
// at limit bytes. Oversized bodies fail in the handler's JSON decode
// with a 400 rather than exhausting memory.
func MaxBodySize(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
