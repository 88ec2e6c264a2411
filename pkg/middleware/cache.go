package middleware

import "net/http"

// CacheControl returns a middleware that sets the Cache-Control header to the
// given directive, e.g. "no-store" for endpoints whose output changes on every
// call.
func CacheControl(directive string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", directive)
			next.ServeHTTP(w, r)
		})
	}
}
