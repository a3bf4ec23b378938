// Package api implements the folio read API using chi.
package api

import "net/http"

// NoCache marks responses as revalidate-always. The catalog is re-read from
// disk on every request, so intermediaries must not serve stale listings;
// post lookups still answer conditional requests with 304 via their ETag.
func NoCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache")
		next.ServeHTTP(w, r)
	})
}
