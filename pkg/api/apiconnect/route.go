// Package apiconnect mounts the pricediary.v1 services on Connect handlers
// and provides matching clients.
package apiconnect

import "net/http"

// route dispatches a service's requests by procedure path.
func route(handlers map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		h.ServeHTTP(w, r)
	})
}
