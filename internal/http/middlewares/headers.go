package middlewares

import "net/http"

// WithNoStore marca la respuesta como no cacheable. Se aplica al token
// endpoint: un access token nunca debe quedar en caches intermedios.
func WithNoStore() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Cache-Control", "no-store, no-cache, private, must-revalidate, max-age=0")
			h.Set("Pragma", "no-cache")
			h.Set("Expires", "Thu, 01 Jan 1970 00:00:00 GMT")
			next.ServeHTTP(w, r)
		})
	}
}

// WithSecurityHeaders agrega headers defensivos básicos. Ninguna respuesta
// del servicio es HTML, así que la CSP es la más cerrada posible.
func WithSecurityHeaders() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Referrer-Policy", "no-referrer")
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
			next.ServeHTTP(w, r)
		})
	}
}
