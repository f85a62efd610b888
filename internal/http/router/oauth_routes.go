package router

import (
	"github.com/go-chi/chi/v5"

	mw "github.com/dropDatabas3/grantbridge/internal/http/middlewares"
)

// registerOAuthRoutes registra /oauth2/authorize y /oauth2/token.
func registerOAuthRoutes(r chi.Router, d Deps) {
	if d.OAuth == nil {
		return
	}
	c := d.OAuth

	r.Group(func(r chi.Router) {
		r.Use(mw.WithSecurityHeaders())
		// GET|POST /oauth2/authorize - redirect al client con el code
		r.Get("/oauth2/authorize", c.Authorize.Authorize)
		r.Post("/oauth2/authorize", c.Authorize.Authorize)
	})

	r.Group(func(r chi.Router) {
		r.Use(
			mw.WithSecurityHeaders(),
			mw.WithNoStore(),
			mw.WithRateLimit(d.RateLimiter, mw.IPPathRateKey),
		)
		// POST /oauth2/token - canje del code
		r.Post("/oauth2/token", c.Token.Token)
	})
}
