// Package router arma el árbol de rutas HTTP del servicio.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	healthctrl "github.com/dropDatabas3/grantbridge/internal/http/controllers/health"
	oauthctrl "github.com/dropDatabas3/grantbridge/internal/http/controllers/oauth"
	httperrors "github.com/dropDatabas3/grantbridge/internal/http/errors"
	mw "github.com/dropDatabas3/grantbridge/internal/http/middlewares"
	"github.com/dropDatabas3/grantbridge/internal/metrics"
	"github.com/dropDatabas3/grantbridge/internal/rate"
)

// Deps contiene todo lo que el router necesita.
type Deps struct {
	OAuth       *oauthctrl.Controllers
	Health      *healthctrl.Controllers
	Metrics     *metrics.Metrics
	MetricsPath string
	// RateLimiter es opcional; nil desactiva el rate limiting del token endpoint.
	RateLimiter rate.Limiter
}

// New construye el handler raíz.
//
// Orden de middlewares globales: recover -> request id -> logging -> métricas.
func New(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		mw.WithRecover(),
		mw.WithRequestID(),
		mw.WithLogging(),
		d.Metrics.Middleware,
	)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.New(http.StatusNotFound, "not_found", "Recurso no encontrado."))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	registerOAuthRoutes(r, d)
	registerHealthRoutes(r, d)
	return r
}
