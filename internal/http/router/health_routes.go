package router

import "github.com/go-chi/chi/v5"

func registerHealthRoutes(r chi.Router, d Deps) {
	if d.Health != nil {
		r.Get("/readyz", d.Health.Health.Readyz)
	}
	if d.Metrics != nil {
		path := d.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, d.Metrics.Handler())
	}
}
