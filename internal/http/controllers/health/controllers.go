// Package health expone /readyz.
package health

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/dropDatabas3/grantbridge/internal/observability/logger"

	svc "github.com/dropDatabas3/grantbridge/internal/http/services/health"
)

// Controllers agrupa todos los controllers del dominio health.
type Controllers struct {
	Health *HealthController
}

func NewControllers(s svc.Services) *Controllers {
	return &Controllers{Health: NewHealthController(s.Health)}
}

type HealthController struct {
	service svc.HealthService
}

func NewHealthController(s svc.HealthService) *HealthController {
	return &HealthController{service: s}
}

// Readyz responde 200 si el store responde, 503 si no.
func (c *HealthController) Readyz(w http.ResponseWriter, r *http.Request) {
	res, ok := c.service.Ready(r.Context())
	status := http.StatusOK
	if !ok {
		status = http.StatusServiceUnavailable
		logger.From(r.Context()).Warn("readiness check failed", zap.Any("components", res.Components))
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(res)
}
