// Package health contiene el readiness check.
package health

import (
	"context"
	"time"
)

// Pinger es cualquier dependencia que sepa responder un ping.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps contiene las dependencias del health service.
type Deps struct {
	Store   Pinger
	Timeout time.Duration
}

// Services agrupa todos los services del dominio health.
type Services struct {
	Health HealthService
}

func NewServices(d Deps) Services {
	return Services{Health: NewHealthService(d)}
}

// Result es el estado de cada componente.
type Result struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
}

// HealthService verifica que el servicio pueda atender requests.
type HealthService interface {
	Ready(ctx context.Context) (Result, bool)
}

type healthService struct {
	deps Deps
}

func NewHealthService(d Deps) HealthService {
	if d.Timeout <= 0 {
		d.Timeout = 2 * time.Second
	}
	return &healthService{deps: d}
}

func (s *healthService) Ready(ctx context.Context) (Result, bool) {
	res := Result{Status: "ok", Components: map[string]string{}}
	if s.deps.Store == nil {
		res.Status = "degraded"
		res.Components["store"] = "not configured"
		return res, false
	}

	ctx, cancel := context.WithTimeout(ctx, s.deps.Timeout)
	defer cancel()
	if err := s.deps.Store.Ping(ctx); err != nil {
		res.Status = "degraded"
		res.Components["store"] = err.Error()
		return res, false
	}
	res.Components["store"] = "ok"
	return res, true
}
