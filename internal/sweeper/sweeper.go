// Package sweeper elimina authorization codes vencidos que nunca se canjearon.
package sweeper

import (
	"context"
	"time"

	"github.com/dropDatabas3/grantbridge/internal/domain/repository"
	"github.com/dropDatabas3/grantbridge/internal/metrics"
	"github.com/dropDatabas3/grantbridge/internal/observability/logger"
)

// Sweeper barre la tabla de codes. Es seguro correrlo en paralelo con
// emisión y canje: el borrado es un único DELETE condicionado por expiración.
type Sweeper struct {
	codes    repository.AuthCodeRepository
	interval time.Duration
	metrics  *metrics.Metrics
	now      func() time.Time
}

func New(codes repository.AuthCodeRepository, interval time.Duration, m *metrics.Metrics) *Sweeper {
	return &Sweeper{codes: codes, interval: interval, metrics: m, now: time.Now}
}

// Sweep elimina los codes con expires_at < now y retorna cuántos borró.
func (s *Sweeper) Sweep(ctx context.Context, now time.Time) (int64, error) {
	n, err := s.codes.DeleteExpired(ctx, now)
	s.metrics.Swept(n, err)
	return n, err
}

// Run barre cada interval hasta que ctx se cancele. Un fallo se loguea y se
// reintenta en el próximo tick.
func (s *Sweeper) Run(ctx context.Context) error {
	log := logger.From(ctx).With(logger.Layer("job"), logger.Component("sweeper"))
	log.Info("sweeper started", logger.String("interval", s.interval.String()))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.sweepOnce(ctx)
		case <-ctx.Done():
			log.Info("sweeper stopped")
			return nil
		}
	}
}

func (s *Sweeper) sweepOnce(ctx context.Context) {
	log := logger.From(ctx).With(logger.Layer("job"), logger.Op("Sweep"))
	n, err := s.Sweep(ctx, s.now())
	if err != nil {
		log.Warn("sweep failed", logger.Err(err))
		return
	}
	if n > 0 {
		log.Debug("expired codes removed", logger.Count(n))
	}
}
