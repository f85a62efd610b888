// Package metrics define los collectors Prometheus del servicio: HTTP y el
// ciclo de vida de los authorization codes.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Resultados de canje (label "result" de grant_code_exchanges_total).
const (
	ResultSuccess = "success"
	ResultExpired = "expired"
	ResultInvalid = "invalid"
	ResultError   = "error"
)

// Metrics agrupa los collectors. Un *Metrics nil es válido y no hace nada,
// así los servicios no necesitan chequear si hay métricas configuradas.
type Metrics struct {
	gatherer prometheus.Gatherer

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpInflight        prometheus.Gauge

	codesIssued   prometheus.Counter
	codeExchanges *prometheus.CounterVec
	codesSwept    prometheus.Counter
	sweepErrors   prometheus.Counter
}

// New crea y registra los collectors en reg. Si reg es nil usa un registry
// propio (útil en tests).
func New(reg *prometheus.Registry) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		gatherer: reg,
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Número total de requests procesadas",
		}, []string{"method", "route", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latencia de los requests HTTP",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		httpInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Requests en vuelo",
		}),
		codesIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "grant_codes_issued_total",
			Help: "Authorization codes emitidos",
		}),
		codeExchanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "grant_code_exchanges_total",
			Help: "Canjes de authorization code por resultado",
		}, []string{"result"}),
		codesSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "grant_codes_swept_total",
			Help: "Codes vencidos eliminados por el sweeper",
		}),
		sweepErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "grant_sweep_errors_total",
			Help: "Barridas fallidas",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.httpRequestsTotal, m.httpRequestDuration, m.httpInflight,
		m.codesIssued, m.codeExchanges, m.codesSwept, m.sweepErrors,
	} {
		if err := registerCollector(reg, c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// registerCollector registra el collector ignorando duplicados.
func registerCollector(reg prometheus.Registerer, collector prometheus.Collector) error {
	if err := reg.Register(collector); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return nil
		}
		return err
	}
	return nil
}

// Handler expone /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) CodeIssued() {
	if m != nil {
		m.codesIssued.Inc()
	}
}

func (m *Metrics) CodeExchange(result string) {
	if m != nil {
		m.codeExchanges.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) Swept(n int64, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.sweepErrors.Inc()
		return
	}
	m.codesSwept.Add(float64(n))
}

// Middleware instrumenta requests HTTP. El label "route" es el patrón de chi
// (no el path crudo) para no explotar la cardinalidad.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method := strings.ToUpper(r.Method)
		m.httpInflight.Inc()
		start := time.Now()

		rec := &statusRecorder{ResponseWriter: w}
		defer func() {
			m.httpInflight.Dec()
			route := "unmatched"
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				route = rc.RoutePattern()
			}
			status := rec.status
			if status == 0 {
				status = http.StatusOK
			}
			m.httpRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		}()

		next.ServeHTTP(rec, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}
