package middlewares

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/dropDatabas3/grantbridge/internal/http/errors"
	"github.com/dropDatabas3/grantbridge/internal/observability/logger"
)

// WithRecover captura panics y devuelve un 500 en lugar de tirar el proceso.
func WithRecover() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					logger.From(r.Context()).Error("panic recovered",
						logger.Op("recover"),
						zap.Any("panic", rec),
						zap.Stack("stack"),
					)
					errors.WriteError(w, errors.ErrInternalServerError.WithDetail("panic recovered"))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
