package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dropDatabas3/grantbridge/internal/config"
	"github.com/dropDatabas3/grantbridge/internal/observability/logger"
)

const shutdownTimeout = 10 * time.Second

// ListenAndServe sirve handler hasta que ctx se cancele y luego hace un
// shutdown ordenado.
func ListenAndServe(ctx context.Context, cfg *config.Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.From(ctx).Info("http server listening", logger.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.From(ctx).Info("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
