// Package server arma el grafo de dependencias del servicio a partir de
// config.Config y expone el http.Handler resultante.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	rdb "github.com/redis/go-redis/v9"

	"github.com/dropDatabas3/grantbridge/internal/config"
	"github.com/dropDatabas3/grantbridge/internal/metrics"
	"github.com/dropDatabas3/grantbridge/internal/observability/logger"
	"github.com/dropDatabas3/grantbridge/internal/rate"
	"github.com/dropDatabas3/grantbridge/internal/registry"
	"github.com/dropDatabas3/grantbridge/internal/security/password"
	"github.com/dropDatabas3/grantbridge/internal/session"
	"github.com/dropDatabas3/grantbridge/internal/store"
	"github.com/dropDatabas3/grantbridge/internal/sweeper"
	"github.com/dropDatabas3/grantbridge/internal/webservice"
	"github.com/dropDatabas3/grantbridge/migrations"

	healthctrl "github.com/dropDatabas3/grantbridge/internal/http/controllers/health"
	oauthctrl "github.com/dropDatabas3/grantbridge/internal/http/controllers/oauth"
	"github.com/dropDatabas3/grantbridge/internal/http/router"
	healthsvc "github.com/dropDatabas3/grantbridge/internal/http/services/health"
	oauthsvc "github.com/dropDatabas3/grantbridge/internal/http/services/oauth"

	_ "github.com/dropDatabas3/grantbridge/internal/store/adapters/pg"
	_ "github.com/dropDatabas3/grantbridge/internal/store/adapters/sqlite"
)

// App es el servicio armado. Close libera store y clientes externos.
type App struct {
	Handler  http.Handler
	Store    store.Connection
	Registry *registry.Registry
	Sessions *session.Manager
	Sweeper  *sweeper.Sweeper
	Metrics  *metrics.Metrics

	closers []func() error
}

// OpenStore conecta el driver configurado y aplica las migraciones pendientes.
func OpenStore(ctx context.Context, cfg *config.Config) (store.Connection, error) {
	conn, err := store.Open(ctx, store.AdapterConfig{
		Name:         cfg.Storage.Driver,
		DSN:          cfg.Storage.DSN,
		MaxOpenConns: cfg.Storage.MaxOpenConns,
		MaxIdleConns: cfg.Storage.MaxIdleConns,
	})
	if err != nil {
		return nil, err
	}

	res, err := store.NewMigrator(migrations.FS, migrations.Dir(conn.Name())).Run(ctx, conn.Migrations())
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	if len(res.Applied) > 0 {
		logger.From(ctx).Info("migrations applied",
			logger.String("driver", conn.Name()),
			logger.Int("count", len(res.Applied)),
			logger.Duration(res.Duration),
		)
	}
	return conn, nil
}

// NewRegistry crea el registry de clients con el hasher configurado.
func NewRegistry(cfg *config.Config, conn store.Connection) (*registry.Registry, error) {
	hasher, err := password.NewHasher(cfg.OAuth.SecretHash)
	if err != nil {
		return nil, err
	}
	return registry.New(conn.Clients(), hasher), nil
}

// NewSessions crea el manager de sesión.
func NewSessions(cfg *config.Config) *session.Manager {
	return session.NewManager(cfg.Session.Secret, cfg.Session.Issuer, cfg.Session.CookieName)
}

// Build arma handlers, services y jobs sobre una conexión ya abierta. El
// App no es dueño de conn: cerrarla es responsabilidad de quien la abrió.
func Build(cfg *config.Config, conn store.Connection) (*App, error) {
	app := &App{Store: conn, Sessions: NewSessions(cfg)}

	var err error
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		if app.Metrics, err = metrics.New(reg); err != nil {
			return nil, fmt.Errorf("metrics: %w", err)
		}
	}

	if app.Registry, err = NewRegistry(cfg, conn); err != nil {
		return nil, err
	}

	limiter, err := app.newLimiter(cfg)
	if err != nil {
		return nil, err
	}

	oauth := oauthsvc.NewServices(oauthsvc.Deps{
		Registry:               app.Registry,
		Catalog:                webservice.NewCatalog(conn.Services(), cfg.WebService.CatalogCacheTTL),
		Issuer:                 webservice.NewIssuer(conn.ServiceTokens(), cfg.WebService.TokenLength, cfg.WebService.TokenTTL),
		Codes:                  conn.Codes(),
		Metrics:                app.Metrics,
		CodeTTL:                cfg.OAuth.CodeTTL,
		CodeLength:             cfg.OAuth.CodeLength,
		VerifyExchangeRedirect: cfg.OAuth.VerifyExchangeRedirect,
	})
	health := healthsvc.NewServices(healthsvc.Deps{Store: conn})

	app.Handler = router.New(router.Deps{
		OAuth:       oauthctrl.NewControllers(oauth, app.Sessions, cfg.Session.LoginURL),
		Health:      healthctrl.NewControllers(health),
		Metrics:     app.Metrics,
		MetricsPath: cfg.Metrics.Path,
		RateLimiter: limiter,
	})

	if !cfg.Sweeper.Disabled {
		app.Sweeper = sweeper.New(conn.Codes(), cfg.Sweeper.Interval, app.Metrics)
	}
	return app, nil
}

func (a *App) newLimiter(cfg *config.Config) (rate.Limiter, error) {
	if !cfg.Rate.Enabled {
		return nil, nil
	}
	switch cfg.Rate.Backend {
	case "redis":
		client := rdb.NewClient(&rdb.Options{
			Addr:     cfg.Rate.Redis.Addr,
			Password: cfg.Rate.Redis.Password,
			DB:       cfg.Rate.Redis.DB,
		})
		a.closers = append(a.closers, client.Close)
		return rate.NewRedisLimiter(client, cfg.Rate.Redis.Prefix, cfg.Rate.MaxRequests, cfg.Rate.Window), nil
	case "memory":
		return rate.NewMemoryLimiter(cfg.Rate.MaxRequests, cfg.Rate.Window), nil
	default:
		return nil, fmt.Errorf("rate: unknown backend %q", cfg.Rate.Backend)
	}
}

// Close libera los recursos que Build creó.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}
