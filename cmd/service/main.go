package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/grantbridge/internal/config"
	"github.com/dropDatabas3/grantbridge/internal/http/server"
	"github.com/dropDatabas3/grantbridge/internal/observability/logger"
)

var version = "dev"

func main() {
	var (
		flagConfigPath = flag.String("config", "", "ruta a config.yaml (fallback: $CONFIG_PATH)")
		flagEnvFile    = flag.String("env-file", ".env", "ruta a .env (si existe, se carga)")
	)
	flag.Parse()

	// .env es opcional
	_ = godotenv.Load(*flagEnvFile)

	cfgPath := *flagConfigPath
	if cfgPath == "" {
		cfgPath = os.Getenv("CONFIG_PATH")
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		// el logger todavía no está configurado
		logger.Init(logger.Config{})
		logger.L().Fatal("config load failed", logger.Err(err))
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.App.LogLevel,
		ServiceName: "grantbridge",
		Version:     version,
	})
	defer logger.Sync()

	if err := run(cfg); err != nil {
		logger.L().Fatal("service stopped with error", logger.Err(err))
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logger.L()
	ctx = logger.ToContext(ctx, log)

	conn, err := server.OpenStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := conn.Close(); err != nil {
			log.Warn("store close failed", logger.Err(err))
		}
	}()

	app, err := server.Build(cfg, conn)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Warn("cleanup failed", logger.Err(err))
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.ListenAndServe(gctx, cfg, app.Handler)
	})
	if app.Sweeper != nil {
		g.Go(func() error {
			return app.Sweeper.Run(gctx)
		})
	}

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
