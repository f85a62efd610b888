// Command migrate aplica las migraciones embebidas al store configurado.
//
//	migrate [-config path] [up|status]
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/dropDatabas3/grantbridge/internal/config"
	"github.com/dropDatabas3/grantbridge/internal/observability/logger"
	"github.com/dropDatabas3/grantbridge/internal/store"
	"github.com/dropDatabas3/grantbridge/migrations"

	_ "github.com/dropDatabas3/grantbridge/internal/store/adapters/pg"
	_ "github.com/dropDatabas3/grantbridge/internal/store/adapters/sqlite"
)

func main() {
	var (
		configPath = flag.String("config", os.Getenv("CONFIG_PATH"), "ruta a config.yaml")
		envFile    = flag.String("env-file", ".env", "ruta a .env (opcional)")
	)
	flag.Parse()
	_ = godotenv.Load(*envFile)

	action := "up"
	if flag.NArg() > 0 {
		action = strings.ToLower(flag.Arg(0))
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config load:", err)
		os.Exit(1)
	}
	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, ServiceName: "grantbridge-migrate"})
	defer func() { _ = logger.Sync() }()
	log := logger.L()

	ctx := context.Background()
	conn, err := store.Open(ctx, store.AdapterConfig{Name: cfg.Storage.Driver, DSN: cfg.Storage.DSN})
	if err != nil {
		log.Fatal("store open failed", logger.Err(err))
	}
	defer conn.Close()

	m := store.NewMigrator(migrations.FS, migrations.Dir(conn.Name()))

	switch action {
	case "up":
		res, err := m.Run(ctx, conn.Migrations())
		if err != nil {
			log.Fatal("migrate failed", logger.Err(err))
		}
		log.Info("migrations completed",
			logger.Int("applied", len(res.Applied)),
			logger.Int("skipped", len(res.Skipped)),
			logger.Duration(res.Duration),
		)
	case "status":
		all, applied, err := m.Status(ctx, conn.Migrations())
		if err != nil {
			log.Fatal("migration status failed", logger.Err(err))
		}
		for _, mg := range all {
			state := "pending"
			if applied[mg.Version] {
				state = "applied"
			}
			fmt.Printf("%04d  %-8s %s\n", mg.Version, state, mg.Name)
		}
	default:
		fmt.Fprintf(os.Stderr, "acción desconocida %q (usar up|status)\n", action)
		os.Exit(2)
	}
}
