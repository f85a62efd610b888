package main

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/grantbridge/internal/config"
	"github.com/dropDatabas3/grantbridge/internal/http/server"
	"github.com/dropDatabas3/grantbridge/internal/observability/logger"
	"github.com/dropDatabas3/grantbridge/internal/registry"
	"github.com/dropDatabas3/grantbridge/internal/store"
)

// cli es el estado compartido por todos los subcomandos. El store se abre
// solo cuando un comando lo necesita.
type cli struct {
	configPath string
	envFile    string
	yes        bool

	in  *bufio.Reader
	out io.Writer

	cfg  *config.Config
	conn store.Connection
	reg  *registry.Registry
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	c := &cli{in: bufio.NewReader(in), out: out}

	root := &cobra.Command{
		Use:           "grantctl",
		Short:         "Administración de clients OAuth2 y servicios",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			_ = godotenv.Load(c.envFile)
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.cfg = cfg
			logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, ServiceName: "grantctl"})
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return c.close()
		},
	}
	root.SetIn(in)
	root.SetOut(out)

	root.PersistentFlags().StringVar(&c.configPath, "config", os.Getenv("CONFIG_PATH"), "ruta a config.yaml (env CONFIG_PATH)")
	root.PersistentFlags().StringVar(&c.envFile, "env-file", ".env", "ruta a .env (opcional)")

	root.AddCommand(
		c.setupCmd(),
		c.listCmd(),
		c.createCmd(),
		c.renameCmd(),
		c.dropCmd(),
		c.addURICmd(),
		c.dropURICmd(),
		c.addSecretCmd(),
		c.dropSecretCmd(),
		c.serviceCmd(),
		c.sweepCmd(),
		c.sessionCmd(),
	)
	return root
}

// open conecta y migra el store la primera vez que se llama.
func (c *cli) open(ctx context.Context) error {
	if c.conn != nil {
		return nil
	}
	conn, err := server.OpenStore(ctx, c.cfg)
	if err != nil {
		return err
	}
	reg, err := server.NewRegistry(c.cfg, conn)
	if err != nil {
		_ = conn.Close()
		return err
	}
	c.conn, c.reg = conn, reg
	return nil
}

func (c *cli) close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}
