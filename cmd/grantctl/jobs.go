package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/grantbridge/internal/http/server"
	"github.com/dropDatabas3/grantbridge/internal/sweeper"
)

// sweepCmd corre una barrida única; pensado para hosts que agendan el
// sweeper desde cron en lugar del loop del servicio.
func (c *cli) sweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Elimina los authorization codes vencidos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.open(cmd.Context()); err != nil {
				return err
			}
			n, err := sweeper.New(c.conn.Codes(), c.cfg.Sweeper.Interval, nil).Sweep(cmd.Context(), time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Removed %d expired codes\n", n)
			return nil
		},
	}
}

func (c *cli) sessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Herramientas de sesión para desarrollo",
	}

	var (
		user  string
		guest bool
		ttl   time.Duration
	)
	mint := &cobra.Command{
		Use:   "mint",
		Short: "Firma un token de sesión (cookie o Authorization: Bearer)",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			if user == "" {
				return errors.New("--user is required")
			}
			if c.cfg.Session.Secret == "" {
				return errors.New("session.secret is not configured")
			}
			tok, err := server.NewSessions(c.cfg).Sign(user, guest, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.out, tok)
			return nil
		},
	}
	mint.Flags().StringVar(&user, "user", "", "id del usuario")
	mint.Flags().BoolVar(&guest, "guest", false, "marcar la sesión como invitado")
	mint.Flags().DurationVar(&ttl, "ttl", time.Hour, "vigencia del token")

	cmd.AddCommand(mint)
	return cmd
}
