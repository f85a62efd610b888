package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/grantbridge/internal/domain/repository"
	"github.com/dropDatabas3/grantbridge/internal/registry"
)

func (c *cli) setupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Muestra los datos para configurar un client",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			base := c.cfg.Server.BaseURL
			fmt.Fprintln(c.out, "Grant type: Authorization Code")
			fmt.Fprintln(c.out, "Authorization URL: "+base+"/oauth2/authorize")
			fmt.Fprintln(c.out, "Access Token URL: "+base+"/oauth2/token")
			return nil
		},
	}
}

func (c *cli) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [filter]",
		Short: "Lista clients y sus redirect URIs",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := c.open(ctx); err != nil {
				return err
			}
			filter := ""
			if len(args) == 1 {
				filter = args[0]
			}
			clients, err := c.reg.List(ctx, filter)
			if err != nil {
				return err
			}
			if len(clients) == 0 {
				if filter == "" {
					fmt.Fprintln(c.out, "No clients configured.")
				} else {
					fmt.Fprintln(c.out, "No clients match filter string.")
				}
				return nil
			}
			for _, cl := range clients {
				fmt.Fprintf(c.out, "%s | %s\n", cl.ID, cl.Name)
				for _, r := range cl.Redirects {
					fmt.Fprintln(c.out, "    "+r.URI)
				}
			}
			return nil
		},
	}
}

func (c *cli) createCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create [name]",
		Short: "Crea un client",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := c.open(ctx); err != nil {
				return err
			}
			name, err := c.argOrAsk(args, 0, "Enter client name")
			if err != nil {
				return err
			}
			cl, err := c.reg.CreateClient(ctx, name)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Created %s with ID %s\n", cl.Name, cl.ID)
			return nil
		},
	}
}

// clientArg resuelve el primer argumento (id o nombre) a un client.
func (c *cli) clientArg(cmd *cobra.Command, args []string) (*repository.Client, error) {
	if err := c.open(cmd.Context()); err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return nil, errors.New("pass the client ID or name as the first argument")
	}
	cl, err := c.reg.ResolveClient(cmd.Context(), args[0])
	if repository.IsNotFound(err) {
		return nil, fmt.Errorf("client %q not found", args[0])
	}
	return cl, err
}

func (c *cli) renameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <client> [new-name]",
		Short: "Renombra un client",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := c.clientArg(cmd, args)
			if err != nil {
				return err
			}
			name, err := c.argOrAsk(args, 1, "Rename "+cl.Name+" to")
			if err != nil {
				return err
			}
			if err := c.reg.RenameClient(cmd.Context(), cl.ID, name); err != nil {
				if errors.Is(err, registry.ErrInvalidName) {
					return errors.New("invalid name")
				}
				return err
			}
			fmt.Fprintf(c.out, "Renamed %s to %s\n", cl.Name, strings.TrimSpace(name))
			return nil
		},
	}
}

func (c *cli) dropCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drop <client>",
		Short: "Elimina un client con sus redirects, secrets y codes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := c.clientArg(cmd, args)
			if err != nil {
				return err
			}
			ok, err := c.confirm("Are you sure you want to drop client " + cl.Name + "?")
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(c.out, "Cancelled.")
				return nil
			}
			if err := c.reg.DropClient(cmd.Context(), cl.ID); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Dropped client %s\n", cl.Name)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&c.yes, "yes", "y", false, "no pedir confirmación")
	return cmd
}

func (c *cli) addURICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-uri <client> [uri]",
		Short: "Registra una redirect URI",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := c.clientArg(cmd, args)
			if err != nil {
				return err
			}
			uri, err := c.argOrAsk(args, 1, "Enter redirect URI")
			if err != nil {
				return err
			}
			ru, err := c.reg.AddRedirect(cmd.Context(), cl.ID, uri)
			if err != nil {
				if errors.Is(err, registry.ErrInvalidRedirectURI) {
					return errors.New("invalid URL format")
				}
				return err
			}
			fmt.Fprintf(c.out, "Added %s for client %s\n", ru.URI, cl.Name)
			return nil
		},
	}
}

func (c *cli) dropURICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "drop-uri <client> [partial]",
		Short: "Elimina una redirect URI (coincidencia parcial o selección)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := c.clientArg(cmd, args)
			if err != nil {
				return err
			}
			partial := ""
			if len(args) == 2 {
				partial = args[1]
			}
			matches, err := c.reg.MatchRedirects(cmd.Context(), cl.ID, partial)
			if err != nil {
				return err
			}

			var todrop repository.RedirectURI
			switch {
			case partial != "" && len(matches) == 0:
				return fmt.Errorf("no redirect URI of %s matches %q", cl.Name, partial)
			case partial != "" && len(matches) == 1:
				todrop = matches[0]
			default:
				items := make([]string, len(matches))
				for i, m := range matches {
					items[i] = m.URI
				}
				i, err := c.pick("Which URI to drop?", items)
				if err != nil {
					return err
				}
				todrop = matches[i]
			}

			if err := c.reg.DropRedirect(cmd.Context(), todrop.ID); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Dropped URI %s for client %s\n", todrop.URI, cl.Name)
			return nil
		},
	}
}

func (c *cli) addSecretCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add-secret <client>",
		Short: "Genera un par client_id / client_secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := c.clientArg(cmd, args)
			if err != nil {
				return err
			}
			issued, err := c.reg.AddSecret(cmd.Context(), cl.ID)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.out, "Created secret for client "+cl.Name)
			fmt.Fprintln(c.out, "     client_id | "+issued.PublicID)
			fmt.Fprintln(c.out, " client_secret | "+issued.Secret)
			return nil
		},
	}
}

func (c *cli) dropSecretCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "drop-secret <client> [client-id]",
		Short: "Revoca un par de credenciales",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := c.clientArg(cmd, args)
			if err != nil {
				return err
			}
			publicID := ""
			if len(args) == 2 {
				publicID = args[1]
			} else {
				secrets, err := c.reg.Secrets(cmd.Context(), cl.ID)
				if err != nil {
					return err
				}
				items := make([]string, len(secrets))
				for i, s := range secrets {
					items[i] = s.PublicID
				}
				i, err := c.pick("Which secret pair to drop?", items)
				if err != nil {
					return err
				}
				publicID = secrets[i].PublicID
			}

			if err := c.reg.DropSecret(cmd.Context(), cl.ID, publicID); err != nil {
				if repository.IsNotFound(err) {
					return fmt.Errorf("client %s has no secret with client ID %q", cl.Name, publicID)
				}
				return err
			}
			fmt.Fprintf(c.out, "Dropped secret pair with client ID %s for client %s\n", publicID, cl.Name)
			return nil
		},
	}
}
