package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/grantbridge/internal/domain/repository"
	"github.com/dropDatabas3/grantbridge/internal/validation"
)

func (c *cli) serviceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "service",
		Short: "Catálogo de servicios que se pueden pedir como scope",
	}

	var disabled bool
	add := &cobra.Command{
		Use:   "add <short-name> <name>",
		Short: "Registra un servicio",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !validation.ValidServiceName(args[0]) {
				return fmt.Errorf("invalid short name %q (letters, digits, _ and -)", args[0])
			}
			if err := c.open(cmd.Context()); err != nil {
				return err
			}
			svc, err := c.conn.Services().Create(cmd.Context(), args[0], args[1], !disabled)
			if err != nil {
				if repository.IsConflict(err) {
					return fmt.Errorf("service %q already exists", args[0])
				}
				return err
			}
			fmt.Fprintf(c.out, "Added service %s (%s)\n", svc.ShortName, enabledLabel(svc.Enabled))
			return nil
		},
	}
	add.Flags().BoolVar(&disabled, "disabled", false, "crear deshabilitado")

	cmd.AddCommand(add, c.setEnabledCmd("enable", true), c.setEnabledCmd("disable", false), &cobra.Command{
		Use:   "list",
		Short: "Lista los servicios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.open(cmd.Context()); err != nil {
				return err
			}
			list, err := c.conn.Services().List(cmd.Context())
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(c.out, "No services configured.")
				return nil
			}
			for _, s := range list {
				fmt.Fprintf(c.out, "%s | %s | %s\n", s.ShortName, s.Name, enabledLabel(s.Enabled))
			}
			return nil
		},
	})
	return cmd
}

func (c *cli) setEnabledCmd(use string, enabled bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <short-name>",
		Short: use + " un servicio",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.open(cmd.Context()); err != nil {
				return err
			}
			if err := c.conn.Services().SetEnabled(cmd.Context(), args[0], enabled); err != nil {
				if repository.IsNotFound(err) {
					return fmt.Errorf("service %q not found", args[0])
				}
				return err
			}
			fmt.Fprintf(c.out, "Service %s %s\n", args[0], enabledLabel(enabled))
			return nil
		},
	}
}

func enabledLabel(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}
