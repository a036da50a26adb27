package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"replyai/internal/client"
	"replyai/internal/provider"
)

func (a *app) statusCmd() *cobra.Command {
	var server bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check the completion API and, optionally, the reply server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
			defer cancel()

			fmt.Fprintf(a.stdout, "config:   %s\n", a.resolveConfigPath())

			prov, err := provider.NewFactory(cfg.Provider, a.logger).Get(ctx)
			if err != nil {
				fmt.Fprintf(a.stdout, "provider: %s (error: %v)\n", cfg.Provider.Name, err)
			} else if err := prov.Healthy(ctx); err != nil {
				fmt.Fprintf(a.stdout, "provider: %s (unhealthy: %v)\n", prov.Name(), err)
			} else {
				fmt.Fprintf(a.stdout, "provider: %s (healthy)\n", prov.Name())
			}

			if !server {
				return nil
			}
			c := client.New(client.Config{Endpoint: cfg.Client.Endpoint, Logger: a.logger})
			st, err := c.Status(ctx)
			if err != nil {
				fmt.Fprintf(a.stdout, "server:   %s (unreachable: %v)\n", cfg.Client.Endpoint, err)
				return nil
			}
			fmt.Fprintf(a.stdout, "server:   %s (%v, version %v)\n", cfg.Client.Endpoint, st["status"], st["version"])
			return nil
		},
	}
	cmd.Flags().BoolVar(&server, "server", false, "also query the reply server at client.endpoint")
	return cmd
}
