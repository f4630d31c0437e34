package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lattice/internal/proxy"
)

func newPingCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check whether the background service is responding",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			client, err := ctx.dialService()
			if err != nil {
				if proxy.IsUnavailable(err) {
					return fmt.Errorf("no service listening on %s", cfg.ServerEndpoint())
				}
				return err
			}
			defer client.Close()

			if _, err := client.Ping(); err != nil {
				return fmt.Errorf("service on %s did not answer the liveness probe: %w", cfg.ServerEndpoint(), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Service on %s is responding\n", cfg.ServerEndpoint())
			return nil
		},
	}
}

func newShutdownCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "shutdown",
		Short: "Stop the background service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			client, err := ctx.dialService()
			if err != nil {
				fmt.Fprintf(out, "No service listening on %s\n", cfg.ServerEndpoint())
				return nil
			}
			defer client.Close()

			// Disposal is best-effort; a service that dies mid-reply still
			// counts as stopped.
			if _, err := client.Shutdown(); err != nil {
				fmt.Fprintf(out, "Shutdown requested on %s\n", cfg.ServerEndpoint())
				return nil
			}
			fmt.Fprintf(out, "Service on %s is stopping\n", cfg.ServerEndpoint())
			return nil
		},
	}
}
