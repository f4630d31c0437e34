package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"lattice/internal/config"
	"lattice/internal/daemon"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var moduleFlag string
	var configFlag string
	var logLevelFlag string

	cmd := &cobra.Command{
		Use:           "latticed [port]",
		Short:         "Lattice background service process",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, _, err := config.Load(configFlag)
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}

			opts := daemon.Options{
				Module:   moduleFlag,
				LogLevel: logLevelFlag,
			}
			if len(args) == 1 {
				port, err := strconv.Atoi(args[0])
				if err != nil || port <= 0 || port > 65535 {
					return fmt.Errorf("invalid port %q", args[0])
				}
				opts.Port = port
			}

			return daemon.Run(cmd.Context(), cfg, opts)
		},
	}

	cmd.Flags().StringVarP(&moduleFlag, "module", "m", "", "Service module to register")
	cmd.Flags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	cmd.Flags().StringVar(&logLevelFlag, "log-level", "", "Log level override (debug, info, warn, error)")

	return cmd
}
