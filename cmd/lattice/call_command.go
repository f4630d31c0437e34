package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"lattice/internal/proxy"
)

func newCallCommand(ctx *commandContext) *cobra.Command {
	var packageFlag string
	var kwargsFlag string
	var showProfile bool
	var dispose bool

	cmd := &cobra.Command{
		Use:   "call <function> [arg...]",
		Short: "Invoke a remote function on the background service",
		Long: `Invoke a named function on the background service, starting the service
process first if none is running. Positional arguments are parsed as JSON
values; anything that is not valid JSON is passed through as a string.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, cmdArgs []string) error {
			opts, err := ctx.proxyOptions()
			if err != nil {
				return err
			}
			opts.Package = packageFlag

			store, err := ctx.openHistory()
			if err != nil {
				return fmt.Errorf("open call history: %w", err)
			}
			if store != nil {
				defer store.Close()
				opts.History = store
			}

			args := parseCallArgs(cmdArgs[1:])
			kwargs, err := parseKwargs(kwargsFlag)
			if err != nil {
				return err
			}

			p, err := proxy.New(opts)
			if err != nil {
				return err
			}
			if dispose {
				defer p.Shutdown()
			} else {
				defer p.Close()
			}

			result, err := p.Invoke(cmdArgs[0], args, kwargs)
			if err != nil {
				return err
			}

			encoded, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return fmt.Errorf("encode result: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, string(encoded))
			if showProfile && p.Profile() != "" {
				fmt.Fprintln(out, p.Profile())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&packageFlag, "package", "p", "", "Package prefix prepended to the function name")
	cmd.Flags().StringVar(&kwargsFlag, "kwargs", "", "Named arguments as a JSON object")
	cmd.Flags().BoolVar(&showProfile, "profile", false, "Print the server-side timing annotation")
	cmd.Flags().BoolVar(&dispose, "dispose", false, "Stop the background service after the call")
	return cmd
}

// parseCallArgs decodes each argument as JSON, falling back to the raw
// string. "3" becomes a number while "three" stays a string.
func parseCallArgs(raw []string) []any {
	args := make([]any, len(raw))
	for i, arg := range raw {
		var value any
		if err := json.Unmarshal([]byte(arg), &value); err != nil {
			args[i] = arg
			continue
		}
		args[i] = value
	}
	return args
}

func parseKwargs(raw string) (map[string]any, error) {
	if raw == "" {
		return nil, nil
	}
	kwargs := make(map[string]any)
	if err := json.Unmarshal([]byte(raw), &kwargs); err != nil {
		return nil, fmt.Errorf("parse --kwargs: %w", err)
	}
	return kwargs, nil
}
