package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lattice/internal/network"
)

func newNetworkCommand() *cobra.Command {
	networkCmd := &cobra.Command{
		Use:         "network",
		Short:       "Work with network files",
		Annotations: map[string]string{"skipConfigLoad": "true"},
	}

	networkCmd.AddCommand(newNetworkDotCommand())
	networkCmd.AddCommand(newNetworkGridCommand())
	networkCmd.AddCommand(newNetworkInfoCommand())

	return networkCmd
}

func newNetworkDotCommand() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "dot <network.json>",
		Short: "Export a network file as Graphviz DOT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := network.Load(args[0])
			if err != nil {
				return err
			}
			dot, err := network.DOT(n)
			if err != nil {
				return fmt.Errorf("render DOT: %w", err)
			}
			if outputPath == "" {
				fmt.Fprint(cmd.OutOrStdout(), dot)
				return nil
			}
			if err := os.WriteFile(outputPath, []byte(dot), 0o644); err != nil {
				return fmt.Errorf("write DOT file: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", outputPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write DOT to a file instead of stdout")
	return cmd
}

func newNetworkGridCommand() *cobra.Command {
	var nx, ny int
	var spacing float64
	var name string

	cmd := &cobra.Command{
		Use:   "grid <output.json>",
		Short: "Generate a planar grid network file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := network.Grid(name, nx, ny, spacing)
			if err != nil {
				return err
			}
			if err := n.Save(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d nodes, %d edges)\n", args[0], n.NodeCount(), n.EdgeCount())
			return nil
		},
	}

	cmd.Flags().IntVar(&nx, "nx", 5, "Number of nodes along x")
	cmd.Flags().IntVar(&ny, "ny", 5, "Number of nodes along y")
	cmd.Flags().Float64Var(&spacing, "spacing", 1.0, "Distance between neighboring nodes")
	cmd.Flags().StringVar(&name, "name", "grid", "Network name")
	return cmd
}

func newNetworkInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info <network.json>",
		Short: "Summarize a network file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := network.Load(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Name:  %s\n", n.Name())
			fmt.Fprintf(out, "Nodes: %d\n", n.NodeCount())
			fmt.Fprintf(out, "Edges: %d\n", n.EdgeCount())
			centroid := n.Centroid()
			fmt.Fprintf(out, "Centroid: [%g, %g, %g]\n", centroid[0], centroid[1], centroid[2])
			if min, max, ok := n.Bounds(); ok {
				fmt.Fprintf(out, "Bounds: [%g, %g, %g] to [%g, %g, %g]\n",
					min[0], min[1], min[2], max[0], max[1], max[2])
			}
			return nil
		},
	}
}
