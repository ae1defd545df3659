package main

import (
	"fmt"

	"github.com/aretw0/carepath/internal/cli"
	"github.com/aretw0/carepath/internal/presentation/graph"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph [path]",
	Short: "Export the algorithm as a Mermaid flowchart",
	Long: `Prints a Mermaid flowchart of the algorithm. With --edges, the given edge
ids are replayed from the start and the path taken is highlighted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := cli.OpenEngine(cmd.Context(), cfg, definitionPath(cmd, args), logger)
		if err != nil {
			return err
		}
		ctrl := eng.Controller()

		var overlay *graph.GraphOverlay
		if edges, _ := cmd.Flags().GetStringSlice("edges"); len(edges) > 0 {
			if err := ctrl.Replay(edges...); err != nil {
				return err
			}
			overlay = graph.OverlayFromSnapshot(ctrl.Snapshot())
		}

		fmt.Fprintln(cmd.OutOrStdout(), graph.GenerateMermaid(ctrl.Graph(), overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringSlice("edges", nil, "Edge ids to replay and highlight")
}
