package main

import (
	"errors"
	"fmt"

	"github.com/aretw0/carepath"
	"github.com/aretw0/carepath/pkg/domain"
	"github.com/aretw0/carepath/pkg/graph"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Check the algorithm for consistency",
	Long: `Loads the definition and reports structural problems: a missing or
duplicate start node, dangling edges, outcomes with outgoing edges and
unknown node types. Nodes unreachable from the start are listed as warnings.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := definitionPath(cmd, args)
		out := cmd.OutOrStdout()

		src, err := carepath.SourceFor(path)
		if err != nil {
			return err
		}
		def, err := src.Load(cmd.Context())
		if err != nil {
			return err
		}

		g, err := graph.Load(def, graph.WithLogger(logger))
		if err != nil {
			var verr *domain.ValidationError
			if errors.As(err, &verr) {
				for _, p := range verr.Problems {
					fmt.Fprintf(out, "  ✗ %s: %s\n", p.Field, p.Reason)
				}
			}
			return fmt.Errorf("validation failed: %w", err)
		}

		reachable := g.Reachable()
		for _, n := range g.Nodes() {
			if !reachable[n.ID] {
				fmt.Fprintf(out, "  ! %s is not reachable from %s\n", n.ID, g.StartNodeID())
			}
		}
		fmt.Fprintf(out, "%s is valid: %d nodes, %d edges ✅\n", def.ID, len(def.Nodes), len(def.Edges))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
