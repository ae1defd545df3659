package main

import (
	"encoding/json"

	"github.com/aretw0/carepath/internal/cli"
	"github.com/spf13/cobra"
)

var layoutCmd = &cobra.Command{
	Use:   "layout [path]",
	Short: "Print the computed graph geometry as JSON",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := cli.OpenEngine(cmd.Context(), cfg, definitionPath(cmd, args), logger)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(eng.Controller().Layout())
	},
}

func init() {
	rootCmd.AddCommand(layoutCmd)
}
