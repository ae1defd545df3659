package main

import (
	"fmt"

	"github.com/aretw0/carepath/internal/cli"
	fileAdapter "github.com/aretw0/carepath/pkg/adapters/file"
	"github.com/aretw0/carepath/pkg/summary"
	"github.com/spf13/cobra"
)

var replayCmd = &cobra.Command{
	Use:   "replay <edge-id>...",
	Short: "Replay a recorded path and print its decision summary",
	Long: `Resets the traversal, advances along the given edge ids and prints the
decision summary of the outcome reached. With --save, the summary is also
written to the export directory.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("dir")
		eng, err := cli.OpenEngine(cmd.Context(), cfg, cli.ResolvePath(dir, nil), logger)
		if err != nil {
			return err
		}
		if err := eng.Controller().Replay(args...); err != nil {
			return err
		}

		doc, err := eng.Summary()
		if err != nil {
			return err
		}

		format, _ := cmd.Flags().GetString("format")
		if format == "" {
			format = cfg.Export.Format
		}
		data, err := fileAdapter.Encode(doc, fileAdapter.Format(format))
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), string(data))

		if save, _ := cmd.Flags().GetBool("save"); save {
			svc := summary.NewService(fileAdapter.NewExporter(cfg.Export.Dir, fileAdapter.Format(format)), nil, summary.WithLogger(logger))
			if err := <-svc.ExportAsync(cmd.Context(), doc); err != nil {
				return err
			}
			logger.Info("summary saved", "dir", cfg.Export.Dir, "format", format)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.Flags().String("format", "", "Summary format: md, yaml or json (default from config)")
	replayCmd.Flags().Bool("save", false, "Also write the summary to the export directory")
}
