package main

import (
	"fmt"
	"os"

	"github.com/aretw0/carepath"
	"github.com/aretw0/carepath/internal/cli"
	"github.com/aretw0/carepath/internal/presentation/tui"
	fileAdapter "github.com/aretw0/carepath/pkg/adapters/file"
	redisAdapter "github.com/aretw0/carepath/pkg/adapters/redis"
	"github.com/aretw0/carepath/pkg/summary"
	"github.com/aretw0/carepath/pkg/view"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var walkCmd = &cobra.Command{
	Use:   "walk [path]",
	Short: "Walk the algorithm interactively",
	Long: `Opens the dual-pane walker: the wizard on the left, the whole algorithm on
the right. When stdout is not a terminal, or with --plain, a line-based
walker reads numbered choices from stdin instead.

With --watch, edits to the definition are applied live; the current path is
kept when it is still valid. With --publish, every snapshot is also published
to the configured Redis channel for remote renderers.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()
		ctx := sigCtx.Context

		var extra []carepath.Option
		if publish, _ := cmd.Flags().GetBool("publish"); publish {
			if cfg.Redis.Addr == "" {
				return fmt.Errorf("--publish needs redis.addr to be configured")
			}
			pub := redisAdapter.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
				redisAdapter.WithChannel(cfg.Redis.Channel),
				redisAdapter.WithTTL(cfg.Redis.TTL),
			)
			defer pub.Close()
			var sub view.Subscriber = view.Forward(ctx, pub, logger)
			if cfg.View.Debounce > 0 {
				sub = view.Debounce(ctx, sub, cfg.View.Debounce)
			}
			extra = append(extra, carepath.WithSubscriber(sub))
		}

		eng, err := cli.OpenEngine(ctx, cfg, definitionPath(cmd, args), logger, extra...)
		if err != nil {
			return err
		}
		ctrl := eng.Controller()

		if watch, _ := cmd.Flags().GetBool("watch"); watch {
			if err := cli.WatchReload(ctx, eng, logger); err != nil {
				return err
			}
		}

		exporter := fileAdapter.NewExporter(cfg.Export.Dir, fileAdapter.Format(cfg.Export.Format))
		svc := summary.NewService(exporter, ctrl, summary.WithLogger(logger))

		plain, _ := cmd.Flags().GetBool("plain")
		if plain || !term.IsTerminal(int(os.Stdout.Fd())) {
			doc, err := tui.RunPlain(ctx, ctrl, cmd.InOrStdin(), cmd.OutOrStdout())
			if err != nil || doc == nil {
				return err
			}
			if save, _ := cmd.Flags().GetBool("save"); save {
				return <-svc.ExportAsync(ctx, *doc)
			}
			return nil
		}

		width := 0
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			width = w/2 - 8
		}
		m := tui.NewModel(ctrl, tui.WithExporter(svc), tui.WithRenderer(tui.NewRenderer(width)))
		return tui.Run(ctx, m)
	},
}

func init() {
	rootCmd.AddCommand(walkCmd)
	walkCmd.Flags().Bool("plain", false, "Use the line-based walker")
	walkCmd.Flags().Bool("watch", false, "Reload the definition when it changes")
	walkCmd.Flags().Bool("publish", false, "Publish snapshots to Redis")
	walkCmd.Flags().Bool("save", false, "Line mode: write the summary to the export directory")

	rootCmd.RunE = walkCmd.RunE
	rootCmd.Args = walkCmd.Args
}
