package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aretw0/carepath"
	"github.com/aretw0/carepath/internal/cli"
	fileAdapter "github.com/aretw0/carepath/pkg/adapters/file"
	httpAdapter "github.com/aretw0/carepath/pkg/adapters/http"
	redisAdapter "github.com/aretw0/carepath/pkg/adapters/redis"
	"github.com/aretw0/carepath/pkg/graph"
	"github.com/aretw0/carepath/pkg/metrics"
	"github.com/aretw0/carepath/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve [path]",
	Short: "Start the HTTP session server",
	Long: `Serves the algorithm over HTTP. Each client opens its own session and
drives it through the JSON API described at /openapi.yaml; changes stream as
server-sent events. Prometheus metrics are exposed at /metrics.

When redis.addr is configured, each session also publishes its snapshots to
"<redis.channel>:<session id>".`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()
		ctx := sigCtx.Context

		path := definitionPath(cmd, args)
		src, err := carepath.SourceFor(path)
		if err != nil {
			return err
		}
		def, err := src.Load(ctx)
		if err != nil {
			return err
		}
		g, err := graph.Load(def, graph.WithLogger(logger))
		if err != nil {
			return err
		}

		opts := []httpAdapter.Option{
			httpAdapter.WithLogger(logger),
			httpAdapter.WithLayoutConfig(cfg.Layout),
			httpAdapter.WithViewportPadding(cfg.View.Padding),
			httpAdapter.WithMetrics(metrics.New()),
			httpAdapter.WithExporter(fileAdapter.NewExporter(cfg.Export.Dir, fileAdapter.Format(cfg.Export.Format))),
			httpAdapter.WithSessionTTL(cfg.HTTP.SessionTTL),
			httpAdapter.WithVersion(carepath.Version),
		}
		if cfg.Redis.Addr != "" {
			client := backend.NewClient(&backend.Options{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			defer client.Close()
			opts = append(opts, httpAdapter.WithPublisher(func(sessionID string) ports.SnapshotPublisher {
				return redisAdapter.NewFromClient(client,
					redisAdapter.WithChannel(cfg.Redis.Channel+":"+sessionID),
					redisAdapter.WithTTL(cfg.Redis.TTL),
				)
			}, cfg.View.Debounce))
		}

		srv, err := httpAdapter.NewServer(ctx, g, opts...)
		if err != nil {
			return err
		}
		defer srv.Close()

		if watch, _ := cmd.Flags().GetBool("watch"); watch {
			if err := cli.WatchSource(ctx, src, logger, srv.Reload); err != nil {
				return err
			}
		}

		httpServer := &http.Server{
			Addr:              cfg.HTTP.Addr,
			Handler:           srv.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("carepath server listening", "address", cfg.HTTP.Addr, "graph", g.ID(), "source", path)
			serverErrors <- httpServer.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)
		case <-ctx.Done():
			logger.Info("shutting down", "signal", sigCtx.Signal())

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Warn("graceful shutdown did not complete", "err", err)
				return httpServer.Close()
			}
			logger.Info("carepath server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", "", "Address to listen on (default from config, :8080)")
	serveCmd.Flags().Bool("watch", false, "Reload the definition when it changes")
	_ = v.BindPFlag("http.addr", serveCmd.Flags().Lookup("addr"))
}
