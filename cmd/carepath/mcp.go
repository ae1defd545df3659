package main

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/aretw0/carepath"
	"github.com/aretw0/carepath/internal/cli"
	"github.com/aretw0/carepath/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp [path]",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes one traversal of the algorithm as MCP tools (snapshot, advance,
back, jump, reset, summary, get_graph, get_layout) and resources
(carepath://graph, carepath://diagram).

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sigCtx := cli.NewSignalContext(cmd.Context())
		defer sigCtx.Cancel()
		ctx := sigCtx.Context

		// Stdout carries JSON-RPC in stdio mode; logs always go to stderr.
		eng, err := cli.OpenEngine(ctx, cfg, definitionPath(cmd, args), logger)
		if err != nil {
			return err
		}
		if watch, _ := cmd.Flags().GetBool("watch"); watch {
			if err := cli.WatchReload(ctx, eng, logger); err != nil {
				return err
			}
		}

		srv := mcp.NewServer(eng.Controller(), carepath.Version, mcp.WithLogger(logger))

		switch cfg.MCP.Transport {
		case "stdio":
			logger.Info("starting MCP server (stdio)")
			return srv.ServeStdio()
		case "sse":
			base := "http://localhost" + cfg.MCP.Addr
			if !strings.HasPrefix(cfg.MCP.Addr, ":") {
				base = "http://" + cfg.MCP.Addr
			}
			if err := srv.ServeSSE(ctx, cfg.MCP.Addr, base); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			logger.Info("MCP server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", cfg.MCP.Transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("transport", "", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().String("addr", "", "Address to listen on (only for SSE)")
	mcpCmd.Flags().Bool("watch", false, "Reload the definition when it changes")
	_ = v.BindPFlag("mcp.transport", mcpCmd.Flags().Lookup("transport"))
	_ = v.BindPFlag("mcp.addr", mcpCmd.Flags().Lookup("addr"))
}
