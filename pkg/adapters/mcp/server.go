package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/carepath/internal/logging"
	"github.com/aretw0/carepath/internal/presentation/graph"
	"github.com/aretw0/carepath/pkg/domain"
	"github.com/aretw0/carepath/pkg/summary"
	"github.com/aretw0/carepath/pkg/view"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// StepResponse is the state of the traversal after a tool call.
type StepResponse struct {
	Snapshot domain.Snapshot `json:"snapshot" jsonschema_description:"The traversal snapshot"`
	Node     domain.Node     `json:"node" jsonschema_description:"The current node"`
	Choices  []domain.Edge   `json:"choices" jsonschema_description:"Edges that can be followed from the current node"`
	Terminal bool            `json:"terminal" jsonschema_description:"Indicates if an outcome was reached"`
	Ignored  string          `json:"ignored,omitempty" jsonschema_description:"Set when the request changed nothing"`
}

type advanceArgs struct {
	EdgeID string `json:"edge_id"`
}

type jumpArgs struct {
	NodeID string `json:"node_id"`
}

type summaryArgs struct {
	Format string `json:"format"`
}

type emptyArgs struct{}

// Server exposes one traversal as MCP tools. An MCP client is a single user,
// so one controller serves the whole connection.
type Server struct {
	ctrl      *view.Controller
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a new MCP Server instance driving ctrl.
func NewServer(ctrl *view.Controller, version string, opts ...Option) *Server {
	s := &Server{
		ctrl:      ctrl,
		mcpServer: server.NewMCPServer("carepath-mcp", strings.TrimSpace(version)),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server, for in-process transports.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Get the full algorithm definition: nodes, edges and educational content."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(s.ctrl.Graph().Definition())
	})

	s.mcpServer.AddTool(mcp.NewTool("get_layout",
		mcp.WithDescription("Get the static node positions and edge routes of the algorithm diagram."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(s.ctrl.Layout())
	})

	s.mcpServer.AddTool(mcp.NewTool("snapshot",
		mcp.WithDescription("Show the current node, the choices available and the path taken so far."),
		mcp.WithOutputSchema[StepResponse](),
	), mcp.NewStructuredToolHandler(func(ctx context.Context, _ mcp.CallToolRequest, _ emptyArgs) (StepResponse, error) {
		return s.step(nil)
	}))

	s.mcpServer.AddTool(mcp.NewTool("advance",
		mcp.WithDescription("Follow one of the choices of the current node."),
		mcp.WithString("edge_id", mcp.Required(), mcp.Description("ID of an edge leaving the current node")),
		mcp.WithOutputSchema[StepResponse](),
	), mcp.NewStructuredToolHandler(func(ctx context.Context, _ mcp.CallToolRequest, args advanceArgs) (StepResponse, error) {
		return s.step(s.ctrl.Advance(args.EdgeID))
	}))

	s.mcpServer.AddTool(mcp.NewTool("back",
		mcp.WithDescription("Undo the last choice."),
		mcp.WithOutputSchema[StepResponse](),
	), mcp.NewStructuredToolHandler(func(ctx context.Context, _ mcp.CallToolRequest, _ emptyArgs) (StepResponse, error) {
		return s.step(s.ctrl.Back())
	}))

	s.mcpServer.AddTool(mcp.NewTool("jump",
		mcp.WithDescription("Rewind to a node already on the path, discarding the choices made after it."),
		mcp.WithString("node_id", mcp.Required(), mcp.Description("ID of a node on the path")),
		mcp.WithOutputSchema[StepResponse](),
	), mcp.NewStructuredToolHandler(func(ctx context.Context, _ mcp.CallToolRequest, args jumpArgs) (StepResponse, error) {
		return s.step(s.ctrl.JumpTo(args.NodeID))
	}))

	s.mcpServer.AddTool(mcp.NewTool("reset",
		mcp.WithDescription("Start over from the first node."),
		mcp.WithOutputSchema[StepResponse](),
	), mcp.NewStructuredToolHandler(func(ctx context.Context, _ mcp.CallToolRequest, _ emptyArgs) (StepResponse, error) {
		s.ctrl.Reset()
		return s.step(nil)
	}))

	s.mcpServer.AddTool(mcp.NewTool("summary",
		mcp.WithDescription("Summarize the decisions once an outcome is reached."),
		mcp.WithString("format", mcp.Enum("json", "md"), mcp.Description("Output format, json by default")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args summaryArgs
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		doc, err := summary.FromSnapshot(s.ctrl.Graph().Definition(), s.ctrl.Snapshot())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if args.Format == "md" {
			return mcp.NewToolResultText(summary.Markdown(doc)), nil
		}
		return jsonResult(doc)
	})
}

// step builds the response of a traversal tool. No-ops are reported in the
// response; other errors fail the call.
func (s *Server) step(err error) (StepResponse, error) {
	st := s.ctrl.View()
	resp := StepResponse{
		Snapshot: st.Snapshot,
		Node:     st.Node,
		Choices:  st.Choices,
		Terminal: st.Snapshot.Terminal,
	}
	if err != nil {
		if !errors.Is(err, domain.ErrNoOp) {
			s.logger.Debug("MCP: operation rejected", "err", err)
			return StepResponse{}, err
		}
		resp.Ignored = err.Error()
	}
	return resp, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("carepath://graph", "Algorithm definition",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := json.Marshal(s.ctrl.Graph().Definition())
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: "carepath://graph", MIMEType: "application/json", Text: string(data)},
		}, nil
	})

	s.mcpServer.AddResource(mcp.NewResource("carepath://diagram", "Algorithm diagram with the current path",
		mcp.WithMIMEType("text/vnd.mermaid"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		text := graph.GenerateMermaid(s.ctrl.Graph(), graph.OverlayFromSnapshot(s.ctrl.Snapshot()))
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: "carepath://diagram", MIMEType: "text/vnd.mermaid", Text: text},
		}, nil
	})
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

