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

	"github.com/aretw0/storyloom"
	"github.com/aretw0/storyloom/internal/logging"
	"github.com/aretw0/storyloom/internal/presentation/graph"
	"github.com/aretw0/storyloom/pkg/analysis"
	"github.com/aretw0/storyloom/pkg/domain"
	"github.com/aretw0/storyloom/pkg/ports"
	"github.com/aretw0/storyloom/pkg/story"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// StoryURI is the resource exposing the loaded story.
const StoryURI = "storyloom://story"

// ValidateResponse is the structured result of validate_story.
type ValidateResponse struct {
	OK       bool             `json:"ok" jsonschema_description:"True when the story has no blocking errors"`
	Title    string           `json:"title" jsonschema_description:"Story title"`
	Start    string           `json:"start" jsonschema_description:"Start node id"`
	Nodes    int              `json:"nodes" jsonschema_description:"Number of nodes"`
	Errors   []analysis.Issue `json:"errors" jsonschema_description:"Blocking problems"`
	Warnings []analysis.Issue `json:"warnings" jsonschema_description:"Suspicious but playable constructs"`
}

// PathArgs are the arguments of shortest_path.
type PathArgs struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// PathResponse is the structured result of shortest_path.
type PathResponse struct {
	Found bool            `json:"found" jsonschema_description:"False when the target cannot be reached"`
	Nodes []string        `json:"nodes" jsonschema_description:"Node ids from origin to target"`
	Edges []analysis.Edge `json:"edges" jsonschema_description:"Choices taken between consecutive nodes"`
}

// Server exposes story analysis tools over the Model Context Protocol.
type Server struct {
	loader    ports.StoryLoader
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a new MCP Server instance. The story is loaded again on
// every call, so edits on disk are picked up.
func NewServer(loader ports.StoryLoader, opts ...Option) *Server {
	s := &Server{
		loader: loader,
		mcpServer: server.NewMCPServer("storyloom-mcp", strings.TrimSpace(storyloom.Version),
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
		),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer { return s.mcpServer }

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves over SSE on addr until ctx is canceled.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	baseURL := "http://localhost" + addr
	if !strings.HasPrefix(addr, ":") {
		baseURL = "http://" + addr
	}
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
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

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) load(ctx context.Context) (*domain.AuthoringGraph, error) {
	g, err := s.loader.Load(ctx)
	if err != nil {
		s.logger.Error("MCP: story load failed", "err", err)
		return nil, fmt.Errorf("failed to load story: %w", err)
	}
	return g, nil
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("validate_story",
		mcp.WithDescription("Check the story graph for duplicate ids, a missing start node, broken or unresolved choice targets, unreachable nodes and dead ends."),
		mcp.WithOutputSchema[ValidateResponse](),
	), mcp.NewStructuredToolHandler(s.handleValidate))

	s.mcpServer.AddTool(mcp.NewTool("shortest_path",
		mcp.WithDescription("Find the fewest choices leading from one node to another."),
		mcp.WithString("from", mcp.Description("Origin node id (defaults to the start node)")),
		mcp.WithString("to", mcp.Required(), mcp.Description("Target node id")),
		mcp.WithOutputSchema[PathResponse](),
	), mcp.NewStructuredToolHandler(s.handleShortestPath))

	s.mcpServer.AddTool(mcp.NewTool("extract_branch",
		mcp.WithDescription("Extract the nodes reachable from the given seeds as a standalone story."),
		mcp.WithString("nodes", mcp.Required(), mcp.Description("Comma separated seed node ids; the first becomes the new start")),
		mcp.WithString("format", mcp.Description("Output format"), mcp.Enum("json", "yaml")),
	), s.handleExtract)

	s.mcpServer.AddTool(mcp.NewTool("render_mermaid",
		mcp.WithDescription("Render the story as a Mermaid flowchart."),
		mcp.WithString("visited", mcp.Description("Comma separated ids of visited nodes to highlight")),
		mcp.WithString("current", mcp.Description("Id of the current node to highlight")),
	), s.handleMermaid)
}

func (s *Server) handleValidate(ctx context.Context, _ mcp.CallToolRequest, _ map[string]any) (ValidateResponse, error) {
	g, err := s.load(ctx)
	if err != nil {
		return ValidateResponse{}, err
	}
	report := analysis.Validate(g)
	return ValidateResponse{
		OK:       report.OK(),
		Title:    g.Meta.Title,
		Start:    g.Meta.Start,
		Nodes:    len(g.Nodes),
		Errors:   nonNil(report.Errors),
		Warnings: nonNil(report.Warnings),
	}, nil
}

func (s *Server) handleShortestPath(ctx context.Context, _ mcp.CallToolRequest, args PathArgs) (PathResponse, error) {
	g, err := s.load(ctx)
	if err != nil {
		return PathResponse{}, err
	}
	from := args.From
	if from == "" {
		from = g.Meta.Start
	}
	p, err := analysis.ShortestPath(g, from, args.To)
	if errors.Is(err, analysis.ErrNoPath) {
		return PathResponse{Found: false, Nodes: []string{}, Edges: []analysis.Edge{}}, nil
	}
	if err != nil {
		return PathResponse{}, err
	}
	return PathResponse{Found: true, Nodes: p.Nodes, Edges: p.Edges}, nil
}

func (s *Server) handleExtract(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	g, err := s.load(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	seeds := splitIDs(request.GetString("nodes", ""))
	if len(seeds) == 0 {
		return mcp.NewToolResultError("at least one node id is required"), nil
	}

	format := story.Format(request.GetString("format", string(story.FormatJSON)))
	data, err := story.EncodeAuthoring(analysis.Subgraph(g, seeds...), format)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleMermaid(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	g, err := s.load(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var overlay *graph.GraphOverlay
	visited := splitIDs(request.GetString("visited", ""))
	current := strings.TrimSpace(request.GetString("current", ""))
	if len(visited) > 0 || current != "" {
		overlay = &graph.GraphOverlay{VisitedNodes: visited, CurrentNode: current}
	}
	return mcp.NewToolResultText(graph.GenerateMermaid(g, overlay)), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(StoryURI, "Story graph",
		mcp.WithResourceDescription("The story in authoring shape"),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		g, err := s.load(ctx)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(g)
		if err != nil {
			return nil, fmt.Errorf("failed to encode story: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      StoryURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}

func splitIDs(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func nonNil(issues []analysis.Issue) []analysis.Issue {
	if issues == nil {
		return []analysis.Issue{}
	}
	return issues
}
