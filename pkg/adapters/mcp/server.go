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

	"github.com/aretw0/dialectic/internal/logging"
	"github.com/aretw0/dialectic/internal/presentation/graph"
	"github.com/aretw0/dialectic/pkg/domain"
	"github.com/aretw0/dialectic/pkg/ports"
	"github.com/aretw0/dialectic/pkg/strategy"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	dialogueURI = "dialectic://dialogue"
	graphURI    = "dialectic://dialogue/graph"
)

// View is the dialogue state returned by every tool.
type View struct {
	Active    bool                     `json:"active" jsonschema_description:"Whether a dialogue is in progress"`
	GraphID   string                   `json:"graph_id,omitempty" jsonschema_description:"The active graph"`
	StageID   string                   `json:"stage_id,omitempty" jsonschema_description:"The live stage"`
	Speaker   string                   `json:"speaker,omitempty" jsonschema_description:"The mentor speaking"`
	Text      string                   `json:"text,omitempty" jsonschema_description:"The stage text, with strategic rewrites applied"`
	Options   []domain.AvailableOption `json:"options,omitempty" jsonschema_description:"Options on offer; disabled ones carry a reason"`
	Tangent   bool                     `json:"tangent,omitempty" jsonschema_description:"Whether take_tangent is possible"`
	Resources domain.ResourceState     `json:"resources" jsonschema_description:"Insight and momentum"`
	Grade     domain.Grade             `json:"grade,omitempty" jsonschema_description:"Grade of the active or last finished dialogue"`
}

// GraphList is the result of list_graphs.
type GraphList struct {
	Graphs []string `json:"graphs"`
}

// Server exposes a dialogue engine as an MCP server so an agent can play or test content.
type Server struct {
	engine    ports.DialogueEngine
	content   ports.ContentRegistry
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine ports.DialogueEngine, content ports.ContentRegistry, version string, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		content:   content,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("dialectic-mcp", strings.TrimSpace(version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves over SSE on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "addr", addr)
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

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_graphs",
		mcp.WithDescription("List the dialogue graphs that can be started."),
		mcp.WithOutputSchema[GraphList](),
	), mcp.NewStructuredToolHandler(s.handleListGraphs))

	s.mcpServer.AddTool(mcp.NewTool("start_dialogue",
		mcp.WithDescription("Start a dialogue on a graph. Any dialogue in progress is ended first."),
		mcp.WithString("graph_id", mcp.Required(), mcp.Description("The graph to start")),
		mcp.WithOutputSchema[View](),
	), mcp.NewStructuredToolHandler(s.handleStart))

	s.mcpServer.AddTool(mcp.NewTool("get_dialogue",
		mcp.WithDescription("Show the live stage, options and resources."),
		mcp.WithOutputSchema[View](),
	), mcp.NewStructuredToolHandler(s.handleView))

	s.mcpServer.AddTool(mcp.NewTool("select_option",
		mcp.WithDescription("Choose one of the enabled options of the live stage."),
		mcp.WithString("option_id", mcp.Required(), mcp.Description("The option to choose")),
		mcp.WithOutputSchema[View](),
	), mcp.NewStructuredToolHandler(s.handleSelect))

	s.mcpServer.AddTool(mcp.NewTool("take_tangent",
		mcp.WithDescription("Follow the live stage's tangent."),
		mcp.WithOutputSchema[View](),
	), mcp.NewStructuredToolHandler(s.handleTangent))

	s.mcpServer.AddTool(mcp.NewTool("strategic_action",
		mcp.WithDescription("Use a strategic action on the live stage: reframe, extrapolate, boast or synthesis."),
		mcp.WithString("kind", mcp.Required(), mcp.Description("The action to use")),
		mcp.WithString("character_id", mcp.Description("The mentor addressed (defaults to the stage speaker)")),
		mcp.WithOutputSchema[View](),
	), mcp.NewStructuredToolHandler(s.handleAction))

	s.mcpServer.AddTool(mcp.NewTool("end_dialogue",
		mcp.WithDescription("Leave the dialogue in progress."),
		mcp.WithOutputSchema[View](),
	), mcp.NewStructuredToolHandler(s.handleEnd))
}

func (s *Server) view() View {
	v := View{}
	if snap := s.engine.Snapshot(); snap != nil {
		v.Resources = snap.Resources
	}
	if g, err := s.engine.Grade(); err == nil {
		v.Grade = g
	}
	session := s.engine.Session()
	if session == nil {
		return v
	}
	v.Active = true
	v.GraphID = session.GraphID
	if stage, ok := s.engine.CurrentNode(); ok {
		v.StageID = stage.ID
		v.Speaker = stage.SpeakerID
		v.Text = stage.Text
		v.Tangent = stage.TangentStageID != ""
	}
	if options, err := s.engine.AvailableOptions(); err == nil {
		v.Options = options
	}
	return v
}

func stringArg(args map[string]interface{}, key string) string {
	v, _ := args[key].(string)
	return strings.TrimSpace(v)
}

func (s *Server) handleListGraphs(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (GraphList, error) {
	ids, err := s.content.ListGraphs()
	if err != nil {
		return GraphList{}, err
	}
	return GraphList{Graphs: ids}, nil
}

func (s *Server) handleStart(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (View, error) {
	graphID := stringArg(args, "graph_id")
	if graphID == "" {
		return View{}, fmt.Errorf("%w: graph_id is required", domain.ErrInvalidArgument)
	}
	if err := s.engine.StartDialogue(ctx, graphID); err != nil {
		return View{}, err
	}
	return s.view(), nil
}

func (s *Server) handleView(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (View, error) {
	return s.view(), nil
}

func (s *Server) handleSelect(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (View, error) {
	if err := s.engine.SelectOption(ctx, stringArg(args, "option_id")); err != nil {
		s.logger.Debug("MCP select_option rejected", "err", err)
		return View{}, err
	}
	return s.view(), nil
}

func (s *Server) handleTangent(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (View, error) {
	if err := s.engine.TakeTangent(ctx); err != nil {
		return View{}, err
	}
	return s.view(), nil
}

func (s *Server) handleAction(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (View, error) {
	kind, err := strategy.ParseKind(stringArg(args, "kind"))
	if err != nil {
		return View{}, err
	}
	stage, ok := s.engine.CurrentNode()
	if !ok {
		return View{}, domain.ErrNoActiveDialogue
	}
	character := stringArg(args, "character_id")
	if character == "" {
		character = stage.SpeakerID
	}
	if _, err := s.engine.ApplyStrategicAction(ctx, kind, character, stage.ID); err != nil {
		return View{}, err
	}
	return s.view(), nil
}

func (s *Server) handleEnd(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (View, error) {
	if err := s.engine.EndDialogue(ctx); err != nil {
		return View{}, err
	}
	return s.view(), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(dialogueURI, "Current Dialogue",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := json.Marshal(s.view())
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: dialogueURI, MIMEType: "application/json", Text: string(data)},
		}, nil
	})

	s.mcpServer.AddResource(mcp.NewResource(graphURI, "Active Dialogue Graph",
		mcp.WithMIMEType("text/vnd.mermaid"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		text, err := s.activeGraph()
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: graphURI, MIMEType: "text/vnd.mermaid", Text: text},
		}, nil
	})
}

// activeGraph renders the active graph as Mermaid with the visited path highlighted.
func (s *Server) activeGraph() (string, error) {
	g, ok := s.engine.ActiveDialogue()
	if !ok {
		return "", domain.ErrNoActiveDialogue
	}
	return graph.GenerateMermaid(g, graph.OverlayFromSession(s.engine.Session())), nil
}
