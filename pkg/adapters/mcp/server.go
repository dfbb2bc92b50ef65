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

	"github.com/aretw0/taxwizard"
	"github.com/aretw0/taxwizard/internal/logging"
	"github.com/aretw0/taxwizard/internal/presentation/graph"
	"github.com/aretw0/taxwizard/internal/runtime"
	"github.com/aretw0/taxwizard/pkg/domain"
	"github.com/aretw0/taxwizard/pkg/ports"
	"github.com/aretw0/taxwizard/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"
)

const (
	catalogURI = "taxwizard://catalog"
	graphURI   = "taxwizard://catalog/graph"
)

// SessionResponse is the structured result of every session tool.
type SessionResponse struct {
	View     *runtime.View `json:"view" jsonschema_description:"The rendered session: current question, answers and routing outcome"`
	Terminal bool          `json:"terminal" jsonschema_description:"Indicates the session no longer accepts answers"`
}

// SessionArgs identifies a session.
type SessionArgs struct {
	SessionID string `json:"session_id"`
}

// AnswerArgs answers the current question of a session.
type AnswerArgs struct {
	SessionID string `json:"session_id"`
	Value     string `json:"value"`
}

// Server exposes the questionnaire engine as an MCP server.
type Server struct {
	engine    ports.StatelessEngine
	sessions  *session.Manager
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
func NewServer(engine ports.StatelessEngine, sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		sessions:  sessions,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("taxwizard-mcp", taxwizard.Version),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server, e.g. for in-process clients.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the MCP SSE transport on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	baseURL := "http://localhost" + addr
	if !strings.HasPrefix(addr, ":") {
		baseURL = "http://" + addr
	}
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))
	httpServer := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	})
	return g.Wait()
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

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("start_session",
		mcp.WithDescription("Start a new eligibility questionnaire, or resume an existing one by ID."),
		mcp.WithString("session_id", mcp.Description("Session ID to resume (optional; a new one is generated if omitted)")),
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.handleStart))

	s.mcpServer.AddTool(mcp.NewTool("answer_question",
		mcp.WithDescription("Answer the current question with one of its option values."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithString("value", mcp.Required(), mcp.Description("Option value, e.g. 'yes' or 'organization'")),
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.handleAnswer))

	s.mcpServer.AddTool(mcp.NewTool("go_back",
		mcp.WithDescription("Return to the previous question. Going back from the first question exits the session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.handleBack))

	s.mcpServer.AddTool(mcp.NewTool("restart_session",
		mcp.WithDescription("Discard all answers and start over."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.handleRestart))

	s.mcpServer.AddTool(mcp.NewTool("get_session",
		mcp.WithDescription("Render a session without changing it."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithOutputSchema[SessionResponse](),
	), mcp.NewStructuredToolHandler(s.handleGet))
}

func (s *Server) handleStart(ctx context.Context, _ mcp.CallToolRequest, args SessionArgs) (SessionResponse, error) {
	id := strings.TrimSpace(args.SessionID)
	if id == "" {
		id = session.NewID()
	}
	state, created, err := s.sessions.LoadOrStart(ctx, id, s.engine.Start)
	if err != nil {
		return SessionResponse{}, fmt.Errorf("start failed: %w", err)
	}
	s.logger.Debug("MCP: session started", "session_id", id, "created", created)
	return s.respond(ctx, state)
}

func (s *Server) handleAnswer(ctx context.Context, _ mcp.CallToolRequest, args AnswerArgs) (SessionResponse, error) {
	state, err := s.sessions.Apply(ctx, args.SessionID, func(st *domain.State) (*domain.State, error) {
		return s.engine.Submit(ctx, st, args.Value)
	})
	if err != nil {
		s.logger.Debug("MCP: answer rejected", "session_id", args.SessionID, "err", err)
		return SessionResponse{}, fmt.Errorf("answer rejected: %w", err)
	}
	return s.respond(ctx, state)
}

func (s *Server) handleBack(ctx context.Context, _ mcp.CallToolRequest, args SessionArgs) (SessionResponse, error) {
	state, err := s.sessions.Apply(ctx, args.SessionID, func(st *domain.State) (*domain.State, error) {
		return s.engine.Back(ctx, st)
	})
	if err != nil {
		return SessionResponse{}, fmt.Errorf("go back failed: %w", err)
	}
	return s.respond(ctx, state)
}

func (s *Server) handleRestart(ctx context.Context, _ mcp.CallToolRequest, args SessionArgs) (SessionResponse, error) {
	state, err := s.sessions.Apply(ctx, args.SessionID, func(st *domain.State) (*domain.State, error) {
		return s.engine.Restart(ctx, st), nil
	})
	if err != nil {
		return SessionResponse{}, fmt.Errorf("restart failed: %w", err)
	}
	return s.respond(ctx, state)
}

func (s *Server) handleGet(ctx context.Context, _ mcp.CallToolRequest, args SessionArgs) (SessionResponse, error) {
	state, err := s.sessions.Load(ctx, args.SessionID)
	if err != nil {
		return SessionResponse{}, fmt.Errorf("load failed: %w", err)
	}
	return s.respond(ctx, state)
}

func (s *Server) respond(ctx context.Context, state *domain.State) (SessionResponse, error) {
	view, err := s.engine.Render(ctx, state)
	if err != nil {
		return SessionResponse{}, fmt.Errorf("render failed: %w", err)
	}
	return SessionResponse{View: view, Terminal: state.Terminal()}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(catalogURI, "Eligibility Question Catalog",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(runtime.DescribeCatalog(s.engine.Catalog().Questions()))
		if err != nil {
			return nil, fmt.Errorf("failed to encode catalog: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: catalogURI, MIMEType: "application/json", Text: string(jsonBytes)},
		}, nil
	})

	s.mcpServer.AddResource(mcp.NewResource(graphURI, "Question Flow (Mermaid)",
		mcp.WithMIMEType("text/plain"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: graphURI, MIMEType: "text/plain", Text: graph.Mermaid(s.engine.Catalog(), nil)},
		}, nil
	})
}
