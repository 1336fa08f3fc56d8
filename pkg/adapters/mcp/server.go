package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/sync/errgroup"

	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/ports"
	"github.com/aretw0/parley/pkg/runner"
)

// TranscriptURI is the resource holding the dialog transcript.
const TranscriptURI = "parley://transcript"

// DialogResponse is returned by every tool.
type DialogResponse struct {
	Snapshot domain.Snapshot `json:"snapshot" jsonschema_description:"The dialog after the action settled"`
	Reply    string          `json:"reply,omitempty" jsonschema_description:"Text of the newest bot message"`
	Rejected string          `json:"rejected,omitempty" jsonschema_description:"Why the input was refused, if it was"`
}

// Server exposes a Dialog as an MCP server.
type Server struct {
	dialog    ports.Dialog
	version   string
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithVersion sets the version reported to MCP clients.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(dialog ports.Dialog, opts ...Option) *Server {
	s := &Server{
		dialog:  dialog,
		version: "dev",
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.mcpServer = server.NewMCPServer("parley-mcp", s.version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops when ctx ends.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	allow := cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Requested-With"},
	})
	mux := http.NewServeMux()
	mux.Handle("/sse", allow(sseServer.SSEHandler()))
	mux.Handle("/message", allow(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("submit_question",
		mcp.WithDescription("Ask the Answer Service a question. Closes any open disambiguation."),
		mcp.WithString("text", mcp.Required(), mcp.Description("The question")),
		mcp.WithOutputSchema[DialogResponse](),
	), mcp.NewStructuredToolHandler(s.handleSubmitQuestion))

	s.mcpServer.AddTool(mcp.NewTool("choose_option",
		mcp.WithDescription("Pick how to continue after an unanswered question."),
		mcp.WithString("option", mcp.Required(),
			mcp.Description("provideAnswer or searchWeb"),
			mcp.Enum(string(domain.OptionProvideAnswer), string(domain.OptionSearchWeb)),
		),
		mcp.WithOutputSchema[DialogResponse](),
	), mcp.NewStructuredToolHandler(s.handleChooseOption))

	s.mcpServer.AddTool(mcp.NewTool("submit_manual_answer",
		mcp.WithDescription("Teach the answer to the open question."),
		mcp.WithString("text", mcp.Required(), mcp.Description("The answer")),
		mcp.WithOutputSchema[DialogResponse](),
	), mcp.NewStructuredToolHandler(s.handleSubmitManualAnswer))

	s.mcpServer.AddTool(mcp.NewTool("confirm_web_answer",
		mcp.WithDescription("Save or discard the answer found on the web."),
		mcp.WithBoolean("accept", mcp.Required(), mcp.Description("true saves the answer")),
		mcp.WithOutputSchema[DialogResponse](),
	), mcp.NewStructuredToolHandler(s.handleConfirmWebAnswer))

	s.mcpServer.AddTool(mcp.NewTool("another_joke",
		mcp.WithDescription("Ask for another joke after a joke was told."),
		mcp.WithOutputSchema[DialogResponse](),
	), mcp.NewStructuredToolHandler(s.handleAnotherJoke))

	s.mcpServer.AddTool(mcp.NewTool("dismiss",
		mcp.WithDescription("Close the open disambiguation without answering."),
		mcp.WithOutputSchema[DialogResponse](),
	), mcp.NewStructuredToolHandler(s.handleDismiss))

	s.mcpServer.AddTool(mcp.NewTool("get_snapshot",
		mcp.WithDescription("Read the dialog without changing it."),
		mcp.WithOutputSchema[DialogResponse](),
	), mcp.NewStructuredToolHandler(s.handleSnapshot))
}

// Handler methods for structured tools

func (s *Server) handleSubmitQuestion(ctx context.Context, _ mcp.CallToolRequest, args map[string]any) (DialogResponse, error) {
	text, err := textArg(args, "text")
	if err != nil {
		s.logger.Warn("MCP submit_question: input rejected", "error", err)
		return DialogResponse{}, err
	}
	return respond(s.dialog.SubmitQuestion(ctx, text))
}

func (s *Server) handleChooseOption(ctx context.Context, _ mcp.CallToolRequest, args map[string]any) (DialogResponse, error) {
	raw, _ := args["option"].(string)
	opt, err := domain.ParseOption(raw)
	if err != nil {
		return DialogResponse{}, err
	}
	return respond(s.dialog.ChooseOption(ctx, opt))
}

func (s *Server) handleSubmitManualAnswer(ctx context.Context, _ mcp.CallToolRequest, args map[string]any) (DialogResponse, error) {
	text, err := textArg(args, "text")
	if err != nil {
		s.logger.Warn("MCP submit_manual_answer: input rejected", "error", err)
		return DialogResponse{}, err
	}
	return respond(s.dialog.SubmitManualAnswer(ctx, text))
}

func (s *Server) handleConfirmWebAnswer(ctx context.Context, _ mcp.CallToolRequest, args map[string]any) (DialogResponse, error) {
	accept, ok := args["accept"].(bool)
	if !ok {
		return DialogResponse{}, errors.New("accept must be a boolean")
	}
	return respond(s.dialog.ConfirmWebAnswer(ctx, accept))
}

func (s *Server) handleAnotherJoke(ctx context.Context, _ mcp.CallToolRequest, _ map[string]any) (DialogResponse, error) {
	return respond(s.dialog.RequestAnotherJoke(ctx))
}

func (s *Server) handleDismiss(ctx context.Context, _ mcp.CallToolRequest, _ map[string]any) (DialogResponse, error) {
	return respond(s.dialog.Dismiss(ctx))
}

func (s *Server) handleSnapshot(_ context.Context, _ mcp.CallToolRequest, _ map[string]any) (DialogResponse, error) {
	return respond(s.dialog.Snapshot(), nil)
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(TranscriptURI, "Dialog transcript",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.dialog.Snapshot().Transcript)
		if err != nil {
			return nil, fmt.Errorf("failed to encode transcript: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      TranscriptURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}

// respond turns a validation failure into a Rejected response rather than a tool error.
func respond(snap domain.Snapshot, err error) (DialogResponse, error) {
	resp := DialogResponse{Snapshot: snap}
	if last, ok := snap.LastMessage(); ok && last.Role == domain.RoleBot {
		resp.Reply = last.Text
	}
	if err != nil {
		var ve *domain.ValidationError
		if !errors.As(err, &ve) {
			return DialogResponse{}, err
		}
		resp.Rejected = ve.Reason
	}
	return resp, nil
}

func textArg(args map[string]any, name string) (string, error) {
	raw, _ := args[name].(string)
	clean, err := runner.SanitizeInput(raw)
	if err != nil {
		return "", fmt.Errorf("input rejected: %w", err)
	}
	return clean, nil
}
