package mcp

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/turtle"
	"github.com/aretw0/turtle/internal/logging"
	"github.com/aretw0/turtle/pkg/domain"
	"github.com/aretw0/turtle/pkg/interpreter"
	"github.com/aretw0/turtle/pkg/runner"
	"github.com/aretw0/turtle/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// DefaultSessionID is used when a tool call names no session.
const DefaultSessionID = "default"

// HistoryURI is the resource holding the default session's history.
const HistoryURI = "turtle://history"

// CommandsURI is the resource listing the recognized command names.
const CommandsURI = "turtle://commands"

// SubmitResponse is the structured result of submit_line.
type SubmitResponse struct {
	Line     string        `json:"line" jsonschema_description:"The submitted line"`
	Accepted bool          `json:"accepted" jsonschema_description:"True when the line parsed and was dispatched"`
	Recorded bool          `json:"recorded" jsonschema_description:"True when the line was appended to history"`
	Messages []string      `json:"messages,omitempty" jsonschema_description:"Messages displayed while handling the line"`
	Error    string        `json:"error,omitempty" jsonschema_description:"Parse or persistence failure"`
	State    StateResponse `json:"state" jsonschema_description:"Session state after the line"`
}

// StateResponse summarises a session.
type StateResponse struct {
	SessionID     string  `json:"session_id"`
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	Heading       float64 `json:"heading" jsonschema_description:"Degrees clockwise from screen-up"`
	PenDown       bool    `json:"pen_down"`
	Color         string  `json:"color"`
	History       int     `json:"history" jsonschema_description:"Number of recorded lines"`
	ImageDirty    bool    `json:"image_dirty"`
	CommandsDirty bool    `json:"commands_dirty"`
}

// Server exposes a session.Manager as an MCP Server.
type Server struct {
	manager   *session.Manager
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(manager *session.Manager, opts ...Option) *Server {
	s := &Server{
		manager:   manager,
		mcpServer: server.NewMCPServer("turtle-mcp", strings.TrimSpace(turtle.Version)),
		logger:    logging.NewNop(),
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

// ServeSSE starts the server on the given port using SSE and stops when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

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
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
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
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	submitTool := mcp.NewTool("submit_line",
		mcp.WithDescription("Submit one turtle command line (e.g. 'move 100', 'left', 'red', 'clear') to a session."),
		mcp.WithString("line", mcp.Required(), mcp.Description("The command line")),
		mcp.WithString("session_id", mcp.Description("Session to draw on (default: 'default')")),
		mcp.WithString("target", mcp.Description("Name used by saveimage/savecommands; omit to dismiss the chooser")),
		mcp.WithString("source", mcp.Description("Name used by loadimage/loadcommands; omit to dismiss the chooser")),
		mcp.WithString("on_unsaved", mcp.Description("Answer to the unsaved-changes prompt: save, discard or cancel (default)")),
		mcp.WithOutputSchema[SubmitResponse](),
	)
	s.mcpServer.AddTool(submitTool, mcp.NewStructuredToolHandler(s.handleSubmitLine))

	stateTool := mcp.NewTool("get_state",
		mcp.WithDescription("Get the pose and unsaved-changes flags of a session."),
		mcp.WithString("session_id", mcp.Description("Session to inspect (default: 'default')")),
		mcp.WithOutputSchema[StateResponse](),
	)
	s.mcpServer.AddTool(stateTool, mcp.NewStructuredToolHandler(s.handleGetState))

	s.mcpServer.AddTool(mcp.NewTool("get_canvas",
		mcp.WithDescription("Get the session canvas as a PNG image."),
		mcp.WithString("session_id", mcp.Description("Session to render (default: 'default')")),
	), s.handleGetCanvas)
}

func (s *Server) handleSubmitLine(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (SubmitResponse, error) {
	id := sessionID(args)
	line, _ := args["line"].(string)
	target, _ := args["target"].(string)
	source, _ := args["source"].(string)

	clean, err := runner.SanitizeInput(line)
	if err != nil {
		s.logger.Warn("MCP submit_line: Input rejected", "err", err, "size", len(line))
		return SubmitResponse{}, fmt.Errorf("input rejected: %w", err)
	}

	choice := domain.ChoiceCancel
	if raw, ok := args["on_unsaved"].(string); ok && raw != "" {
		c, ok := domain.ParseChoice(strings.ToLower(raw))
		if !ok {
			return SubmitResponse{}, fmt.Errorf("invalid on_unsaved %q", raw)
		}
		choice = c
	}

	var resp SubmitResponse
	err = s.manager.Do(ctx, id, func(ctx context.Context, sess *session.Session) error {
		restore := sess.Use(runner.StaticInteraction{Choice: choice, Target: target, Source: source})
		defer restore()

		rep := sess.SubmitLine(ctx, clean)
		resp = SubmitResponse{
			Line:     rep.Line,
			Accepted: rep.Accepted,
			Recorded: rep.Recorded,
			Messages: rep.Messages,
			Error:    rep.Error(),
			State:    stateOf(id, sess),
		}
		return nil
	})
	if err != nil {
		return SubmitResponse{}, fmt.Errorf("submit failed: %w", err)
	}
	return resp, nil
}

func (s *Server) handleGetState(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (StateResponse, error) {
	id := sessionID(args)
	var resp StateResponse
	err := s.manager.Lookup(ctx, id, func(_ context.Context, sess *session.Session) error {
		resp = stateOf(id, sess)
		return nil
	})
	if err != nil {
		return StateResponse{}, err
	}
	return resp, nil
}

func (s *Server) handleGetCanvas(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := sessionID(request.GetArguments())
	var buf bytes.Buffer
	err := s.manager.Lookup(ctx, id, func(_ context.Context, sess *session.Session) error {
		return png.Encode(&buf, sess.Canvas().Rasterize())
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("render failed: %v", err)), nil
	}
	return mcp.NewToolResultImage("canvas of session "+id, base64.StdEncoding.EncodeToString(buf.Bytes()), "image/png"), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(HistoryURI, "Default Session History",
		mcp.WithMIMEType("application/json"),
	), s.readHistory)

	s.mcpServer.AddResource(mcp.NewResource(CommandsURI, "Recognized Commands",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, _ := json.Marshal(interpreter.Names())
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      CommandsURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}

// readHistory returns an empty list until the default session exists.
func (s *Server) readHistory(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	history := []string{}
	err := s.manager.Lookup(ctx, DefaultSessionID, func(_ context.Context, sess *session.Session) error {
		history = sess.History()
		return nil
	})
	if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	jsonBytes, _ := json.Marshal(history)

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      HistoryURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}

func sessionID(args map[string]any) string {
	if id, ok := args["session_id"].(string); ok && id != "" {
		return id
	}
	return DefaultSessionID
}

func stateOf(id string, sess *session.Session) StateResponse {
	p := sess.Pose()
	return StateResponse{
		SessionID:     id,
		X:             p.Position.X,
		Y:             p.Position.Y,
		Heading:       p.Heading,
		PenDown:       p.PenDown,
		Color:         p.Color.String(),
		History:       len(sess.History()),
		ImageDirty:    sess.IsImageDirty(),
		CommandsDirty: sess.IsCommandsDirty(),
	}
}
