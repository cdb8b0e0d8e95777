package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/aretw0/turtle"
	"github.com/aretw0/turtle/internal/logging"
	"github.com/aretw0/turtle/pkg/domain"
	"github.com/aretw0/turtle/pkg/runner"
	"github.com/aretw0/turtle/pkg/session"
	"github.com/go-chi/chi/v5"
)

// Server exposes a session.Manager over HTTP.
type Server struct {
	Manager *session.Manager
	Streams *StreamManager

	metrics  http.Handler
	logger   *slog.Logger
	onUnsave domain.Choice
}

// Option configures the Server.
type Option func(*Server)

// WithMetricsHandler mounts h at GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithUnsavedPolicy sets the answer used when a request does not carry on_unsaved.
func WithUnsavedPolicy(c domain.Choice) Option {
	return func(s *Server) {
		s.onUnsave = c
	}
}

// NewHandler creates a new HTTP handler for the manager.
func NewHandler(manager *session.Manager, opts ...Option) http.Handler {
	s := &Server{
		Manager:  manager,
		Streams:  NewStreamManager(),
		logger:   logging.NewNop(),
		onUnsave: domain.ChoiceCancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return enableCORS(s.Routes())
}

// Routes builds the router without middleware.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/healthz", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.ListSessions)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Delete("/", s.DeleteSession)
			r.Post("/lines", s.SubmitLines)
			r.Get("/history", s.GetHistory)
			r.Get("/canvas.png", s.GetCanvas)
			r.Get("/events", s.SubscribeEvents)
		})
	})
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// LinesRequest is the body of POST /sessions/{id}/lines.
// Target and Source answer the save and load choosers; OnUnsaved answers the unsaved-changes prompt.
type LinesRequest struct {
	Line      string   `json:"line"`
	Lines     []string `json:"lines,omitempty"`
	Target    string   `json:"target,omitempty"`
	Source    string   `json:"source,omitempty"`
	OnUnsaved string   `json:"on_unsaved,omitempty"`
}

// ReportResponse is the JSON form of a session.Report.
type ReportResponse struct {
	Line     string   `json:"line"`
	Accepted bool     `json:"accepted"`
	Recorded bool     `json:"recorded"`
	Messages []string `json:"messages,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// PoseResponse is the JSON form of the turtle pose.
type PoseResponse struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Heading float64 `json:"heading"`
	PenDown bool    `json:"pen_down"`
	Color   string  `json:"color"`
}

// StateResponse summarises a session.
type StateResponse struct {
	ID            string       `json:"id"`
	Pose          PoseResponse `json:"pose"`
	HistoryLen    int          `json:"history_len"`
	ImageDirty    bool         `json:"image_dirty"`
	CommandsDirty bool         `json:"commands_dirty"`
}

// LinesResponse is returned by POST /sessions/{id}/lines.
type LinesResponse struct {
	Reports []ReportResponse `json:"reports"`
	State   StateResponse    `json:"state"`
}

// SubmitLines handles POST /sessions/{id}/lines.
func (s *Server) SubmitLines(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body LinesRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("SubmitLines: Invalid request body", "err", err)
		return
	}

	lines := body.Lines
	if len(lines) == 0 {
		lines = []string{body.Line}
	}
	for i, line := range lines {
		clean, err := runner.SanitizeInput(line)
		if err != nil {
			http.Error(w, fmt.Sprintf("Invalid input: %v", err), http.StatusBadRequest)
			s.logger.Warn("SubmitLines: Input rejected", "err", err, "size", len(line))
			return
		}
		lines[i] = clean
	}

	choice := s.onUnsave
	if body.OnUnsaved != "" {
		c, ok := domain.ParseChoice(strings.ToLower(body.OnUnsaved))
		if !ok {
			http.Error(w, fmt.Sprintf("Invalid on_unsaved: %q", body.OnUnsaved), http.StatusBadRequest)
			return
		}
		choice = c
	}
	answers := runner.StaticInteraction{Choice: choice, Target: body.Target, Source: body.Source}

	var resp LinesResponse
	err := s.Manager.Do(r.Context(), id, func(ctx context.Context, sess *session.Session) error {
		restore := sess.Use(answers)
		defer restore()

		for _, rep := range sess.Replay(ctx, lines) {
			resp.Reports = append(resp.Reports, reportFromSession(rep))
		}
		resp.State = stateFromSession(id, sess)
		return nil
	})
	if err != nil {
		s.fail(w, "SubmitLines", err)
		return
	}

	if bytes, err := json.Marshal(resp); err == nil {
		s.Streams.Broadcast(id, string(bytes))
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetSession handles GET /sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var resp StateResponse
	err := s.Manager.Lookup(r.Context(), id, func(_ context.Context, sess *session.Session) error {
		resp = stateFromSession(id, sess)
		return nil
	})
	if err != nil {
		s.fail(w, "GetSession", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetHistory handles GET /sessions/{id}/history.
func (s *Server) GetHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var history []string
	err := s.Manager.Lookup(r.Context(), id, func(_ context.Context, sess *session.Session) error {
		history = sess.History()
		return nil
	})
	if err != nil {
		s.fail(w, "GetHistory", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"history": history})
}

// GetCanvas handles GET /sessions/{id}/canvas.png.
func (s *Server) GetCanvas(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := s.Manager.Lookup(r.Context(), id, func(_ context.Context, sess *session.Session) error {
		w.Header().Set("Content-Type", "image/png")
		return png.Encode(w, sess.Canvas().Rasterize())
	})
	if err != nil {
		s.fail(w, "GetCanvas", err)
	}
}

// DeleteSession handles DELETE /sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.Manager.Delete(r.Context(), id); err != nil {
		s.fail(w, "DeleteSession", err)
		return
	}
	s.Streams.Close(id)
	w.WriteHeader(http.StatusNoContent)
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"sessions": s.Manager.List()})
}

// GetHealth handles the GET /healthz request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "turtle-http",
		"version": strings.TrimSpace(turtle.Version),
	})
}

// SubscribeEvents handles GET /sessions/{id}/events (SSE).
// Every POST to the session's lines is pushed as one data frame.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	id := chi.URLParam(r, "id")
	ch, cancel := s.Streams.Subscribe(id)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	s.logger.Info("SSE: Subscribing to Session Updates", "session_id", id)
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE Client Disconnected", "session_id", id)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, domain.ErrSessionNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	http.Error(w, fmt.Sprintf("%s error: %v", op, err), http.StatusInternalServerError)
	s.logger.Error(op+" failed", "err", err)
}

// StreamManager handles active SSE connections
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan string]struct{} // SessionID -> Set of Channels
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan string]struct{}),
	}
}

// Subscribe registers a buffered channel for sessionID. The returned func unsubscribes.
func (sm *StreamManager) Subscribe(sessionID string) (<-chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[sessionID]; !ok {
		sm.subscribers[sessionID] = make(map[chan string]struct{})
	}
	sm.subscribers[sessionID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		sm.drop(sessionID, ch)
	}
}

func (sm *StreamManager) Broadcast(sessionID string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[sessionID] {
		select {
		case ch <- msg:
		default:
			// Drop message if channel is full (slow client)
			slog.Warn("SSE: Client buffer full, dropping message", "session_id", sessionID)
		}
	}
}

// Close ends every stream of sessionID.
func (sm *StreamManager) Close(sessionID string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	for ch := range sm.subscribers[sessionID] {
		sm.drop(sessionID, ch)
	}
}

// drop must be called with mu held. Dropping twice is a no-op.
func (sm *StreamManager) drop(sessionID string, ch chan string) {
	subs, ok := sm.subscribers[sessionID]
	if !ok {
		return
	}
	if _, ok := subs[ch]; !ok {
		return
	}
	delete(subs, ch)
	close(ch)
	if len(subs) == 0 {
		delete(sm.subscribers, sessionID)
	}
}

// -- Helpers --

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "err", err)
	}
}

func reportFromSession(rep session.Report) ReportResponse {
	return ReportResponse{
		Line:     rep.Line,
		Accepted: rep.Accepted,
		Recorded: rep.Recorded,
		Messages: rep.Messages,
		Error:    rep.Error(),
	}
}

func stateFromSession(id string, sess *session.Session) StateResponse {
	p := sess.Pose()
	return StateResponse{
		ID: id,
		Pose: PoseResponse{
			X:       p.Position.X,
			Y:       p.Position.Y,
			Heading: p.Heading,
			PenDown: p.PenDown,
			Color:   p.Color.String(),
		},
		HistoryLen:    len(sess.History()),
		ImageDirty:    sess.IsImageDirty(),
		CommandsDirty: sess.IsCommandsDirty(),
	}
}
