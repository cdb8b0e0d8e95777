package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/aretw0/turtle/pkg/session"
)

// JSON-Lines record types.
const (
	RecordMessage = "message"
	RecordSystem  = "system"
	RecordReport  = "report"
)

// Record is one JSON line written by JSONHandler.
type Record struct {
	Type     string   `json:"type"`
	Text     string   `json:"text,omitempty"`
	Line     string   `json:"line,omitempty"`
	Accepted *bool    `json:"accepted,omitempty"`
	Recorded *bool    `json:"recorded,omitempty"`
	Messages []string `json:"messages,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// JSONHandler implements the IOHandler interface for structured JSON-Lines communication.
// Input lines may be JSON strings or raw text.
type JSONHandler struct {
	Reader *bufio.Reader

	mu      sync.Mutex
	encoder *json.Encoder
}

var _ ReportWriter = (*JSONHandler)(nil)

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		encoder: json.NewEncoder(w),
	}
}

func (h *JSONHandler) Output(ctx context.Context, msg string) error {
	return h.encode(Record{Type: RecordMessage, Text: msg})
}

func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.encode(Record{Type: RecordSystem, Text: msg})
}

// WriteReport emits the outcome of one submitted line.
func (h *JSONHandler) WriteReport(ctx context.Context, rep session.Report) error {
	return h.encode(Record{
		Type:     RecordReport,
		Line:     rep.Line,
		Accepted: &rep.Accepted,
		Recorded: &rep.Recorded,
		Messages: rep.Messages,
		Error:    rep.Error(),
	})
}

func (h *JSONHandler) Input(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text, err := h.Reader.ReadString('\n')
	if err != nil && (err != io.EOF || text == "") {
		return "", err
	}
	text = strings.TrimSpace(text)

	// Try to unquote if it's a JSON string
	var val string
	if err := json.Unmarshal([]byte(text), &val); err == nil {
		return SanitizeInput(val)
	}
	return SanitizeInput(text)
}

func (h *JSONHandler) encode(rec Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.encoder.Encode(rec)
}
