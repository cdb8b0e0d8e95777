package session

import "github.com/aretw0/turtle/pkg/domain"

// Report describes what one submitted line did.
type Report struct {
	Line    string         `json:"line"`
	Command domain.Command `json:"-"`

	// Accepted is true when the line parsed and was dispatched.
	Accepted bool `json:"accepted"`

	// Recorded is true when the line was appended to history.
	Recorded bool `json:"recorded"`

	// Messages holds every message displayed while handling the line,
	// including those of lines replayed by loadcommands.
	Messages []string `json:"messages,omitempty"`

	// Err is the parse or persistence failure, if any.
	Err error `json:"-"`
}

// Error returns the failure text or an empty string.
func (r Report) Error() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}
