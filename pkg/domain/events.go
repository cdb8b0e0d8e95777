package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventCommandApplied  EventType = "command_applied"
	EventCommandRejected EventType = "command_rejected"
	EventPersist         EventType = "persist"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// CommandEvent reports a line that was applied or rejected.
type CommandEvent struct {
	EventBase
	Line     string `json:"line"`
	Kind     Kind   `json:"kind"`
	Recorded bool   `json:"recorded,omitempty"`
	Err      error  `json:"-"`
}

// PersistEvent reports the outcome of a save or load.
type PersistEvent struct {
	EventBase
	Op        Kind   `json:"op"`
	Target    string `json:"target,omitempty"`
	Cancelled bool   `json:"cancelled,omitempty"`
	Err       error  `json:"-"`
}

// LifecycleHooks defines callbacks for session observability.
// Any field may be nil.
type LifecycleHooks struct {
	OnCommandApplied  func(context.Context, *CommandEvent)
	OnCommandRejected func(context.Context, *CommandEvent)
	OnPersist         func(context.Context, *PersistEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnCommandApplied:  chain(h.OnCommandApplied, other.OnCommandApplied),
		OnCommandRejected: chain(h.OnCommandRejected, other.OnCommandRejected),
		OnPersist:         chain(h.OnPersist, other.OnPersist),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
