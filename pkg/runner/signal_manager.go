package runner

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// DefaultSignalGrace is how long an input error waits for a matching signal.
const DefaultSignalGrace = 100 * time.Millisecond

// SignalManager turns SIGINT and SIGTERM into context cancellation for the read loop.
// On a terminal Ctrl+C can close stdin a moment before the signal arrives, so
// Interrupted waits out that gap before deciding an input error was a real failure.
type SignalManager struct {
	Grace time.Duration

	ctx    context.Context
	cancel context.CancelFunc
}

// NewSignalManager starts listening for signals. The returned context also ends with parent.
func NewSignalManager(parent context.Context) *SignalManager {
	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	return &SignalManager{Grace: DefaultSignalGrace, ctx: ctx, cancel: cancel}
}

// Context is cancelled by a signal, by the parent or by Stop.
func (sm *SignalManager) Context() context.Context {
	return sm.ctx
}

// Stop releases the signal registration.
func (sm *SignalManager) Stop() {
	sm.cancel()
}

// Interrupted reports whether an input failure belongs to a signal or a cancelled parent.
func (sm *SignalManager) Interrupted() bool {
	if sm.ctx.Err() != nil {
		return true
	}
	select {
	case <-sm.ctx.Done():
		return true
	case <-time.After(sm.Grace):
		return false
	}
}
