package runner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSignalManager_ParentCancel(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	sm := NewSignalManager(parent)
	defer sm.Stop()

	assert.NoError(t, sm.Context().Err())
	cancel()
	assert.True(t, sm.Interrupted(), "a cancelled parent counts as an interruption")
}

func TestSignalManager_Stop(t *testing.T) {
	sm := NewSignalManager(context.Background())
	ctx := sm.Context()
	sm.Stop()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}

func TestSignalManager_GraceExpires(t *testing.T) {
	sm := NewSignalManager(context.Background())
	defer sm.Stop()
	sm.Grace = 20 * time.Millisecond

	start := time.Now()
	assert.False(t, sm.Interrupted())
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, 20*time.Millisecond)
	assert.Less(t, elapsed, 500*time.Millisecond)
}
