// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStateTerminal(t *testing.T) {
	for _, s := range []State{StateCreated, StateDiscovering, StateFetching, StateExtracting, StateMerging, StateDiffing, StatePersisting} {
		assert.False(t, s.Terminal(), "state %q", s)
	}
	assert.True(t, StateCompleted.Terminal())
	assert.True(t, StateFailed.Terminal())
}

func TestSourceStatusFailed(t *testing.T) {
	assert.False(t, SourceStatus{Source: SourceArxiv, Records: 3}.Failed())
	assert.True(t, SourceStatus{Source: SourceArxiv, Error: "status 503"}.Failed())
}

func TestNewRunID(t *testing.T) {
	at := time.Date(2026, 8, 30, 12, 0, 5, 0, time.UTC)
	assert.Equal(t, "run_20260830_120005", NewRunID(at))
}
