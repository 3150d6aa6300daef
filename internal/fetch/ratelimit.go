// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"sync"

	"golang.org/x/time/rate"

	"github.com/pdiddy/bibwatch/pkg/types"
)

// limiters holds one token-bucket limiter per source. It is the only
// state shared across concurrent fetch tasks.
type limiters struct {
	mu    sync.Mutex
	m     map[types.Source]*rate.Limiter
	rps   rate.Limit
	burst int
}

func newLimiters(rps float64, burst int) *limiters {
	r := rate.Limit(rps)
	if rps <= 0 {
		r = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}
	return &limiters{
		m:     make(map[types.Source]*rate.Limiter),
		rps:   r,
		burst: burst,
	}
}

// wait blocks until the source's limiter grants a token or the context is
// cancelled.
func (l *limiters) wait(ctx context.Context, src types.Source) error {
	l.mu.Lock()
	lim, ok := l.m[src]
	if !ok {
		lim = rate.NewLimiter(l.rps, l.burst)
		l.m[src] = lim
	}
	l.mu.Unlock()

	return lim.Wait(ctx)
}
