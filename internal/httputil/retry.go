// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages.
package httputil

import (
	"context"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"time"
)

// Policy controls retry behavior for transient HTTP failures.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// BaseDelay is the delay before the first retry; it doubles per
	// attempt and is capped at MaxDelay.
	BaseDelay time.Duration
	MaxDelay  time.Duration

	// JitterFrac adds up to this fraction of the computed delay as
	// random jitter, so concurrent retries against one source spread out.
	JitterFrac float64
}

// DefaultPolicy is used when a zero Policy is passed to DoWithRetry.
var DefaultPolicy = Policy{
	MaxAttempts: 5,
	BaseDelay:   500 * time.Millisecond,
	MaxDelay:    10 * time.Second,
	JitterFrac:  0.25,
}

// Retriable reports whether an HTTP status is worth retrying: 429 plus the
// 5xx range. Other 4xx are caller errors and fail immediately.
func Retriable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// Backoff returns the delay before retry number attempt (0-based),
// excluding jitter: BaseDelay doubling per attempt, capped at MaxDelay.
func (p Policy) Backoff(attempt int) time.Duration {
	d := p.BaseDelay
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}

// delay adds jitter to the base backoff and honors a Retry-After value
// when the server's demand exceeds the computed delay.
func (p Policy) delay(attempt int, retryAfter time.Duration) time.Duration {
	d := p.Backoff(attempt)
	if p.JitterFrac > 0 {
		d += time.Duration(rand.Float64() * p.JitterFrac * float64(d))
	}
	if retryAfter > d {
		d = retryAfter
	}
	return d
}

// DoWithRetry executes an HTTP request, retrying transient failures
// (transport errors, HTTP 429, HTTP 5xx) with exponential backoff and
// jitter. Non-retriable statuses return immediately for the caller to
// classify. The returned attempt count includes the first try. If the
// context is cancelled during a backoff wait the context error is
// returned. After exhausting attempts the last response or transport
// error is returned as-is.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, p Policy) (resp *http.Response, attempts int, err error) {
	if p.MaxAttempts <= 0 {
		p = DefaultPolicy
	}

	for attempt := 0; ; attempt++ {
		resp, err = client.Do(req.Clone(ctx))
		attempts = attempt + 1

		var retryAfter time.Duration
		if err == nil {
			if !Retriable(resp.StatusCode) {
				return resp, attempts, nil
			}
			if attempts >= p.MaxAttempts {
				return resp, attempts, nil
			}
			retryAfter = parseRetryAfter(resp.Header.Get("Retry-After"))
			// Drain and close the body before retrying.
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		} else {
			if ctx.Err() != nil {
				return nil, attempts, ctx.Err()
			}
			if attempts >= p.MaxAttempts {
				return nil, attempts, err
			}
		}

		select {
		case <-ctx.Done():
			return nil, attempts, ctx.Err()
		case <-time.After(p.delay(attempt, retryAfter)):
		}
	}
}

// parseRetryAfter handles the delay-seconds form of the header. The HTTP
// date form is rare on the academic APIs and is ignored.
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
