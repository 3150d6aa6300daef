// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch executes adapter requests with bounded concurrency,
// per-source rate limiting, retry with exponential backoff, and ordered
// pagination. It is the only concurrent region of the pipeline.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/pdiddy/bibwatch/internal/httputil"
	"github.com/pdiddy/bibwatch/internal/source"
	"github.com/pdiddy/bibwatch/pkg/types"
)

// Result holds one adapter's fetch outcome. Records accumulated before a
// failure are kept so a cancelled or partially failed source still
// contributes what it managed to return.
type Result struct {
	Source   types.Source
	Records  []types.RawRecord
	Pages    int
	Attempts int
	Err      error
}

// Executor fans a query out to source adapters. Pages within one adapter
// are requested strictly in order; adapters run concurrently under a
// global in-flight bound and per-source rate limits.
type Executor struct {
	client    *http.Client
	cfg       types.FetchConfig
	userAgent string
	limits    *limiters
	sem       chan struct{}
}

// New builds an executor. The user agent is applied to every outbound
// request; the caller embeds the contact identifier in it.
func New(client *http.Client, cfg types.FetchConfig, userAgent string) *Executor {
	if client == nil {
		client = http.DefaultClient
	}
	return &Executor{
		client:    client,
		cfg:       cfg,
		userAgent: userAgent,
		limits:    newLimiters(cfg.PerSourceRPS, cfg.Burst),
		sem:       make(chan struct{}, cfg.MaxConcurrent),
	}
}

// Fetch runs the query against every adapter and fans the results back in.
// Each adapter fetches up to limit records across however many pages that
// takes. One adapter's failure never aborts its siblings; the caller
// decides what a fully failed source means for the run.
func (e *Executor) Fetch(ctx context.Context, q types.Query, adapters []source.Adapter, limit int, w io.Writer) map[types.Source]Result {
	ch := make(chan Result, len(adapters))
	var wg sync.WaitGroup

	for _, a := range adapters {
		wg.Add(1)
		go func(a source.Adapter) {
			defer wg.Done()
			ch <- e.fetchSource(ctx, q, a, limit)
		}(a)
	}

	go func() {
		wg.Wait()
		close(ch)
	}()

	results := make(map[types.Source]Result, len(adapters))
	for r := range ch {
		if r.Err != nil {
			fmt.Fprintf(w, "warning: source %s failed: %v\n", r.Source, r.Err)
		} else {
			fmt.Fprintf(w, "fetched %s: %d records in %d pages\n", r.Source, len(r.Records), r.Pages)
		}
		results[r.Source] = r
	}
	return results
}

// fetchSource walks one adapter's pages in request order. A page request
// is issued only after the prior page succeeded, so cursors stay valid.
func (e *Executor) fetchSource(ctx context.Context, q types.Query, a source.Adapter, limit int) Result {
	res := Result{Source: a.Name()}
	policy := httputil.Policy{
		MaxAttempts: e.cfg.MaxAttempts,
		BaseDelay:   e.cfg.BaseDelay,
		MaxDelay:    e.cfg.MaxDelay,
		JitterFrac:  e.cfg.JitterFrac,
	}

	cursor := ""
	for {
		payload, attempts, err := e.fetchPage(ctx, q, a, cursor, policy)
		res.Attempts += attempts
		if err != nil {
			res.Err = err
			return res
		}

		page, err := a.ParsePage(payload, cursor)
		if err != nil {
			res.Err = &PermanentSourceError{Source: a.Name(), Err: err}
			return res
		}

		res.Pages++
		res.Records = append(res.Records, page.Records...)

		if page.Next == "" || len(page.Records) == 0 || (limit > 0 && len(res.Records) >= limit) {
			break
		}
		cursor = page.Next
	}

	if limit > 0 && len(res.Records) > limit {
		res.Records = res.Records[:limit]
	}
	return res
}

// fetchPage issues a single page request under the rate limit and the
// global concurrency bound, and classifies the outcome.
func (e *Executor) fetchPage(ctx context.Context, q types.Query, a source.Adapter, cursor string, policy httputil.Policy) (payload []byte, attempts int, err error) {
	if err := e.limits.wait(ctx, a.Name()); err != nil {
		return nil, 0, err
	}

	select {
	case e.sem <- struct{}{}:
		defer func() { <-e.sem }()
	case <-ctx.Done():
		return nil, 0, ctx.Err()
	}

	req, err := a.NewRequest(ctx, q, cursor)
	if err != nil {
		return nil, 0, &PermanentSourceError{Source: a.Name(), Err: err}
	}
	req.Header.Set("User-Agent", e.userAgent)
	req.Header.Set("Accept", "application/json,application/atom+xml;q=0.9,*/*;q=0.1")

	resp, attempts, err := httputil.DoWithRetry(ctx, e.client, req, policy)
	if err != nil {
		if ctx.Err() != nil {
			return nil, attempts, ctx.Err()
		}
		return nil, attempts, &TransientSourceError{Source: a.Name(), Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case httputil.Retriable(resp.StatusCode):
		// Still transient after the retry budget.
		io.Copy(io.Discard, resp.Body)
		return nil, attempts, &TransientSourceError{Source: a.Name(), Status: resp.StatusCode}
	default:
		io.Copy(io.Discard, resp.Body)
		return nil, attempts, &PermanentSourceError{Source: a.Name(), Status: resp.StatusCode}
	}

	payload, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, attempts, &TransientSourceError{Source: a.Name(), Err: err}
	}
	return payload, attempts, nil
}
