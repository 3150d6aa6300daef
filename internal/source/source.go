// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package source translates normalized queries into per-source HTTP
// requests and parses source payloads into raw records. Each academic API
// implements the Adapter interface per the Strategy pattern; a static
// registry keyed by source name selects implementations.
package source

import (
	"context"
	"net/http"

	"github.com/pdiddy/bibwatch/pkg/types"
)

// Adapter is the capability interface one external source implements.
// Adapters are stateless across runs; everything request-shaped comes from
// the query and the cursor.
type Adapter interface {
	Name() types.Source

	// NewRequest builds the HTTP request for one page. The empty cursor
	// means the first page. Adapters do not set identity headers; the
	// fetch executor applies the polite User-Agent to every request.
	NewRequest(ctx context.Context, q types.Query, cursor string) (*http.Request, error)

	// ParsePage decodes one payload into raw records and the cursor for
	// the next page. An empty next cursor ends pagination. The cursor
	// the request was built with is passed back in so offset- and
	// page-numbered sources can advance it.
	ParsePage(payload []byte, cursor string) (types.RawPage, error)
}

// Registry returns the full adapter set, keyed by source name.
func Registry(cfg types.Config) map[types.Source]Adapter {
	pageSize := cfg.Fetch.PageSize
	return map[types.Source]Adapter{
		types.SourceArxiv:    &Arxiv{PageSize: pageSize},
		types.SourceCrossref: &Crossref{PageSize: pageSize},
		types.SourceDOAJ:     &DOAJ{PageSize: pageSize},
		types.SourceOpenAlex: &OpenAlex{PageSize: pageSize, Mailto: cfg.HTTP.Contact},
	}
}

// Select resolves the adapters participating in a run: the configured
// enabled set, narrowed by the query's include list, minus its exclude
// list. The result follows types.AllSources order so runs are
// deterministic.
func Select(reg map[types.Source]Adapter, q types.Query, cfg types.Config) []Adapter {
	enabled := make(map[types.Source]bool)
	if len(cfg.Sources.Enabled) == 0 {
		for name := range reg {
			enabled[name] = true
		}
	} else {
		for _, name := range cfg.Sources.Enabled {
			enabled[name] = true
		}
	}

	if len(q.Include) > 0 {
		included := make(map[types.Source]bool)
		for _, name := range q.Include {
			included[name] = true
		}
		for name := range enabled {
			if !included[name] {
				delete(enabled, name)
			}
		}
	}
	for _, name := range q.Exclude {
		delete(enabled, name)
	}

	var adapters []Adapter
	for _, name := range types.AllSources {
		if enabled[name] {
			if a, ok := reg[name]; ok {
				adapters = append(adapters, a)
			}
		}
	}
	return adapters
}
