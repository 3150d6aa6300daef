// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by the fetch stage.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// Contact is the contact identifier (an email address) embedded in
	// the User-Agent header, per the polite-access conventions of the
	// academic APIs.
	Contact string `json:"contact" yaml:"contact"`
}

// UserAgent returns the outbound User-Agent string, including the contact
// identifier when one is configured.
func (c HTTPConfig) UserAgent() string {
	ua := "bibwatch/" + Version
	if c.Contact != "" {
		ua += " (mailto:" + c.Contact + ")"
	}
	return ua
}

// Version is the tool version recorded in manifests and the User-Agent.
// Set at build time via ldflags.
var Version = "dev"

// FetchConfig tunes the fetch executor's concurrency, retry, and
// politeness behavior.
type FetchConfig struct {
	// MaxConcurrent bounds the number of in-flight HTTP requests across
	// all sources (default 4).
	MaxConcurrent int `json:"max_concurrent" yaml:"max_concurrent"`

	// MaxAttempts is the total attempt count per request, including the
	// first (default 5).
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts"`

	// BaseDelay is the first retry delay; it doubles per attempt up to
	// MaxDelay (defaults 500ms and 10s).
	BaseDelay time.Duration `json:"base_delay" yaml:"base_delay"`
	MaxDelay  time.Duration `json:"max_delay" yaml:"max_delay"`

	// JitterFrac adds up to this fraction of the delay as random jitter
	// (default 0.25).
	JitterFrac float64 `json:"jitter_frac" yaml:"jitter_frac"`

	// PerSourceRPS is the polite request rate against any single source
	// (default 1.0); Burst is the limiter burst size (default 1).
	PerSourceRPS float64 `json:"per_source_rps" yaml:"per_source_rps"`
	Burst        int     `json:"burst" yaml:"burst"`

	// PageSize is the per-page result count requested from paginating
	// sources (default 100, the smallest common maximum).
	PageSize int `json:"page_size" yaml:"page_size"`
}

// SourcesConfig selects and orders the source adapters.
type SourcesConfig struct {
	// Enabled lists the sources available to runs; empty means all.
	Enabled []Source `json:"enabled,omitempty" yaml:"enabled,omitempty"`

	// Priority orders sources for field merging, most authoritative
	// first; empty means the built-in default order.
	Priority []Source `json:"priority,omitempty" yaml:"priority,omitempty"`

	// PerSourceLimit is the default per-source record cap when the
	// query does not set one (default 50).
	PerSourceLimit int `json:"per_source_limit" yaml:"per_source_limit"`
}

// OutputConfig controls where and in which formats run artifacts land.
type OutputConfig struct {
	// Root is the directory under which run-scoped directories are
	// created (default "out").
	Root string `json:"root" yaml:"root"`

	// Formats selects the export formats; empty means all of csv, json,
	// sqlite, and bibtex. The diff export and manifest are always written.
	Formats []string `json:"formats,omitempty" yaml:"formats,omitempty"`
}

// DiffConfig controls change detection between runs.
type DiffConfig struct {
	// TrackedFields are the record fields compared for the "changed"
	// classification; empty means title, venue, and authors.
	TrackedFields []string `json:"tracked_fields,omitempty" yaml:"tracked_fields,omitempty"`
}

// Config groups all pipeline settings. It is passed into the coordinator
// at run start; nothing reads ambient process state, so concurrent runs
// with different configs do not interfere.
type Config struct {
	HTTP    HTTPConfig    `json:"http" yaml:"http"`
	Fetch   FetchConfig   `json:"fetch" yaml:"fetch"`
	Sources SourcesConfig `json:"sources" yaml:"sources"`
	Output  OutputConfig  `json:"output" yaml:"output"`
	Diff    DiffConfig    `json:"diff" yaml:"diff"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		HTTP: HTTPConfig{
			Timeout: 15 * time.Second,
		},
		Fetch: FetchConfig{
			MaxConcurrent: 4,
			MaxAttempts:   5,
			BaseDelay:     500 * time.Millisecond,
			MaxDelay:      10 * time.Second,
			JitterFrac:    0.25,
			PerSourceRPS:  1.0,
			Burst:         1,
			PageSize:      100,
		},
		Sources: SourcesConfig{
			PerSourceLimit: 50,
		},
		Output: OutputConfig{
			Root: "out",
		},
	}
}

// WithDefaults fills zero fields from DefaultConfig.
func (c Config) WithDefaults() Config {
	def := DefaultConfig()
	if c.HTTP.Timeout <= 0 {
		c.HTTP.Timeout = def.HTTP.Timeout
	}
	if c.Fetch.MaxConcurrent <= 0 {
		c.Fetch.MaxConcurrent = def.Fetch.MaxConcurrent
	}
	if c.Fetch.MaxAttempts <= 0 {
		c.Fetch.MaxAttempts = def.Fetch.MaxAttempts
	}
	if c.Fetch.BaseDelay <= 0 {
		c.Fetch.BaseDelay = def.Fetch.BaseDelay
	}
	if c.Fetch.MaxDelay <= 0 {
		c.Fetch.MaxDelay = def.Fetch.MaxDelay
	}
	if c.Fetch.JitterFrac < 0 {
		c.Fetch.JitterFrac = def.Fetch.JitterFrac
	}
	if c.Fetch.PerSourceRPS <= 0 {
		c.Fetch.PerSourceRPS = def.Fetch.PerSourceRPS
	}
	if c.Fetch.Burst <= 0 {
		c.Fetch.Burst = def.Fetch.Burst
	}
	if c.Fetch.PageSize <= 0 {
		c.Fetch.PageSize = def.Fetch.PageSize
	}
	if c.Sources.PerSourceLimit <= 0 {
		c.Sources.PerSourceLimit = def.Sources.PerSourceLimit
	}
	if c.Output.Root == "" {
		c.Output.Root = def.Output.Root
	}
	return c
}
