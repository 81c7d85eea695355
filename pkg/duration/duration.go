// Package duration provides canonical time constants for authprobe.
//
// Usage:
//
//	pacer := pacing.NewFixed(duration.PacingDefault)
//	client := httpclient.New(httpclient.WithTimeout(duration.HTTPProbing))
//
// Struct fields named Timeout, Interval or Delay must be set from these
// constants (or from configuration), never from literal durations.
package duration

import "time"

// ============================================================================
// HTTP CLIENT TIMEOUTS
// ============================================================================

const (
	// HTTPProbing is the per-request timeout for locate/probe attempts (10s)
	HTTPProbing = 10 * time.Second

	// HTTPWordlist is for downloading remote wordlists (60s)
	HTTPWordlist = 60 * time.Second
)

// ============================================================================
// PACING
// ============================================================================
//
// The credential prober sleeps unconditionally between attempts. The delay
// is constant: it does not grow with failures or react to status codes.
// ============================================================================

const (
	// PacingDefault is the delay between consecutive credential attempts (200ms)
	PacingDefault = 200 * time.Millisecond

	// PacingNone disables pacing (directory scanner default)
	PacingNone time.Duration = 0
)

// ============================================================================
// SHUTDOWN / EXPORTERS
// ============================================================================

const (
	// Shutdown bounds graceful shutdown of the metrics server and tracer (5s)
	Shutdown = 5 * time.Second

	// ExporterConnect bounds the OTLP exporter connection attempt (10s)
	ExporterConnect = 10 * time.Second

	// MetricsReadHeader is the metrics server ReadHeaderTimeout (5s)
	MetricsReadHeader = 5 * time.Second
)

// ============================================================================
// NETWORK/TRANSPORT
// ============================================================================

const (
	// DialTimeout is for establishing TCP connections (5s)
	DialTimeout = 5 * time.Second

	// KeepAlive is for TCP keep-alive interval (30s)
	KeepAlive = 30 * time.Second

	// IdleConnTimeout is for idle connection pool timeout (90s)
	IdleConnTimeout = 90 * time.Second

	// TLSHandshake is for TLS handshake timeout (10s)
	TLSHandshake = 10 * time.Second
)

// ============================================================================
// CACHE TTLs
// ============================================================================

const (
	// WordlistCacheTTL is how long a downloaded wordlist stays fresh (24h)
	WordlistCacheTTL = 24 * time.Hour
)
