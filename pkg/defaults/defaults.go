// Package defaults provides canonical default values for authprobe.
// Every package reads its fallbacks from here instead of hardcoding them.
//
// Usage:
//
//	cfg.Locate.Tries = defaults.RandomTries
//	req.Header.Set("Content-Type", defaults.ContentTypeJSON)
package defaults

import "fmt"

// Version is the current authprobe version
const Version = "0.4.1"

// ToolName is used for the User-Agent, tracing service name and reports.
const ToolName = "authprobe"

// ============================================================================
// TARGET
// ============================================================================

const (
	// TargetBaseURL is the lab target the original scripts were written for
	TargetBaseURL = "http://127.0.0.1:5000"
)

// ============================================================================
// ENDPOINT LOCATOR
// ============================================================================
//
// Candidate paths are probed with a throwaway credential; a status in the
// live set marks the path as an authentication endpoint.
// ============================================================================

const (
	// RandomTries is the number of random path draws (1000)
	RandomTries = 1000

	// SegmentLength is the length of a random path segment (8)
	SegmentLength = 8

	// PathTail is appended to every random segment
	PathTail = "/api/auth"

	// ProbePassword is the synthetic password sent while locating
	ProbePassword = "test"

	// StrategyCommon and StrategyRandom name the locator strategies
	StrategyCommon = "common"
	StrategyRandom = "random"
)

// CommonAuthPaths is the ordered list of well-known authentication paths.
// Order is significant: the first live path wins.
func CommonAuthPaths() []string {
	return []string{
		"/api/auth",
		"/api/login",
		"/api/v1/auth",
		"/hidden/api/auth",
		"/socialhub/api/auth",
	}
}

// LiveStatusCodes returns the statuses that mark a path as live.
// 401 counts: the endpoint exists and rejected the synthetic credential.
func LiveStatusCodes() []int {
	return []int{200, 401}
}

// ============================================================================
// CREDENTIAL PROBER
// ============================================================================

const (
	// SuccessStatusField and SuccessStatusValue identify an accepted
	// username+password login in the JSON response body
	SuccessStatusField = "status"
	SuccessStatusValue = "success"

	// TokenField is the bearer token field of a successful login response
	TokenField = "token"
)

// ============================================================================
// HTTP CONTENT TYPES
// ============================================================================

const (
	// ContentTypeJSON is application/json
	ContentTypeJSON = "application/json"

	// ContentTypePlain is text/plain
	ContentTypePlain = "text/plain"
)

// ============================================================================
// BUFFER SIZES
// ============================================================================

const (
	// BufferLarge is the scanner buffer for wordlist lines (64KB)
	BufferLarge = 64 * 1024

	// BufferHuge is the longest accepted wordlist line (1MB)
	BufferHuge = 1024 * 1024
)

// ============================================================================
// USER AGENTS
// ============================================================================

// UAMinimal is the default User-Agent header
const UAMinimal = ToolName + "/" + Version

// UserAgent returns the authprobe user agent with context
func UserAgent(context string) string {
	if context == "" {
		return UAMinimal
	}
	return fmt.Sprintf("%s/%s (%s)", ToolName, Version, context)
}

// ============================================================================
// METRICS / TRACING
// ============================================================================

const (
	// MetricsPath is the Prometheus scrape path
	MetricsPath = "/metrics"

	// MetricsNamespace prefixes every exported metric
	MetricsNamespace = "authprobe"
)
