package input

import (
	"errors"
	"strings"
)

// ErrNoTarget is returned when neither a flag nor the configuration names
// a target.
var ErrNoTarget = errors.New("no target specified")

// NormalizeTarget trims whitespace and trailing slashes and adds http://
// when the scheme is missing. Lab targets are plain HTTP by default.
func NormalizeTarget(t string) string {
	t = strings.TrimSpace(t)
	if t == "" {
		return ""
	}
	if !strings.HasPrefix(t, "http://") && !strings.HasPrefix(t, "https://") {
		t = "http://" + t
	}
	return strings.TrimRight(t, "/")
}

// ResolveTarget returns the first non-empty candidate, normalized. Callers
// pass the flag value first and the configured value after it.
func ResolveTarget(candidates ...string) (string, error) {
	for _, c := range candidates {
		if t := NormalizeTarget(c); t != "" {
			return t, nil
		}
	}
	return "", ErrNoTarget
}
