package locator

import (
	"iter"
	"math/rand/v2"
	"strings"

	"github.com/authprobe/authprobe/pkg/defaults"
)

// Strategy produces candidate paths in the order they are tried.
type Strategy interface {
	// Name identifies the strategy in logs and reports.
	Name() string
	// Candidates yields paths lazily. Each path starts with "/".
	Candidates() iter.Seq[string]
	// Len is the number of paths Candidates yields.
	Len() int
}

const lowercase = "abcdefghijklmnopqrstuvwxyz"

// RandomStrategy draws "/" + Length random lowercase letters + Tail, Tries
// times. Draws may repeat.
type RandomStrategy struct {
	Tries  int
	Length int
	Tail   string
	// Rand is the random source. Nil uses the process-wide generator.
	Rand *rand.Rand
}

// NewRandomStrategy returns a RandomStrategy with the default shape:
// 1000 draws of 8 letters followed by /api/auth.
func NewRandomStrategy() *RandomStrategy {
	return &RandomStrategy{
		Tries:  defaults.RandomTries,
		Length: defaults.SegmentLength,
		Tail:   defaults.PathTail,
	}
}

// Name implements Strategy.
func (s *RandomStrategy) Name() string { return defaults.StrategyRandom }

// Len implements Strategy.
func (s *RandomStrategy) Len() int { return max(s.Tries, 0) }

// Candidates implements Strategy.
func (s *RandomStrategy) Candidates() iter.Seq[string] {
	return func(yield func(string) bool) {
		for range s.Len() {
			if !yield("/" + s.segment() + s.Tail) {
				return
			}
		}
	}
}

func (s *RandomStrategy) segment() string {
	var b strings.Builder
	b.Grow(s.Length)
	for range s.Length {
		var n int
		if s.Rand != nil {
			n = s.Rand.IntN(len(lowercase))
		} else {
			n = rand.IntN(len(lowercase))
		}
		b.WriteByte(lowercase[n])
	}
	return b.String()
}

// CommonPathStrategy tries a fixed list of paths in declared order.
type CommonPathStrategy struct {
	Paths []string
}

// DefaultCommonPaths returns the well-known authentication paths.
func DefaultCommonPaths() []string {
	return defaults.CommonAuthPaths()
}

// NewCommonPathStrategy returns a CommonPathStrategy over paths, or over
// DefaultCommonPaths when paths is empty.
func NewCommonPathStrategy(paths ...string) *CommonPathStrategy {
	if len(paths) == 0 {
		paths = DefaultCommonPaths()
	}
	return &CommonPathStrategy{Paths: paths}
}

// Name implements Strategy.
func (s *CommonPathStrategy) Name() string { return defaults.StrategyCommon }

// Len implements Strategy.
func (s *CommonPathStrategy) Len() int { return len(s.Paths) }

// Candidates implements Strategy.
func (s *CommonPathStrategy) Candidates() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, p := range s.Paths {
			if !strings.HasPrefix(p, "/") {
				p = "/" + p
			}
			if !yield(p) {
				return
			}
		}
	}
}
