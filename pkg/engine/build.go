package engine

import (
	"context"
	"fmt"

	"github.com/authprobe/authprobe/pkg/config"
	"github.com/authprobe/authprobe/pkg/defaults"
	"github.com/authprobe/authprobe/pkg/locator"
	"github.com/authprobe/authprobe/pkg/prober"
	"github.com/authprobe/authprobe/pkg/wordlist"
)

// NewStrategy builds the locator strategy named by c.Strategy.
func NewStrategy(c config.LocateConfig) (locator.Strategy, error) {
	switch c.Strategy {
	case defaults.StrategyCommon, "":
		if len(c.Paths) == 0 {
			return locator.NewCommonPathStrategy(), nil
		}
		return locator.NewCommonPathStrategy(c.Paths...), nil
	case defaults.StrategyRandom:
		s := locator.NewRandomStrategy()
		if c.Tries > 0 {
			s.Tries = c.Tries
		}
		if c.Length > 0 {
			s.Length = c.Length
		}
		if c.Tail != "" {
			s.Tail = c.Tail
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, c.Strategy)
	}
}

// LoadSource loads the password (and optional username) wordlists named by
// c and returns the matching credential source. Usernames select the
// username×password variant.
func LoadSource(ctx context.Context, m *wordlist.Manager, c config.ProbeConfig) (prober.Source, error) {
	pw, err := m.LoadMultiple(ctx, c.Passwords)
	if err != nil {
		return nil, fmt.Errorf("loading passwords: %w", err)
	}
	passwords := pw.Words
	if c.Mutate {
		passwords = wordlist.Mutate(passwords)
	}

	if len(c.Usernames) == 0 {
		return prober.Passwords(passwords), nil
	}

	us, err := m.LoadMultiple(ctx, c.Usernames)
	if err != nil {
		return nil, fmt.Errorf("loading usernames: %w", err)
	}
	return prober.CrossProduct(us.Words, passwords), nil
}
