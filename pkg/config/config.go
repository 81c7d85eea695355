// Package config holds the run configuration shared by every subcommand.
//
// Values come from Default(), then an optional YAML file (Load), then
// command-line flags applied by the CLI. Durations in YAML use Go syntax
// such as "200ms" or "10s".
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"slices"
	"time"

	"github.com/authprobe/authprobe/pkg/defaults"
	"github.com/authprobe/authprobe/pkg/duration"
	"github.com/authprobe/authprobe/pkg/httpclient"
	"gopkg.in/yaml.v3"
)

// Config holds all run configuration.
type Config struct {
	// Target is the base URL (locate, auto, dirscan) or the endpoint (probe).
	Target string `yaml:"target"`

	HTTP      HTTPConfig      `yaml:"http"`
	Locate    LocateConfig    `yaml:"locate"`
	Probe     ProbeConfig     `yaml:"probe"`
	Dirscan   DirscanConfig   `yaml:"dirscan"`
	Wordlists WordlistConfig  `yaml:"wordlists"`
	Output    OutputConfig    `yaml:"output"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// HTTPConfig configures the outbound client.
type HTTPConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	Proxy     string        `yaml:"proxy"`
	Insecure  bool          `yaml:"insecure"`
	UserAgent string        `yaml:"user_agent"`
}

// LocateConfig configures the endpoint search.
type LocateConfig struct {
	Strategy      string   `yaml:"strategy"`
	Paths         []string `yaml:"paths"`
	Tries         int      `yaml:"tries"`
	Length        int      `yaml:"length"`
	Tail          string   `yaml:"tail"`
	ProbePassword string   `yaml:"probe_password"`
	LiveStatuses  []int    `yaml:"live_statuses"`
}

// ProbeConfig configures the credential search.
type ProbeConfig struct {
	// Endpoint skips locating in auto mode when set.
	Endpoint string `yaml:"endpoint"`
	// Passwords and Usernames are wordlist sources. Usernames selects the
	// username×password variant.
	Passwords []string      `yaml:"passwords"`
	Usernames []string      `yaml:"usernames"`
	Delay     time.Duration `yaml:"delay"`
	Mutate    bool          `yaml:"mutate"`
}

// DirscanConfig configures the directory scan.
type DirscanConfig struct {
	Wordlists []string      `yaml:"wordlists"`
	Delay     time.Duration `yaml:"delay"`
}

// WordlistConfig configures wordlist loading.
type WordlistConfig struct {
	CacheDir string `yaml:"cache_dir"`
}

// OutputConfig configures terminal and report output.
type OutputConfig struct {
	Report  string `yaml:"report"`
	Verbose bool   `yaml:"verbose"`
	Debug   bool   `yaml:"debug"`
	Silent  bool   `yaml:"silent"`
	NoColor bool   `yaml:"no_color"`
}

// TelemetryConfig enables the metrics and tracing hooks.
type TelemetryConfig struct {
	MetricsAddr  string `yaml:"metrics_addr"`
	OTelEndpoint string `yaml:"otel_endpoint"`
	OTelInsecure bool   `yaml:"otel_insecure"`
}

// Default returns the configuration used when no file or flag overrides it.
func Default() *Config {
	return &Config{
		Target: defaults.TargetBaseURL,
		HTTP: HTTPConfig{
			Timeout:   duration.HTTPProbing,
			UserAgent: defaults.UAMinimal,
		},
		Locate: LocateConfig{
			Strategy:      defaults.StrategyCommon,
			Paths:         defaults.CommonAuthPaths(),
			Tries:         defaults.RandomTries,
			Length:        defaults.SegmentLength,
			Tail:          defaults.PathTail,
			ProbePassword: defaults.ProbePassword,
			LiveStatuses:  defaults.LiveStatusCodes(),
		},
		Probe: ProbeConfig{
			Passwords: []string{"builtin:passwords"},
			Delay:     duration.PacingDefault,
		},
		Dirscan: DirscanConfig{
			Wordlists: []string{"builtin:common-dirs"},
			Delay:     duration.PacingNone,
		},
		Telemetry: TelemetryConfig{
			OTelInsecure: true,
		},
	}
}

// Load reads a YAML file on top of Default() and validates the result.
// Unknown keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML data on top of Default() and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field ranges and formats. It does not require a target;
// use RequireTarget for that.
func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}

	if c.Target != "" {
		if err := checkURL(c.Target); err != nil {
			bad("target: %v", err)
		}
	}
	if c.Probe.Endpoint != "" {
		if err := checkURL(c.Probe.Endpoint); err != nil {
			bad("probe.endpoint: %v", err)
		}
	}
	if c.HTTP.Timeout <= 0 {
		bad("http.timeout must be positive, got %s", c.HTTP.Timeout)
	}
	if err := httpclient.ValidateProxyURL(c.HTTP.Proxy); err != nil {
		bad("http.proxy: %v", err)
	}
	if !slices.Contains([]string{defaults.StrategyCommon, defaults.StrategyRandom}, c.Locate.Strategy) {
		bad("locate.strategy must be %q or %q, got %q", defaults.StrategyCommon, defaults.StrategyRandom, c.Locate.Strategy)
	}
	if c.Locate.Strategy == defaults.StrategyRandom {
		if c.Locate.Tries <= 0 {
			bad("locate.tries must be positive, got %d", c.Locate.Tries)
		}
		if c.Locate.Length <= 0 {
			bad("locate.length must be positive, got %d", c.Locate.Length)
		}
	}
	for _, code := range c.Locate.LiveStatuses {
		if code < 100 || code > 599 {
			bad("locate.live_statuses: %d is not an HTTP status", code)
		}
	}
	if c.Probe.Delay < 0 {
		bad("probe.delay must not be negative, got %s", c.Probe.Delay)
	}
	if c.Dirscan.Delay < 0 {
		bad("dirscan.delay must not be negative, got %s", c.Dirscan.Delay)
	}
	if c.Output.Silent && (c.Output.Verbose || c.Output.Debug) {
		bad("output.silent conflicts with verbose/debug")
	}

	return errors.Join(errs...)
}

// RequireTarget returns ErrMissingRequired when no target is set.
func (c *Config) RequireTarget() error {
	if c.Target == "" {
		return fmt.Errorf("%w: target (-u)", ErrMissingRequired)
	}
	return nil
}

// RequirePasswords returns ErrMissingRequired when no password source is set.
func (c *Config) RequirePasswords() error {
	if len(c.Probe.Passwords) == 0 {
		return fmt.Errorf("%w: password wordlist (-w)", ErrMissingRequired)
	}
	return nil
}

func checkURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https: %q", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host: %q", raw)
	}
	return nil
}
