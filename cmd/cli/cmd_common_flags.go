package main

import (
	"flag"
	"time"

	"github.com/authprobe/authprobe/pkg/config"
	"github.com/authprobe/authprobe/pkg/input"
)

// CommonFlags holds flags shared by every search command.
type CommonFlags struct {
	Target       string
	ConfigFile   string
	Timeout      time.Duration
	Proxy        string
	SkipVerify   bool
	Report       string
	Verbose      bool
	Debug        bool
	Silent       bool
	NoColor      bool
	MetricsAddr  string
	OTelEndpoint string
}

// Register binds common flags to the given FlagSet. Defaults are zero
// values: Apply copies only flags given on the command line, so the
// configuration file and built-in defaults stay in charge otherwise.
func (cf *CommonFlags) Register(fs *flag.FlagSet) {
	fs.StringVar(&cf.Target, "u", "", "Target URL")
	fs.StringVar(&cf.Target, "target", "", "Target URL (alias)")
	fs.StringVar(&cf.ConfigFile, "config", "", "YAML configuration file")
	fs.DurationVar(&cf.Timeout, "timeout", 0, "Per-request timeout (default 10s)")
	fs.StringVar(&cf.Proxy, "proxy", "", "Proxy URL (http, https, socks5, socks5h)")
	fs.BoolVar(&cf.SkipVerify, "k", false, "Skip TLS certificate verification")
	fs.StringVar(&cf.Report, "o", "", "Write report to file (.json, .md or .txt)")
	fs.BoolVar(&cf.Verbose, "v", false, "Verbose output (show every attempt)")
	fs.BoolVar(&cf.Debug, "debug", false, "Debug logging")
	fs.BoolVar(&cf.Silent, "silent", false, "Suppress everything except errors")
	fs.BoolVar(&cf.NoColor, "nc", false, "Disable colored output")
	fs.StringVar(&cf.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	fs.StringVar(&cf.OTelEndpoint, "otel-endpoint", "", "Export traces to this OTLP gRPC endpoint")
}

// Apply copies the flags that were set on fs into cfg.
func (cf *CommonFlags) Apply(fs *flag.FlagSet, cfg *config.Config) {
	set := setFlags(fs)
	if set["u"] || set["target"] {
		cfg.Target = input.NormalizeTarget(cf.Target)
	}
	if set["timeout"] {
		cfg.HTTP.Timeout = cf.Timeout
	}
	if set["proxy"] {
		cfg.HTTP.Proxy = cf.Proxy
	}
	if set["k"] {
		cfg.HTTP.Insecure = cf.SkipVerify
	}
	if set["o"] {
		cfg.Output.Report = cf.Report
	}
	if set["v"] {
		cfg.Output.Verbose = cf.Verbose
	}
	if set["debug"] {
		cfg.Output.Debug = cf.Debug
	}
	if set["silent"] {
		cfg.Output.Silent = cf.Silent
	}
	if set["nc"] {
		cfg.Output.NoColor = cf.NoColor
	}
	if set["metrics-addr"] {
		cfg.Telemetry.MetricsAddr = cf.MetricsAddr
	}
	if set["otel-endpoint"] {
		cfg.Telemetry.OTelEndpoint = cf.OTelEndpoint
	}
}

// LocateFlags configures the endpoint search.
type LocateFlags struct {
	Strategy string
	Paths    input.StringSliceFlag
	Tries    int
	Length   int
	Tail     string
	Live     input.IntSliceFlag
}

// Register binds locate flags to the given FlagSet.
func (lf *LocateFlags) Register(fs *flag.FlagSet) {
	fs.StringVar(&lf.Strategy, "strategy", "", "Candidate strategy: common or random (default common)")
	fs.Var(&lf.Paths, "paths", "Candidate paths for the common strategy, comma-separated or repeated")
	fs.IntVar(&lf.Tries, "tries", 0, "Random strategy draws (default 1000)")
	fs.IntVar(&lf.Length, "length", 0, "Random segment length (default 8)")
	fs.StringVar(&lf.Tail, "tail", "", "Suffix appended to random segments (default /api/auth)")
	fs.Var(&lf.Live, "live", "Status codes marking a live endpoint (default 200,401)")
}

// Apply copies the flags that were set on fs into cfg.
func (lf *LocateFlags) Apply(fs *flag.FlagSet, cfg *config.Config) {
	set := setFlags(fs)
	if set["strategy"] {
		cfg.Locate.Strategy = lf.Strategy
	}
	if len(lf.Paths) > 0 {
		cfg.Locate.Paths = lf.Paths
	}
	if set["tries"] {
		cfg.Locate.Tries = lf.Tries
	}
	if set["length"] {
		cfg.Locate.Length = lf.Length
	}
	if set["tail"] {
		cfg.Locate.Tail = lf.Tail
	}
	if len(lf.Live) > 0 {
		cfg.Locate.LiveStatuses = lf.Live
	}
}

// ProbeFlags configures the credential search.
type ProbeFlags struct {
	Endpoint  string
	Passwords input.StringSliceFlag
	Usernames input.StringSliceFlag
	Delay     time.Duration
	Mutate    bool
	CacheDir  string
}

// Register binds probe flags to the given FlagSet.
func (pf *ProbeFlags) Register(fs *flag.FlagSet) {
	fs.StringVar(&pf.Endpoint, "endpoint", "", "Known authentication endpoint (auto skips locating)")
	fs.Var(&pf.Passwords, "w", "Password wordlist: file, .gz, URL or builtin:NAME")
	fs.Var(&pf.Usernames, "U", "Username wordlist; enables username+password mode")
	fs.DurationVar(&pf.Delay, "delay", 0, "Delay between attempts (default 200ms)")
	fs.BoolVar(&pf.Mutate, "mutate", false, "Expand passwords with case, leet and suffix variants")
	fs.StringVar(&pf.CacheDir, "cache-dir", "", "Cache directory for downloaded wordlists")
}

// Apply copies the flags that were set on fs into cfg.
func (pf *ProbeFlags) Apply(fs *flag.FlagSet, cfg *config.Config) {
	set := setFlags(fs)
	if set["endpoint"] {
		cfg.Probe.Endpoint = input.NormalizeTarget(pf.Endpoint)
	}
	if len(pf.Passwords) > 0 {
		cfg.Probe.Passwords = pf.Passwords
	}
	if len(pf.Usernames) > 0 {
		cfg.Probe.Usernames = pf.Usernames
	}
	if set["delay"] {
		cfg.Probe.Delay = pf.Delay
	}
	if set["mutate"] {
		cfg.Probe.Mutate = pf.Mutate
	}
	if set["cache-dir"] {
		cfg.Wordlists.CacheDir = pf.CacheDir
	}
}

// DirscanFlags configures the directory scan.
type DirscanFlags struct {
	Wordlists input.StringSliceFlag
	Delay     time.Duration
	CacheDir  string
}

// Register binds dirscan flags to the given FlagSet.
func (df *DirscanFlags) Register(fs *flag.FlagSet) {
	fs.Var(&df.Wordlists, "w", "Directory wordlist: file, .gz, URL or builtin:NAME")
	fs.DurationVar(&df.Delay, "delay", 0, "Delay between requests (default none)")
	fs.StringVar(&df.CacheDir, "cache-dir", "", "Cache directory for downloaded wordlists")
}

// Apply copies the flags that were set on fs into cfg.
func (df *DirscanFlags) Apply(fs *flag.FlagSet, cfg *config.Config) {
	set := setFlags(fs)
	if len(df.Wordlists) > 0 {
		cfg.Dirscan.Wordlists = df.Wordlists
	}
	if set["delay"] {
		cfg.Dirscan.Delay = df.Delay
	}
	if set["cache-dir"] {
		cfg.Wordlists.CacheDir = df.CacheDir
	}
}

// setFlags returns the names of flags given on the command line.
func setFlags(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

// loadConfig builds the run configuration: defaults, then the -config
// file, then command-line flags.
func loadConfig(fs *flag.FlagSet, common *CommonFlags, apply ...func(*flag.FlagSet, *config.Config)) (*config.Config, error) {
	cfg := config.Default()
	if common.ConfigFile != "" {
		loaded, err := config.Load(common.ConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	common.Apply(fs, cfg)
	for _, fn := range apply {
		fn(fs, cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.RequireTarget(); err != nil {
		return nil, err
	}
	return cfg, nil
}
