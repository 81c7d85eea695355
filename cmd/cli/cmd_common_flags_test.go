package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/authprobe/authprobe/pkg/config"
	"github.com/authprobe/authprobe/pkg/defaults"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommonFlags_ApplyOnlySetFlags(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	var cf CommonFlags
	cf.Register(fs)

	require.NoError(t, fs.Parse([]string{
		"-u", "127.0.0.1:8080/",
		"-timeout", "3s",
		"-v",
	}))

	cfg := config.Default()
	cfg.HTTP.Proxy = "socks5://127.0.0.1:1080"
	cf.Apply(fs, cfg)

	assert.Equal(t, "http://127.0.0.1:8080", cfg.Target)
	assert.Equal(t, 3*time.Second, cfg.HTTP.Timeout)
	assert.True(t, cfg.Output.Verbose)
	assert.Equal(t, "socks5://127.0.0.1:1080", cfg.HTTP.Proxy, "unset flags keep configured values")
	assert.False(t, cfg.HTTP.Insecure, "certificates are verified unless -k is set")
}

func TestCommonFlags_SkipVerify(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	var cf CommonFlags
	cf.Register(fs)
	require.NoError(t, fs.Parse([]string{"-k"}))

	cfg := config.Default()
	require.False(t, cfg.HTTP.Insecure)
	cf.Apply(fs, cfg)
	assert.True(t, cfg.HTTP.Insecure)

	assert.True(t, httpConfig(cfg.HTTP).InsecureSkipVerify)
	assert.False(t, httpConfig(config.Default().HTTP).InsecureSkipVerify)
}

func TestLocateFlags_Apply(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	var lf LocateFlags
	lf.Register(fs)

	require.NoError(t, fs.Parse([]string{
		"-strategy", "random",
		"-tries", "50",
		"-tail", "/login",
		"-live", "200,403",
	}))

	cfg := config.Default()
	lf.Apply(fs, cfg)

	assert.Equal(t, "random", cfg.Locate.Strategy)
	assert.Equal(t, 50, cfg.Locate.Tries)
	assert.Equal(t, defaults.SegmentLength, cfg.Locate.Length)
	assert.Equal(t, "/login", cfg.Locate.Tail)
	assert.Equal(t, []int{200, 403}, cfg.Locate.LiveStatuses)
	assert.Equal(t, defaults.CommonAuthPaths(), cfg.Locate.Paths)
}

func TestProbeFlags_Apply(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	var pf ProbeFlags
	pf.Register(fs)

	require.NoError(t, fs.Parse([]string{
		"-w", "a.txt,b.txt",
		"-U", "builtin:usernames",
		"-delay", "0s",
		"-endpoint", "http://lab/api/auth/",
	}))

	cfg := config.Default()
	pf.Apply(fs, cfg)

	assert.Equal(t, []string{"a.txt", "b.txt"}, cfg.Probe.Passwords)
	assert.Equal(t, []string{"builtin:usernames"}, cfg.Probe.Usernames)
	assert.Zero(t, cfg.Probe.Delay)
	assert.Equal(t, "http://lab/api/auth", cfg.Probe.Endpoint)
	assert.False(t, cfg.Probe.Mutate)
}

func TestProbeFlags_DefaultsKept(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	var pf ProbeFlags
	pf.Register(fs)
	require.NoError(t, fs.Parse(nil))

	cfg := config.Default()
	pf.Apply(fs, cfg)
	assert.Equal(t, []string{"builtin:passwords"}, cfg.Probe.Passwords)
	assert.Equal(t, 200*time.Millisecond, cfg.Probe.Delay)
}

func TestLoadConfig_FileThenFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "authprobe.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"target: http://10.0.0.5:5000\nprobe:\n  delay: 1s\n  passwords: [builtin:passwords]\n"), 0o600))

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	var cf CommonFlags
	var pf ProbeFlags
	cf.Register(fs)
	pf.Register(fs)
	require.NoError(t, fs.Parse([]string{"-config", path, "-delay", "50ms"}))

	cfg, err := loadConfig(fs, &cf, pf.Apply)
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5:5000", cfg.Target)
	assert.Equal(t, 50*time.Millisecond, cfg.Probe.Delay)
}

func TestLoadConfig_InvalidFlagValue(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	var cf CommonFlags
	var lf LocateFlags
	cf.Register(fs)
	lf.Register(fs)
	require.NoError(t, fs.Parse([]string{"-strategy", "fuzzy"}))

	_, err := loadConfig(fs, &cf, lf.Apply)
	require.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	var cf CommonFlags
	cf.Register(fs)
	require.NoError(t, fs.Parse([]string{"-config", filepath.Join(t.TempDir(), "missing.yaml")}))

	_, err := loadConfig(fs, &cf)
	require.Error(t, err)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, defaults.ExitSuccess, exitCode(nil))
	assert.Equal(t, defaults.ExitInterrupted, exitCode(context.Canceled))
	assert.Equal(t, defaults.ExitInterrupted, exitCode(fmt.Errorf("probe: %w", context.Canceled)))
	assert.Equal(t, defaults.ExitUserError, exitCode(errors.New("bad wordlist")))
}

func TestNewLogger_Levels(t *testing.T) {
	ctx := context.Background()
	assert.False(t, newLogger(config.OutputConfig{}).Enabled(ctx, -4))
	assert.True(t, newLogger(config.OutputConfig{}).Enabled(ctx, 4))
	assert.True(t, newLogger(config.OutputConfig{Verbose: true}).Enabled(ctx, 0))
	assert.True(t, newLogger(config.OutputConfig{Debug: true}).Enabled(ctx, -4))
	assert.False(t, newLogger(config.OutputConfig{Silent: true}).Enabled(ctx, 4))
}
