package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/authprobe/authprobe/pkg/config"
	"github.com/authprobe/authprobe/pkg/defaults"
	"github.com/authprobe/authprobe/pkg/dirscan"
	"github.com/authprobe/authprobe/pkg/events"
	"github.com/authprobe/authprobe/pkg/hooks"
	"github.com/authprobe/authprobe/pkg/httpclient"
	"github.com/authprobe/authprobe/pkg/locator"
	"github.com/authprobe/authprobe/pkg/pacing"
	"github.com/authprobe/authprobe/pkg/prober"
	"github.com/authprobe/authprobe/pkg/report"
	"github.com/authprobe/authprobe/pkg/transport"
	"github.com/authprobe/authprobe/pkg/ui"
	"github.com/authprobe/authprobe/pkg/wordlist"
)

// session holds everything one command run shares: the logger, the HTTP
// client, the event dispatcher with its hooks and the wordlist manager.
type session struct {
	cfg        *config.Config
	logger     *slog.Logger
	client     *transport.Client
	dispatcher *events.Dispatcher
	wordlists  *wordlist.Manager
}

// newLogger returns a text logger on stderr at the level the output
// settings ask for.
func newLogger(o config.OutputConfig) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case o.Debug:
		level = slog.LevelDebug
	case o.Verbose:
		level = slog.LevelInfo
	case o.Silent:
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func httpConfig(c config.HTTPConfig) httpclient.Config {
	return httpclient.Config{
		Timeout:            c.Timeout,
		InsecureSkipVerify: c.Insecure,
		Proxy:              c.Proxy,
	}
}

func newSession(cfg *config.Config, runID string) (*session, error) {
	ui.SetNoColor(cfg.Output.NoColor)
	ui.SetSilent(cfg.Output.Silent)

	logger := newLogger(cfg.Output)
	slog.SetDefault(logger)

	hc := httpclient.New(httpConfig(cfg.HTTP))

	s := &session{
		cfg:    cfg,
		logger: logger,
		client: transport.New(hc,
			transport.WithUserAgent(cfg.HTTP.UserAgent),
			transport.WithLogger(logger)),
		dispatcher: events.NewDispatcher(runID, logger),
		wordlists: wordlist.NewManager(&wordlist.Config{
			CacheDir: cfg.Wordlists.CacheDir,
			Proxy:    cfg.HTTP.Proxy,
			Logger:   logger,
		}),
	}

	s.dispatcher.RegisterHook(hooks.NewLogHook(logger))
	s.dispatcher.RegisterHook(ui.NewConsoleHook(cfg.Output.Verbose || cfg.Output.Debug))

	if addr := cfg.Telemetry.MetricsAddr; addr != "" {
		prom, err := hooks.NewPrometheusHook(hooks.PrometheusOptions{Addr: addr, Logger: logger})
		if err != nil {
			return nil, err
		}
		s.dispatcher.RegisterHook(prom)
		ui.PrintInfo("Metrics at " + prom.MetricsURL())
	}
	if ep := cfg.Telemetry.OTelEndpoint; ep != "" {
		tracer, err := hooks.NewOTelHook(hooks.OTelOptions{
			Endpoint: ep,
			Insecure: cfg.Telemetry.OTelInsecure,
		})
		if err != nil {
			_ = s.dispatcher.Close(context.Background())
			return nil, err
		}
		s.dispatcher.RegisterHook(tracer)
	}
	return s, nil
}

func (s *session) locator() *locator.Locator {
	return locator.New(s.client,
		locator.WithLiveStatuses(s.cfg.Locate.LiveStatuses...),
		locator.WithProbePassword(s.cfg.Locate.ProbePassword),
		locator.WithDispatcher(s.dispatcher),
		locator.WithLogger(s.logger))
}

func (s *session) prober() *prober.Prober {
	return prober.New(s.client,
		prober.WithPacer(pacing.NewFixed(s.cfg.Probe.Delay)),
		prober.WithDispatcher(s.dispatcher),
		prober.WithLogger(s.logger))
}

func (s *session) scanner() *dirscan.Scanner {
	return dirscan.New(s.client,
		dirscan.WithPacer(pacing.NewFixed(s.cfg.Dirscan.Delay)),
		dirscan.WithDispatcher(s.dispatcher),
		dirscan.WithLogger(s.logger))
}

// finish closes the hooks, writes the report and prints the summary. It
// returns the process exit code.
func (s *session) finish(ctx context.Context, rep *report.Report, err error) int {
	interrupted := isInterrupted(err)
	if rep.FinishedAt.IsZero() {
		rep.Finish(err, interrupted)
	}

	if cerr := s.dispatcher.Close(context.WithoutCancel(ctx)); cerr != nil {
		s.logger.Warn("closing hooks", slog.String("error", cerr.Error()))
	}

	if path := s.cfg.Output.Report; path != "" {
		if werr := rep.WriteFile(path); werr != nil {
			ui.PrintError(fmt.Sprintf("Writing report: %v", werr))
			return defaults.ExitUserError
		}
		ui.PrintInfo("Report written to " + path)
	}

	ui.PrintSummary(rep)
	return exitCode(err)
}

func isInterrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// exitCode maps a run error to the process exit code. Not finding
// anything is a success.
func exitCode(err error) int {
	switch {
	case err == nil:
		return defaults.ExitSuccess
	case isInterrupted(err):
		return defaults.ExitInterrupted
	default:
		return defaults.ExitUserError
	}
}
