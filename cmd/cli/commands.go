package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/authprobe/authprobe/pkg/config"
	"github.com/authprobe/authprobe/pkg/defaults"
	"github.com/authprobe/authprobe/pkg/engine"
	"github.com/authprobe/authprobe/pkg/report"
	"github.com/authprobe/authprobe/pkg/ui"
	"github.com/authprobe/authprobe/pkg/wordlist"
)

const (
	locateUsage  = "authprobe locate -u URL [-strategy common|random] [-paths p1,p2] [-tries N] [-length N] [-tail /api/auth]"
	probeUsage   = "authprobe probe -u ENDPOINT -w passwords [-U usernames] [-delay 200ms] [-mutate]"
	autoUsage    = "authprobe auto -u URL [locate flags] [-endpoint URL] -w passwords [-U usernames]"
	dirscanUsage = "authprobe dirscan -u URL -w wordlist [-delay 0s]"
)

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func parseOrUsage(fs *flag.FlagSet, args []string, usage string) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(defaults.ExitSuccess)
		}
		exitWithUsage(err.Error(), usage)
	}
	if fs.NArg() > 0 {
		exitWithUsage(fmt.Sprintf("unexpected argument %q", fs.Arg(0)), usage)
	}
}

func printRunConfig(command string, cfg *config.Config, extra map[string]string) {
	ui.PrintBanner()
	opts := map[string]string{
		"Command": command,
		"Target":  cfg.Target,
		"Timeout": cfg.HTTP.Timeout.String(),
		"Proxy":   cfg.HTTP.Proxy,
		"Report":  cfg.Output.Report,
		"Metrics": cfg.Telemetry.MetricsAddr,
		"Tracing": cfg.Telemetry.OTelEndpoint,
	}
	for k, v := range extra {
		opts[k] = v
	}
	ui.PrintConfigBanner(opts)
}

func runLocate(args []string) int {
	fs := flag.NewFlagSet("locate", flag.ContinueOnError)
	var common CommonFlags
	var lf LocateFlags
	common.Register(fs)
	lf.Register(fs)
	parseOrUsage(fs, args, locateUsage)

	cfg, err := loadConfig(fs, &common, lf.Apply)
	if err != nil {
		exitWithUsage(err.Error(), locateUsage)
	}
	strategy, err := engine.NewStrategy(cfg.Locate)
	if err != nil {
		exitWithError("%v", err)
	}

	rep := report.New("locate", cfg.Target)
	s, err := newSession(cfg, rep.RunID)
	if err != nil {
		exitWithError("%v", err)
	}
	printRunConfig("locate", cfg, map[string]string{
		"Strategy":   strategy.Name(),
		"Candidates": strconv.Itoa(strategy.Len()),
	})

	ctx, stop := signalContext()
	defer stop()

	out, err := s.locator().Locate(ctx, cfg.Target, strategy)
	rep.SetLocate(out)
	return s.finish(ctx, rep, err)
}

func runProbe(args []string) int {
	fs := flag.NewFlagSet("probe", flag.ContinueOnError)
	var common CommonFlags
	var pf ProbeFlags
	common.Register(fs)
	pf.Register(fs)
	parseOrUsage(fs, args, probeUsage)

	cfg, err := loadConfig(fs, &common, pf.Apply)
	if err != nil {
		exitWithUsage(err.Error(), probeUsage)
	}
	if err := cfg.RequirePasswords(); err != nil {
		exitWithUsage(err.Error(), probeUsage)
	}
	endpoint := cfg.Probe.Endpoint
	if endpoint == "" {
		endpoint = cfg.Target
	}

	rep := report.New("probe", endpoint)
	s, err := newSession(cfg, rep.RunID)
	if err != nil {
		exitWithError("%v", err)
	}

	ctx, stop := signalContext()
	defer stop()

	src, err := engine.LoadSource(ctx, s.wordlists, cfg.Probe)
	if err != nil {
		return s.finish(ctx, rep, err)
	}
	printRunConfig("probe", cfg, map[string]string{
		"Endpoint":   endpoint,
		"Passwords":  strings.Join(cfg.Probe.Passwords, ","),
		"Usernames":  strings.Join(cfg.Probe.Usernames, ","),
		"Candidates": strconv.Itoa(src.Len()),
		"Delay":      cfg.Probe.Delay.String(),
	})

	out, err := s.prober().Probe(ctx, endpoint, src)
	rep.SetProbe(endpoint, out)
	return s.finish(ctx, rep, err)
}

func runAuto(args []string) int {
	fs := flag.NewFlagSet("auto", flag.ContinueOnError)
	var common CommonFlags
	var lf LocateFlags
	var pf ProbeFlags
	common.Register(fs)
	lf.Register(fs)
	pf.Register(fs)
	parseOrUsage(fs, args, autoUsage)

	cfg, err := loadConfig(fs, &common, lf.Apply, pf.Apply)
	if err != nil {
		exitWithUsage(err.Error(), autoUsage)
	}
	if err := cfg.RequirePasswords(); err != nil {
		exitWithUsage(err.Error(), autoUsage)
	}
	strategy, err := engine.NewStrategy(cfg.Locate)
	if err != nil {
		exitWithError("%v", err)
	}

	pending := report.New("auto", cfg.Target)
	s, err := newSession(cfg, pending.RunID)
	if err != nil {
		exitWithError("%v", err)
	}

	ctx, stop := signalContext()
	defer stop()

	src, err := engine.LoadSource(ctx, s.wordlists, cfg.Probe)
	if err != nil {
		return s.finish(ctx, pending, err)
	}
	printRunConfig("auto", cfg, map[string]string{
		"Endpoint":   cfg.Probe.Endpoint,
		"Strategy":   strategy.Name(),
		"Passwords":  strings.Join(cfg.Probe.Passwords, ","),
		"Usernames":  strings.Join(cfg.Probe.Usernames, ","),
		"Candidates": fmt.Sprintf("%d paths, %d credentials", strategy.Len(), src.Len()),
		"Delay":      cfg.Probe.Delay.String(),
	})

	eng := engine.New(s.locator(), s.prober(), engine.WithLogger(s.logger))
	rep, err := eng.Run(ctx, engine.Plan{
		Target:   cfg.Target,
		Endpoint: cfg.Probe.Endpoint,
		Strategy: strategy,
		Source:   src,
		RunID:    pending.RunID,
	})
	return s.finish(ctx, rep, err)
}

func runDirscan(args []string) int {
	fs := flag.NewFlagSet("dirscan", flag.ContinueOnError)
	var common CommonFlags
	var df DirscanFlags
	common.Register(fs)
	df.Register(fs)
	parseOrUsage(fs, args, dirscanUsage)

	cfg, err := loadConfig(fs, &common, df.Apply)
	if err != nil {
		exitWithUsage(err.Error(), dirscanUsage)
	}

	rep := report.New("dirscan", cfg.Target)
	s, err := newSession(cfg, rep.RunID)
	if err != nil {
		exitWithError("%v", err)
	}

	ctx, stop := signalContext()
	defer stop()

	wl, err := s.wordlists.LoadMultiple(ctx, cfg.Dirscan.Wordlists)
	if err != nil {
		return s.finish(ctx, rep, fmt.Errorf("loading wordlists: %w", err))
	}
	printRunConfig("dirscan", cfg, map[string]string{
		"Wordlists":  strings.Join(cfg.Dirscan.Wordlists, ","),
		"Candidates": strconv.Itoa(wl.Size),
		"Delay":      cfg.Dirscan.Delay.String(),
	})

	sum, err := s.scanner().Scan(ctx, cfg.Target, wl.Words)
	rep.SetDirscan(sum)
	return s.finish(ctx, rep, err)
}

func runWordlists(args []string) int {
	fs := flag.NewFlagSet("wordlists", flag.ContinueOnError)
	show := fs.String("show", "", "Print the words of one built-in list")
	parseOrUsage(fs, args, "authprobe wordlists [-show NAME]")

	if *show != "" {
		wl, err := wordlist.NewManager(nil).Load(context.Background(), wordlist.BuiltinPrefix+*show)
		if err != nil {
			exitWithError("%v", err)
		}
		for _, w := range wl.Words {
			fmt.Println(w)
		}
		return 0
	}

	fmt.Println(ui.SectionStyle.Render("BUILT-IN WORDLISTS"))
	fmt.Println()
	for _, name := range wordlist.ListBuiltIn() {
		fmt.Printf("  %s  %s\n",
			ui.StatValueStyle.Render(fmt.Sprintf("builtin:%-12s", name)),
			ui.StatLabelStyle.Render(fmt.Sprintf("%d words", wordlist.BuiltInSize(name))))
	}
	fmt.Println()
	return 0
}
