// Command authprobe locates authentication endpoints on a lab target and
// searches them for working credentials.
package main

import (
	"fmt"
	"os"

	"github.com/authprobe/authprobe/pkg/defaults"
	"github.com/authprobe/authprobe/pkg/ui"
)

func printUsage() {
	ui.PrintBanner()

	fmt.Println(ui.SectionStyle.Render("COMMANDS"))
	fmt.Println()
	fmt.Printf("  %s  %s\n", ui.StatValueStyle.Render("locate   "), "Find the authentication endpoint under a base URL")
	fmt.Printf("  %s  %s\n", ui.StatValueStyle.Render("probe    "), "Try a password (or username+password) wordlist against an endpoint")
	fmt.Printf("  %s  %s\n", ui.StatValueStyle.Render("auto     "), "locate, then probe the endpoint it finds")
	fmt.Printf("  %s  %s\n", ui.StatValueStyle.Render("dirscan  "), "Check which paths from a wordlist exist (200) or redirect (301/302)")
	fmt.Printf("  %s  %s\n", ui.StatValueStyle.Render("wordlists"), "List built-in wordlists")
	fmt.Printf("  %s  %s\n", ui.StatValueStyle.Render("version  "), "Print version")
	fmt.Println()

	fmt.Println(ui.SectionStyle.Render("EXAMPLES"))
	fmt.Println()
	fmt.Printf("    %s\n", ui.ConfigValueStyle.Render("authprobe locate -u http://127.0.0.1:5000"))
	fmt.Printf("    %s\n", ui.ConfigValueStyle.Render("authprobe locate -u http://127.0.0.1:5000 -strategy random -tries 500"))
	fmt.Printf("    %s\n", ui.ConfigValueStyle.Render("authprobe probe -u http://127.0.0.1:5000/api/auth -w builtin:passwords"))
	fmt.Printf("    %s\n", ui.ConfigValueStyle.Render("authprobe auto -u http://127.0.0.1:5000 -w pwds.txt -U users.txt -o report.json"))
	fmt.Printf("    %s\n", ui.ConfigValueStyle.Render("authprobe dirscan -u http://127.0.0.1:5000 -w builtin:common-dirs"))
	fmt.Println()

	fmt.Println(ui.SectionStyle.Render("SHARED FLAGS"))
	fmt.Println()
	fmt.Println("    -config FILE         YAML configuration (flags override it)")
	fmt.Println("    -timeout 10s         Per-request timeout")
	fmt.Println("    -proxy URL           http, https, socks5 or socks5h proxy")
	fmt.Println("    -k                   Skip TLS verification")
	fmt.Println("    -o FILE              Write report (.json, .md, .txt)")
	fmt.Println("    -v / -debug          Show every attempt / debug logging")
	fmt.Println("    -silent / -nc        Errors only / no color")
	fmt.Println("    -metrics-addr ADDR   Serve Prometheus metrics")
	fmt.Println("    -otel-endpoint ADDR  Export OpenTelemetry traces")
	fmt.Println()
	fmt.Println(ui.HelpStyle.Render("  Run 'authprobe <command> -h' for command flags. Only test systems you are authorized to test."))
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(defaults.ExitUserError)
	}

	args := os.Args[2:]
	switch os.Args[1] {
	case "locate", "find":
		os.Exit(runLocate(args))
	case "probe", "brute":
		os.Exit(runProbe(args))
	case "auto":
		os.Exit(runAuto(args))
	case "dirscan", "dirs":
		os.Exit(runDirscan(args))
	case "wordlists", "lists":
		os.Exit(runWordlists(args))
	case "-h", "--help", "help":
		printUsage()
		os.Exit(defaults.ExitSuccess)
	case "-version", "--version", "version":
		fmt.Printf("%s v%s\n", defaults.ToolName, defaults.Version)
		os.Exit(defaults.ExitSuccess)
	default:
		ui.PrintError(fmt.Sprintf("unknown command %q", os.Args[1]))
		printUsage()
		os.Exit(defaults.ExitUserError)
	}
}
