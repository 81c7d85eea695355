// Package ui renders authprobe's terminal output: the banner, the run
// configuration, live hits and the final summary. Everything is written
// to stderr so stdout stays free for piped reports.
package ui

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/authprobe/authprobe/pkg/defaults"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Global UI state
var (
	silentMode  bool
	noColorMode bool
	out         io.Writer = os.Stderr
	uiMu        sync.RWMutex
)

// SetOutput redirects all UI output and returns the previous writer.
func SetOutput(w io.Writer) io.Writer {
	uiMu.Lock()
	defer uiMu.Unlock()
	prev := out
	out = w
	return prev
}

func writer() io.Writer {
	uiMu.RLock()
	defer uiMu.RUnlock()
	return out
}

// SetSilent enables or disables silent mode (suppresses everything except
// errors)
func SetSilent(silent bool) {
	uiMu.Lock()
	defer uiMu.Unlock()
	silentMode = silent
}

// IsSilent returns whether silent mode is enabled
func IsSilent() bool {
	uiMu.RLock()
	defer uiMu.RUnlock()
	return silentMode
}

// SetNoColor disables colored output
func SetNoColor(noColor bool) {
	uiMu.Lock()
	defer uiMu.Unlock()
	noColorMode = noColor
	if noColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// IsNoColor returns whether color is disabled
func IsNoColor() bool {
	uiMu.RLock()
	defer uiMu.RUnlock()
	return noColorMode
}

const bannerArt = `
             __  __                        __
  ____ ___  / /_/ /_  ____  _________  ___/ /_  ___
 / __ '/ / / / __/ __ \/ __ \/ ___/ __ \/ __ \/ _ \
/ /_/ / /_/ / /_/ / / / /_/ / /  / /_/ / /_/ /  __/
\__,_/\__,_/\__/_/ /_/ .___/_/   \____/_.___/\___/
                    /_/
`

const bannerSeparator = "________________________________________________"

// PrintBanner prints the application banner with version info
func PrintBanner() {
	if IsSilent() {
		return
	}
	w := writer()
	for _, line := range strings.Split(bannerArt, "\n") {
		if line != "" {
			fmt.Fprintln(w, BannerStyle.Render(line))
		}
	}
	fmt.Fprintf(w, "                       v%s\n", VersionStyle.Render(defaults.Version))
	fmt.Fprintf(w, "\n\t  authorized lab testing only\n\n")
}

// printOption prints a configuration option
// Format:  :: Option              : Value
func printOption(w io.Writer, name, value string) {
	fmt.Fprintf(w, " :: %-20s : %s\n", ConfigLabelStyle.Render(name), ConfigValueStyle.Render(value))
}

// configOrder is the display order for PrintConfigBanner.
var configOrder = []string{
	"Command", "Target", "Endpoint", "Strategy", "Candidates",
	"Passwords", "Usernames", "Wordlists", "Delay", "Timeout",
	"Proxy", "Report", "Metrics", "Tracing",
}

// PrintConfigBanner prints the run settings before execution starts.
// Known keys are printed in a fixed order, the rest alphabetically.
func PrintConfigBanner(options map[string]string) {
	if IsSilent() {
		return
	}
	w := writer()

	printed := make(map[string]bool)
	for _, name := range configOrder {
		if value, ok := options[name]; ok && value != "" {
			printOption(w, name, value)
			printed[name] = true
		}
	}

	rest := make([]string, 0, len(options))
	for name, value := range options {
		if !printed[name] && value != "" {
			rest = append(rest, name)
		}
	}
	slices.Sort(rest)
	for _, name := range rest {
		printOption(w, name, options[name])
	}

	fmt.Fprintf(w, "%s\n\n", DividerStyle.Render(bannerSeparator))
}

// PrintDivider prints a stylized divider
func PrintDivider() {
	if IsSilent() {
		return
	}
	fmt.Fprintln(writer(), DividerStyle.Render(strings.Repeat("-", 75)))
}

// PrintSection prints a section header
func PrintSection(title string) {
	if IsSilent() {
		return
	}
	w := writer()
	fmt.Fprintln(w)
	fmt.Fprintln(w, SectionStyle.Render("> "+title))
	PrintDivider()
}

// PrintHelp prints contextual help
func PrintHelp(text string) {
	if IsSilent() {
		return
	}
	fmt.Fprintln(writer(), HelpStyle.Render("  [i] "+text))
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	if IsSilent() {
		return
	}
	fmt.Fprintln(writer(), FoundStyle.Render("  "+Icon("✔", "[+]")+" "+SanitizeString(message)))
}

// PrintError prints an error message. Errors are shown in silent mode too.
func PrintError(message string) {
	fmt.Fprintln(writer(), NotFoundStyle.Render("  [X] "+SanitizeString(message)))
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	if IsSilent() {
		return
	}
	fmt.Fprintln(writer(), WarningStyle.Render("  [!] "+SanitizeString(message)))
}

// PrintInfo prints an info message
func PrintInfo(message string) {
	if IsSilent() {
		return
	}
	fmt.Fprintf(writer(), "  %s %s\n", BulletStyle.Render("*"), SanitizeString(message))
}
