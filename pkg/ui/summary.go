package ui

import (
	"fmt"
	"time"

	"github.com/authprobe/authprobe/pkg/report"
)

// PrintSummary prints the outcome of a run.
func PrintSummary(r *report.Report) {
	if IsSilent() {
		return
	}
	w := writer()
	PrintSection("Summary")

	stat := func(label, value string) {
		fmt.Fprintf(w, "  %s %s\n", StatLabelStyle.Render(fmt.Sprintf("%-12s", label)), StatValueStyle.Render(value))
	}
	stat("Run ID", r.RunID)
	stat("Target", r.Target)
	stat("Attempts", fmt.Sprintf("%d", r.Attempts))
	stat("Duration", r.Duration().Round(time.Millisecond).String())

	if r.Endpoint != "" {
		stat("Endpoint", r.Endpoint)
	}
	if r.Credential != nil {
		stat("Credential", r.Credential.String())
	}
	if r.Token != "" {
		stat("Token", r.Token)
	}
	if r.Dirscan != nil {
		stat("Found", fmt.Sprintf("%d", r.Dirscan.Found))
		stat("Redirects", fmt.Sprintf("%d", r.Dirscan.Redirects))
		stat("Errors", fmt.Sprintf("%d", r.Dirscan.Errors))
	}
	fmt.Fprintln(w)

	switch {
	case r.Interrupted:
		PrintWarning("Interrupted before the search finished")
	case r.Error != "":
		PrintError(r.Error)
	case r.Found:
		PrintSuccess(successMessage(r))
	default:
		PrintWarning(notFoundMessage(r))
	}
}

func successMessage(r *report.Report) string {
	switch {
	case r.Credential != nil:
		return "Credential found: " + r.Credential.String()
	case r.Dirscan != nil:
		return fmt.Sprintf("%d paths found", len(r.DirHits))
	default:
		return "Authentication endpoint found: " + r.Endpoint
	}
}

func notFoundMessage(r *report.Report) string {
	switch {
	case r.Probe != nil:
		return "No credential accepted"
	case r.Dirscan != nil:
		return "No paths found"
	default:
		return "No authentication endpoint found"
	}
}
