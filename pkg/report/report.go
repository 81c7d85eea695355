// Package report records the outcome of one authprobe run and renders it
// as JSON, Markdown or plain text.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/authprobe/authprobe/pkg/defaults"
	"github.com/authprobe/authprobe/pkg/dirscan"
	"github.com/authprobe/authprobe/pkg/locator"
	"github.com/authprobe/authprobe/pkg/prober"
	"github.com/google/uuid"
)

// Format defines output format
type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
)

// Report is the record of a single run.
type Report struct {
	RunID      string    `json:"run_id"`
	Tool       string    `json:"tool"`
	Version    string    `json:"version"`
	Command    string    `json:"command"`
	Target     string    `json:"target"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Found is true when the run's final stage succeeded: an endpoint for
	// locate, a credential for probe and auto, any hit for dirscan.
	Found       bool   `json:"found"`
	Attempts    int    `json:"attempts"`
	Interrupted bool   `json:"interrupted,omitempty"`
	Error       string `json:"error,omitempty"`

	Endpoint   string             `json:"endpoint,omitempty"`
	Credential *prober.Credential `json:"credential,omitempty"`
	Token      string             `json:"token,omitempty"`
	DirHits    []dirscan.Entry    `json:"dir_hits,omitempty"`

	Locate  *locator.Outcome `json:"locate,omitempty"`
	Probe   *prober.Outcome  `json:"probe,omitempty"`
	Dirscan *dirscan.Summary `json:"dirscan,omitempty"`
}

// New starts a report with a fresh run ID.
func New(command, target string) *Report {
	return &Report{
		RunID:     uuid.NewString(),
		Tool:      defaults.ToolName,
		Version:   defaults.Version,
		Command:   command,
		Target:    target,
		StartedAt: time.Now().UTC(),
	}
}

// SetLocate records the endpoint search.
func (r *Report) SetLocate(o locator.Outcome) {
	r.Locate = &o
	r.Attempts += o.Attempts
	r.Found = o.Found
	if o.Found {
		r.Endpoint = o.URL
	}
}

// SetProbe records the credential search against endpoint.
func (r *Report) SetProbe(endpoint string, o prober.Outcome) {
	r.Probe = &o
	r.Endpoint = endpoint
	r.Attempts += o.Attempts
	r.Found = o.Found
	r.Credential = o.Credential
	r.Token = o.Token
}

// SetDirscan records a directory scan.
func (r *Report) SetDirscan(s dirscan.Summary) {
	r.Dirscan = &s
	r.Attempts += s.Requests
	r.Found = len(s.Hits) > 0
	r.DirHits = s.Hits
}

// Finish stamps the end time. A non-nil err is recorded; context
// cancellation marks the run as interrupted.
func (r *Report) Finish(err error, interrupted bool) {
	r.FinishedAt = time.Now().UTC()
	r.Interrupted = interrupted
	if err != nil {
		r.Error = err.Error()
	}
}

// Duration is the wall time of the run.
func (r *Report) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return time.Since(r.StartedAt)
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Write renders the report in format.
func (r *Report) Write(w io.Writer, format Format) error {
	switch format {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatMarkdown:
		return markdownTmpl.Execute(w, r)
	case FormatText:
		return r.writeText(w)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

// WriteFile writes the report to path. The format follows the extension:
// .md for Markdown, .txt for text, JSON otherwise.
func (r *Report) WriteFile(path string) error {
	var buf bytes.Buffer
	if err := r.Write(&buf, FormatForPath(path)); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating report directory: %w", err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

// FormatForPath picks a Format from a file extension.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return FormatMarkdown
	case ".txt":
		return FormatText
	default:
		return FormatJSON
	}
}

func (r *Report) writeText(w io.Writer) error {
	var buf bytes.Buffer

	buf.WriteString(strings.Repeat("=", 60) + "\n")
	fmt.Fprintf(&buf, "  %s %s - %s\n", r.Tool, r.Version, r.Command)
	buf.WriteString(strings.Repeat("=", 60) + "\n\n")

	fmt.Fprintf(&buf, "Run ID:   %s\n", r.RunID)
	fmt.Fprintf(&buf, "Target:   %s\n", r.Target)
	fmt.Fprintf(&buf, "Started:  %s\n", r.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(&buf, "Duration: %s\n", r.Duration().Round(time.Millisecond))
	fmt.Fprintf(&buf, "Attempts: %d\n\n", r.Attempts)

	if r.Endpoint != "" {
		fmt.Fprintf(&buf, "Endpoint:   %s\n", r.Endpoint)
	}
	if r.Credential != nil {
		fmt.Fprintf(&buf, "Credential: %s\n", r.Credential)
	}
	if r.Token != "" {
		fmt.Fprintf(&buf, "Token:      %s\n", r.Token)
	}
	for _, h := range r.DirHits {
		line := fmt.Sprintf("[%s] %s", strings.ToUpper(string(h.Status)), h.URL)
		if h.Location != "" {
			line += " -> " + h.Location
		}
		buf.WriteString(line + "\n")
	}
	if !r.Found {
		buf.WriteString("Result:     nothing found\n")
	}
	if r.Interrupted {
		buf.WriteString("Run interrupted before completion\n")
	}

	_, err := w.Write(buf.Bytes())
	return err
}

var markdownTmpl = template.Must(template.New("markdown").Parse(`# {{.Tool}} {{.Command}} report

| Field | Value |
|---|---|
| Run ID | ` + "`{{.RunID}}`" + ` |
| Target | {{.Target}} |
| Started | {{.StartedAt.Format "2006-01-02T15:04:05Z07:00"}} |
| Attempts | {{.Attempts}} |
| Found | {{.Found}} |
{{- if .Interrupted}}
| Interrupted | true |
{{- end}}
{{if .Endpoint}}
## Endpoint

{{.Endpoint}}
{{end}}
{{- if .Credential}}
## Credential

` + "`{{.Credential}}`" + `
{{- if .Token}}

Token: ` + "`{{.Token}}`" + `
{{- end}}
{{end}}
{{- if .DirHits}}
## Paths

| Status | URL | Location |
|---|---|---|
{{- range .DirHits}}
| {{.Status}} | {{.URL}} | {{.Location}} |
{{- end}}
{{end}}`))
