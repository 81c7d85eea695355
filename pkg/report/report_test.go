package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/authprobe/authprobe/pkg/dirscan"
	"github.com/authprobe/authprobe/pkg/locator"
	"github.com/authprobe/authprobe/pkg/prober"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func autoReport() *Report {
	r := New("auto", "http://127.0.0.1:5000")
	r.SetLocate(locator.Outcome{Found: true, URL: "http://127.0.0.1:5000/api/login", Strategy: "common", Attempts: 2})
	r.SetProbe("http://127.0.0.1:5000/api/login", prober.Outcome{
		Found:      true,
		Credential: &prober.Credential{Username: "admin", Password: "hunter2"},
		Token:      "tok-1",
		Variant:    prober.VariantUserPass,
		Attempts:   5,
	})
	r.Finish(nil, false)
	return r
}

func TestNew_RunID(t *testing.T) {
	t.Parallel()
	a := New("locate", "http://x")
	b := New("locate", "http://x")
	_, err := uuid.Parse(a.RunID)
	require.NoError(t, err)
	assert.NotEqual(t, a.RunID, b.RunID)
	assert.Equal(t, "authprobe", a.Tool)
}

func TestAggregation(t *testing.T) {
	t.Parallel()
	r := autoReport()
	assert.True(t, r.Found)
	assert.Equal(t, 7, r.Attempts)
	assert.Equal(t, "http://127.0.0.1:5000/api/login", r.Endpoint)
	assert.Equal(t, "admin:hunter2", r.Credential.String())
	assert.Equal(t, "tok-1", r.Token)
	assert.False(t, r.FinishedAt.Before(r.StartedAt))
}

func TestLocateNotFound(t *testing.T) {
	t.Parallel()
	r := New("auto", "http://x")
	r.SetLocate(locator.Outcome{Attempts: 5})
	assert.False(t, r.Found)
	assert.Empty(t, r.Endpoint)
}

func TestWrite_JSON(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, autoReport().Write(&buf, FormatJSON))

	var m map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m))
	assert.Equal(t, true, m["found"])
	assert.Equal(t, "tok-1", m["token"])
	assert.Equal(t, map[string]any{"username": "admin", "password": "hunter2"}, m["credential"])
	assert.NotContains(t, m, "dir_hits")
}

func TestWrite_Markdown(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, autoReport().Write(&buf, FormatMarkdown))
	out := buf.String()
	assert.Contains(t, out, "# authprobe auto report")
	assert.Contains(t, out, "`admin:hunter2`")
	assert.Contains(t, out, "Token: `tok-1`")
}

func TestWrite_TextDirscan(t *testing.T) {
	t.Parallel()
	r := New("dirscan", "http://x")
	r.SetDirscan(dirscan.Summary{
		Hits: []dirscan.Entry{
			{Path: "admin", URL: "http://x/admin", Status: dirscan.StatusFound, StatusCode: 200},
			{Path: "login", URL: "http://x/login", Status: dirscan.StatusRedirect, StatusCode: 301, Location: "/login/"},
		},
		Requests: 10, Found: 1, Redirects: 1, NotFound: 8,
	})
	r.Finish(errors.New("context canceled"), true)

	var buf bytes.Buffer
	require.NoError(t, r.Write(&buf, FormatText))
	out := buf.String()
	assert.Contains(t, out, "[FOUND] http://x/admin")
	assert.Contains(t, out, "[REDIRECT] http://x/login -> /login/")
	assert.Contains(t, out, "interrupted")
	assert.Equal(t, 10, r.Attempts)
	assert.Equal(t, "context canceled", r.Error)
}

func TestWrite_Unsupported(t *testing.T) {
	t.Parallel()
	assert.Error(t, autoReport().Write(&bytes.Buffer{}, Format("pdf")))
}

func TestWriteFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "out", "run.json")
	require.NoError(t, autoReport().WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
}

func TestFormatForPath(t *testing.T) {
	t.Parallel()
	assert.Equal(t, FormatJSON, FormatForPath("r.json"))
	assert.Equal(t, FormatJSON, FormatForPath("r"))
	assert.Equal(t, FormatMarkdown, FormatForPath("R.MD"))
	assert.Equal(t, FormatText, FormatForPath("r.txt"))
}
