package engine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/authprobe/authprobe/pkg/locator"
	"github.com/authprobe/authprobe/pkg/pacing"
	"github.com/authprobe/authprobe/pkg/prober"
	"github.com/authprobe/authprobe/pkg/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lab serves a single login endpoint at loginPath accepting one password.
type lab struct {
	loginPath string
	password  string

	mu       sync.Mutex
	requests []string
}

func (l *lab) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body map[string]string
	_ = json.NewDecoder(r.Body).Decode(&body)

	l.mu.Lock()
	l.requests = append(l.requests, r.URL.Path+" "+body["password"])
	l.mu.Unlock()

	switch {
	case r.URL.Path != l.loginPath:
		w.WriteHeader(http.StatusNotFound)
	case body["password"] == l.password:
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusUnauthorized)
	}
}

func (l *lab) seen() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.requests...)
}

func newEngine(t *testing.T, l *lab) (*Engine, string) {
	t.Helper()
	srv := httptest.NewServer(l)
	t.Cleanup(srv.Close)

	client := transport.New(srv.Client())
	e := New(locator.New(client), prober.New(client, prober.WithPacer(pacing.None)))
	return e, srv.URL
}

func TestRun_LocatesThenProbes(t *testing.T) {
	t.Parallel()
	l := &lab{loginPath: "/api/login", password: "Secr3t!"}
	e, base := newEngine(t, l)

	rep, err := e.Run(context.Background(), Plan{
		Target: base,
		Source: prober.Passwords([]string{"123456", "Secr3t!", "password"}),
	})
	require.NoError(t, err)

	assert.True(t, rep.Found)
	assert.Equal(t, base+"/api/login", rep.Endpoint)
	require.NotNil(t, rep.Credential)
	assert.Equal(t, "Secr3t!", rep.Credential.Password)
	// 2 locate requests + 2 probe requests.
	assert.Equal(t, 4, rep.Attempts)
	assert.Equal(t, []string{
		"/api/auth test",
		"/api/login test",
		"/api/login 123456",
		"/api/login Secr3t!",
	}, l.seen())
	assert.False(t, rep.FinishedAt.IsZero())
}

func TestRun_EndpointSkipsLocate(t *testing.T) {
	t.Parallel()
	l := &lab{loginPath: "/hidden/api/auth", password: "hunter2"}
	e, base := newEngine(t, l)

	rep, err := e.Run(context.Background(), Plan{
		Target:   base,
		Endpoint: base + "/hidden/api/auth",
		Source:   prober.Passwords([]string{"hunter2"}),
	})
	require.NoError(t, err)

	assert.True(t, rep.Found)
	assert.Nil(t, rep.Locate)
	assert.Equal(t, []string{"/hidden/api/auth hunter2"}, l.seen())
}

func TestRun_NoEndpointFound(t *testing.T) {
	t.Parallel()
	l := &lab{loginPath: "/nowhere", password: "x"}
	e, base := newEngine(t, l)

	rep, err := e.Run(context.Background(), Plan{
		Target: base,
		Source: prober.Passwords([]string{"x"}),
	})
	require.NoError(t, err)

	assert.False(t, rep.Found)
	assert.Nil(t, rep.Probe)
	require.NotNil(t, rep.Locate)
	assert.Equal(t, len(locator.DefaultCommonPaths()), rep.Attempts)
}

func TestRun_CredentialNotFound(t *testing.T) {
	t.Parallel()
	l := &lab{loginPath: "/api/auth", password: "unguessable"}
	e, base := newEngine(t, l)

	rep, err := e.Run(context.Background(), Plan{
		Target: base,
		Source: prober.Passwords([]string{"a", "b", "c"}),
	})
	require.NoError(t, err)

	assert.False(t, rep.Found)
	assert.Equal(t, base+"/api/auth", rep.Endpoint)
	assert.Nil(t, rep.Credential)
	assert.Equal(t, 1+3, rep.Attempts)
}

func TestRun_EmptySource(t *testing.T) {
	t.Parallel()
	e, base := newEngine(t, &lab{loginPath: "/api/auth"})

	rep, err := e.Run(context.Background(), Plan{Target: base, Source: prober.Passwords(nil)})
	require.ErrorIs(t, err, ErrNoCandidates)
	assert.NotEmpty(t, rep.Error)
}

func TestRun_InvalidTarget(t *testing.T) {
	t.Parallel()
	e, _ := newEngine(t, &lab{})

	_, err := e.Run(context.Background(), Plan{Target: "ftp://x", Source: prober.Passwords([]string{"a"})})
	require.ErrorIs(t, err, locator.ErrInvalidBaseURL)
}

func TestRun_Cancelled(t *testing.T) {
	t.Parallel()
	e, base := newEngine(t, &lab{loginPath: "/api/auth"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rep, err := e.Run(ctx, Plan{Target: base, Source: prober.Passwords([]string{"a"})})
	require.ErrorIs(t, err, context.Canceled)
	assert.True(t, rep.Interrupted)
	assert.Zero(t, rep.Attempts)
}

func TestRun_KeepsRunID(t *testing.T) {
	t.Parallel()
	l := &lab{loginPath: "/api/auth", password: "a"}
	e, base := newEngine(t, l)

	rep, err := e.Run(context.Background(), Plan{
		Target: base,
		Source: prober.Passwords([]string{"a"}),
		RunID:  "run-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "run-1", rep.RunID)
	assert.Equal(t, "auto", rep.Command)
}
