package transport

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/authprobe/authprobe/pkg/defaults"
	"github.com/authprobe/authprobe/pkg/httpclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostJSON(t *testing.T) {
	t.Parallel()
	var gotCT, gotUA string
	var gotBody map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCT = r.Header.Get("Content-Type")
		gotUA = r.Header.Get("User-Agent")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("X-Lab", "1")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"status":"fail"}`)
	}))
	defer srv.Close()

	res := New(srv.Client()).PostJSON(context.Background(), srv.URL+"/api/auth", map[string]string{"password": "test"})
	require.NoError(t, res.Err)
	assert.Equal(t, http.StatusUnauthorized, res.StatusCode)
	assert.Equal(t, `{"status":"fail"}`, string(res.Body))
	assert.Equal(t, "1", res.Header.Get("X-Lab"))
	assert.Positive(t, res.Latency)

	assert.Equal(t, defaults.ContentTypeJSON, gotCT)
	assert.Equal(t, defaults.UAMinimal, gotUA)
	assert.Equal(t, map[string]string{"password": "test"}, gotBody)
}

func TestGet_CustomUserAgent(t *testing.T) {
	t.Parallel()
	var gotUA, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotMethod = r.Method
	}))
	defer srv.Close()

	res := New(srv.Client(), WithUserAgent("lab/1")).Get(context.Background(), srv.URL+"/admin")
	require.NoError(t, res.Err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "lab/1", gotUA)
	assert.Equal(t, http.MethodGet, gotMethod)
}

func TestMaxBody(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, strings.Repeat("a", 4096))
	}))
	defer srv.Close()

	res := New(srv.Client(), WithMaxBody(16)).Get(context.Background(), srv.URL)
	require.NoError(t, res.Err)
	assert.Len(t, res.Body, 16)
}

func TestConnectionRefused(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	res := New(httpclient.New(httpclient.DefaultConfig())).PostJSON(context.Background(), url+"/api/auth", map[string]string{"password": "x"})
	assert.Error(t, res.Err)
	assert.ErrorIs(t, res.Err, httpclient.ErrConnRefused)
	assert.Zero(t, res.StatusCode)
}

func TestCancelledContext(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := New(srv.Client()).Get(ctx, srv.URL)
	assert.ErrorIs(t, res.Err, context.Canceled)
}

func TestInvalidURL(t *testing.T) {
	t.Parallel()
	res := New(nil).Get(context.Background(), "http://[::1")
	assert.ErrorIs(t, res.Err, httpclient.ErrTransport)
}

func TestUnmarshalablePayload(t *testing.T) {
	t.Parallel()
	res := New(nil).PostJSON(context.Background(), "http://127.0.0.1:1", map[string]any{"f": func() {}})
	assert.Error(t, res.Err)
	assert.Error(t, res.Err)
}
