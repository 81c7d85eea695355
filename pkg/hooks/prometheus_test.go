package hooks

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/authprobe/authprobe/pkg/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPrometheusHook(t *testing.T) *PrometheusHook {
	t.Helper()
	hook, err := NewPrometheusHook(PrometheusOptions{Addr: "127.0.0.1:0"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = hook.Close(context.Background()) })
	return hook
}

func scrape(t *testing.T, hook *PrometheusHook) string {
	t.Helper()
	resp, err := http.Get(hook.MetricsURL())
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestPrometheusHook_DefaultOptions(t *testing.T) {
	hook := newTestPrometheusHook(t)
	assert.Equal(t, "/metrics", hook.opts.Path)
	assert.Contains(t, hook.MetricsURL(), "http://127.0.0.1:")
	assert.Contains(t, hook.MetricsURL(), "/metrics")
}

func TestPrometheusHook_RecordsAttempts(t *testing.T) {
	hook := newTestPrometheusHook(t)
	ctx := context.Background()

	require.NoError(t, hook.OnEvent(ctx, events.NewStartEvent(events.StageProbe, "http://x/api/auth", 6)))

	miss := events.NewAttemptEvent(events.StageProbe, 1, "POST", "http://x/api/auth")
	miss.Outcome = events.OutcomeMiss
	miss.Latency = 3 * time.Millisecond
	hit := events.NewAttemptEvent(events.StageProbe, 2, "POST", "http://x/api/auth")
	hit.Outcome = events.OutcomeHit
	hit.Latency = 2 * time.Millisecond
	require.NoError(t, hook.OnEvent(ctx, miss))
	require.NoError(t, hook.OnEvent(ctx, hit))
	require.NoError(t, hook.OnEvent(ctx, events.NewCompleteEvent(events.StageProbe, true, "Secr3t!", 2, 10*time.Millisecond)))

	out := scrape(t, hook)
	assert.Contains(t, out, `authprobe_attempts_total{outcome="miss",stage="probe"} 1`)
	assert.Contains(t, out, `authprobe_attempts_total{outcome="hit",stage="probe"} 1`)
	assert.Contains(t, out, `authprobe_hits_total{stage="probe"} 1`)
	assert.Contains(t, out, `authprobe_stage_candidates{stage="probe"} 6`)
	assert.Contains(t, out, `authprobe_stage_found{stage="probe"} 1`)
	assert.Contains(t, out, `authprobe_attempt_duration_seconds_count{stage="probe"} 2`)
}

func TestPrometheusHook_Scrape(t *testing.T) {
	hook := newTestPrometheusHook(t)

	ev := events.NewAttemptEvent(events.StageDirscan, 1, "GET", "http://x/admin")
	ev.Outcome = events.OutcomeRedirect
	require.NoError(t, hook.OnEvent(context.Background(), ev))

	assert.Contains(t, scrape(t, hook), `authprobe_attempts_total{outcome="redirect",stage="dirscan"} 1`)
}

func TestPrometheusHook_CloseIdempotent(t *testing.T) {
	hook, err := NewPrometheusHook(PrometheusOptions{Addr: "127.0.0.1:0"})
	require.NoError(t, err)

	require.NoError(t, hook.Close(context.Background()))
	require.NoError(t, hook.Close(context.Background()))

	// Events after Close are dropped.
	ev := events.NewAttemptEvent(events.StageLocate, 1, "POST", "http://x/")
	ev.Outcome = events.OutcomeHit
	require.NoError(t, hook.OnEvent(context.Background(), ev))

	_, err = http.Get(hook.MetricsURL())
	assert.Error(t, err, "server should be stopped")
}

func TestPrometheusHook_AddressInUse(t *testing.T) {
	hook := newTestPrometheusHook(t)
	_, err := NewPrometheusHook(PrometheusOptions{Addr: hook.Addr()})
	assert.Error(t, err)
}
