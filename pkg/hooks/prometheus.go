package hooks

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/authprobe/authprobe/pkg/defaults"
	"github.com/authprobe/authprobe/pkg/duration"
	"github.com/authprobe/authprobe/pkg/events"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Compile-time interface checks.
var (
	_ events.Hook   = (*PrometheusHook)(nil)
	_ events.Closer = (*PrometheusHook)(nil)
)

// PrometheusHook exposes search metrics for Prometheus scraping. It serves
// its own registry on a dedicated listener until Close is called.
type PrometheusHook struct {
	server   *http.Server
	listener net.Listener
	registry *prometheus.Registry
	opts     PrometheusOptions
	logger   *slog.Logger

	attemptsTotal   *prometheus.CounterVec
	hitsTotal       *prometheus.CounterVec
	attemptLatency  *prometheus.HistogramVec
	stageDuration   *prometheus.GaugeVec
	stageFound      *prometheus.GaugeVec
	stageCandidates *prometheus.GaugeVec

	mu     sync.Mutex
	closed bool
}

// PrometheusOptions configures the Prometheus hook.
type PrometheusOptions struct {
	// Addr is the listen address (default: "127.0.0.1:9090"). Port 0 picks
	// a free port; see Addr().
	Addr string

	// Path for the metrics endpoint (default: "/metrics").
	Path string

	Logger *slog.Logger
}

// NewPrometheusHook registers the metrics and starts serving them.
func NewPrometheusHook(opts PrometheusOptions) (*PrometheusHook, error) {
	if opts.Addr == "" {
		opts.Addr = "127.0.0.1:9090"
	}
	if opts.Path == "" {
		opts.Path = defaults.MetricsPath
	}

	h := &PrometheusHook{
		registry: prometheus.NewRegistry(),
		opts:     opts,
		logger:   orDefault(opts.Logger),
	}
	if err := h.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}
	if err := h.startServer(); err != nil {
		return nil, fmt.Errorf("failed to start metrics server: %w", err)
	}
	return h, nil
}

func (h *PrometheusHook) initMetrics() error {
	ns := defaults.MetricsNamespace

	h.attemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns,
		Name:      "attempts_total",
		Help:      "Requests sent, by stage and outcome",
	}, []string{"stage", "outcome"})

	h.hitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: ns,
		Name:      "hits_total",
		Help:      "Live endpoints, accepted credentials and found paths",
	}, []string{"stage"})

	h.attemptLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: ns,
		Name:      "attempt_duration_seconds",
		Help:      "Per-request latency",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"stage"})

	h.stageDuration = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: ns,
		Name:      "stage_duration_seconds",
		Help:      "Wall time of the last completed stage",
	}, []string{"stage"})

	h.stageFound = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: ns,
		Name:      "stage_found",
		Help:      "1 when the last completed stage found something",
	}, []string{"stage"})

	h.stageCandidates = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: ns,
		Name:      "stage_candidates",
		Help:      "Number of candidates queued for the current stage",
	}, []string{"stage"})

	for _, c := range []prometheus.Collector{
		h.attemptsTotal, h.hitsTotal, h.attemptLatency,
		h.stageDuration, h.stageFound, h.stageCandidates,
	} {
		if err := h.registry.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (h *PrometheusHook) startServer() error {
	ln, err := net.Listen("tcp", h.opts.Addr)
	if err != nil {
		return err
	}
	h.listener = ln

	mux := http.NewServeMux()
	mux.Handle(h.opts.Path, promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))
	h.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: duration.MetricsReadHeader,
	}

	go func() {
		if err := h.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			h.logger.Warn("prometheus: metrics server error", slog.String("error", err.Error()))
		}
	}()
	return nil
}

// OnEvent updates the metrics.
func (h *PrometheusHook) OnEvent(_ context.Context, event events.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}

	switch e := event.(type) {
	case *events.StartEvent:
		h.stageCandidates.WithLabelValues(string(e.Stage)).Set(float64(e.Total))
	case *events.AttemptEvent:
		stage := string(e.Stage)
		h.attemptsTotal.WithLabelValues(stage, string(e.Outcome)).Inc()
		if e.Outcome == events.OutcomeHit {
			h.hitsTotal.WithLabelValues(stage).Inc()
		}
		if e.Latency > 0 {
			h.attemptLatency.WithLabelValues(stage).Observe(e.Latency.Seconds())
		}
	case *events.CompleteEvent:
		stage := string(e.Stage)
		h.stageDuration.WithLabelValues(stage).Set(e.Duration.Seconds())
		found := 0.0
		if e.Found {
			found = 1
		}
		h.stageFound.WithLabelValues(stage).Set(found)
	}
	return nil
}

// EventTypes returns the event types this hook handles.
func (h *PrometheusHook) EventTypes() []events.EventType {
	return []events.EventType{
		events.EventTypeStart,
		events.EventTypeAttempt,
		events.EventTypeComplete,
	}
}

// Close shuts down the metrics server. It is safe to call more than once.
func (h *PrometheusHook) Close(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true

	ctx, cancel := context.WithTimeout(ctx, duration.Shutdown)
	defer cancel()
	return h.server.Shutdown(ctx)
}

// Addr returns the address the metrics server listens on.
func (h *PrometheusHook) Addr() string {
	return h.listener.Addr().String()
}

// MetricsURL returns the full scrape URL.
func (h *PrometheusHook) MetricsURL() string {
	return "http://" + h.Addr() + h.opts.Path
}
