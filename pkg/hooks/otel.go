package hooks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/authprobe/authprobe/pkg/defaults"
	"github.com/authprobe/authprobe/pkg/duration"
	"github.com/authprobe/authprobe/pkg/events"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Compile-time interface checks.
var (
	_ events.Hook   = (*OTelHook)(nil)
	_ events.Closer = (*OTelHook)(nil)
)

// OTelHook exports one span per stage, with a child span per attempt, to
// an OpenTelemetry collector.
type OTelHook struct {
	opts           OTelOptions
	tracerProvider *sdktrace.TracerProvider
	tracer         trace.Tracer

	mu     sync.Mutex
	stages map[events.Stage]stageSpan
	closed bool
}

type stageSpan struct {
	ctx  context.Context
	span trace.Span
}

// OTelOptions configures the OpenTelemetry hook.
type OTelOptions struct {
	// Endpoint is the OTLP gRPC endpoint (default: "localhost:4317").
	Endpoint string

	// ServiceName is the service name for traces (default: "authprobe").
	ServiceName string

	// Insecure uses a plaintext gRPC connection.
	Insecure bool

	// Headers contains additional headers for the OTLP exporter.
	Headers map[string]string

	// ShutdownTimeout bounds flushing on Close (default: 5s).
	ShutdownTimeout time.Duration

	// ConnectionTimeout bounds exporter creation (default: 10s).
	ConnectionTimeout time.Duration

	// Exporter replaces the OTLP exporter. Spans are then exported
	// synchronously.
	Exporter sdktrace.SpanExporter
}

// NewOTelHook creates the tracer provider and exporter. The gRPC connection
// is established lazily, so an unreachable collector does not block a run.
func NewOTelHook(opts OTelOptions) (*OTelHook, error) {
	if opts.ServiceName == "" {
		opts.ServiceName = defaults.ToolName
	}
	if opts.Endpoint == "" {
		opts.Endpoint = "localhost:4317"
	}
	if opts.ShutdownTimeout == 0 {
		opts.ShutdownTimeout = duration.Shutdown
	}
	if opts.ConnectionTimeout == 0 {
		opts.ConnectionTimeout = duration.ExporterConnect
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(opts.ServiceName),
		semconv.ServiceVersion(defaults.Version),
	)

	var processor sdktrace.TracerProviderOption
	if opts.Exporter != nil {
		processor = sdktrace.WithSyncer(opts.Exporter)
	} else {
		exporterOpts := []otlptracegrpc.Option{
			otlptracegrpc.WithEndpoint(opts.Endpoint),
		}
		if opts.Insecure {
			exporterOpts = append(exporterOpts,
				otlptracegrpc.WithInsecure(),
				otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
		}
		if len(opts.Headers) > 0 {
			exporterOpts = append(exporterOpts, otlptracegrpc.WithHeaders(opts.Headers))
		}

		ctx, cancel := context.WithTimeout(context.Background(), opts.ConnectionTimeout)
		defer cancel()
		exporter, err := otlptracegrpc.New(ctx, exporterOpts...)
		if err != nil {
			return nil, fmt.Errorf("otel: create exporter: %w", err)
		}
		processor = sdktrace.WithBatcher(exporter)
	}

	tp := sdktrace.NewTracerProvider(
		processor,
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)

	return &OTelHook{
		opts:           opts,
		tracerProvider: tp,
		tracer:         tp.Tracer(defaults.ToolName + "/search"),
		stages:         make(map[events.Stage]stageSpan),
	}, nil
}

// OnEvent records the event as spans.
func (h *OTelHook) OnEvent(ctx context.Context, event events.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}

	switch e := event.(type) {
	case *events.StartEvent:
		h.handleStart(ctx, e)
	case *events.AttemptEvent:
		h.handleAttempt(e)
	case *events.CompleteEvent:
		h.handleComplete(e)
	}
	return nil
}

func (h *OTelHook) handleStart(ctx context.Context, e *events.StartEvent) {
	spanCtx, span := h.tracer.Start(ctx, defaults.ToolName+"."+string(e.Stage),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithTimestamp(e.Timestamp()),
		trace.WithAttributes(
			attribute.String("run_id", e.RunID),
			attribute.String("target", e.Target),
			attribute.Int("candidates", e.Total),
		),
	)
	h.stages[e.Stage] = stageSpan{ctx: spanCtx, span: span}
}

func (h *OTelHook) handleAttempt(e *events.AttemptEvent) {
	parent, ok := h.stages[e.Stage]
	if !ok {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.Int("index", e.Index),
		attribute.String("http.request.method", e.Method),
		attribute.String("url.full", e.URL),
		attribute.String("outcome", string(e.Outcome)),
	}
	if e.StatusCode != 0 {
		attrs = append(attrs, attribute.Int("http.response.status_code", e.StatusCode))
	}
	if e.Username != "" {
		attrs = append(attrs, attribute.String("username", e.Username))
	}

	end := e.Timestamp()
	_, span := h.tracer.Start(parent.ctx, "attempt",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithTimestamp(end.Add(-e.Latency)),
		trace.WithAttributes(attrs...),
	)
	if e.Outcome == events.OutcomeError {
		span.SetStatus(codes.Error, e.Error)
	}
	span.End(trace.WithTimestamp(end))
}

func (h *OTelHook) handleComplete(e *events.CompleteEvent) {
	s, ok := h.stages[e.Stage]
	if !ok {
		return
	}
	delete(h.stages, e.Stage)

	s.span.SetAttributes(
		attribute.Bool("found", e.Found),
		attribute.Int("attempts", e.Attempts),
		attribute.Bool("interrupted", e.Interrupted),
	)
	if e.Result != "" {
		s.span.SetAttributes(attribute.String("result", e.Result))
	}
	if e.Interrupted {
		s.span.SetStatus(codes.Error, "interrupted")
	} else {
		s.span.SetStatus(codes.Ok, "")
	}
	s.span.End(trace.WithTimestamp(e.Timestamp()))
}

// EventTypes returns the event types this hook handles.
func (h *OTelHook) EventTypes() []events.EventType {
	return []events.EventType{
		events.EventTypeStart,
		events.EventTypeAttempt,
		events.EventTypeComplete,
	}
}

// Close ends open spans and flushes the tracer provider.
func (h *OTelHook) Close(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true

	for stage, s := range h.stages {
		s.span.End()
		delete(h.stages, stage)
	}

	ctx, cancel := context.WithTimeout(ctx, h.opts.ShutdownTimeout)
	defer cancel()
	if err := h.tracerProvider.Shutdown(ctx); err != nil {
		return fmt.Errorf("otel: shutdown tracer provider: %w", err)
	}
	return nil
}

// Endpoint returns the OTLP endpoint being used.
func (h *OTelHook) Endpoint() string {
	return h.opts.Endpoint
}

// ServiceName returns the service name being used.
func (h *OTelHook) ServiceName() string {
	return h.opts.ServiceName
}
