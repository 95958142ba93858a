// package tracing wraps OpenTelemetry for run and remote operation spans.
//
// Tracing is off by default. When disabled the [Tracer] is backed by a no-op provider, so callers
// never branch on whether it is enabled.
package tracing

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/desertthunder/invsync/internal/models"
	"github.com/desertthunder/invsync/internal/shared"
)

const (
	TracerName = "github.com/desertthunder/invsync"
	Version    = "1.0.0"
)

// ExporterType selects where spans go.
type ExporterType string

const (
	ExporterNone   ExporterType = "none"
	ExporterStdout ExporterType = "stdout"
	ExporterOTLP   ExporterType = "otlp"
)

// Config holds tracing configuration.
type Config struct {
	Enabled      bool
	ExporterType ExporterType
	OTLPEndpoint string    // host:port of an OTLP/HTTP collector
	SampleRate   float64   // 0.0 to 1.0
	Output       io.Writer // stdout exporter destination, defaults to os.Stdout
}

// FromConfig converts the [tracing] config section.
func FromConfig(cfg shared.TracingConfig) Config {
	exporter := ExporterType(strings.ToLower(cfg.Exporter))
	if exporter == "" {
		exporter = ExporterNone
	}
	return Config{
		Enabled:      cfg.Enabled,
		ExporterType: exporter,
		OTLPEndpoint: cfg.Endpoint,
		SampleRate:   cfg.SampleRate,
	}
}

// Tracer starts spans for runs and remote operations.
type Tracer struct {
	tracer   trace.Tracer
	provider *sdktrace.TracerProvider
}

// Noop returns a Tracer that records nothing.
func Noop() *Tracer {
	return &Tracer{tracer: noop.NewTracerProvider().Tracer(TracerName)}
}

// New creates a Tracer. A disabled config yields [Noop].
func New(ctx context.Context, cfg Config) (*Tracer, error) {
	if !cfg.Enabled || cfg.ExporterType == ExporterNone {
		return Noop(), nil
	}

	exporter, err := createExporter(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName("invsync"),
			semconv.ServiceVersion(Version),
		),
		resource.WithHost(),
		resource.WithTelemetrySDK(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	var sampler sdktrace.Sampler
	switch {
	case cfg.SampleRate >= 1.0:
		sampler = sdktrace.AlwaysSample()
	case cfg.SampleRate <= 0.0:
		sampler = sdktrace.NeverSample()
	default:
		sampler = sdktrace.TraceIDRatioBased(cfg.SampleRate)
	}

	// A run is one short process, so spans are exported as they end.
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	)

	return &Tracer{
		tracer:   provider.Tracer(TracerName, trace.WithInstrumentationVersion(Version)),
		provider: provider,
	}, nil
}

func createExporter(ctx context.Context, cfg Config) (sdktrace.SpanExporter, error) {
	switch cfg.ExporterType {
	case ExporterStdout:
		opts := []stdouttrace.Option{stdouttrace.WithPrettyPrint()}
		if cfg.Output != nil {
			opts = append(opts, stdouttrace.WithWriter(cfg.Output))
		}
		return stdouttrace.New(opts...)

	case ExporterOTLP:
		opts := []otlptracehttp.Option{otlptracehttp.WithInsecure()}
		if cfg.OTLPEndpoint != "" {
			opts = append(opts, otlptracehttp.WithEndpoint(cfg.OTLPEndpoint))
		}
		return otlptracehttp.New(ctx, opts...)

	default:
		return nil, fmt.Errorf("unsupported exporter type: %s", cfg.ExporterType)
	}
}

// Shutdown flushes and stops the provider.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t.provider != nil {
		return t.provider.Shutdown(ctx)
	}
	return nil
}

// RunSpan covers one whole run.
type RunSpan struct {
	span trace.Span
}

// StartRunSpan starts the root span of a run.
func (t *Tracer) StartRunSpan(ctx context.Context, runID string, mode models.Mode) (context.Context, *RunSpan) {
	ctx, span := t.tracer.Start(ctx, "sync.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("run.id", runID),
			attribute.String("run.mode", string(mode)),
		),
	)
	return ctx, &RunSpan{span: span}
}

// SetDelta records the per-category sizes of the delta.
func (rs *RunSpan) SetDelta(d models.Delta) {
	c := models.CountsOf(d)
	rs.span.SetAttributes(
		attribute.Int("delta.history.added", c.AddedHistory),
		attribute.Int("delta.history.removed", c.RemovedHistory),
		attribute.Int("delta.subscriptions.added", c.AddedSubscriptions),
		attribute.Int("delta.subscriptions.removed", c.RemovedSubscriptions),
		attribute.Int("delta.playlists.added", c.AddedPlaylists),
		attribute.Int("delta.playlists.removed", c.RemovedPlaylists),
	)
}

// End closes the span with the outcome of the run.
func (rs *RunSpan) End(result *models.RunResult) {
	rs.span.SetAttributes(
		attribute.Bool("run.committed", result.Committed),
		attribute.Int("run.errors", len(result.Errors)),
	)
	if result.Failed() {
		rs.span.SetStatus(codes.Error, fmt.Sprintf("%d operation(s) failed", len(result.Errors)))
	} else {
		rs.span.SetStatus(codes.Ok, "run completed")
	}
	rs.span.End()
}

// EndWithError closes the span of a run that aborted.
func (rs *RunSpan) EndWithError(err error) {
	rs.span.RecordError(err)
	rs.span.SetStatus(codes.Error, err.Error())
	rs.span.End()
}

// OperationSpan covers one retried remote operation.
type OperationSpan struct {
	span trace.Span
}

// StartOperationSpan starts a span for op applied to target.
func (t *Tracer) StartOperationSpan(ctx context.Context, op, target string) (context.Context, *OperationSpan) {
	ctx, span := t.tracer.Start(ctx, "remote."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("op.name", op),
			attribute.String("op.target", target),
		),
	)
	return ctx, &OperationSpan{span: span}
}

// End closes the span after attempts tries, recording err when non-nil.
func (s *OperationSpan) End(attempts int, err error) {
	s.span.SetAttributes(attribute.Int("op.attempts", attempts))
	if err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
	} else {
		s.span.SetStatus(codes.Ok, "")
	}
	s.span.End()
}

// AddEvent adds an event to the span in ctx.
func AddEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	trace.SpanFromContext(ctx).AddEvent(name, trace.WithAttributes(attrs...))
}
