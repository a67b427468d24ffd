package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName names the meter and tracer used by the OTel adapters.
const InstrumentationName = "github.com/matzehuels/layoutfix"

// StartSpan starts a span on the global tracer provider. The returned
// function ends it and records err when non-nil.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, func(err error)) {
	ctx, span := otel.Tracer(InstrumentationName).Start(ctx, name, trace.WithAttributes(attrs...))
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}

func status(err error) attribute.KeyValue {
	if err != nil {
		return attribute.String("status", "failed")
	}
	return attribute.String("status", "ok")
}

// OTelPipelineHooks records correction and critique metrics on the global
// meter provider.
type OTelPipelineHooks struct {
	corrections metric.Int64Counter
	stepFailed  metric.Int64Counter
	stepTime    metric.Float64Histogram
	correctTime metric.Float64Histogram
	verdicts    metric.Int64Counter
	scores      metric.Float64Histogram
}

// NewOTelPipelineHooks creates the pipeline instruments.
func NewOTelPipelineHooks() (*OTelPipelineHooks, error) {
	meter := otel.Meter(InstrumentationName)
	h := &OTelPipelineHooks{}
	var err error
	if h.corrections, err = meter.Int64Counter("layoutfix.corrections",
		metric.WithDescription("Correction records produced"),
		metric.WithUnit("{correction}")); err != nil {
		return nil, err
	}
	if h.stepFailed, err = meter.Int64Counter("layoutfix.correction.step_failures",
		metric.WithDescription("Correction steps that recovered from a failure"),
		metric.WithUnit("{step}")); err != nil {
		return nil, err
	}
	if h.stepTime, err = meter.Float64Histogram("layoutfix.correction.step.duration",
		metric.WithDescription("Duration of a single correction step"),
		metric.WithUnit("s")); err != nil {
		return nil, err
	}
	if h.correctTime, err = meter.Float64Histogram("layoutfix.correction.duration",
		metric.WithDescription("Duration of a full correction run"),
		metric.WithUnit("s")); err != nil {
		return nil, err
	}
	if h.verdicts, err = meter.Int64Counter("layoutfix.critique.verdicts",
		metric.WithDescription("Critique verdicts by outcome"),
		metric.WithUnit("{critique}")); err != nil {
		return nil, err
	}
	if h.scores, err = meter.Float64Histogram("layoutfix.critique.score",
		metric.WithDescription("Critique total scores"),
		metric.WithUnit("{score}")); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *OTelPipelineHooks) OnCorrectStart(context.Context, int) {}

func (h *OTelPipelineHooks) OnCorrectStep(ctx context.Context, step string, d time.Duration, err error) {
	attrs := metric.WithAttributes(attribute.String("step", step), status(err))
	h.stepTime.Record(ctx, d.Seconds(), attrs)
	if err != nil {
		h.stepFailed.Add(ctx, 1, attrs)
	}
}

func (h *OTelPipelineHooks) OnCorrectComplete(ctx context.Context, n int, d time.Duration, err error) {
	h.corrections.Add(ctx, int64(n))
	h.correctTime.Record(ctx, d.Seconds(), metric.WithAttributes(status(err)))
}

func (h *OTelPipelineHooks) OnCritiqueComplete(ctx context.Context, verdict string, score float64, _ time.Duration) {
	attrs := metric.WithAttributes(attribute.String("verdict", verdict))
	h.verdicts.Add(ctx, 1, attrs)
	h.scores.Record(ctx, score, attrs)
}

// OTelCacheHooks counts cache traffic by key type.
type OTelCacheHooks struct {
	hits   metric.Int64Counter
	misses metric.Int64Counter
	bytes  metric.Int64Counter
}

// NewOTelCacheHooks creates the cache instruments.
func NewOTelCacheHooks() (*OTelCacheHooks, error) {
	meter := otel.Meter(InstrumentationName)
	h := &OTelCacheHooks{}
	var err error
	if h.hits, err = meter.Int64Counter("layoutfix.cache.hits", metric.WithUnit("{hit}")); err != nil {
		return nil, err
	}
	if h.misses, err = meter.Int64Counter("layoutfix.cache.misses", metric.WithUnit("{miss}")); err != nil {
		return nil, err
	}
	if h.bytes, err = meter.Int64Counter("layoutfix.cache.written", metric.WithUnit("By")); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *OTelCacheHooks) OnCacheHit(ctx context.Context, keyType string) {
	h.hits.Add(ctx, 1, metric.WithAttributes(attribute.String("key_type", keyType)))
}

func (h *OTelCacheHooks) OnCacheMiss(ctx context.Context, keyType string) {
	h.misses.Add(ctx, 1, metric.WithAttributes(attribute.String("key_type", keyType)))
}

func (h *OTelCacheHooks) OnCacheSet(ctx context.Context, keyType string, size int) {
	h.bytes.Add(ctx, int64(size), metric.WithAttributes(attribute.String("key_type", keyType)))
}

// OTelHTTPHooks records outgoing request latency and failures.
type OTelHTTPHooks struct {
	latency metric.Float64Histogram
	errors  metric.Int64Counter
}

// NewOTelHTTPHooks creates the HTTP client instruments.
func NewOTelHTTPHooks() (*OTelHTTPHooks, error) {
	meter := otel.Meter(InstrumentationName)
	h := &OTelHTTPHooks{}
	var err error
	if h.latency, err = meter.Float64Histogram("layoutfix.http.client.duration",
		metric.WithDescription("Outgoing HTTP request duration"),
		metric.WithUnit("s")); err != nil {
		return nil, err
	}
	if h.errors, err = meter.Int64Counter("layoutfix.http.client.errors", metric.WithUnit("{error}")); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *OTelHTTPHooks) OnRequest(context.Context, string, string, string) {}

func (h *OTelHTTPHooks) OnResponse(ctx context.Context, method, host, path string, code int, d time.Duration) {
	h.latency.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("server.address", host),
		attribute.String("url.path", path),
		attribute.Int("http.status_code", code),
	))
}

func (h *OTelHTTPHooks) OnError(ctx context.Context, method, host, path string, _ error) {
	h.errors.Add(ctx, 1, metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("server.address", host),
		attribute.String("url.path", path),
	))
}

var (
	_ PipelineHooks = (*OTelPipelineHooks)(nil)
	_ CacheHooks    = (*OTelCacheHooks)(nil)
	_ HTTPHooks     = (*OTelHTTPHooks)(nil)
)
