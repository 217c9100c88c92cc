package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/BaSui01/omnirelay/pricing"
)

const instrumentationName = "github.com/BaSui01/omnirelay"

// Metrics 指标收集器。nil 接收者上的所有方法都是空操作。
type Metrics struct {
	tracer trace.Tracer
	meter  metric.Meter
	// 计数器
	requestTotal     metric.Int64Counter
	tokenTotal       metric.Int64Counter
	errorTotal       metric.Int64Counter
	streamEventTotal metric.Int64Counter
	// 直方图
	requestDuration metric.Float64Histogram
	tokenCount      metric.Int64Histogram
	costPerRequest  metric.Float64Histogram
	// 活跃流
	activeStreams metric.Int64UpDownCounter
}

// NewMetrics 创建指标收集器。
func NewMetrics() (*Metrics, error) {
	m := &Metrics{
		tracer: otel.Tracer(instrumentationName),
		meter:  otel.Meter(instrumentationName),
	}

	var err error

	m.requestTotal, err = m.meter.Int64Counter("omnirelay.request.total",
		metric.WithDescription("Total number of upstream requests"),
		metric.WithUnit("{request}"))
	if err != nil {
		return nil, err
	}

	m.tokenTotal, err = m.meter.Int64Counter("omnirelay.token.total",
		metric.WithDescription("Total tokens consumed"),
		metric.WithUnit("{token}"))
	if err != nil {
		return nil, err
	}

	m.errorTotal, err = m.meter.Int64Counter("omnirelay.error.total",
		metric.WithDescription("Total number of upstream errors"),
		metric.WithUnit("{error}"))
	if err != nil {
		return nil, err
	}

	m.streamEventTotal, err = m.meter.Int64Counter("omnirelay.stream.event.total",
		metric.WithDescription("Total normalized stream events emitted"),
		metric.WithUnit("{event}"))
	if err != nil {
		return nil, err
	}

	m.requestDuration, err = m.meter.Float64Histogram("omnirelay.request.duration",
		metric.WithDescription("Request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60))
	if err != nil {
		return nil, err
	}

	m.tokenCount, err = m.meter.Int64Histogram("omnirelay.token.count",
		metric.WithDescription("Token count per request"),
		metric.WithUnit("{token}"),
		metric.WithExplicitBucketBoundaries(100, 500, 1000, 2000, 4000, 8000, 16000, 32000))
	if err != nil {
		return nil, err
	}

	m.costPerRequest, err = m.meter.Float64Histogram("omnirelay.cost.per_request",
		metric.WithDescription("Cost per request in USD"),
		metric.WithUnit("USD"),
		metric.WithExplicitBucketBoundaries(0.0001, 0.001, 0.01, 0.05, 0.1, 0.5, 1, 5))
	if err != nil {
		return nil, err
	}

	m.activeStreams, err = m.meter.Int64UpDownCounter("omnirelay.stream.active",
		metric.WithDescription("Number of active event streams"),
		metric.WithUnit("{stream}"))
	if err != nil {
		return nil, err
	}

	return m, nil
}

// RecordRequest 记录一次上游请求的结果与延迟。
func (m *Metrics) RecordRequest(ctx context.Context, api, model string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("api", api),
		attribute.String("model", model))

	m.requestTotal.Add(ctx, 1, attrs)
	m.requestDuration.Record(ctx, duration.Seconds(), attrs)
	if err != nil {
		m.errorTotal.Add(ctx, 1, attrs)
	}
}

// RecordTokens 记录一次请求的 token 用量。缺失的用量不上报。
func (m *Metrics) RecordTokens(ctx context.Context, model string, usage pricing.UsageRecord) {
	if m == nil {
		return
	}
	record := func(kind string, v *int64) {
		if v == nil {
			return
		}
		m.tokenTotal.Add(ctx, *v, metric.WithAttributes(
			attribute.String("model", model),
			attribute.String("type", kind)))
	}
	record("input", usage.InputTokens)
	record("output", usage.OutputTokens)

	if usage.TotalTokens != nil {
		m.tokenCount.Record(ctx, *usage.TotalTokens, metric.WithAttributes(
			attribute.String("model", model)))
	}
}

// RecordCost 记录单次请求的估算成本。
func (m *Metrics) RecordCost(ctx context.Context, api, model string, usd float64) {
	if m == nil || usd <= 0 {
		return
	}
	m.costPerRequest.Record(ctx, usd, metric.WithAttributes(
		attribute.String("api", api),
		attribute.String("model", model)))
}

// RecordStreamEvent 记录一条发往客户端的归一化事件。
func (m *Metrics) RecordStreamEvent(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.streamEventTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("event", kind)))
}

// StreamStarted 与 StreamEnded 维护活跃流 Gauge。
func (m *Metrics) StreamStarted(ctx context.Context) {
	if m == nil {
		return
	}
	m.activeStreams.Add(ctx, 1)
}

func (m *Metrics) StreamEnded(ctx context.Context) {
	if m == nil {
		return
	}
	m.activeStreams.Add(ctx, -1)
}

// StartSpan 开启一个请求级 span。Metrics 为 nil 时返回原 ctx
// 与空 span。
func (m *Metrics) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if m == nil {
		return trace.ContextWithSpan(ctx, trace.SpanFromContext(ctx)), trace.SpanFromContext(ctx)
	}
	return m.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}
