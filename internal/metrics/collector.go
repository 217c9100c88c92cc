// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/BaSui01/omnirelay/interaction"
)

// =============================================================================
// 📊 指标收集器
// =============================================================================

// Collector 把交互记录转换成 Prometheus 指标。它实现
// interaction.Sink，与日志接收器并联挂在同一条记录管道上。
type Collector struct {
	// 上游请求指标
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errorsTotal     *prometheus.CounterVec

	// 流式事件指标
	streamEventsTotal *prometheus.CounterVec
	streamsTotal      *prometheus.CounterVec

	// 用量与成本指标
	tokensUsed *prometheus.CounterVec
	costTotal  *prometheus.CounterVec

	logger *zap.Logger
}

// NewCollector 创建指标收集器
func NewCollector(namespace string, logger *zap.Logger) *Collector {
	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	c.requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Total number of upstream API requests",
		},
		[]string{"api", "endpoint"},
	)

	c.requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Upstream request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"api"},
	)

	c.errorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_errors_total",
			Help:      "Total number of upstream errors",
		},
		[]string{"api", "type"},
	)

	c.streamEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stream_events_total",
			Help:      "Total normalized stream events",
		},
		[]string{"event"},
	)

	c.streamsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "streams_total",
			Help:      "Total streaming calls by outcome",
		},
		[]string{"phase"}, // stream_start, stream_resume, stream_done, stream_error
	)

	c.tokensUsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_used_total",
			Help:      "Total number of tokens used",
		},
		[]string{"api", "type"}, // type: input, output
	)

	c.costTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cost_usd_total",
			Help:      "Total estimated cost in USD",
		},
		[]string{"api"},
	)

	logger.Info("metrics collector initialized", zap.String("namespace", namespace))

	return c
}

// =============================================================================
// 🎯 记录管道接入
// =============================================================================

// Log 实现 interaction.Sink：按记录的 api/phase/error 维度计数。
func (c *Collector) Log(_ context.Context, rec *interaction.Record) {
	phase, _ := rec.Metadata["phase"].(string)

	switch phase {
	case "event":
		if event, ok := rec.Metadata["event"].(string); ok {
			c.streamEventsTotal.WithLabelValues(event).Inc()
		}
		return
	case "stream_start", "stream_resume", "stream_done", "stream_error":
		c.streamsTotal.WithLabelValues(phase).Inc()
		if phase != "stream_done" && phase != "stream_error" {
			return
		}
	default:
		c.requestsTotal.WithLabelValues(rec.API, rec.Endpoint).Inc()
	}

	if rec.Error != nil {
		c.errorsTotal.WithLabelValues(rec.API, rec.Error.Type).Inc()
	}
	if v, ok := tokenMeta(rec, "input_tokens"); ok {
		c.tokensUsed.WithLabelValues(rec.API, "input").Add(v)
	}
	if v, ok := tokenMeta(rec, "output_tokens"); ok {
		c.tokensUsed.WithLabelValues(rec.API, "output").Add(v)
	}
	if cost, ok := rec.Metadata["cost_usd"].(float64); ok {
		c.costTotal.WithLabelValues(rec.API).Add(cost)
	}
}

// RecordRequestDuration 记录上游请求耗时
func (c *Collector) RecordRequestDuration(api string, duration time.Duration) {
	c.requestDuration.WithLabelValues(api).Observe(duration.Seconds())
}

// tokenMeta 读取元数据里的 token 计数。缺失（nil）表示供应商
// 没报，不计入指标。
func tokenMeta(rec *interaction.Record, key string) (float64, bool) {
	switch v := rec.Metadata[key].(type) {
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}
