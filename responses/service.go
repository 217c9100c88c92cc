package responses

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BaSui01/omnirelay/interaction"
	"github.com/BaSui01/omnirelay/observability"
	"github.com/BaSui01/omnirelay/openai"
	"github.com/BaSui01/omnirelay/pricing"
)

const endpoint = "/v1/responses"

// Config 配置响应服务。
type Config struct {
	DefaultModel string `json:"default_model" yaml:"default_model"`
	// 发往调用方的事件通道缓冲大小，0 用默认值
	EventBuffer int `json:"event_buffer,omitempty" yaml:"event_buffer,omitempty"`
}

// DefaultConfig 返回默认服务配置。
func DefaultConfig() Config {
	return Config{
		DefaultModel: "gpt-4o-mini",
		EventBuffer:  16,
	}
}

// Service 封装 /v1/responses 的流式与非流式调用。
type Service struct {
	client  *openai.Client
	cfg     Config
	logger  *zap.Logger
	sink    interaction.Sink
	metrics *observability.Metrics
}

// NewService 创建响应服务。sink 为 nil 时丢弃交互日志，
// metrics 为 nil 时不上报指标。
func NewService(client *openai.Client, cfg Config, logger *zap.Logger, sink interaction.Sink, metrics *observability.Metrics) *Service {
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = "gpt-4o-mini"
	}
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = 16
	}
	if sink == nil {
		sink = interaction.Discard
	}
	return &Service{
		client:  client,
		cfg:     cfg,
		logger:  logger.With(zap.String("component", "responses_service")),
		sink:    sink,
		metrics: metrics,
	}
}

// Create 发起非流式调用：不经过分派器，记一条带请求、响应与
// 用量/成本元数据的交互记录，原样返回响应对象。
func (s *Service) Create(ctx context.Context, req *Request) (*openai.Response, error) {
	params := buildParams(req, s.cfg.DefaultModel, false)
	rec := interaction.NewRecord("responses", endpoint)
	rec.Request = params

	start := time.Now()
	var resp openai.Response
	err := s.client.PostJSON(ctx, endpoint, params, &resp)
	s.metrics.RecordRequest(ctx, "responses", params.Model, time.Since(start), err)
	if err != nil {
		rec.Error = interaction.DetailFromError(err)
		s.sink.Log(ctx, rec)
		return nil, err
	}

	rec.Response = &resp
	usage := pricing.ExtractUsage(resp.Usage)
	attachUsageMeta(rec, usage)
	if cost := pricing.EstimateTextCost(resp.Model, usage); cost != nil {
		rec.WithMeta("cost_usd", cost.CostUSD)
		s.metrics.RecordCost(ctx, "responses", resp.Model, cost.CostUSD)
	}
	s.metrics.RecordTokens(ctx, resp.Model, usage)
	s.sink.Log(ctx, rec)

	s.logger.Info("response created",
		zap.String("response_id", resp.ID),
		zap.String("model", resp.Model),
		zap.String("status", resp.Status))
	return &resp, nil
}

// Stream 发起流式调用，返回归一化事件流。
func (s *Service) Stream(ctx context.Context, req *Request) (*Stream, error) {
	params := buildParams(req, s.cfg.DefaultModel, true)
	rec := s.recorder()
	rec.logStart(ctx, "stream_start", params)

	return s.open(ctx, rec, params.Model, func(sctx context.Context) (*openai.EventStream, error) {
		return s.client.NewStream(sctx, http.MethodPost, endpoint, params)
	})
}

// Resume 按响应 ID 重连服务端既有流。startingAfter 非 nil 时从该
// 序列号之后继续。下游分派与日志与 Stream 完全共用，仅起始记录
// 标记不同。
func (s *Service) Resume(ctx context.Context, responseID string, startingAfter *int64) (*Stream, error) {
	path := fmt.Sprintf("%s/%s?stream=true", endpoint, responseID)
	if startingAfter != nil {
		path = fmt.Sprintf("%s&starting_after=%d", path, *startingAfter)
	}

	rec := s.recorder()
	rec.logStart(ctx, "stream_resume", map[string]any{
		"response_id":    responseID,
		"starting_after": startingAfter,
	})

	// 重连时模型未知，等生命周期事件回填
	return s.open(ctx, rec, "", func(sctx context.Context) (*openai.EventStream, error) {
		return s.client.NewStream(sctx, http.MethodGet, path, nil)
	})
}

func (s *Service) open(ctx context.Context, rec recorder, model string, dial func(context.Context) (*openai.EventStream, error)) (*Stream, error) {
	sctx, cancel := context.WithCancel(ctx)
	es, err := dial(sctx)
	if err != nil {
		cancel()
		rec.logError(ctx, err, newStreamContext(model))
		return nil, err
	}

	st := &Stream{
		events: make(chan OutputEvent, s.cfg.EventBuffer),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go st.consume(sctx, es, newStreamContext(model), rec)
	return st, nil
}

func (s *Service) recorder() recorder {
	return recorder{
		sink:     s.sink,
		logger:   s.logger,
		metrics:  s.metrics,
		api:      "responses",
		endpoint: endpoint,
		streamID: uuid.NewString(),
	}
}

// Retrieve 按 ID 获取响应对象。
func (s *Service) Retrieve(ctx context.Context, responseID string) (*openai.Response, error) {
	var resp openai.Response
	if err := s.client.GetJSON(ctx, fmt.Sprintf("%s/%s", endpoint, responseID), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Delete 删除服务端保存的响应。
func (s *Service) Delete(ctx context.Context, responseID string) error {
	return s.client.DeleteJSON(ctx, fmt.Sprintf("%s/%s", endpoint, responseID), nil)
}

// Cancel 取消后台运行中的响应，返回取消后的快照。
func (s *Service) Cancel(ctx context.Context, responseID string) (*openai.Response, error) {
	var resp openai.Response
	if err := s.client.PostJSON(ctx, fmt.Sprintf("%s/%s/cancel", endpoint, responseID), struct{}{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
