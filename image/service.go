package image

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/omnirelay/interaction"
	"github.com/BaSui01/omnirelay/observability"
	"github.com/BaSui01/omnirelay/openai"
	"github.com/BaSui01/omnirelay/pricing"
)

const (
	generationsEndpoint = "/v1/images/generations"
	editsEndpoint       = "/v1/images/edits"
	variationsEndpoint  = "/v1/images/variations"
)

// Config 配置图像服务。
type Config struct {
	DefaultModel string `json:"default_model" yaml:"default_model"`
	DefaultSize  string `json:"default_size" yaml:"default_size"`
}

// DefaultConfig 返回默认图像配置。
func DefaultConfig() Config {
	return Config{
		DefaultModel: "dall-e-3",
		DefaultSize:  "1024x1024",
	}
}

// Service 封装 /v1/images/* 端点。
type Service struct {
	client  *openai.Client
	cfg     Config
	logger  *zap.Logger
	sink    interaction.Sink
	metrics *observability.Metrics
}

// NewService 创建图像服务。
func NewService(client *openai.Client, cfg Config, logger *zap.Logger, sink interaction.Sink, metrics *observability.Metrics) *Service {
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = "dall-e-3"
	}
	if cfg.DefaultSize == "" {
		cfg.DefaultSize = "1024x1024"
	}
	if sink == nil {
		sink = interaction.Discard
	}
	return &Service{
		client:  client,
		cfg:     cfg,
		logger:  logger.With(zap.String("component", "image_service")),
		sink:    sink,
		metrics: metrics,
	}
}

type imagesResponse struct {
	Created int64  `json:"created"`
	Data    []Data `json:"data"`
}

// Generate 从文本提示生成图像。
func (s *Service) Generate(ctx context.Context, req *GenerateRequest) (*Result, error) {
	body := *req
	if body.Model == "" {
		body.Model = s.cfg.DefaultModel
	}
	if body.Size == "" {
		body.Size = s.cfg.DefaultSize
	}
	if body.N == 0 {
		body.N = 1
	}

	rec := interaction.NewRecord("image", generationsEndpoint)
	rec.Request = map[string]any{
		"model":   body.Model,
		"size":    body.Size,
		"quality": body.Quality,
		"n":       body.N,
	}

	start := time.Now()
	var resp imagesResponse
	err := s.client.PostJSON(ctx, generationsEndpoint, body, &resp)
	s.metrics.RecordRequest(ctx, "image", body.Model, time.Since(start), err)
	if err != nil {
		rec.Error = interaction.DetailFromError(err)
		s.sink.Log(ctx, rec)
		return nil, err
	}

	result := &Result{
		Model:     body.Model,
		Images:    resp.Data,
		CreatedAt: time.Unix(resp.Created, 0),
	}
	if cost := pricing.EstimateImageCost(body.Model, body.Size, body.Quality, len(resp.Data)); cost != nil {
		result.CostUSD = cost.CostUSD
		rec.WithMeta("cost_usd", cost.CostUSD)
		s.metrics.RecordCost(ctx, "image", body.Model, cost.CostUSD)
	}
	rec.Response = map[string]any{"images": len(resp.Data)}
	s.sink.Log(ctx, rec)

	s.logger.Info("images generated",
		zap.String("model", body.Model),
		zap.Int("count", len(resp.Data)))
	return result, nil
}

// Edit 按提示修改已有图像，Mask 限定可编辑区域。
func (s *Service) Edit(ctx context.Context, req *EditRequest) (*Result, error) {
	if req.Image == nil {
		return nil, fmt.Errorf("image is required")
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("image", "image.png")
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, req.Image); err != nil {
		return nil, err
	}
	if req.Mask != nil {
		maskPart, err := writer.CreateFormFile("mask", "mask.png")
		if err != nil {
			return nil, err
		}
		if _, err := io.Copy(maskPart, req.Mask); err != nil {
			return nil, err
		}
	}

	_ = writer.WriteField("prompt", req.Prompt)
	if req.Model != "" {
		_ = writer.WriteField("model", req.Model)
	}
	if req.N > 0 {
		_ = writer.WriteField("n", fmt.Sprintf("%d", req.N))
	}
	if req.Size != "" {
		_ = writer.WriteField("size", req.Size)
	}
	writer.Close()

	return s.postForm(ctx, editsEndpoint, req.Model, req.Size, writer.FormDataContentType(), &buf)
}

// Variation 生成已有图像的变体。
func (s *Service) Variation(ctx context.Context, req *VariationRequest) (*Result, error) {
	if req.Image == nil {
		return nil, fmt.Errorf("image is required")
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("image", "image.png")
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, req.Image); err != nil {
		return nil, err
	}
	if req.Model != "" {
		_ = writer.WriteField("model", req.Model)
	}
	if req.N > 0 {
		_ = writer.WriteField("n", fmt.Sprintf("%d", req.N))
	}
	if req.Size != "" {
		_ = writer.WriteField("size", req.Size)
	}
	writer.Close()

	return s.postForm(ctx, variationsEndpoint, req.Model, req.Size, writer.FormDataContentType(), &buf)
}

func (s *Service) postForm(ctx context.Context, endpoint, model, size, contentType string, form io.Reader) (*Result, error) {
	if model == "" {
		model = s.cfg.DefaultModel
	}

	rec := interaction.NewRecord("image", endpoint)
	rec.Request = map[string]any{"model": model, "size": size}

	start := time.Now()
	var resp imagesResponse
	err := s.client.PostForm(ctx, endpoint, contentType, form, &resp)
	s.metrics.RecordRequest(ctx, "image", model, time.Since(start), err)
	if err != nil {
		rec.Error = interaction.DetailFromError(err)
		s.sink.Log(ctx, rec)
		return nil, err
	}

	result := &Result{
		Model:     model,
		Images:    resp.Data,
		CreatedAt: time.Unix(resp.Created, 0),
	}
	if cost := pricing.EstimateImageCost(model, size, "", len(resp.Data)); cost != nil {
		result.CostUSD = cost.CostUSD
		rec.WithMeta("cost_usd", cost.CostUSD)
		s.metrics.RecordCost(ctx, "image", model, cost.CostUSD)
	}
	rec.Response = map[string]any{"images": len(resp.Data)}
	s.sink.Log(ctx, rec)

	return result, nil
}
