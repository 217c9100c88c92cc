package video

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BaSui01/omnirelay/interaction"
	"github.com/BaSui01/omnirelay/observability"
	"github.com/BaSui01/omnirelay/openai"
	"github.com/BaSui01/omnirelay/pricing"
)

const videosEndpoint = "/v1/videos"

// ErrDeadlineExceeded 表示轮询超出整体期限。与供应商报告的
// failed 状态（走 ErrJobFailed）是两种不同的失败。
var ErrDeadlineExceeded = errors.New("video: poll deadline exceeded")

// ErrJobFailed 包装供应商报告的任务失败。
type ErrJobFailed struct {
	Job *Job
}

func (e *ErrJobFailed) Error() string {
	if e.Job != nil && e.Job.Error != nil {
		return fmt.Sprintf("video: job %s failed: %s", e.Job.ID, e.Job.Error.Message)
	}
	return "video: job failed"
}

// Config 配置视频服务与轮询参数。
type Config struct {
	DefaultModel string        `json:"default_model" yaml:"default_model"`
	PollDeadline time.Duration `json:"poll_deadline" yaml:"poll_deadline"`
	// 并发下载上限
	DownloadConcurrency int `json:"download_concurrency,omitempty" yaml:"download_concurrency,omitempty"`
}

// DefaultConfig 返回默认视频配置。
func DefaultConfig() Config {
	return Config{
		DefaultModel:        "sora-2",
		PollDeadline:        10 * time.Minute,
		DownloadConcurrency: 4,
	}
}

// Service 封装 /v1/videos 端点。
type Service struct {
	client  *openai.Client
	cfg     Config
	logger  *zap.Logger
	sink    interaction.Sink
	metrics *observability.Metrics
}

// NewService 创建视频服务。
func NewService(client *openai.Client, cfg Config, logger *zap.Logger, sink interaction.Sink, metrics *observability.Metrics) *Service {
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = "sora-2"
	}
	if cfg.PollDeadline <= 0 {
		cfg.PollDeadline = 10 * time.Minute
	}
	if cfg.DownloadConcurrency <= 0 {
		cfg.DownloadConcurrency = 4
	}
	if sink == nil {
		sink = interaction.Discard
	}
	return &Service{
		client:  client,
		cfg:     cfg,
		logger:  logger.With(zap.String("component", "video_service")),
		sink:    sink,
		metrics: metrics,
	}
}

// Create 创建视频生成任务，立即返回任务快照。
func (s *Service) Create(ctx context.Context, req *CreateRequest) (*Job, error) {
	body := *req
	if body.Model == "" {
		body.Model = s.cfg.DefaultModel
	}

	rec := interaction.NewRecord("video", videosEndpoint)
	rec.Request = body

	start := time.Now()
	var job Job
	err := s.client.PostJSON(ctx, videosEndpoint, body, &job)
	s.metrics.RecordRequest(ctx, "video", body.Model, time.Since(start), err)
	if err != nil {
		rec.Error = interaction.DetailFromError(err)
		s.sink.Log(ctx, rec)
		return nil, err
	}

	rec.Response = &job
	if cost := s.estimateCost(&job); cost != nil {
		rec.WithMeta("cost_usd", cost.CostUSD)
		s.metrics.RecordCost(ctx, "video", job.Model, cost.CostUSD)
	}
	s.sink.Log(ctx, rec)

	s.logger.Info("video job created",
		zap.String("video_id", job.ID),
		zap.String("model", job.Model),
		zap.String("status", job.Status))
	return &job, nil
}

// Status 查询任务状态。
func (s *Service) Status(ctx context.Context, videoID string) (*Job, error) {
	var job Job
	if err := s.client.GetJSON(ctx, videosEndpoint+"/"+url.PathEscape(videoID), &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// Poll 轮询任务直到终态或超出期限。退避固定递增：首次 5 秒，
// 每次 +5 秒，封顶 20 秒。deadline 为 0 时用配置默认值。
// 供应商报告 failed 返回 *ErrJobFailed；超期返回 ErrDeadlineExceeded。
func (s *Service) Poll(ctx context.Context, videoID string, deadline time.Duration) (*Job, error) {
	if deadline <= 0 {
		deadline = s.cfg.PollDeadline
	}
	expiry := time.Now().Add(deadline)
	wait := 5 * time.Second

	for {
		job, err := s.Status(ctx, videoID)
		if err != nil {
			return nil, err
		}
		if job.Done() {
			if job.Status == "failed" {
				s.logger.Warn("video job failed", zap.String("video_id", videoID))
				return job, &ErrJobFailed{Job: job}
			}
			s.logger.Info("video job completed", zap.String("video_id", videoID))
			return job, nil
		}

		if time.Now().Add(wait).After(expiry) {
			return job, ErrDeadlineExceeded
		}

		select {
		case <-ctx.Done():
			return job, ctx.Err()
		case <-time.After(wait):
		}

		wait += 5 * time.Second
		if wait > 20*time.Second {
			wait = 20 * time.Second
		}
	}
}

// Download 下载成片内容。variant 可选（video、thumbnail、spritesheet），
// 空则下载视频本体。调用方负责关闭返回的流。
func (s *Service) Download(ctx context.Context, videoID, variant string) (io.ReadCloser, error) {
	path := videosEndpoint + "/" + url.PathEscape(videoID) + "/content"
	if variant != "" {
		path += "?variant=" + url.QueryEscape(variant)
	}
	body, _, err := s.client.GetBinary(ctx, path)
	return body, err
}

// DownloadToFile 下载成片并写入文件。
func (s *Service) DownloadToFile(ctx context.Context, videoID, variant, path string) error {
	body, err := s.Download(ctx, videoID, variant)
	if err != nil {
		return err
	}
	defer body.Close()

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer file.Close()

	_, err = io.Copy(file, body)
	return err
}

// DownloadAll 并发下载多个成片到目录，文件名为 <video_id>.mp4。
// 任一下载失败即取消其余并返回首个错误。
func (s *Service) DownloadAll(ctx context.Context, videoIDs []string, dir string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.DownloadConcurrency)

	for _, id := range videoIDs {
		g.Go(func() error {
			return s.DownloadToFile(gctx, id, "", dir+"/"+id+".mp4")
		})
	}
	return g.Wait()
}

// List 分页列出任务。after 为空表示第一页，limit 为 0 用服务端默认。
func (s *Service) List(ctx context.Context, after string, limit int) (*List, error) {
	path := videosEndpoint
	q := url.Values{}
	if after != "" {
		q.Set("after", after)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var list List
	if err := s.client.GetJSON(ctx, path, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// Delete 删除任务与成片。
func (s *Service) Delete(ctx context.Context, videoID string) error {
	rec := interaction.NewRecord("video", videosEndpoint+"/"+videoID)
	err := s.client.DeleteJSON(ctx, videosEndpoint+"/"+url.PathEscape(videoID), nil)
	if err != nil {
		rec.Error = interaction.DetailFromError(err)
	}
	s.sink.Log(ctx, rec)
	return err
}

// Remix 基于既有视频与新提示词生成新任务。
func (s *Service) Remix(ctx context.Context, videoID string, req *RemixRequest) (*Job, error) {
	path := videosEndpoint + "/" + url.PathEscape(videoID) + "/remix"

	rec := interaction.NewRecord("video", path)
	rec.Request = req

	var job Job
	err := s.client.PostJSON(ctx, path, req, &job)
	if err != nil {
		rec.Error = interaction.DetailFromError(err)
		s.sink.Log(ctx, rec)
		return nil, err
	}
	rec.Response = &job
	s.sink.Log(ctx, rec)
	return &job, nil
}

func (s *Service) estimateCost(job *Job) *pricing.CostEstimate {
	seconds, err := strconv.ParseFloat(job.Seconds, 64)
	if err != nil || seconds <= 0 {
		return nil
	}
	return pricing.EstimateVideoCost(job.Model, seconds)
}
