package speech

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/omnirelay/interaction"
	"github.com/BaSui01/omnirelay/observability"
	"github.com/BaSui01/omnirelay/openai"
	"github.com/BaSui01/omnirelay/pricing"
)

const (
	speechEndpoint        = "/v1/audio/speech"
	transcriptionEndpoint = "/v1/audio/transcriptions"
	translationEndpoint   = "/v1/audio/translations"
)

// Config 配置音频服务的默认模型与音色。
type Config struct {
	SpeechModel        string `json:"speech_model" yaml:"speech_model"`
	TranscriptionModel string `json:"transcription_model" yaml:"transcription_model"`
	Voice              string `json:"voice" yaml:"voice"`
}

// DefaultConfig 返回默认音频配置。
func DefaultConfig() Config {
	return Config{
		SpeechModel:        "tts-1-hd",
		TranscriptionModel: "whisper-1",
		Voice:              "alloy",
	}
}

// Service 封装三个音频端点。
type Service struct {
	client  *openai.Client
	cfg     Config
	logger  *zap.Logger
	sink    interaction.Sink
	metrics *observability.Metrics
}

// NewService 创建音频服务。
func NewService(client *openai.Client, cfg Config, logger *zap.Logger, sink interaction.Sink, metrics *observability.Metrics) *Service {
	if cfg.SpeechModel == "" {
		cfg.SpeechModel = "tts-1-hd"
	}
	if cfg.TranscriptionModel == "" {
		cfg.TranscriptionModel = "whisper-1"
	}
	if cfg.Voice == "" {
		cfg.Voice = "alloy"
	}
	if sink == nil {
		sink = interaction.Discard
	}
	return &Service{
		client:  client,
		cfg:     cfg,
		logger:  logger.With(zap.String("component", "speech_service")),
		sink:    sink,
		metrics: metrics,
	}
}

// Synthesize 把文本合成为语音。返回的音频流由调用方关闭。
func (s *Service) Synthesize(ctx context.Context, req *SynthesizeRequest) (*SynthesizeResult, error) {
	body := *req
	if body.Model == "" {
		body.Model = s.cfg.SpeechModel
	}
	if body.Voice == "" {
		body.Voice = s.cfg.Voice
	}
	if body.ResponseFormat == "" {
		body.ResponseFormat = "mp3"
	}

	rec := interaction.NewRecord("speech", speechEndpoint)
	rec.Request = map[string]any{
		"model":           body.Model,
		"voice":           body.Voice,
		"response_format": body.ResponseFormat,
		"char_count":      len(body.Input),
	}

	start := time.Now()
	audio, _, err := s.client.PostBinary(ctx, speechEndpoint, body)
	s.metrics.RecordRequest(ctx, "speech", body.Model, time.Since(start), err)
	if err != nil {
		rec.Error = interaction.DetailFromError(err)
		s.sink.Log(ctx, rec)
		return nil, err
	}

	result := &SynthesizeResult{
		Model:     body.Model,
		Audio:     audio,
		Format:    body.ResponseFormat,
		CharCount: len(body.Input),
		CreatedAt: time.Now(),
	}
	if cost := pricing.EstimateSpeechCost(body.Model, result.CharCount); cost != nil {
		result.CostUSD = cost.CostUSD
		rec.WithMeta("cost_usd", cost.CostUSD)
		s.metrics.RecordCost(ctx, "speech", body.Model, cost.CostUSD)
	}
	rec.WithMeta("char_count", result.CharCount)
	s.sink.Log(ctx, rec)

	s.logger.Info("speech synthesized",
		zap.String("model", body.Model),
		zap.Int("char_count", result.CharCount))
	return result, nil
}

// SynthesizeToFile 合成语音并写入文件。
func (s *Service) SynthesizeToFile(ctx context.Context, req *SynthesizeRequest, path string) error {
	result, err := s.Synthesize(ctx, req)
	if err != nil {
		return err
	}
	defer result.Audio.Close()

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer file.Close()

	_, err = io.Copy(file, result.Audio)
	return err
}

// ListVoices 返回可用音色。
func (s *Service) ListVoices(_ context.Context) ([]Voice, error) {
	return []Voice{
		{ID: "alloy", Name: "Alloy", Gender: "neutral", Description: "Neutral, balanced voice"},
		{ID: "echo", Name: "Echo", Gender: "male", Description: "Warm, conversational male voice"},
		{ID: "fable", Name: "Fable", Gender: "neutral", Description: "Expressive, narrative voice"},
		{ID: "onyx", Name: "Onyx", Gender: "male", Description: "Deep, authoritative male voice"},
		{ID: "nova", Name: "Nova", Gender: "female", Description: "Friendly, upbeat female voice"},
		{ID: "shimmer", Name: "Shimmer", Gender: "female", Description: "Clear, professional female voice"},
	}, nil
}

// Transcribe 把音频转录为原语言文本。
func (s *Service) Transcribe(ctx context.Context, req *TranscribeRequest) (*TranscribeResult, error) {
	return s.postAudioForm(ctx, transcriptionEndpoint, "transcription", req)
}

// Translate 把音频翻译为英文文本。
func (s *Service) Translate(ctx context.Context, req *TranscribeRequest) (*TranscribeResult, error) {
	return s.postAudioForm(ctx, translationEndpoint, "translation", req)
}

// TranscribeFile 转录本地音频文件。
func (s *Service) TranscribeFile(ctx context.Context, path string, opts *TranscribeRequest) (*TranscribeResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	if opts == nil {
		opts = &TranscribeRequest{}
	}
	opts.Audio = file
	if opts.Filename == "" {
		opts.Filename = file.Name()
	}
	return s.Transcribe(ctx, opts)
}

// whisperResponse 对应 verbose_json 响应格式。Duration 缺失与
// 为零必须可区分，所以是指针。
type whisperResponse struct {
	Text     string   `json:"text"`
	Language string   `json:"language,omitempty"`
	Duration *float64 `json:"duration,omitempty"`
	Segments []struct {
		ID    int     `json:"id"`
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments,omitempty"`
	Words []struct {
		Word  string  `json:"word"`
		Start float64 `json:"start"`
		End   float64 `json:"end"`
	} `json:"words,omitempty"`
}

func (s *Service) postAudioForm(ctx context.Context, endpoint, api string, req *TranscribeRequest) (*TranscribeResult, error) {
	if req.Audio == nil {
		return nil, fmt.Errorf("audio input is required")
	}

	model := req.Model
	if model == "" {
		model = s.cfg.TranscriptionModel
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	filename := req.Filename
	if filename == "" {
		filename = "audio.mp3"
	}
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, req.Audio); err != nil {
		return nil, fmt.Errorf("copy audio: %w", err)
	}

	_ = writer.WriteField("model", model)
	if req.Language != "" {
		_ = writer.WriteField("language", req.Language)
	}
	if req.Prompt != "" {
		_ = writer.WriteField("prompt", req.Prompt)
	}
	format := req.ResponseFormat
	if format == "" {
		format = "verbose_json"
	}
	_ = writer.WriteField("response_format", format)
	for _, g := range req.TimestampGranularities {
		_ = writer.WriteField("timestamp_granularities[]", g)
	}
	writer.Close()

	rec := interaction.NewRecord(api, endpoint)
	rec.Request = map[string]any{"model": model, "filename": filename}

	start := time.Now()
	var wResp whisperResponse
	err = s.client.PostForm(ctx, endpoint, writer.FormDataContentType(), &buf, &wResp)
	s.metrics.RecordRequest(ctx, api, model, time.Since(start), err)
	if err != nil {
		rec.Error = interaction.DetailFromError(err)
		s.sink.Log(ctx, rec)
		return nil, err
	}

	result := &TranscribeResult{
		Model:     model,
		Text:      wResp.Text,
		Language:  wResp.Language,
		Duration:  wResp.Duration,
		CreatedAt: time.Now(),
	}
	for _, seg := range wResp.Segments {
		result.Segments = append(result.Segments, Segment{
			ID:    seg.ID,
			Start: time.Duration(seg.Start * float64(time.Second)),
			End:   time.Duration(seg.End * float64(time.Second)),
			Text:  seg.Text,
		})
	}
	for _, w := range wResp.Words {
		result.Words = append(result.Words, Word{
			Word:  w.Word,
			Start: time.Duration(w.Start * float64(time.Second)),
			End:   time.Duration(w.End * float64(time.Second)),
		})
	}

	if cost := pricing.EstimateTranscriptionCost(model, wResp.Duration, pricing.UsageRecord{}); cost != nil {
		result.CostUSD = cost.CostUSD
		rec.WithMeta("cost_usd", cost.CostUSD)
		s.metrics.RecordCost(ctx, api, model, cost.CostUSD)
	}
	if wResp.Duration != nil {
		rec.WithMeta("duration_seconds", *wResp.Duration)
	}
	rec.Response = map[string]any{"text_length": len(wResp.Text), "language": wResp.Language}
	s.sink.Log(ctx, rec)

	return result, nil
}
