package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/BaSui01/omnirelay/internal/tlsutil"
)

// Config 配置供应商客户端。
type Config struct {
	APIKey       string        `json:"api_key" yaml:"api_key"`
	BaseURL      string        `json:"base_url" yaml:"base_url"`
	Organization string        `json:"organization,omitempty" yaml:"organization,omitempty"`
	Timeout      time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	// 出站限流，0 表示不限
	RequestsPerSecond float64 `json:"requests_per_second,omitempty" yaml:"requests_per_second,omitempty"`
	Burst             int     `json:"burst,omitempty" yaml:"burst,omitempty"`
}

// DefaultConfig 返回默认客户端配置。
func DefaultConfig() Config {
	return Config{
		BaseURL: "https://api.openai.com",
		Timeout: 120 * time.Second,
	}
}

// Client 是带 TLS 加固与速率限制的供应商 HTTP 客户端。
// 所有上层服务共享一个 Client 实例。
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewClient 创建供应商客户端。
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 120 * time.Second
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	return &Client{
		cfg:     cfg,
		http:    tlsutil.SecureHTTPClient(timeout),
		limiter: limiter,
		logger:  logger.With(zap.String("component", "openai_client")),
	}
}

// BaseURL 返回规范化后的基础地址。
func (c *Client) BaseURL() string {
	return strings.TrimRight(c.cfg.BaseURL, "/")
}

func (c *Client) url(path string) string {
	return c.BaseURL() + path
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	if c.cfg.Organization != "" {
		req.Header.Set("OpenAI-Organization", c.cfg.Organization)
	}
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

// do 执行请求并统一处理非 2xx 响应。调用方负责关闭返回的 Body。
func (c *Client) do(req *http.Request) (*http.Response, error) {
	if err := c.wait(req.Context()); err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Message: err.Error(), Retryable: true}
	}
	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		apiErr := parseError(resp)
		c.logger.Warn("upstream error",
			zap.String("path", req.URL.Path),
			zap.Int("status", apiErr.Status),
			zap.String("type", apiErr.Type),
			zap.String("code", apiErr.Code))
		return nil, apiErr
	}
	return resp, nil
}

// PostJSON 发送 JSON 请求并解析 JSON 响应。out 为 nil 时丢弃响应体。
func (c *Client) PostJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Message: fmt.Sprintf("decode response: %v", err), Retryable: true}
	}
	return nil
}

// GetJSON 发送 GET 请求并解析 JSON 响应。
func (c *Client) GetJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Message: fmt.Sprintf("decode response: %v", err), Retryable: true}
	}
	return nil
}

// DeleteJSON 发送 DELETE 请求，out 可为 nil。
func (c *Client) DeleteJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.url(path), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Message: fmt.Sprintf("decode response: %v", err), Retryable: true}
	}
	return nil
}

// PostBinary 发送 JSON 请求并返回二进制响应流（音频合成等）。
// 调用方负责关闭返回的 ReadCloser。
func (c *Client) PostBinary(ctx context.Context, path string, body any) (io.ReadCloser, http.Header, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path), bytes.NewReader(payload))
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req)
	if err != nil {
		return nil, nil, err
	}
	return resp.Body, resp.Header, nil
}

// GetBinary 发送 GET 请求并返回二进制响应流（视频下载等）。
func (c *Client) GetBinary(ctx context.Context, path string) (io.ReadCloser, http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path), nil)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.do(req)
	if err != nil {
		return nil, nil, err
	}
	return resp.Body, resp.Header, nil
}

// PostForm 发送 multipart 表单（转录、翻译、视频参考素材上传）。
// contentType 必须是 writer.FormDataContentType() 的返回值。
func (c *Client) PostForm(ctx context.Context, path, contentType string, form io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path), form)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Message: fmt.Sprintf("decode response: %v", err), Retryable: true}
	}
	return nil
}

// NewStream 发起流式请求并返回 SSE 事件流。method 为 GET 时 body 必须为 nil
// （用于按响应 ID 重连既有流）。
func (c *Client) NewStream(ctx context.Context, method, path string, body any) (*EventStream, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	return newEventStream(resp.Body), nil
}
