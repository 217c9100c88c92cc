package interaction

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Record 是一条交互日志记录。Response 与 Error 互斥。
type Record struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	API       string         `json:"api"`      // responses, speech, transcription, image, video
	Endpoint  string         `json:"endpoint"` // /v1/audio/speech 等
	Request   any            `json:"request,omitempty"`
	Response  any            `json:"response,omitempty"`
	Error     *ErrorDetail   `json:"error,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// ErrorDetail 保留供应商错误的 status/type/code 字段。
type ErrorDetail struct {
	Message string `json:"message"`
	Status  int    `json:"status,omitempty"`
	Type    string `json:"type,omitempty"`
	Code    string `json:"code,omitempty"`
}

// NewRecord 创建带 ID 与时间戳的记录。
func NewRecord(api, endpoint string) *Record {
	return &Record{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		API:       api,
		Endpoint:  endpoint,
		Metadata:  make(map[string]any),
	}
}

// WithMeta 附加一个元数据键值，返回记录自身便于链式调用。
func (r *Record) WithMeta(key string, value any) *Record {
	if r.Metadata == nil {
		r.Metadata = make(map[string]any)
	}
	r.Metadata[key] = value
	return r
}

// Sink 接收交互日志记录。实现必须可并发调用。
type Sink interface {
	Log(ctx context.Context, rec *Record)
}

// Discard 是丢弃一切记录的 Sink，用于测试与显式关闭日志。
var Discard Sink = discardSink{}

type discardSink struct{}

func (discardSink) Log(context.Context, *Record) {}

// Tee 把同一条记录分发给多个接收器，按参数顺序同步调用。
func Tee(sinks ...Sink) Sink {
	return teeSink(sinks)
}

type teeSink []Sink

func (t teeSink) Log(ctx context.Context, rec *Record) {
	for _, s := range t {
		s.Log(ctx, rec)
	}
}
