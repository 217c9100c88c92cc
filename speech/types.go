package speech

import (
	"io"
	"time"
)

// SynthesizeRequest 是一次文本转语音请求。
type SynthesizeRequest struct {
	Model          string  `json:"model"`
	Input          string  `json:"input"`
	Voice          string  `json:"voice"`
	ResponseFormat string  `json:"response_format,omitempty"`
	Speed          float64 `json:"speed,omitempty"`
	Instructions   string  `json:"instructions,omitempty"`
}

// SynthesizeResult 携带合成音频流。调用方负责关闭 Audio。
type SynthesizeResult struct {
	Model     string
	Audio     io.ReadCloser
	Format    string
	CharCount int
	CostUSD   float64
	CreatedAt time.Time
}

// Voice 描述一个可用音色。
type Voice struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Gender      string `json:"gender"`
	Description string `json:"description"`
}

// TranscribeRequest 是一次转录或翻译请求。Audio 必填；
// Filename 用于 multipart 文件名，空则用 audio.mp3。
type TranscribeRequest struct {
	Audio                  io.Reader
	Filename               string
	Model                  string
	Language               string
	Prompt                 string
	ResponseFormat         string
	TimestampGranularities []string
}

// TranscribeResult 是转录/翻译结果。Duration 来自供应商响应，
// 缺失时为 nil，成本估算据此区分真实时长与一分钟兜底。
type TranscribeResult struct {
	Model     string
	Text      string
	Language  string
	Duration  *float64 // 秒
	Segments  []Segment
	Words     []Word
	CostUSD   float64
	CreatedAt time.Time
}

// Segment 是转录文本的一个时间片段。
type Segment struct {
	ID    int           `json:"id"`
	Start time.Duration `json:"start"`
	End   time.Duration `json:"end"`
	Text  string        `json:"text"`
}

// Word 是带时间戳的单词。
type Word struct {
	Word  string        `json:"word"`
	Start time.Duration `json:"start"`
	End   time.Duration `json:"end"`
}
