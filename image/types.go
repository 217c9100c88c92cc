package image

import (
	"io"
	"time"
)

// GenerateRequest 是一次文生图请求。
type GenerateRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n,omitempty"`
	Size           string `json:"size,omitempty"`
	Quality        string `json:"quality,omitempty"`
	Style          string `json:"style,omitempty"`
	ResponseFormat string `json:"response_format,omitempty"`
}

// EditRequest 是一次图像编辑请求。Image 必填，Mask 可选。
type EditRequest struct {
	Image  io.Reader
	Mask   io.Reader
	Model  string
	Prompt string
	N      int
	Size   string
}

// VariationRequest 是一次图像变体请求。
type VariationRequest struct {
	Image io.Reader
	Model string
	N     int
	Size  string
}

// Data 是一张生成的图像。
type Data struct {
	URL           string `json:"url,omitempty"`
	B64JSON       string `json:"b64_json,omitempty"`
	RevisedPrompt string `json:"revised_prompt,omitempty"`
}

// Result 是图像操作的结果。
type Result struct {
	Model     string
	Images    []Data
	CostUSD   float64
	CreatedAt time.Time
}
