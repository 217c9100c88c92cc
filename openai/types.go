package openai

import "encoding/json"

// Response 是 /v1/responses 的响应对象（非流式调用的返回值，
// 也是生命周期事件内嵌的快照）。
type Response struct {
	ID                 string            `json:"id"`
	Object             string            `json:"object,omitempty"`
	CreatedAt          int64             `json:"created_at,omitempty"`
	Status             string            `json:"status,omitempty"` // queued, in_progress, completed, failed, incomplete, cancelled
	Model              string            `json:"model,omitempty"`
	Output             []OutputItem      `json:"output,omitempty"`
	OutputText         string            `json:"output_text,omitempty"`
	Usage              *Usage            `json:"usage,omitempty"`
	Error              *ResponseError    `json:"error,omitempty"`
	IncompleteDetails  json.RawMessage   `json:"incomplete_details,omitempty"`
	PreviousResponseID string            `json:"previous_response_id,omitempty"`
	Metadata           map[string]string `json:"metadata,omitempty"`
}

// ResponseError 是响应对象里内嵌的供应商错误。
type ResponseError struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// OutputItem 是响应输出数组中的一项（message、function_call、
// image_generation_call、computer_call 等），保留原始 JSON 以便
// 上层按 type 自行解析。
type OutputItem struct {
	ID     string          `json:"id,omitempty"`
	Type   string          `json:"type,omitempty"`
	Status string          `json:"status,omitempty"`
	Raw    json.RawMessage `json:"-"`
}

// UnmarshalJSON 保留条目的原始字节。
func (it *OutputItem) UnmarshalJSON(data []byte) error {
	type alias OutputItem
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*it = OutputItem(a)
	it.Raw = append(it.Raw[:0], data...)
	return nil
}

// MarshalJSON 原样输出保留的字节。
func (it OutputItem) MarshalJSON() ([]byte, error) {
	if len(it.Raw) > 0 {
		return it.Raw, nil
	}
	type alias OutputItem
	return json.Marshal(alias(it))
}

// Usage 是响应级别的 token 用量。嵌套的明细对象可能整体缺失，
// 缺失与零必须区分，因此均为指针。
type Usage struct {
	InputTokens         int64                `json:"input_tokens"`
	OutputTokens        int64                `json:"output_tokens"`
	TotalTokens         int64                `json:"total_tokens"`
	InputTokensDetails  *InputTokensDetails  `json:"input_tokens_details,omitempty"`
	OutputTokensDetails *OutputTokensDetails `json:"output_tokens_details,omitempty"`
}

type InputTokensDetails struct {
	CachedTokens *int64 `json:"cached_tokens,omitempty"`
}

type OutputTokensDetails struct {
	ReasoningTokens *int64 `json:"reasoning_tokens,omitempty"`
}

// ResponseNewParams 是 POST /v1/responses 的出站请求体。
// 未设置的可选字段必须整体省略而不是发 null/空值：供应商对
// 「缺省」与「默认值」的处理不同，所以这里全部用指针 + omitempty。
type ResponseNewParams struct {
	Model              string            `json:"model"`
	Input              any               `json:"input,omitempty"` // string 或 []InputItem
	Instructions       string            `json:"instructions,omitempty"`
	Tools              []Tool            `json:"tools,omitempty"`
	ToolChoice         string            `json:"tool_choice,omitempty"`
	Temperature        *float64          `json:"temperature,omitempty"`
	TopP               *float64          `json:"top_p,omitempty"`
	MaxOutputTokens    *int64            `json:"max_output_tokens,omitempty"`
	PreviousResponseID string            `json:"previous_response_id,omitempty"`
	Store              *bool             `json:"store,omitempty"`
	Background         *bool             `json:"background,omitempty"`
	Stream             bool              `json:"stream,omitempty"`
	Reasoning          *ReasoningParams  `json:"reasoning,omitempty"`
	Metadata           map[string]string `json:"metadata,omitempty"`
}

// ReasoningParams 控制推理模型的思考强度与摘要输出。
type ReasoningParams struct {
	Effort  string `json:"effort,omitempty"`  // minimal, low, medium, high
	Summary string `json:"summary,omitempty"` // auto, concise, detailed
}

// Tool 是请求中的工具描述符。Function 工具与内建工具
// （image_generation、web_search 等）共用一个扁平结构，
// 序列化时按 type 决定哪些字段出现。
type Tool struct {
	Type string `json:"type"`

	// function
	Name        string          `json:"name,omitempty"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
	Strict      *bool           `json:"strict,omitempty"`

	// image_generation
	Size              string `json:"size,omitempty"`
	Quality           string `json:"quality,omitempty"`
	OutputFormat      string `json:"output_format,omitempty"`
	OutputCompression *int   `json:"output_compression,omitempty"`
	Moderation        string `json:"moderation,omitempty"`
	Background        string `json:"background,omitempty"`
	InputFidelity     string `json:"input_fidelity,omitempty"`
	PartialImages     *int   `json:"partial_images,omitempty"`
}
