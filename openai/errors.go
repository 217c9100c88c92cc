package openai

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Error 是统一的供应商错误。传输失败、非 2xx 状态与流中错误事件
// 都映射为该类型，status/type/code/param 尽可能保留。
type Error struct {
	Status    int    `json:"status,omitempty"`
	Type      string `json:"type,omitempty"`
	Code      string `json:"code,omitempty"`
	Param     string `json:"param,omitempty"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("openai: %s (status=%d type=%s code=%s)", e.Message, e.Status, e.Type, e.Code)
	}
	return "openai: " + e.Message
}

// errorEnvelope 是供应商错误响应体的外层结构。
type errorEnvelope struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
		Param   string `json:"param"`
	} `json:"error"`
}

// parseError 从非 2xx 响应体构造 Error。响应体解析失败时退化为
// 原始文本，错误永远不会因为错误体格式而丢失。
func parseError(resp *http.Response) *Error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	e := &Error{
		Status:    resp.StatusCode,
		Message:   http.StatusText(resp.StatusCode),
		Retryable: resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500,
	}

	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error.Message != "" {
		e.Message = env.Error.Message
		e.Type = env.Error.Type
		e.Code = env.Error.Code
		e.Param = env.Error.Param
	} else if len(body) > 0 {
		e.Message = string(body)
	}
	return e
}
