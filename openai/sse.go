package openai

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"
)

// EventStream 从 SSE 响应体逐条读取流式事件。
// 读取是拉取式的：Next 返回 false 后由 Err 区分正常结束与传输失败。
// 使用者放弃消费时必须调用 Close 释放底层连接。
type EventStream struct {
	body    io.ReadCloser
	reader  *bufio.Reader
	current *StreamEvent
	err     error
	closed  bool
}

func newEventStream(body io.ReadCloser) *EventStream {
	return &EventStream{
		body:   body,
		reader: bufio.NewReader(body),
	}
}

// Next 读取下一条事件，返回 false 表示流结束或出错。
func (s *EventStream) Next() bool {
	if s.closed || s.err != nil {
		return false
	}

	for {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			if err != io.EOF {
				s.err = &Error{Message: err.Error(), Retryable: true}
			} else if strings.TrimSpace(line) == "" {
				// 正常 EOF
			} else {
				s.err = &Error{Message: "stream truncated mid-event", Retryable: true}
			}
			return false
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		// SSE 格式：event: <type> 行可选，data: <json> 行承载全部字段
		if strings.HasPrefix(line, "event:") {
			continue
		}
		if !strings.HasPrefix(line, "data:") {
			continue
		}

		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "[DONE]" {
			return false
		}

		var ev StreamEvent
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			s.err = &Error{Message: "decode stream event: " + err.Error(), Retryable: true}
			return false
		}
		s.current = &ev
		return true
	}
}

// Current 返回最近一次 Next 读到的事件。
func (s *EventStream) Current() *StreamEvent {
	return s.current
}

// Err 返回终止流的传输错误，正常结束时为 nil。
func (s *EventStream) Err() error {
	if s.err == nil {
		return nil
	}
	return s.err
}

// Close 关闭底层连接。可多次调用。
func (s *EventStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.body.Close()
}
