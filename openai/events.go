package openai

import "encoding/json"

// EventType 是 Responses 流式事件的 type 判别字符串。
// 流按 sequence_number 有序，必须顺序消费。
type EventType string

const (
	// 生命周期
	EventResponseCreated    EventType = "response.created"
	EventResponseQueued     EventType = "response.queued"
	EventResponseInProgress EventType = "response.in_progress"
	EventResponseCompleted  EventType = "response.completed"
	EventResponseFailed     EventType = "response.failed"
	EventResponseIncomplete EventType = "response.incomplete"
	EventError              EventType = "error"

	// 结构：输出项与内容部分
	EventOutputItemAdded  EventType = "response.output_item.added"
	EventOutputItemDone   EventType = "response.output_item.done"
	EventContentPartAdded EventType = "response.content_part.added"
	EventContentPartDone  EventType = "response.content_part.done"

	// 文本输出
	EventOutputTextDelta           EventType = "response.output_text.delta"
	EventOutputTextDone            EventType = "response.output_text.done"
	EventOutputTextAnnotationAdded EventType = "response.output_text.annotation.added"

	// 推理文本与推理摘要
	EventReasoningTextDelta        EventType = "response.reasoning_text.delta"
	EventReasoningTextDone         EventType = "response.reasoning_text.done"
	EventReasoningSummaryPartAdded EventType = "response.reasoning_summary_part.added"
	EventReasoningSummaryPartDone  EventType = "response.reasoning_summary_part.done"
	EventReasoningSummaryTextDelta EventType = "response.reasoning_summary_text.delta"
	EventReasoningSummaryTextDone  EventType = "response.reasoning_summary_text.done"

	// 函数/自定义工具调用
	EventFunctionCallArgumentsDelta EventType = "response.function_call_arguments.delta"
	EventFunctionCallArgumentsDone  EventType = "response.function_call_arguments.done"
	EventCustomToolCallInputDelta   EventType = "response.custom_tool_call_input.delta"
	EventCustomToolCallInputDone    EventType = "response.custom_tool_call_input.done"

	// 代码解释器
	EventCodeInterpreterInProgress   EventType = "response.code_interpreter_call.in_progress"
	EventCodeInterpreterInterpreting EventType = "response.code_interpreter_call.interpreting"
	EventCodeInterpreterCompleted    EventType = "response.code_interpreter_call.completed"
	EventCodeInterpreterCodeDelta    EventType = "response.code_interpreter_call_code.delta"
	EventCodeInterpreterCodeDone     EventType = "response.code_interpreter_call_code.done"

	// 文件检索
	EventFileSearchInProgress EventType = "response.file_search_call.in_progress"
	EventFileSearchSearching  EventType = "response.file_search_call.searching"
	EventFileSearchCompleted  EventType = "response.file_search_call.completed"

	// 网络检索
	EventWebSearchInProgress EventType = "response.web_search_call.in_progress"
	EventWebSearchSearching  EventType = "response.web_search_call.searching"
	EventWebSearchCompleted  EventType = "response.web_search_call.completed"

	// 图像生成工具
	EventImageGenInProgress   EventType = "response.image_generation_call.in_progress"
	EventImageGenGenerating   EventType = "response.image_generation_call.generating"
	EventImageGenPartialImage EventType = "response.image_generation_call.partial_image"
	EventImageGenCompleted    EventType = "response.image_generation_call.completed"

	// 音频输出
	EventAudioDelta           EventType = "response.audio.delta"
	EventAudioDone            EventType = "response.audio.done"
	EventAudioTranscriptDelta EventType = "response.audio.transcript.delta"
	EventAudioTranscriptDone  EventType = "response.audio.transcript.done"

	// MCP 工具
	EventMCPCallInProgress      EventType = "response.mcp_call.in_progress"
	EventMCPCallArgumentsDelta  EventType = "response.mcp_call_arguments.delta"
	EventMCPCallArgumentsDone   EventType = "response.mcp_call_arguments.done"
	EventMCPCallCompleted       EventType = "response.mcp_call.completed"
	EventMCPCallFailed          EventType = "response.mcp_call.failed"
	EventMCPListToolsInProgress EventType = "response.mcp_list_tools.in_progress"
	EventMCPListToolsCompleted  EventType = "response.mcp_list_tools.completed"
	EventMCPListToolsFailed     EventType = "response.mcp_list_tools.failed"

	// 拒绝
	EventRefusalDelta EventType = "response.refusal.delta"
	EventRefusalDone  EventType = "response.refusal.done"

	// computer-use
	EventComputerCallInProgress EventType = "response.computer_call.in_progress"
	EventComputerCallCompleted  EventType = "response.computer_call.completed"
)

// StreamEvent 是一条流式事件记录。字段按事件族选填，Type 始终存在。
// 每条记录在单次迭代内只读、不可变。
type StreamEvent struct {
	Type EventType `json:"type"`

	// 流元数据
	SequenceNumber  int64  `json:"sequence_number"`
	ResponseID      string `json:"response_id,omitempty"`
	OutputIndex     int    `json:"output_index,omitempty"`
	ItemID          string `json:"item_id,omitempty"`
	ContentIndex    int    `json:"content_index,omitempty"`
	SummaryIndex    int    `json:"summary_index,omitempty"`
	AnnotationIndex int    `json:"annotation_index,omitempty"`

	// 增量与终态载荷
	Delta   string `json:"delta,omitempty"`
	Text    string `json:"text,omitempty"`
	Refusal string `json:"refusal,omitempty"`

	// 函数调用
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
	Input     string `json:"input,omitempty"`

	// 代码解释器 / 错误
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Param   string `json:"param,omitempty"`

	// 图像生成
	PartialImageIndex int    `json:"partial_image_index,omitempty"`
	PartialImageB64   string `json:"partial_image_b64,omitempty"`

	// 结构化载荷
	Item       json.RawMessage `json:"item,omitempty"`
	Part       json.RawMessage `json:"part,omitempty"`
	Response   *Response       `json:"response,omitempty"`
	Annotation json.RawMessage `json:"annotation,omitempty"`
}

// IsTerminal 判断事件是否终止整条流。
func (e *StreamEvent) IsTerminal() bool {
	switch e.Type {
	case EventResponseCompleted, EventResponseFailed, EventResponseIncomplete, EventError:
		return true
	default:
		return false
	}
}

// CallID 返回用于关联 delta/done 事件对的调用标识。
// 供应商对函数调用使用 item_id 作为相关性键。
func (e *StreamEvent) CallID() string {
	return e.ItemID
}
