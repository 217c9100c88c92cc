package responses

import "encoding/json"

// Kind 是归一化事件的种类，面向客户端、跨版本稳定。
type Kind string

const (
	// 生命周期
	KindCreated    Kind = "created"
	KindQueued     Kind = "queued"
	KindInProgress Kind = "in_progress"
	KindCompleted  Kind = "completed"
	KindFailed     Kind = "failed"
	KindIncomplete Kind = "incomplete"

	// 文本
	KindTextDelta       Kind = "text_delta"
	KindTextDone        Kind = "text_done"
	KindAnnotationAdded Kind = "annotation_added"

	// 推理
	KindReasoningDelta        Kind = "reasoning_delta"
	KindReasoningDone         Kind = "reasoning_done"
	KindReasoningSummaryPart  Kind = "reasoning_summary_part"
	KindReasoningSummaryDelta Kind = "reasoning_summary_delta"
	KindReasoningSummaryDone  Kind = "reasoning_summary_done"

	// 工具调用
	KindToolCallDelta           Kind = "tool_call_delta"
	KindToolCallDone            Kind = "tool_call_done"
	KindCustomToolDelta         Kind = "custom_tool_delta"
	KindCustomToolDone          Kind = "custom_tool_done"
	KindCodeInterpreterProgress Kind = "code_interpreter_progress"
	KindCodeDelta               Kind = "code_delta"
	KindCodeDone                Kind = "code_done"
	KindCodeInterpreterDone     Kind = "code_interpreter_done"
	KindFileSearchProgress      Kind = "file_search_progress"
	KindFileSearchDone          Kind = "file_search_done"
	KindWebSearchProgress       Kind = "web_search_progress"
	KindWebSearchDone           Kind = "web_search_done"

	// 图像
	KindImageProgress Kind = "image_progress"
	KindImagePartial  Kind = "image_partial"
	KindImageDone     Kind = "image_done"

	// 音频
	KindAudioDelta      Kind = "audio_delta"
	KindAudioDone       Kind = "audio_done"
	KindTranscriptDelta Kind = "transcript_delta"
	KindTranscriptDone  Kind = "transcript_done"

	// MCP
	KindMCPCallProgress   Kind = "mcp_call_progress"
	KindMCPArgumentsDelta Kind = "mcp_arguments_delta"
	KindMCPArgumentsDone  Kind = "mcp_arguments_done"
	KindMCPCallDone       Kind = "mcp_call_done"
	KindMCPCallFailed     Kind = "mcp_call_failed"
	KindMCPListTools      Kind = "mcp_list_tools"

	// 拒绝
	KindRefusalDelta Kind = "refusal_delta"
	KindRefusalDone  Kind = "refusal_done"

	// 结构
	KindItemAdded        Kind = "item_added"
	KindItemDone         Kind = "item_done"
	KindContentPartAdded Kind = "content_part_added"
	KindContentPartDone  Kind = "content_part_done"
	KindUnknown          Kind = "unknown"

	// computer-use
	KindComputerProgress Kind = "computer_progress"
	KindComputerDone     Kind = "computer_done"

	// 流级错误
	KindError Kind = "error"
)

// OutputEvent 是面向客户端的归一化事件。
// Data 是按事件族约定的 JSON 载荷；Sequence 原样保留供应商的
// sequence_number，客户端据此排序与断点续传。
type OutputEvent struct {
	Event    Kind   `json:"event"`
	Data     string `json:"data"`
	Sequence int64  `json:"sequence"`
}

// marshalData 把载荷序列化为 Data 字符串。载荷都是本包构造的
// map/结构体，序列化不会失败；万一失败则降级为空对象，事件本身
// 不允许丢失。
func marshalData(payload any) string {
	data, err := json.Marshal(payload)
	if err != nil {
		return "{}"
	}
	return string(data)
}
