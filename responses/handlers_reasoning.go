package responses

import (
	"strings"

	"github.com/BaSui01/omnirelay/openai"
)

func handleReasoningDelta(_ *streamContext, ev *openai.StreamEvent) []OutputEvent {
	return []OutputEvent{{
		Event: KindReasoningDelta,
		Data: marshalData(map[string]any{
			"text":    ev.Delta,
			"item_id": ev.ItemID,
		}),
		Sequence: ev.SequenceNumber,
	}}
}

func handleReasoningDone(_ *streamContext, ev *openai.StreamEvent) []OutputEvent {
	return []OutputEvent{{
		Event: KindReasoningDone,
		Data: marshalData(map[string]any{
			"text":    ev.Text,
			"item_id": ev.ItemID,
		}),
		Sequence: ev.SequenceNumber,
	}}
}

// handleReasoningSummaryPart 同时服务 part.added 与 part.done：
// 每个摘要块两次调用，阶段放进载荷由客户端区分。
func handleReasoningSummaryPart(_ *streamContext, ev *openai.StreamEvent) []OutputEvent {
	payload := map[string]any{
		"phase":         phaseOf(ev.Type),
		"item_id":       ev.ItemID,
		"summary_index": ev.SummaryIndex,
	}
	if len(ev.Part) > 0 {
		payload["part"] = ev.Part
	}

	return []OutputEvent{{
		Event:    KindReasoningSummaryPart,
		Data:     marshalData(payload),
		Sequence: ev.SequenceNumber,
	}}
}

func handleReasoningSummaryDelta(_ *streamContext, ev *openai.StreamEvent) []OutputEvent {
	return []OutputEvent{{
		Event: KindReasoningSummaryDelta,
		Data: marshalData(map[string]any{
			"text":          ev.Delta,
			"item_id":       ev.ItemID,
			"summary_index": ev.SummaryIndex,
		}),
		Sequence: ev.SequenceNumber,
	}}
}

func handleReasoningSummaryDone(_ *streamContext, ev *openai.StreamEvent) []OutputEvent {
	return []OutputEvent{{
		Event: KindReasoningSummaryDone,
		Data: marshalData(map[string]any{
			"text":          ev.Text,
			"item_id":       ev.ItemID,
			"summary_index": ev.SummaryIndex,
		}),
		Sequence: ev.SequenceNumber,
	}}
}

// phaseOf 取 type 判别串最后一段作为阶段名
// （response.reasoning_summary_part.added → added）。
func phaseOf(t openai.EventType) string {
	s := string(t)
	if i := strings.LastIndex(s, "."); i >= 0 {
		return s[i+1:]
	}
	return s
}
