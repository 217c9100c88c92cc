package responses

import "github.com/BaSui01/omnirelay/openai"

// MCP 族。工具调用参数走与函数调用相同的按 call_id 累积缓冲；
// list_tools 的三个阶段（in_progress/completed/failed）共用一个
// 处理器，由载荷里的 phase 字段区分。

func handleMCPCallProgress(_ *streamContext, ev *openai.StreamEvent) []OutputEvent {
	return []OutputEvent{{
		Event: KindMCPCallProgress,
		Data: marshalData(map[string]any{
			"call_id": ev.CallID(),
		}),
		Sequence: ev.SequenceNumber,
	}}
}

func handleMCPArgsDelta(sc *streamContext, ev *openai.StreamEvent) []OutputEvent {
	callID := ev.CallID()
	sc.appendToolArgs(callID, ev.Name, ev.Delta)

	return []OutputEvent{{
		Event: KindMCPArgumentsDelta,
		Data: marshalData(map[string]any{
			"call_id":         callID,
			"arguments_delta": ev.Delta,
		}),
		Sequence: ev.SequenceNumber,
	}}
}

func handleMCPArgsDone(sc *streamContext, ev *openai.StreamEvent) []OutputEvent {
	callID := ev.CallID()
	args, name := sc.takeToolArgs(callID)
	if args == "" {
		args = ev.Arguments
	}
	if name == "" {
		name = ev.Name
	}

	return []OutputEvent{{
		Event: KindMCPArgumentsDone,
		Data: marshalData(map[string]any{
			"call_id":   callID,
			"name":      name,
			"arguments": args,
		}),
		Sequence: ev.SequenceNumber,
	}}
}

func handleMCPCallEnd(_ *streamContext, ev *openai.StreamEvent) []OutputEvent {
	kind := KindMCPCallDone
	if ev.Type == openai.EventMCPCallFailed {
		kind = KindMCPCallFailed
	}
	return []OutputEvent{{
		Event: kind,
		Data: marshalData(map[string]any{
			"call_id": ev.CallID(),
		}),
		Sequence: ev.SequenceNumber,
	}}
}

func handleMCPListTools(_ *streamContext, ev *openai.StreamEvent) []OutputEvent {
	payload := map[string]any{
		"item_id": ev.ItemID,
		"phase":   phaseOf(ev.Type),
	}
	if len(ev.Item) > 0 {
		payload["item"] = ev.Item
	}
	return []OutputEvent{{
		Event:    KindMCPListTools,
		Data:     marshalData(payload),
		Sequence: ev.SequenceNumber,
	}}
}
