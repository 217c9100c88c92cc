package responses

import "github.com/BaSui01/omnirelay/openai"

// 工具调用族。参数分片按 call id 独立缓冲，并发进行的多个调用
// 互不污染；done 事件一次性放出完整参数串。

func handleToolArgsDelta(sc *streamContext, ev *openai.StreamEvent) []OutputEvent {
	callID := ev.CallID()
	sc.appendToolArgs(callID, ev.Name, ev.Delta)

	return []OutputEvent{{
		Event: KindToolCallDelta,
		Data: marshalData(map[string]any{
			"call_id":         callID,
			"name":            ev.Name,
			"arguments_delta": ev.Delta,
		}),
		Sequence: ev.SequenceNumber,
	}}
}

func handleToolArgsDone(sc *streamContext, ev *openai.StreamEvent) []OutputEvent {
	callID := ev.CallID()
	args, name := sc.takeToolArgs(callID)
	// 分片缺失（重连后半截流等）时退回 done 事件自带的完整参数
	if args == "" {
		args = ev.Arguments
	}
	if name == "" {
		name = ev.Name
	}

	return []OutputEvent{{
		Event: KindToolCallDone,
		Data: marshalData(map[string]any{
			"call_id":   callID,
			"name":      name,
			"arguments": args,
		}),
		Sequence: ev.SequenceNumber,
	}}
}

func handleCustomToolDelta(sc *streamContext, ev *openai.StreamEvent) []OutputEvent {
	callID := ev.CallID()
	sc.appendToolArgs(callID, ev.Name, ev.Delta)

	return []OutputEvent{{
		Event: KindCustomToolDelta,
		Data: marshalData(map[string]any{
			"call_id":     callID,
			"input_delta": ev.Delta,
		}),
		Sequence: ev.SequenceNumber,
	}}
}

func handleCustomToolDone(sc *streamContext, ev *openai.StreamEvent) []OutputEvent {
	callID := ev.CallID()
	input, _ := sc.takeToolArgs(callID)
	if input == "" {
		input = ev.Input
	}

	return []OutputEvent{{
		Event: KindCustomToolDone,
		Data: marshalData(map[string]any{
			"call_id": callID,
			"input":   input,
		}),
		Sequence: ev.SequenceNumber,
	}}
}

// handleCodeProgress 同时服务 in_progress 与 interpreting 两个阶段：
// 典型的 in_progress→interpreting→completed 序列会触发本处理器两次。
func handleCodeProgress(_ *streamContext, ev *openai.StreamEvent) []OutputEvent {
	return []OutputEvent{{
		Event: KindCodeInterpreterProgress,
		Data: marshalData(map[string]any{
			"call_id": ev.CallID(),
			"phase":   phaseOf(ev.Type),
		}),
		Sequence: ev.SequenceNumber,
	}}
}

func handleCodeDelta(_ *streamContext, ev *openai.StreamEvent) []OutputEvent {
	return []OutputEvent{{
		Event: KindCodeDelta,
		Data: marshalData(map[string]any{
			"call_id":    ev.CallID(),
			"code_delta": ev.Delta,
		}),
		Sequence: ev.SequenceNumber,
	}}
}

func handleCodeDone(_ *streamContext, ev *openai.StreamEvent) []OutputEvent {
	return []OutputEvent{{
		Event: KindCodeDone,
		Data: marshalData(map[string]any{
			"call_id": ev.CallID(),
			"code":    ev.Code,
		}),
		Sequence: ev.SequenceNumber,
	}}
}

func handleCodeCompleted(_ *streamContext, ev *openai.StreamEvent) []OutputEvent {
	return []OutputEvent{{
		Event: KindCodeInterpreterDone,
		Data: marshalData(map[string]any{
			"call_id": ev.CallID(),
		}),
		Sequence: ev.SequenceNumber,
	}}
}

func handleFileSearchProgress(_ *streamContext, ev *openai.StreamEvent) []OutputEvent {
	return []OutputEvent{{
		Event: KindFileSearchProgress,
		Data: marshalData(map[string]any{
			"call_id": ev.CallID(),
			"phase":   phaseOf(ev.Type),
		}),
		Sequence: ev.SequenceNumber,
	}}
}

func handleFileSearchDone(_ *streamContext, ev *openai.StreamEvent) []OutputEvent {
	return []OutputEvent{{
		Event: KindFileSearchDone,
		Data: marshalData(map[string]any{
			"call_id": ev.CallID(),
		}),
		Sequence: ev.SequenceNumber,
	}}
}

func handleWebSearchProgress(_ *streamContext, ev *openai.StreamEvent) []OutputEvent {
	return []OutputEvent{{
		Event: KindWebSearchProgress,
		Data: marshalData(map[string]any{
			"call_id": ev.CallID(),
			"phase":   phaseOf(ev.Type),
		}),
		Sequence: ev.SequenceNumber,
	}}
}

func handleWebSearchDone(_ *streamContext, ev *openai.StreamEvent) []OutputEvent {
	return []OutputEvent{{
		Event: KindWebSearchDone,
		Data: marshalData(map[string]any{
			"call_id": ev.CallID(),
		}),
		Sequence: ev.SequenceNumber,
	}}
}
