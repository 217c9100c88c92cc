package responses

import "github.com/BaSui01/omnirelay/openai"

// lifecycleKinds 把生命周期事件 type 映射为归一化种类。
var lifecycleKinds = map[openai.EventType]Kind{
	openai.EventResponseCreated:    KindCreated,
	openai.EventResponseQueued:     KindQueued,
	openai.EventResponseInProgress: KindInProgress,
	openai.EventResponseCompleted:  KindCompleted,
	openai.EventResponseFailed:     KindFailed,
	openai.EventResponseIncomplete: KindIncomplete,
}

func handleLifecycle(sc *streamContext, ev *openai.StreamEvent) []OutputEvent {
	kind := lifecycleKinds[ev.Type]

	payload := map[string]any{
		"status": string(kind),
	}
	if resp := ev.Response; resp != nil {
		if resp.ID != "" {
			sc.responseID = resp.ID
			payload["response_id"] = resp.ID
		}
		if resp.Model != "" {
			sc.model = resp.Model
			payload["model"] = resp.Model
		}
		if resp.Usage != nil {
			// 终态事件内嵌的用量快照，留给编排器做成本结算
			sc.usage = resp.Usage
		}
		if resp.Error != nil {
			payload["error_code"] = resp.Error.Code
			payload["error_message"] = resp.Error.Message
		}
	}

	return []OutputEvent{{
		Event:    kind,
		Data:     marshalData(payload),
		Sequence: ev.SequenceNumber,
	}}
}

// handleErrorEvent 处理流中 error 事件。这是整条流里唯一一条
// error 归一化事件的产出点之一（另一处是编排器对传输失败的合成）。
func handleErrorEvent(sc *streamContext, ev *openai.StreamEvent) []OutputEvent {
	payload := map[string]any{
		"message": ev.Message,
	}
	if ev.Code != "" {
		payload["code"] = ev.Code
	}
	if ev.Param != "" {
		payload["param"] = ev.Param
	}
	if sc.responseID != "" {
		payload["response_id"] = sc.responseID
	}

	return []OutputEvent{{
		Event:    KindError,
		Data:     marshalData(payload),
		Sequence: ev.SequenceNumber,
	}}
}
