package responses

import "github.com/BaSui01/omnirelay/openai"

// 图像生成族。in_progress 与 generating 是等价的生命周期阶段，
// 共用进度处理器；partial_image 逐帧直转，服务器发几帧客户端收几帧。

func handleImageProgress(_ *streamContext, ev *openai.StreamEvent) []OutputEvent {
	return []OutputEvent{{
		Event: KindImageProgress,
		Data: marshalData(map[string]any{
			"call_id": ev.CallID(),
			"phase":   phaseOf(ev.Type),
		}),
		Sequence: ev.SequenceNumber,
	}}
}

func handleImagePartial(sc *streamContext, ev *openai.StreamEvent) []OutputEvent {
	callID := ev.CallID()
	count := sc.countPartialImage(callID)

	return []OutputEvent{{
		Event: KindImagePartial,
		Data: marshalData(map[string]any{
			"call_id":             callID,
			"partial_image_index": ev.PartialImageIndex,
			"partial_count":       count,
			"image_b64":           ev.PartialImageB64,
		}),
		Sequence: ev.SequenceNumber,
	}}
}

// handleImageCompleted 放出最终图像结果，恰好一次。
func handleImageCompleted(sc *streamContext, ev *openai.StreamEvent) []OutputEvent {
	callID := ev.CallID()
	payload := map[string]any{
		"call_id":        callID,
		"partial_frames": sc.partialImages[callID],
	}
	if len(ev.Item) > 0 {
		payload["item"] = ev.Item
	}
	delete(sc.partialImages, callID)

	return []OutputEvent{{
		Event:    KindImageDone,
		Data:     marshalData(payload),
		Sequence: ev.SequenceNumber,
	}}
}
