package responses

import "github.com/BaSui01/omnirelay/openai"

// 结构族：输出项与内容块的增删，以及未知事件的兜底。

func handleItemAdded(_ *streamContext, ev *openai.StreamEvent) []OutputEvent {
	payload := map[string]any{
		"output_index": ev.OutputIndex,
	}
	if len(ev.Item) > 0 {
		payload["item"] = ev.Item
	}
	return []OutputEvent{{
		Event:    KindItemAdded,
		Data:     marshalData(payload),
		Sequence: ev.SequenceNumber,
	}}
}

func handleItemDone(_ *streamContext, ev *openai.StreamEvent) []OutputEvent {
	payload := map[string]any{
		"output_index": ev.OutputIndex,
	}
	if len(ev.Item) > 0 {
		payload["item"] = ev.Item
	}
	return []OutputEvent{{
		Event:    KindItemDone,
		Data:     marshalData(payload),
		Sequence: ev.SequenceNumber,
	}}
}

func handleContentPart(_ *streamContext, ev *openai.StreamEvent) []OutputEvent {
	kind := KindContentPartAdded
	if ev.Type == openai.EventContentPartDone {
		kind = KindContentPartDone
	}
	payload := map[string]any{
		"item_id":       ev.ItemID,
		"output_index":  ev.OutputIndex,
		"content_index": ev.ContentIndex,
	}
	if len(ev.Part) > 0 {
		payload["part"] = ev.Part
	}
	return []OutputEvent{{
		Event:    kind,
		Data:     marshalData(payload),
		Sequence: ev.SequenceNumber,
	}}
}

// handleUnknown 兜底所有未列举的 type：恰好产出一条 unknown 事件，
// 带上原始 type 字符串，绝不报错也绝不吞掉。
func handleUnknown(_ *streamContext, ev *openai.StreamEvent) []OutputEvent {
	return []OutputEvent{{
		Event: KindUnknown,
		Data: marshalData(map[string]any{
			"type": string(ev.Type),
		}),
		Sequence: ev.SequenceNumber,
	}}
}
