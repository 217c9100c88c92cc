package responses

import "github.com/BaSui01/omnirelay/openai"

func handleRefusalDelta(_ *streamContext, ev *openai.StreamEvent) []OutputEvent {
	return []OutputEvent{{
		Event: KindRefusalDelta,
		Data: marshalData(map[string]any{
			"item_id":       ev.ItemID,
			"content_index": ev.ContentIndex,
			"refusal":       ev.Delta,
		}),
		Sequence: ev.SequenceNumber,
	}}
}

func handleRefusalDone(_ *streamContext, ev *openai.StreamEvent) []OutputEvent {
	return []OutputEvent{{
		Event: KindRefusalDone,
		Data: marshalData(map[string]any{
			"item_id":       ev.ItemID,
			"content_index": ev.ContentIndex,
			"refusal":       ev.Refusal,
		}),
		Sequence: ev.SequenceNumber,
	}}
}
