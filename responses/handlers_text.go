package responses

import "github.com/BaSui01/omnirelay/openai"

func handleTextDelta(sc *streamContext, ev *openai.StreamEvent) []OutputEvent {
	sc.text.WriteString(ev.Delta)

	return []OutputEvent{{
		Event: KindTextDelta,
		Data: marshalData(map[string]any{
			"text":          ev.Delta,
			"item_id":       ev.ItemID,
			"output_index":  ev.OutputIndex,
			"content_index": ev.ContentIndex,
		}),
		Sequence: ev.SequenceNumber,
	}}
}

func handleTextDone(_ *streamContext, ev *openai.StreamEvent) []OutputEvent {
	return []OutputEvent{{
		Event: KindTextDone,
		Data: marshalData(map[string]any{
			"text":    ev.Text,
			"item_id": ev.ItemID,
		}),
		Sequence: ev.SequenceNumber,
	}}
}

func handleAnnotation(_ *streamContext, ev *openai.StreamEvent) []OutputEvent {
	payload := map[string]any{
		"item_id":          ev.ItemID,
		"annotation_index": ev.AnnotationIndex,
	}
	if len(ev.Annotation) > 0 {
		payload["annotation"] = ev.Annotation
	}

	return []OutputEvent{{
		Event:    KindAnnotationAdded,
		Data:     marshalData(payload),
		Sequence: ev.SequenceNumber,
	}}
}
