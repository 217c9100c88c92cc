package responses

import "github.com/BaSui01/omnirelay/openai"

// 音频输出族。音频块与转写文本是两条独立的增量通路，互不合并。

func handleAudioDelta(_ *streamContext, ev *openai.StreamEvent) []OutputEvent {
	return []OutputEvent{{
		Event: KindAudioDelta,
		Data: marshalData(map[string]any{
			"item_id":   ev.ItemID,
			"audio_b64": ev.Delta,
		}),
		Sequence: ev.SequenceNumber,
	}}
}

func handleAudioDone(_ *streamContext, ev *openai.StreamEvent) []OutputEvent {
	return []OutputEvent{{
		Event: KindAudioDone,
		Data: marshalData(map[string]any{
			"item_id": ev.ItemID,
		}),
		Sequence: ev.SequenceNumber,
	}}
}

func handleTranscriptDelta(_ *streamContext, ev *openai.StreamEvent) []OutputEvent {
	return []OutputEvent{{
		Event: KindTranscriptDelta,
		Data: marshalData(map[string]any{
			"item_id": ev.ItemID,
			"text":    ev.Delta,
		}),
		Sequence: ev.SequenceNumber,
	}}
}

func handleTranscriptDone(_ *streamContext, ev *openai.StreamEvent) []OutputEvent {
	text := ev.Text
	if text == "" {
		text = ev.Delta
	}
	return []OutputEvent{{
		Event: KindTranscriptDone,
		Data: marshalData(map[string]any{
			"item_id": ev.ItemID,
			"text":    text,
		}),
		Sequence: ev.SequenceNumber,
	}}
}
