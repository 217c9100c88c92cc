package responses

import "github.com/BaSui01/omnirelay/openai"

func handleComputerProgress(_ *streamContext, ev *openai.StreamEvent) []OutputEvent {
	return []OutputEvent{{
		Event: KindComputerProgress,
		Data: marshalData(map[string]any{
			"call_id": ev.CallID(),
		}),
		Sequence: ev.SequenceNumber,
	}}
}

func handleComputerDone(_ *streamContext, ev *openai.StreamEvent) []OutputEvent {
	return []OutputEvent{{
		Event: KindComputerDone,
		Data: marshalData(map[string]any{
			"call_id": ev.CallID(),
		}),
		Sequence: ev.SequenceNumber,
	}}
}
