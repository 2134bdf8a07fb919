// Package trace turns the raw, interleaved text a reasoning engine writes
// while working (thoughts, tool invocations, tool output) into a typed,
// ordered stream of events. The classifier is a small line-by-line state
// machine; it never interprets the meaning of the text, only its shape.
package trace

import "encoding/json"

// Tag is the semantic category assigned to a block of trace text.
type Tag string

const (
	// TagThought marks a reasoning step.
	TagThought Tag = "thought"

	// TagAction marks the name of a tool the engine decided to invoke.
	TagAction Tag = "action"

	// TagActionInput marks the input passed to the invoked tool.
	TagActionInput Tag = "action_input"

	// TagObservation marks tool output, including STDOUT/STDERR/CONTEXT
	// evidence lines inserted by tool implementations.
	TagObservation Tag = "observation"

	// TagFinalAnswer marks the engine's final answer block.
	TagFinalAnswer Tag = "final_answer_end"

	// TagError marks a producer or transport failure converted into a
	// forward-moving protocol event.
	TagError Tag = "error"

	// TagStreamEnd is the terminal event. Exactly one is emitted per
	// session, always last.
	TagStreamEnd Tag = "stream_end"
)

// Event is one classified block of trace text. Events are immutable once
// constructed and are observed by every consumer in emission order.
type Event struct {
	Type    Tag    `json:"type"`
	Content string `json:"content,omitempty"`
}

// Marshal encodes the event as its JSON wire payload.
func (e Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// ParseEvent decodes a JSON wire payload into an Event.
func ParseEvent(payload []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}
