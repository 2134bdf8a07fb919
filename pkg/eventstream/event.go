// Package eventstream defines transport-neutral events emitted when agent
// sessions complete, and the Publisher interface backends implement.
package eventstream

import "time"

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeSessionCompleted is emitted after a session is persisted.
	EventTypeSessionCompleted = "chainstream.session.completed"
)

// SessionCompletedEvent is a transport-neutral event payload for a
// completed agent session. The full transcript stays in storage; the event
// carries the summary fields downstream consumers key on.
type SessionCompletedEvent struct {
	SchemaVersion int       `json:"schema_version"`
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EmittedAt     time.Time `json:"emitted_at"`
	SessionID     string    `json:"session_id"`
	Query         string    `json:"query"`
	Answer        string    `json:"answer"`
	Status        string    `json:"status"`
	DurationMs    int64     `json:"duration_ms"`
}
