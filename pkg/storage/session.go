// Package storage defines the session record and the Driver interface for
// persisting completed agent sessions.
package storage

import "time"

// Session status values.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Session is the durable record of one agent invocation: the query, the
// final answer, and the full reasoning transcript accumulated from the
// event stream.
type Session struct {
	// ID uniquely identifies the session.
	ID string `json:"id"`

	// Query is the user question that started the session.
	Query string `json:"query"`

	// Answer is the final answer text, or a placeholder when the run
	// produced none.
	Answer string `json:"answer"`

	// Transcript is the accumulated reasoning log (thoughts, actions,
	// action inputs) in arrival order.
	Transcript string `json:"transcript"`

	// Evidence is the accumulated observation log.
	Evidence string `json:"evidence"`

	// Status is completed or failed.
	Status string `json:"status"`

	// StartedAt and CompletedAt bound the run.
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`

	// DurationMs is the run duration in milliseconds.
	DurationMs int64 `json:"duration_ms"`
}
