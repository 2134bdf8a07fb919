// Package transcript reduces a decoded event stream into a progressive,
// renderable view of a session: a reasoning log, an evidence log, and the
// final answer. The accumulator is a pure reducer over events plus the
// local lifecycle signals (stall, disconnect) the consuming side observes.
package transcript

import (
	"strings"

	"github.com/cognicodeco/chainstream/pkg/trace"
)

// Fallback answers synthesized when the stream terminates without an
// explicit final answer. The two completion placeholders distinguish
// "events arrived but no answer" from "nothing arrived at all".
const (
	NoResponsePlaceholder  = "No response generated."
	CompletedWithEvents    = "Agent completed processing. See the reasoning and evidence above."
	CompletedWithoutEvents = "Agent completed but no final answer was generated."
	TimedOutNotice         = "Response timed out."
)

// Snapshot is the coalesced view available after every applied event.
type Snapshot struct {
	Reasoning string
	Answer    string
	Evidence  string
}

// Accumulator applies decoded events to append-only logs. It is owned by
// the consuming side and mutated only through Apply and the lifecycle
// methods; it is not safe for concurrent use.
type Accumulator struct {
	reasoning []string
	evidence  []string
	answer    string
	done      bool
}

// NewAccumulator returns an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Apply folds one event into the logs and returns the updated snapshot.
// Events after the terminal event are ignored.
func (a *Accumulator) Apply(ev trace.Event) Snapshot {
	if a.done {
		return a.Snapshot()
	}

	switch ev.Type {
	case trace.TagThought:
		a.reasoning = append(a.reasoning, "Thought: "+ev.Content)
	case trace.TagAction:
		a.reasoning = append(a.reasoning, "Action: "+ev.Content)
	case trace.TagActionInput:
		a.reasoning = append(a.reasoning, "Action Input: "+ev.Content)
	case trace.TagObservation:
		a.evidence = append(a.evidence, "Observation: "+ev.Content)
	case trace.TagFinalAnswer:
		if strings.TrimSpace(ev.Content) == "" {
			a.answer = NoResponsePlaceholder
		} else {
			a.answer = ev.Content
		}
	case trace.TagError:
		msg := "Error: " + ev.Content
		a.reasoning = append(a.reasoning, msg)
		if a.answer == "" {
			a.answer = msg
		}
	case trace.TagStreamEnd:
		a.finalize()
	}

	return a.Snapshot()
}

// FinishTimeout marks the stream as stalled: the renderer waited longer
// than its inactivity budget for the next event. Any partial answer is
// kept, with the timeout notice appended.
func (a *Accumulator) FinishTimeout() Snapshot {
	if !a.done {
		if a.answer == "" {
			a.answer = TimedOutNotice
		} else {
			a.answer += "\n\n" + TimedOutNotice
		}
		a.done = true
	}
	return a.Snapshot()
}

// Done reports whether a terminal event or lifecycle signal was applied.
func (a *Accumulator) Done() bool {
	return a.done
}

// Snapshot returns the current coalesced view.
func (a *Accumulator) Snapshot() Snapshot {
	return Snapshot{
		Reasoning: strings.Join(a.reasoning, "\n\n"),
		Answer:    a.answer,
		Evidence:  strings.Join(a.evidence, "\n\n"),
	}
}

func (a *Accumulator) finalize() {
	if a.answer == "" {
		if len(a.reasoning) > 0 || len(a.evidence) > 0 {
			a.answer = CompletedWithEvents
		} else {
			a.answer = CompletedWithoutEvents
		}
	}
	a.done = true
}
