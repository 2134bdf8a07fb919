package trace

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// tagPrefixes maps line prefixes to tags, in match priority order.
// STDOUT/STDERR/CONTEXT are provenance markers written by tool
// implementations and all fold into the observation tag.
var tagPrefixes = []struct {
	prefix string
	tag    Tag
}{
	{"Thought:", TagThought},
	{"Action:", TagAction},
	{"Action Input:", TagActionInput},
	{"Observation:", TagObservation},
	{"STDOUT:", TagObservation},
	{"STDERR:", TagObservation},
	{"CONTEXT:", TagObservation},
	{"Final Answer:", TagFinalAnswer},
}

// Classifier consumes ordered trace lines and emits one Event per completed
// block. A block is only complete once the next tag line or the chain
// boundary is seen, so emission lags its opening line by one tag: nothing
// in the content itself marks where a multi-line block (a long observation,
// a multi-line answer) ends.
//
// One Classifier corresponds to exactly one in-flight session and is not
// safe for concurrent use.
type Classifier struct {
	capturing    bool
	currentTag   Tag
	currentLines []string
}

// NewClassifier returns a Classifier in the Idle state.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Feed processes a single raw trace line and returns the Event it completes,
// or nil. Lines are ANSI-stripped and whitespace-trimmed before matching;
// blank results are discarded. Outside an "Entering new ... chain" /
// "Finished chain." window every line is discarded, so engine chatter
// between chains never surfaces as events.
func (c *Classifier) Feed(line string) *Event {
	line = strings.TrimSpace(ansi.Strip(line))
	if line == "" {
		return nil
	}

	if !c.capturing {
		if strings.Contains(line, "Entering new") && strings.Contains(line, "chain") {
			c.capturing = true
			c.currentTag = ""
			c.currentLines = nil
		}
		return nil
	}

	if strings.Contains(line, "Finished chain.") {
		ev := c.flush()
		c.capturing = false
		return ev
	}

	for _, tp := range tagPrefixes {
		if strings.HasPrefix(line, tp.prefix) {
			ev := c.flush()
			c.currentTag = tp.tag
			c.currentLines = nil
			if rest := strings.TrimSpace(line[len(tp.prefix):]); rest != "" {
				c.currentLines = []string{rest}
			}
			return ev
		}
	}

	// Continuation of the current block. Lines seen before any tag line
	// inside a window have no block to belong to and are dropped.
	if c.currentTag != "" {
		c.currentLines = append(c.currentLines, line)
	}
	return nil
}

// Flush emits the still-pending block, if any. Called once after the
// producer finishes so that a final block closed only by end-of-trace is
// not lost.
func (c *Classifier) Flush() *Event {
	return c.flush()
}

// Capturing reports whether the classifier is inside a chain window.
func (c *Classifier) Capturing() bool {
	return c.capturing
}

func (c *Classifier) flush() *Event {
	if c.currentTag == "" || len(c.currentLines) == 0 {
		c.currentTag = ""
		c.currentLines = nil
		return nil
	}

	content := strings.TrimSpace(strings.Join(c.currentLines, "\n"))
	tag := c.currentTag
	c.currentTag = ""
	c.currentLines = nil

	if content == "" {
		return nil
	}
	return &Event{Type: tag, Content: content}
}
