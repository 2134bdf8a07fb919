// Package sse implements the chainstream wire protocol: a sequence of
// SSE-style frames, each a single "data: <json>" line followed by a blank
// line, carrying exactly one trace event per frame.
//
// The reader side is lenient: malformed frame payloads are skipped, never
// fatal, so a renderer mid-stream survives garbage without losing the rest
// of the session.
//
// See the SSE specification:
// https://html.spec.whatwg.org/multipage/server-sent-events.html
package sse

import (
	"fmt"
	"io"

	"github.com/cognicodeco/chainstream/pkg/trace"
)

const dataPrefix = "data: "

// EncodeFrame serializes a single event into its wire frame.
func EncodeFrame(ev trace.Event) ([]byte, error) {
	payload, err := ev.Marshal()
	if err != nil {
		return nil, fmt.Errorf("marshaling event: %w", err)
	}
	frame := make([]byte, 0, len(dataPrefix)+len(payload)+2)
	frame = append(frame, dataPrefix...)
	frame = append(frame, payload...)
	frame = append(frame, '\n', '\n')
	return frame, nil
}

// Writer emits events as wire frames on an underlying io.Writer.
type Writer struct {
	dest io.Writer
}

// NewWriter returns a Writer framing events onto dest.
func NewWriter(dest io.Writer) *Writer {
	return &Writer{dest: dest}
}

// WriteEvent encodes ev and writes one complete frame. When dest is a pipe
// into a chunked HTTP response, the write blocks until the transport has
// consumed the frame, giving per-frame backpressure.
func (w *Writer) WriteEvent(ev trace.Event) error {
	frame, err := EncodeFrame(ev)
	if err != nil {
		return err
	}

	if _, err := w.dest.Write(frame); err != nil {
		return fmt.Errorf("writing frame: %w", err)
	}
	return nil
}
