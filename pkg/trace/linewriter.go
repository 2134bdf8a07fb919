package trace

import "strings"

// defaultLineBuffer is the capacity of the line channel. The producer writes
// bursts of trace text faster than the paced consumer drains it, so the
// buffer is sized generously to keep engine writes from blocking.
const defaultLineBuffer = 1024

// LineWriter is an io.Writer that splits an incoming byte stream into
// discrete lines and hands them off, in write order, to a channel shared
// with a consumer. It is the sole piece of state shared between the
// producer and consumer sides of a session.
//
// Writes and Close must come from a single producer goroutine; the channel
// itself provides the cross-goroutine ordering guarantee.
type LineWriter struct {
	lines  chan string
	buffer strings.Builder
}

// NewLineWriter creates a LineWriter with a buffered line channel.
func NewLineWriter() *LineWriter {
	return &LineWriter{
		lines: make(chan string, defaultLineBuffer),
	}
}

// Lines returns the receive side of the line channel. The channel is closed
// by Close once the trailing partial line, if any, has been flushed.
func (w *LineWriter) Lines() <-chan string {
	return w.lines
}

// Write splits p into complete lines and sends each one on the channel.
// A trailing fragment without a newline is held until the next Write or
// Close completes it.
func (w *LineWriter) Write(p []byte) (int, error) {
	w.buffer.Write(p)

	for {
		buffered := w.buffer.String()
		idx := strings.IndexByte(buffered, '\n')
		if idx < 0 {
			break
		}

		w.lines <- buffered[:idx]
		w.buffer.Reset()
		w.buffer.WriteString(buffered[idx+1:])
	}

	return len(p), nil
}

// Close flushes any buffered partial line and closes the channel. The
// producer must not Write after Close.
func (w *LineWriter) Close() error {
	if w.buffer.Len() > 0 {
		w.lines <- w.buffer.String()
		w.buffer.Reset()
	}
	close(w.lines)
	return nil
}
