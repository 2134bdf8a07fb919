package sse

import (
	"bufio"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/cognicodeco/chainstream/pkg/trace"
)

// Reader incrementally decodes wire frames from a byte stream back into
// trace events. Partial frames are buffered until the blank-line delimiter
// arrives; malformed payloads are logged and skipped without aborting the
// stream.
type Reader struct {
	scanner *bufio.Scanner
	logger  *zap.Logger

	// pending accumulates data lines for the frame being assembled.
	pending []string
}

// NewReader returns a Reader decoding frames from src.
func NewReader(src io.Reader, logger *zap.Logger) *Reader {
	if logger == nil {
		logger = zap.NewNop()
	}

	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	return &Reader{
		scanner: scanner,
		logger:  logger,
	}
}

// Next returns the next decoded event. It blocks until a complete frame is
// available (terminated by a blank line). Next returns nil, nil when the
// source is exhausted; a read error from the underlying stream is returned
// as-is so the caller can convert it into local termination.
func (r *Reader) Next() (*trace.Event, error) {
	for r.scanner.Scan() {
		raw := r.scanner.Text()

		// A blank line closes the current frame.
		if strings.TrimSpace(raw) == "" {
			if ev := r.closeFrame(); ev != nil {
				return ev, nil
			}
			// Blank line with nothing buffered, or a skipped malformed
			// frame. Keep scanning.
			continue
		}

		r.pending = append(r.pending, raw)
	}

	if err := r.scanner.Err(); err != nil {
		return nil, err
	}

	// Source exhausted. A trailing frame without its blank-line delimiter
	// is still decoded rather than dropped.
	if ev := r.closeFrame(); ev != nil {
		return ev, nil
	}
	return nil, nil
}

// closeFrame decodes the buffered lines as one frame, or nil when the
// buffer is empty or the payload is malformed.
func (r *Reader) closeFrame() *trace.Event {
	if len(r.pending) == 0 {
		return nil
	}

	raw := strings.TrimSpace(strings.Join(r.pending, "\n"))
	r.pending = nil

	if !strings.HasPrefix(raw, dataPrefix) {
		r.logger.Debug("skipping frame without data prefix",
			zap.String("frame", raw),
		)
		return nil
	}

	payload := raw[len(dataPrefix):]
	ev, err := trace.ParseEvent([]byte(payload))
	if err != nil {
		r.logger.Debug("skipping malformed frame payload",
			zap.String("payload", payload),
			zap.Error(err),
		)
		return nil
	}

	return ev
}
