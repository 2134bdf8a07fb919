// Package pump bridges a blocking trace producer with a non-blocking frame
// consumer. It owns the session lifecycle: one producer goroutine, one line
// queue, one classifier, and the guarantee that exactly one stream_end
// frame terminates the stream on every path.
package pump

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/cognicodeco/chainstream/pkg/engine"
	"github.com/cognicodeco/chainstream/pkg/sse"
	"github.com/cognicodeco/chainstream/pkg/trace"
)

const (
	// defaultPollInterval bounds each wait for the next queued line so the
	// consumer can notice producer completion without blocking forever.
	defaultPollInterval = 100 * time.Millisecond

	// defaultPaceDelay is the pause after each emitted frame. The stream
	// feeds a human-paced renderer; a throughput cap keeps it readable.
	defaultPaceDelay = 50 * time.Millisecond

	// defaultJoinTimeout bounds the final wait for producer finalization
	// after the line queue has drained.
	defaultJoinTimeout = 5 * time.Second
)

// Config holds the pump's tuning knobs. Zero values select the defaults.
type Config struct {
	PollInterval time.Duration
	PaceDelay    time.Duration
	JoinTimeout  time.Duration
}

// Pump runs engine invocations and emits their classified trace as wire
// frames. A single Pump is shared across sessions; each Run owns its own
// queue and classifier.
type Pump struct {
	engine engine.Engine
	logger *zap.Logger
	config Config
}

// New creates a Pump around the given engine.
func New(eng engine.Engine, config Config, logger *zap.Logger) *Pump {
	if config.PollInterval <= 0 {
		config.PollInterval = defaultPollInterval
	}
	if config.PaceDelay <= 0 {
		config.PaceDelay = defaultPaceDelay
	}
	if config.JoinTimeout <= 0 {
		config.JoinTimeout = defaultJoinTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Pump{
		engine: eng,
		logger: logger,
		config: config,
	}
}

// Run executes one session: it starts the producer on its own goroutine,
// drains the line queue on a paced loop, and writes encoded frames to w.
//
// A stream_end frame is always the last write, whether the producer
// succeeded, failed, or panicked. If w stops accepting writes (severed
// transport), emission stops but the queue is still drained so the
// producer is never wedged on a full channel; the producer itself is not
// force-cancelled and may run to completion with its output discarded.
func (p *Pump) Run(ctx context.Context, query string, w io.Writer) error {
	writer := sse.NewWriter(w)
	classifier := trace.NewClassifier()
	lines := trace.NewLineWriter()

	done := make(chan error, 1)
	go p.runProducer(ctx, query, lines, done)

	// Terminal frame guarantee: deferred so every exit path below, panics
	// included, still attempts the stream_end write.
	defer func() {
		if err := writer.WriteEvent(trace.Event{Type: trace.TagStreamEnd}); err != nil {
			p.logger.Debug("could not write stream_end frame", zap.Error(err))
		}
	}()

	var emitErr error
	emit := func(ev *trace.Event) {
		if ev == nil || emitErr != nil {
			return
		}
		if err := writer.WriteEvent(*ev); err != nil {
			emitErr = err
			p.logger.Warn("stopping frame emission, transport write failed",
				zap.Error(err),
			)
			return
		}
		time.Sleep(p.config.PaceDelay)
	}

consume:
	for {
		select {
		case line, ok := <-lines.Lines():
			if !ok {
				// Producer finished and every queued line was observed.
				break consume
			}
			emit(classifier.Feed(line))
		case <-time.After(p.config.PollInterval):
			// Queue momentarily empty; retry until the channel closes.
		}
	}

	// Bounded join: the queue is drained, now wait for the producer's
	// result. Normally Close precedes the result send, so this returns
	// immediately.
	var producerErr error
	select {
	case producerErr = <-done:
	case <-time.After(p.config.JoinTimeout):
		p.logger.Warn("producer did not finalize in time, terminating stream",
			zap.Duration("timeout", p.config.JoinTimeout),
		)
	}

	if producerErr != nil {
		p.logger.Error("engine invocation failed", zap.Error(producerErr))
		emit(&trace.Event{
			Type:    trace.TagError,
			Content: fmt.Sprintf("Agent execution failed: %v", producerErr),
		})
	}

	// Flush the block still pending when the trace ended.
	emit(classifier.Flush())

	return emitErr
}

// runProducer executes the blocking engine call, converts panics into
// errors, and closes the line queue so the consumer observes completion.
func (p *Pump) runProducer(ctx context.Context, query string, lines *trace.LineWriter, done chan<- error) {
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("engine panicked: %v", r)
			}
		}()
		return p.engine.Invoke(ctx, query, lines)
	}()

	lines.Close()
	done <- err
}
