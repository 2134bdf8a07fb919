package api

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cognicodeco/chainstream/pkg/sse"
	"github.com/cognicodeco/chainstream/pkg/storage"
	"github.com/cognicodeco/chainstream/pkg/trace"
	"github.com/cognicodeco/chainstream/pkg/transcript"
	"github.com/cognicodeco/chainstream/pkg/worker"
)

// InvokeRequest is the body of POST /v1/agent/invoke.
type InvokeRequest struct {
	Query string `json:"query"`
}

// ErrorResponse is the uniform JSON error body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleInvoke runs one agent session and streams its event frames to the
// client as they are produced.
func (s *Server) handleInvoke(c *fiber.Ctx) error {
	var req InvokeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "query is required"})
	}

	sessionID := uuid.NewString()
	startedAt := time.Now().UTC()

	s.logger.Info("agent invocation started",
		zap.String("session_id", sessionID),
		zap.String("query", query),
	)

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set("X-Accel-Buffering", "no")

	// Use io.Pipe + SetBodyStream so each frame the pump writes is pushed
	// to the TCP socket as its own chunk. pw.Write blocks until fasthttp's
	// chunked writer consumes the data, which gives direct backpressure.
	pr, pw := io.Pipe()

	// A second pipe tees the frames into the session recorder so the
	// transcript survives even when the client goes away mid-stream.
	recPR, recPW := io.Pipe()

	// Use context.Background() instead of c.Context() because fasthttp
	// recycles its RequestCtx after the handler returns, but the pump runs
	// asynchronously and keeps writing to the pipe.
	sw := &sessionWriter{client: pw, recorder: recPW}
	go s.runSession(context.Background(), query, sw, pw, recPW)
	go s.recordSession(recPR, sessionID, query, startedAt)

	// Unknown size (-1) triggers chunked transfer encoding in fasthttp.
	c.Context().Response.SetBodyStream(pr, -1)

	return nil
}

// sessionWriter fans each frame out to the recorder pipe and, best-effort,
// to the client pipe. The recorder write happens first and its failure is
// the only one surfaced: a severed client must not stop the stream, or the
// recorder would persist a truncated transcript with no stream_end. After
// the first client write failure the client side is skipped entirely.
type sessionWriter struct {
	client    io.Writer
	recorder  io.Writer
	clientErr error
}

func (w *sessionWriter) Write(p []byte) (int, error) {
	if _, err := w.recorder.Write(p); err != nil {
		return 0, err
	}

	if w.clientErr == nil {
		if _, err := w.client.Write(p); err != nil {
			w.clientErr = err
		}
	}

	return len(p), nil
}

// runSession drives the pump and closes both pipe halves when it returns.
// A severed client is noted but does not fail the session; the recorder
// keeps receiving frames until the pump finishes.
func (s *Server) runSession(ctx context.Context, query string, sw *sessionWriter, pw, recPW *io.PipeWriter) {
	err := s.pump.Run(ctx, query, sw)

	pw.CloseWithError(err)
	recPW.Close()

	if err != nil {
		s.logger.Warn("session stream ended with write failure", zap.Error(err))
	}
	if sw.clientErr != nil {
		s.logger.Warn("client disconnected mid-stream, session recorded anyway",
			zap.Error(sw.clientErr),
		)
	}
}

// recordSession replays the frame stream through the lenient decoder,
// folds the events into a transcript, and hands the finished session to the
// worker pool.
func (s *Server) recordSession(recPR *io.PipeReader, sessionID, query string, startedAt time.Time) {
	defer recPR.Close()

	reader := sse.NewReader(recPR, s.logger)
	acc := transcript.NewAccumulator()

	status := storage.StatusCompleted
	for {
		ev, err := reader.Next()
		if err != nil || ev == nil {
			break
		}
		if ev.Type == trace.TagError {
			status = storage.StatusFailed
		}
		acc.Apply(*ev)
	}

	snap := acc.Snapshot()
	completedAt := time.Now().UTC()

	session := &storage.Session{
		ID:          sessionID,
		Query:       query,
		Answer:      snap.Answer,
		Transcript:  snap.Reasoning,
		Evidence:    snap.Evidence,
		Status:      status,
		StartedAt:   startedAt,
		CompletedAt: completedAt,
		DurationMs:  completedAt.Sub(startedAt).Milliseconds(),
	}

	if s.pool == nil {
		s.logger.Debug("no worker pool configured, session discarded",
			zap.String("session_id", sessionID),
		)
		return
	}

	s.pool.Enqueue(worker.Job{Session: session})
}

// handleListSessions returns all persisted sessions, newest first.
func (s *Server) handleListSessions(c *fiber.Ctx) error {
	sessions, err := s.storer.List(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to list sessions"})
	}

	return c.JSON(map[string]any{
		"count":    len(sessions),
		"sessions": sessions,
	})
}

// handleGetSession returns a single session by ID.
func (s *Server) handleGetSession(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "id parameter required"})
	}

	session, err := s.storer.Get(c.Context(), id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "session not found"})
	}

	return c.JSON(session)
}
