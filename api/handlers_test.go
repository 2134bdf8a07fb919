package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/cognicodeco/chainstream/pkg/engine"
	"github.com/cognicodeco/chainstream/pkg/pump"
	"github.com/cognicodeco/chainstream/pkg/sse"
	"github.com/cognicodeco/chainstream/pkg/storage"
	"github.com/cognicodeco/chainstream/pkg/storage/inmemory"
	"github.com/cognicodeco/chainstream/pkg/trace"
	"github.com/cognicodeco/chainstream/pkg/worker"
)

// scriptedEngine writes a fixed trace line by line.
func scriptedEngine(lines ...string) engine.Engine {
	return engine.Func(func(_ context.Context, _ string, w io.Writer) error {
		for _, line := range lines {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
		return nil
	})
}

// deadConn fails every write, like a client whose connection dropped.
type deadConn struct{}

func (deadConn) Write([]byte) (int, error) {
	return 0, fmt.Errorf("connection reset by peer")
}

var fastPump = pump.Config{
	PollInterval: 5 * time.Millisecond,
	PaceDelay:    time.Millisecond,
	JoinTimeout:  500 * time.Millisecond,
}

var _ = Describe("Server", func() {
	var (
		driver *inmemory.Driver
		pool   *worker.Pool
		server *Server
	)

	newServer := func(eng engine.Engine) *Server {
		p := pump.New(eng, fastPump, zap.NewNop())
		return NewServer(Config{ListenAddr: ":0"}, p, driver, pool, zap.NewNop())
	}

	BeforeEach(func() {
		driver = inmemory.NewDriver()

		var err error
		pool, err = worker.NewPool(&worker.Config{Driver: driver})
		Expect(err).NotTo(HaveOccurred())

		server = newServer(scriptedEngine(
			"> Entering new ReAct chain...",
			"Thought: count the files",
			"Final Answer: 12",
			"> Finished chain.",
		))
	})

	Describe("GET /ping", func() {
		It("responds with pong", func() {
			resp, err := server.App().Test(httptest.NewRequest(http.MethodGet, "/ping", nil))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			body, err := io.ReadAll(resp.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(strings.TrimSpace(string(body))).To(Equal(`"pong"`))
		})
	})

	Describe("POST /v1/agent/invoke", func() {
		invoke := func(body string) *http.Response {
			req := httptest.NewRequest(http.MethodPost, "/v1/agent/invoke", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := server.App().Test(req, -1)
			Expect(err).NotTo(HaveOccurred())
			return resp
		}

		It("rejects an unparseable body", func() {
			resp := invoke("{not json")
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("rejects a blank query", func() {
			resp := invoke(`{"query":"   "}`)
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
		})

		It("streams the classified trace as event frames", func() {
			resp := invoke(`{"query":"how many files?"}`)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.Header.Get("Content-Type")).To(Equal("text/event-stream"))

			reader := sse.NewReader(resp.Body, nil)
			var events []*trace.Event
			for {
				ev, err := reader.Next()
				Expect(err).NotTo(HaveOccurred())
				if ev == nil {
					break
				}
				events = append(events, ev)
			}

			Expect(events).To(HaveLen(3))
			Expect(events[0].Type).To(Equal(trace.TagThought))
			Expect(events[0].Content).To(Equal("count the files"))
			Expect(events[1].Type).To(Equal(trace.TagFinalAnswer))
			Expect(events[1].Content).To(Equal("12"))
			Expect(events[2].Type).To(Equal(trace.TagStreamEnd))
		})

		It("persists the finished session through the worker pool", func() {
			resp := invoke(`{"query":"how many files?"}`)
			_, err := io.ReadAll(resp.Body)
			Expect(err).NotTo(HaveOccurred())

			Eventually(driver.Count, time.Second, 10*time.Millisecond).Should(Equal(1))

			sessions, err := driver.List(context.Background())
			Expect(err).NotTo(HaveOccurred())
			session := sessions[0]
			Expect(session.Query).To(Equal("how many files?"))
			Expect(session.Answer).To(Equal("12"))
			Expect(session.Transcript).To(ContainSubstring("Thought: count the files"))
			Expect(session.Status).To(Equal(storage.StatusCompleted))
			Expect(session.ID).NotTo(BeEmpty())
		})

		It("marks the session failed when the engine fails", func() {
			server = newServer(engine.Func(func(_ context.Context, _ string, w io.Writer) error {
				fmt.Fprintln(w, "Thought: about to break")
				return fmt.Errorf("upstream unavailable")
			}))

			resp := invoke(`{"query":"q"}`)
			_, err := io.ReadAll(resp.Body)
			Expect(err).NotTo(HaveOccurred())

			Eventually(driver.Count, time.Second, 10*time.Millisecond).Should(Equal(1))

			sessions, err := driver.List(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(sessions[0].Status).To(Equal(storage.StatusFailed))
			Expect(sessions[0].Answer).To(ContainSubstring("upstream unavailable"))
		})
	})

	Describe("session recording", func() {
		It("records the full session when the client disconnects mid-stream", func() {
			recPR, recPW := io.Pipe()
			sw := &sessionWriter{client: deadConn{}, recorder: recPW}

			done := make(chan struct{})
			go func() {
				defer close(done)
				server.recordSession(recPR, "sess-1", "how many files?", time.Now().UTC())
			}()

			p := pump.New(scriptedEngine(
				"> Entering new ReAct chain...",
				"Thought: count the files",
				"Final Answer: 12",
				"> Finished chain.",
			), fastPump, zap.NewNop())

			Expect(p.Run(context.Background(), "how many files?", sw)).To(Succeed())
			Expect(sw.clientErr).To(HaveOccurred())

			recPW.Close()
			Eventually(done).Should(BeClosed())
			Eventually(driver.Count, time.Second, 10*time.Millisecond).Should(Equal(1))

			got, err := driver.Get(context.Background(), "sess-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Answer).To(Equal("12"))
			Expect(got.Transcript).To(ContainSubstring("Thought: count the files"))
			Expect(got.Status).To(Equal(storage.StatusCompleted))
		})
	})

	Describe("GET /v1/sessions", func() {
		It("lists persisted sessions newest first", func() {
			base := time.Now().UTC()
			ctx := context.Background()
			Expect(driver.Put(ctx, &storage.Session{ID: "old", Query: "a", StartedAt: base.Add(-time.Hour)})).To(Succeed())
			Expect(driver.Put(ctx, &storage.Session{ID: "new", Query: "b", StartedAt: base})).To(Succeed())

			resp, err := server.App().Test(httptest.NewRequest(http.MethodGet, "/v1/sessions", nil))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var parsed struct {
				Count    int                `json:"count"`
				Sessions []*storage.Session `json:"sessions"`
			}
			Expect(json.NewDecoder(resp.Body).Decode(&parsed)).To(Succeed())
			Expect(parsed.Count).To(Equal(2))
			Expect(parsed.Sessions[0].ID).To(Equal("new"))
			Expect(parsed.Sessions[1].ID).To(Equal("old"))
		})
	})

	Describe("GET /v1/sessions/:id", func() {
		It("returns a persisted session", func() {
			Expect(driver.Put(context.Background(), &storage.Session{
				ID:     "s1",
				Query:  "q",
				Answer: "a",
			})).To(Succeed())

			resp, err := server.App().Test(httptest.NewRequest(http.MethodGet, "/v1/sessions/s1", nil))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var session storage.Session
			Expect(json.NewDecoder(resp.Body).Decode(&session)).To(Succeed())
			Expect(session.ID).To(Equal("s1"))
			Expect(session.Answer).To(Equal("a"))
		})

		It("returns 404 for an unknown session", func() {
			resp, err := server.App().Test(httptest.NewRequest(http.MethodGet, "/v1/sessions/nope", nil))
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
		})
	})
})
