package worker

import (
	"context"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/cognicodeco/chainstream/pkg/eventstream"
	"github.com/cognicodeco/chainstream/pkg/storage"
	"github.com/cognicodeco/chainstream/pkg/storage/inmemory"
)

// capturingPublisher records every published event.
type capturingPublisher struct {
	mu     sync.Mutex
	events []*eventstream.SessionCompletedEvent
	err    error
	closed bool
}

func (p *capturingPublisher) PublishSession(_ context.Context, ev *eventstream.SessionCompletedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

func (p *capturingPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func (p *capturingPublisher) captured() []*eventstream.SessionCompletedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*eventstream.SessionCompletedEvent(nil), p.events...)
}

var _ = Describe("Pool", func() {
	var (
		driver    *inmemory.Driver
		publisher *capturingPublisher
	)

	session := func(id string) *storage.Session {
		return &storage.Session{
			ID:         id,
			Query:      "q",
			Answer:     "a",
			Status:     storage.StatusCompleted,
			StartedAt:  time.Now().UTC(),
			DurationMs: 42,
		}
	}

	BeforeEach(func() {
		driver = inmemory.NewDriver()
		publisher = &capturingPublisher{}
	})

	It("persists enqueued sessions", func() {
		pool, err := NewPool(&Config{Driver: driver})
		Expect(err).NotTo(HaveOccurred())

		Expect(pool.Enqueue(Job{Session: session("s1")})).To(BeTrue())
		Expect(pool.Enqueue(Job{Session: session("s2")})).To(BeTrue())
		pool.Close()

		Expect(driver.Count()).To(Equal(2))
		got, err := driver.Get(context.Background(), "s1")
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Answer).To(Equal("a"))
	})

	It("publishes a completion event after persisting", func() {
		pool, err := NewPool(&Config{Driver: driver, Publisher: publisher})
		Expect(err).NotTo(HaveOccurred())

		Expect(pool.Enqueue(Job{Session: session("s1")})).To(BeTrue())
		pool.Close()

		events := publisher.captured()
		Expect(events).To(HaveLen(1))
		ev := events[0]
		Expect(ev.SchemaVersion).To(Equal(eventstream.SchemaVersionV1))
		Expect(ev.EventType).To(Equal(eventstream.EventTypeSessionCompleted))
		Expect(ev.EventID).NotTo(BeEmpty())
		Expect(ev.SessionID).To(Equal("s1"))
		Expect(ev.Query).To(Equal("q"))
		Expect(ev.Answer).To(Equal("a"))
		Expect(ev.Status).To(Equal(storage.StatusCompleted))
		Expect(ev.DurationMs).To(Equal(int64(42)))
	})

	It("skips publishing when no publisher is configured", func() {
		pool, err := NewPool(&Config{Driver: driver})
		Expect(err).NotTo(HaveOccurred())

		Expect(pool.Enqueue(Job{Session: session("s1")})).To(BeTrue())
		pool.Close()

		Expect(driver.Count()).To(Equal(1))
	})

	It("keeps the persisted session when publishing fails", func() {
		publisher.err = context.DeadlineExceeded
		pool, err := NewPool(&Config{Driver: driver, Publisher: publisher})
		Expect(err).NotTo(HaveOccurred())

		Expect(pool.Enqueue(Job{Session: session("s1")})).To(BeTrue())
		pool.Close()

		Expect(driver.Count()).To(Equal(1))
		Expect(publisher.captured()).To(BeEmpty())
	})

	It("refuses a job with a nil session", func() {
		pool, err := NewPool(&Config{Driver: driver})
		Expect(err).NotTo(HaveOccurred())
		defer pool.Close()

		Expect(pool.Enqueue(Job{})).To(BeFalse())
	})

	It("drops jobs when the queue is full", func() {
		// A single worker blocked on a slow driver keeps the queue full.
		slow := &slowDriver{Driver: driver, delay: 200 * time.Millisecond}
		pool, err := NewPool(&Config{Driver: slow, NumWorkers: 1, QueueSize: 1})
		Expect(err).NotTo(HaveOccurred())

		accepted := 0
		for i := 0; i < 10; i++ {
			if pool.Enqueue(Job{Session: session("s")}) {
				accepted++
			}
		}
		pool.Close()

		Expect(accepted).To(BeNumerically("<", 10))
	})
})

// slowDriver delays every Put to simulate a congested backend.
type slowDriver struct {
	*inmemory.Driver
	delay time.Duration
}

func (d *slowDriver) Put(ctx context.Context, s *storage.Session) error {
	time.Sleep(d.delay)
	return d.Driver.Put(ctx, s)
}
