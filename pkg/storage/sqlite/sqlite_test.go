package sqlite

import (
	"context"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/cognicodeco/chainstream/pkg/storage"
)

var _ = Describe("Driver", func() {
	var (
		ctx    context.Context
		driver *Driver
	)

	session := func(id string, startedAt time.Time) *storage.Session {
		return &storage.Session{
			ID:          id,
			Query:       "how many files?",
			Answer:      "12",
			Transcript:  "Thought: count them",
			Evidence:    "Observation: 12",
			Status:      storage.StatusCompleted,
			StartedAt:   startedAt,
			CompletedAt: startedAt.Add(3 * time.Second),
			DurationMs:  3000,
		}
	}

	BeforeEach(func() {
		ctx = context.Background()

		var err error
		driver, err = NewDriver(":memory:")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(driver.Close)
	})

	It("opens a file-backed database", func() {
		d, err := NewDriver(filepath.Join(GinkgoT().TempDir(), "sessions.db"))
		Expect(err).NotTo(HaveOccurred())
		Expect(d.Close()).To(Succeed())
	})

	Describe("Put and Get", func() {
		It("round-trips every session field", func() {
			started := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
			Expect(driver.Put(ctx, session("s1", started))).To(Succeed())

			got, err := driver.Get(ctx, "s1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal("s1"))
			Expect(got.Query).To(Equal("how many files?"))
			Expect(got.Answer).To(Equal("12"))
			Expect(got.Transcript).To(Equal("Thought: count them"))
			Expect(got.Evidence).To(Equal("Observation: 12"))
			Expect(got.Status).To(Equal(storage.StatusCompleted))
			Expect(got.StartedAt).To(BeTemporally("==", started))
			Expect(got.CompletedAt).To(BeTemporally("==", started.Add(3*time.Second)))
			Expect(got.DurationMs).To(Equal(int64(3000)))
		})

		It("overwrites on a conflicting ID", func() {
			s := session("s1", time.Now().UTC())
			Expect(driver.Put(ctx, s)).To(Succeed())

			s.Answer = "13"
			s.Status = storage.StatusFailed
			Expect(driver.Put(ctx, s)).To(Succeed())

			got, err := driver.Get(ctx, "s1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Answer).To(Equal("13"))
			Expect(got.Status).To(Equal(storage.StatusFailed))

			sessions, err := driver.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(sessions).To(HaveLen(1))
		})

		It("rejects a nil session", func() {
			Expect(driver.Put(ctx, nil)).To(HaveOccurred())
		})

		It("rejects a session without an ID", func() {
			Expect(driver.Put(ctx, &storage.Session{})).To(HaveOccurred())
		})

		It("returns a NotFoundError for an unknown ID", func() {
			_, err := driver.Get(ctx, "nope")
			Expect(err).To(MatchError(storage.NotFoundError{ID: "nope"}))
		})
	})

	Describe("List", func() {
		It("returns sessions most recently started first", func() {
			base := time.Now().UTC()
			Expect(driver.Put(ctx, session("old", base.Add(-2*time.Hour)))).To(Succeed())
			Expect(driver.Put(ctx, session("new", base))).To(Succeed())
			Expect(driver.Put(ctx, session("mid", base.Add(-time.Hour)))).To(Succeed())

			sessions, err := driver.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(sessions).To(HaveLen(3))
			Expect(sessions[0].ID).To(Equal("new"))
			Expect(sessions[1].ID).To(Equal("mid"))
			Expect(sessions[2].ID).To(Equal("old"))
		})

		It("returns an empty list for an empty store", func() {
			sessions, err := driver.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(sessions).To(BeEmpty())
		})
	})
})
