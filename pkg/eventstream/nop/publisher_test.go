package nop

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/cognicodeco/chainstream/pkg/eventstream"
)

var _ = Describe("Publisher", func() {
	var p *Publisher

	BeforeEach(func() {
		p = NewPublisher()
	})

	It("accepts a valid event", func() {
		ev := &eventstream.SessionCompletedEvent{
			SchemaVersion: eventstream.SchemaVersionV1,
			EventType:     eventstream.EventTypeSessionCompleted,
			SessionID:     "s1",
		}
		Expect(p.PublishSession(context.Background(), ev)).To(Succeed())
	})

	It("rejects a nil event", func() {
		err := p.PublishSession(context.Background(), nil)
		Expect(err).To(MatchError(eventstream.ErrNilSessionEvent))
	})

	It("closes cleanly", func() {
		Expect(p.Close()).To(Succeed())
	})
})
