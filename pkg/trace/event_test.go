package trace

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Event", func() {
	Describe("Marshal", func() {
		It("omits empty content", func() {
			payload, err := Event{Type: TagStreamEnd}.Marshal()
			Expect(err).NotTo(HaveOccurred())
			Expect(string(payload)).To(Equal(`{"type":"stream_end"}`))
		})

		It("includes content when present", func() {
			payload, err := Event{Type: TagThought, Content: "hm"}.Marshal()
			Expect(err).NotTo(HaveOccurred())
			Expect(string(payload)).To(Equal(`{"type":"thought","content":"hm"}`))
		})
	})

	Describe("ParseEvent", func() {
		It("round-trips a marshaled event", func() {
			original := Event{Type: TagObservation, Content: "line one\nline two"}
			payload, err := original.Marshal()
			Expect(err).NotTo(HaveOccurred())

			parsed, err := ParseEvent(payload)
			Expect(err).NotTo(HaveOccurred())
			Expect(*parsed).To(Equal(original))
		})

		It("rejects malformed JSON", func() {
			_, err := ParseEvent([]byte(`{"type":`))
			Expect(err).To(HaveOccurred())
		})
	})
})
