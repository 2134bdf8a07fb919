package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/cognicodeco/chainstream/pkg/vector"
)

var _ = Describe("Embedder", func() {
	var (
		ctx      context.Context
		server   *httptest.Server
		received struct {
			path    string
			payload map[string]any
		}
		respond func(w http.ResponseWriter)
	)

	BeforeEach(func() {
		ctx = context.Background()
		respond = func(w http.ResponseWriter) {
			_, _ = w.Write([]byte(`{"embeddings":[[0.1,0.2,0.3]]}`))
		}

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			received.path = r.URL.Path
			Expect(json.NewDecoder(r.Body).Decode(&received.payload)).To(Succeed())
			respond(w)
		}))
		DeferCleanup(server.Close)
	})

	It("posts the model and input to the embed endpoint", func() {
		e := NewEmbedder(Config{BaseURL: server.URL, Model: "nomic-embed-text"})

		vec, err := e.Embed(ctx, "hello world")
		Expect(err).NotTo(HaveOccurred())
		Expect(vec).To(Equal([]float32{0.1, 0.2, 0.3}))

		Expect(received.path).To(Equal("/api/embed"))
		Expect(received.payload["model"]).To(Equal("nomic-embed-text"))
		Expect(received.payload["input"]).To(Equal("hello world"))
	})

	It("applies the model default", func() {
		e := NewEmbedder(Config{BaseURL: server.URL})

		_, err := e.Embed(ctx, "x")
		Expect(err).NotTo(HaveOccurred())
		Expect(received.payload["model"]).To(Equal(DefaultModel))
	})

	It("wraps a non-200 status in ErrEmbedding", func() {
		respond = func(w http.ResponseWriter) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("model not loaded"))
		}
		e := NewEmbedder(Config{BaseURL: server.URL})

		_, err := e.Embed(ctx, "x")
		Expect(err).To(MatchError(vector.ErrEmbedding))
		Expect(err.Error()).To(ContainSubstring("status 500"))
	})

	It("wraps an empty embeddings list in ErrEmbedding", func() {
		respond = func(w http.ResponseWriter) {
			_, _ = w.Write([]byte(`{"embeddings":[]}`))
		}
		e := NewEmbedder(Config{BaseURL: server.URL})

		_, err := e.Embed(ctx, "x")
		Expect(err).To(MatchError(vector.ErrEmbedding))
	})
})
