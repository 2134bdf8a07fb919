// Package vector provides interfaces for the vector storage backing the
// semantic codebase search tool.
package vector

import "context"

// Document is a stored chunk of indexed source with its embedding.
type Document struct {
	// ID is a unique identifier for the chunk (path plus chunk ordinal).
	ID string

	// Path is the source file the chunk came from.
	Path string

	// Text is the chunk content returned to the search tool.
	Text string

	// Embedding is the vector representation of Text.
	Embedding []float32
}

// QueryResult is a search hit with its similarity score.
type QueryResult struct {
	Document

	// Score is the similarity score (higher = more similar).
	Score float32
}

// Driver handles storage and retrieval of embedded document chunks.
type Driver interface {
	// Add stores documents with their embeddings, updating on ID collision.
	Add(ctx context.Context, docs []Document) error

	// Query finds the topK most similar documents to the given embedding.
	Query(ctx context.Context, embedding []float32, topK int) ([]QueryResult, error)

	// Delete removes documents by their IDs.
	Delete(ctx context.Context, ids []string) error

	// Close releases any resources held by the driver.
	Close() error
}
