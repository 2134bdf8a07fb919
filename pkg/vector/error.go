package vector

import "errors"

// ErrEmbedding wraps failures while generating an embedding for a query or
// document chunk.
var ErrEmbedding = errors.New("embedding error")
