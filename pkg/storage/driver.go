package storage

import "context"

// Driver is the interface session stores implement.
type Driver interface {
	// Put stores a session. Storing an existing ID overwrites the record.
	Put(ctx context.Context, session *Session) error

	// Get retrieves a session by ID.
	Get(ctx context.Context, id string) (*Session, error)

	// List returns all sessions, most recently started first.
	List(ctx context.Context) ([]*Session, error)

	// Close closes the store and releases any resources.
	Close() error
}
