// Package api provides the HTTP server that streams agent reasoning traces
// to clients and exposes persisted sessions for inspection.
package api

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8081")
	ListenAddr string
}
