package api

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/cognicodeco/chainstream/pkg/pump"
	"github.com/cognicodeco/chainstream/pkg/storage"
	"github.com/cognicodeco/chainstream/pkg/worker"
)

// Server is the streaming API server. It owns no agent state of its own:
// the pump, session store, and worker pool are injected so the serve
// command can wire them once and share them.
type Server struct {
	config Config
	pump   *pump.Pump
	storer storage.Driver
	pool   *worker.Pool
	logger *zap.Logger
	app    *fiber.App
}

// NewServer creates a new API server over the given pump and session store.
// The worker pool may be nil, in which case sessions are not persisted.
func NewServer(config Config, p *pump.Pump, storer storage.Driver, pool *worker.Pool, logger *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config: config,
		pump:   p,
		storer: storer,
		pool:   pool,
		logger: logger,
		app:    app,
	}

	app.Get("/ping", s.handlePing)
	app.Post("/v1/agent/invoke", s.handleInvoke)
	app.Get("/v1/sessions", s.handleListSessions)
	app.Get("/v1/sessions/:id", s.handleGetSession)

	return s
}

// App exposes the underlying fiber app for handler-level tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting streaming API server",
		zap.String("listen", s.config.ListenAddr),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
