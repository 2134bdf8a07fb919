// Package servecmder provides the serve command that runs the streaming
// agent server.
package servecmder

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cognicodeco/chainstream/api"
	"github.com/cognicodeco/chainstream/pkg/config"
	"github.com/cognicodeco/chainstream/pkg/embeddings/ollama"
	"github.com/cognicodeco/chainstream/pkg/engine/react"
	"github.com/cognicodeco/chainstream/pkg/eventstream"
	eskafka "github.com/cognicodeco/chainstream/pkg/eventstream/kafka"
	esnop "github.com/cognicodeco/chainstream/pkg/eventstream/nop"
	"github.com/cognicodeco/chainstream/pkg/llm"
	"github.com/cognicodeco/chainstream/pkg/logger"
	"github.com/cognicodeco/chainstream/pkg/pump"
	"github.com/cognicodeco/chainstream/pkg/storage"
	"github.com/cognicodeco/chainstream/pkg/storage/inmemory"
	"github.com/cognicodeco/chainstream/pkg/storage/sqlite"
	"github.com/cognicodeco/chainstream/pkg/tools"
	"github.com/cognicodeco/chainstream/pkg/vector"
	"github.com/cognicodeco/chainstream/pkg/vector/sqlitevec"
	"github.com/cognicodeco/chainstream/pkg/worker"
)

type serveCommander struct {
	listen        string
	sqlitePath    string
	llmBaseURL    string
	llmModel      string
	maxIterations int
	vectorSQLite  string
	eventProvider string
	debug         bool

	cfg    *config.Config
	logger *zap.Logger
}

const serveLongDesc string = `Run the chainstream server.

The server exposes POST /v1/agent/invoke, which runs a tool-using agent
against the query and streams its reasoning trace back as typed events over
chunked HTTP. Completed sessions are persisted asynchronously and can be
inspected via GET /v1/sessions.`

const serveShortDesc string = "Run the chainstream server"

var serveFlagKeys = []string{
	config.FlagListen,
	config.FlagSQLite,
	config.FlagLLMBaseURL,
	config.FlagLLMModel,
	config.FlagMaxIterations,
	config.FlagVectorSQLite,
	config.FlagEventProvider,
}

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			config.BindRegisteredFlags(v, cmd, config.Flags, serveFlagKeys)

			cmder.cfg, err = config.FromViper(v)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			return cmder.run()
		},
	}

	config.AddStringFlag(cmd, config.Flags, config.FlagListen, &cmder.listen)
	config.AddStringFlag(cmd, config.Flags, config.FlagSQLite, &cmder.sqlitePath)
	config.AddStringFlag(cmd, config.Flags, config.FlagLLMBaseURL, &cmder.llmBaseURL)
	config.AddStringFlag(cmd, config.Flags, config.FlagLLMModel, &cmder.llmModel)
	config.AddIntFlag(cmd, config.Flags, config.FlagMaxIterations, &cmder.maxIterations)
	config.AddStringFlag(cmd, config.Flags, config.FlagVectorSQLite, &cmder.vectorSQLite)
	config.AddStringFlag(cmd, config.Flags, config.FlagEventProvider, &cmder.eventProvider)

	return cmd
}

func (c *serveCommander) run() error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	cfg := c.cfg

	// Session store
	storer, err := c.newStorageDriver()
	if err != nil {
		return err
	}
	defer storer.Close()

	// Event publisher
	publisher, err := c.newPublisher()
	if err != nil {
		return err
	}
	defer publisher.Close()

	// Agent toolbox
	ts, vecDriver, err := c.newToolbox()
	if err != nil {
		return err
	}
	if vecDriver != nil {
		defer vecDriver.Close()
	}

	llmClient := llm.NewClient(llm.Config{
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		APIKey:  cfg.LLM.APIKey,
	})

	executor := react.New(llmClient, ts,
		react.Config{MaxIterations: cfg.Agent.MaxIterations},
		c.logger,
	)

	pmp := pump.New(executor, pump.Config{}, c.logger)

	pool, err := worker.NewPool(&worker.Config{
		Driver:    storer,
		Publisher: publisher,
		Logger:    c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating worker pool: %w", err)
	}

	server := api.NewServer(
		api.Config{ListenAddr: cfg.Server.Listen},
		pmp, storer, pool, c.logger,
	)

	errChan := make(chan error, 1)
	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		pool.Close()
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		if err := server.Shutdown(); err != nil {
			c.logger.Warn("server shutdown failed", zap.Error(err))
		}
		// Drain in-flight persistence jobs after the server stops accepting
		// new sessions.
		pool.Close()
		return nil
	}
}

func (c *serveCommander) newStorageDriver() (storage.Driver, error) {
	if c.cfg.Storage.SQLitePath != "" {
		driver, err := sqlite.NewDriver(c.cfg.Storage.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite session store: %w", err)
		}
		c.logger.Info("using SQLite session storage", zap.String("path", c.cfg.Storage.SQLitePath))
		return driver, nil
	}

	c.logger.Info("using in-memory session storage")
	return inmemory.NewDriver(), nil
}

func (c *serveCommander) newPublisher() (eventstream.Publisher, error) {
	switch c.cfg.EventStream.Provider {
	case "kafka":
		pub, err := eskafka.NewPublisher(eskafka.Config{
			Brokers: c.cfg.EventStream.Brokers,
			Topic:   c.cfg.EventStream.Topic,
		}, c.logger)
		if err != nil {
			return nil, fmt.Errorf("creating kafka publisher: %w", err)
		}
		c.logger.Info("publishing session events to kafka",
			zap.Strings("brokers", c.cfg.EventStream.Brokers),
		)
		return pub, nil
	case "", "nop":
		return esnop.NewPublisher(), nil
	default:
		return nil, fmt.Errorf("unknown event stream provider: %q", c.cfg.EventStream.Provider)
	}
}

// newToolbox builds the agent tool set. Codebase search is only wired when
// a vector index path is configured; the returned vector driver is non-nil
// in that case and must be closed by the caller.
func (c *serveCommander) newToolbox() ([]tools.Tool, vector.Driver, error) {
	ts := []tools.Tool{
		tools.NewListFiles(),
		tools.NewReadFile(),
		tools.NewShell(),
	}

	if c.cfg.VectorStore.SQLitePath == "" {
		return ts, nil, nil
	}

	vecDriver, err := sqlitevec.NewDriver(sqlitevec.Config{
		DBPath:     c.cfg.VectorStore.SQLitePath,
		Dimensions: c.cfg.VectorStore.Dimensions,
	}, c.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("creating vector index: %w", err)
	}

	embedder := ollama.NewEmbedder(ollama.Config{
		BaseURL: c.cfg.Embedding.Target,
		Model:   c.cfg.Embedding.Model,
	})

	c.logger.Info("codebase search enabled",
		zap.String("index", c.cfg.VectorStore.SQLitePath),
		zap.String("embedding_model", c.cfg.Embedding.Model),
	)

	ts = append(ts, tools.NewSearch(embedder, vecDriver, c.logger))
	return ts, vecDriver, nil
}
