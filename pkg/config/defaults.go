package config

const (
	// CurrentV is the currently supported config schema version.
	CurrentV = 0

	defaultListen       = ":8081"
	defaultClientTarget = "http://localhost:8081"

	defaultClientTimeoutSeconds = 120

	defaultLLMBaseURL = "http://localhost:11434/v1"
	defaultLLMModel   = "qwen3:8b"

	defaultMaxIterations = 8

	defaultEmbeddingTarget     = "http://localhost:11434"
	defaultEmbeddingModel      = "nomic-embed-text"
	defaultVectorDimensions    = 768
	defaultEventStreamProvider = "nop"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Server: ServerConfig{
			Listen: defaultListen,
		},
		Client: ClientConfig{
			Target:         defaultClientTarget,
			TimeoutSeconds: defaultClientTimeoutSeconds,
		},
		LLM: LLMConfig{
			BaseURL: defaultLLMBaseURL,
			Model:   defaultLLMModel,
		},
		Agent: AgentConfig{
			MaxIterations: defaultMaxIterations,
		},
		VectorStore: VectorStoreConfig{
			Dimensions: defaultVectorDimensions,
		},
		Embedding: EmbeddingConfig{
			Target: defaultEmbeddingTarget,
			Model:  defaultEmbeddingModel,
		},
		EventStream: EventStreamConfig{
			Provider: defaultEventStreamProvider,
		},
	}
}
