// Package config defines the chainstream configuration surface and its
// viper-backed loading chain (flags > env > config file > defaults).
package config

// Config represents the full chainstream configuration, loadable from
// chainstream.toml with logical TOML sections.
type Config struct {
	Version     int               `mapstructure:"version" toml:"version"`
	Server      ServerConfig      `mapstructure:"server" toml:"server"`
	Storage     StorageConfig     `mapstructure:"storage" toml:"storage"`
	Client      ClientConfig      `mapstructure:"client" toml:"client"`
	LLM         LLMConfig         `mapstructure:"llm" toml:"llm"`
	Agent       AgentConfig       `mapstructure:"agent" toml:"agent"`
	VectorStore VectorStoreConfig `mapstructure:"vector_store" toml:"vector_store"`
	Embedding   EmbeddingConfig   `mapstructure:"embedding" toml:"embedding"`
	EventStream EventStreamConfig `mapstructure:"event_stream" toml:"event_stream"`
}

// ServerConfig holds the streaming API server settings.
type ServerConfig struct {
	Listen string `mapstructure:"listen" toml:"listen,omitempty"`
}

// StorageConfig holds session store settings. An empty SQLitePath selects
// the in-memory store.
type StorageConfig struct {
	SQLitePath string `mapstructure:"sqlite_path" toml:"sqlite_path,omitempty"`
}

// ClientConfig holds settings for CLI commands that connect to a running
// server (e.g. chainstream ask). Target is a full URL (scheme + host + port).
type ClientConfig struct {
	Target         string `mapstructure:"target" toml:"target,omitempty"`
	TimeoutSeconds uint   `mapstructure:"timeout_seconds" toml:"timeout_seconds,omitempty"`
}

// LLMConfig holds chat completion provider settings. BaseURL points at an
// OpenAI-compatible /v1 root.
type LLMConfig struct {
	BaseURL string `mapstructure:"base_url" toml:"base_url,omitempty"`
	Model   string `mapstructure:"model" toml:"model,omitempty"`
	APIKey  string `mapstructure:"api_key" toml:"api_key,omitempty"`
}

// AgentConfig holds agent loop settings.
type AgentConfig struct {
	MaxIterations int `mapstructure:"max_iterations" toml:"max_iterations,omitempty"`
}

// VectorStoreConfig holds codebase search index settings. An empty
// SQLitePath disables the codebase_search tool.
type VectorStoreConfig struct {
	SQLitePath string `mapstructure:"sqlite_path" toml:"sqlite_path,omitempty"`
	Dimensions uint   `mapstructure:"dimensions" toml:"dimensions,omitempty"`
}

// EmbeddingConfig holds embedding provider settings for codebase search.
type EmbeddingConfig struct {
	Target string `mapstructure:"target" toml:"target,omitempty"`
	Model  string `mapstructure:"model" toml:"model,omitempty"`
}

// EventStreamConfig holds session event publishing settings. Provider is
// "nop" or "kafka".
type EventStreamConfig struct {
	Provider string   `mapstructure:"provider" toml:"provider,omitempty"`
	Brokers  []string `mapstructure:"brokers" toml:"brokers,omitempty"`
	Topic    string   `mapstructure:"topic" toml:"topic,omitempty"`
}
