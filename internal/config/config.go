package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"    validate:"required"`
	Queue     QueueConfig     `mapstructure:"queue"     validate:"required"`
	LLM       LLMConfig       `mapstructure:"llm"       validate:"required"`
	Retention RetentionConfig `mapstructure:"retention"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// QueueConfig contains the request queue settings.
type QueueConfig struct {
	// MaxConcurrent caps simultaneous inference requests. 1 serializes
	// everything against the GPU, which is the sensible default for a
	// single shared backend.
	MaxConcurrent int `mapstructure:"max_concurrent" validate:"required,gt=0"`

	// ExecTimeout bounds a single execution; zero disables the bound and
	// leaves timeouts to the backend client.
	ExecTimeout time.Duration `mapstructure:"exec_timeout" validate:"gte=0"`
}

// LLMConfig contains the generative backend settings.
type LLMConfig struct {
	// Provider selects the backend implementation.
	Provider string `mapstructure:"provider" validate:"required,oneof=ollama gemini"`

	// OllamaHost is the base URL of the Ollama server.
	OllamaHost string `mapstructure:"ollama_host" validate:"required_if=Provider ollama,omitempty,url"`

	// GeminiAPIKey authenticates against the Gemini API.
	GeminiAPIKey string `mapstructure:"gemini_api_key" validate:"required_if=Provider gemini"`

	// ModelName is the model to answer with.
	ModelName string `mapstructure:"model_name" validate:"required"`

	// Temperature controls output randomness.
	Temperature float64 `mapstructure:"temperature" validate:"gte=0,lte=1"`

	// Timeout is the HTTP timeout for a single backend call.
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

// RetentionConfig bounds how long finished request records are kept.
// A zero TTL disables eviction entirely.
type RetentionConfig struct {
	TTL      time.Duration `mapstructure:"ttl"      validate:"gte=0"`
	Interval time.Duration `mapstructure:"interval" validate:"gte=0"`
}
