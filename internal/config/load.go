package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load reads configuration from environment variables and an optional
// config.yaml in the working directory. Environment variables use the
// OLLAPDF_ prefix with underscores for section separators
// (e.g. OLLAPDF_QUEUE_MAX_CONCURRENT) and take precedence over file values.
// Returns a populated, validated Config or an error.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		// The config file is optional; only a malformed one is fatal.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("OLLAPDF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers a default for every key so environment-only values
// are visible to Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("queue.max_concurrent", 1)
	v.SetDefault("queue.exec_timeout", time.Duration(0))

	v.SetDefault("llm.provider", "ollama")
	v.SetDefault("llm.ollama_host", "http://ollama:11434")
	v.SetDefault("llm.gemini_api_key", "")
	v.SetDefault("llm.model_name", "llama2")
	v.SetDefault("llm.temperature", 0.1)
	v.SetDefault("llm.timeout", 5*time.Minute)

	v.SetDefault("retention.ttl", time.Duration(0))
	v.SetDefault("retention.interval", 5*time.Minute)
}
