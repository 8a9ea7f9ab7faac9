package config

import (
	"fmt"
	"strings"
)

// validSSLModes are the sslmode values accepted by libpq-compatible drivers.
var validSSLModes = map[string]bool{
	"disable":     true,
	"allow":       true,
	"prefer":      true,
	"require":     true,
	"verify-ca":   true,
	"verify-full": true,
}

// Validate checks the configuration for invalid values. It returns the
// first error found, wrapping the corresponding sentinel.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.GeminiAPIKey) == "" {
		return fmt.Errorf("%w: set GEMINI_API_KEY", ErrMissingAPIKey)
	}
	if strings.TrimSpace(c.GenerationModel) == "" {
		return fmt.Errorf("%w: generation_model is empty", ErrInvalidModelName)
	}
	if strings.TrimSpace(c.EmbedderModel) == "" {
		return fmt.Errorf("%w: embedder_model is empty", ErrInvalidEmbedderModel)
	}
	if c.EmbeddingDim < 1 || c.EmbeddingDim > 3072 {
		return fmt.Errorf("%w: %d (must be 1-3072)", ErrInvalidEmbeddingDim, c.EmbeddingDim)
	}
	if c.MaxLoopIterations < 1 || c.MaxLoopIterations > 100 {
		return fmt.Errorf("%w: %d (must be 1-100)", ErrInvalidMaxIterations, c.MaxLoopIterations)
	}
	if strings.TrimSpace(c.PostgresHost) == "" {
		return fmt.Errorf("%w: host is empty", ErrInvalidPostgresHost)
	}
	if c.PostgresPort < 1 || c.PostgresPort > 65535 {
		return fmt.Errorf("%w: %d (must be 1-65535)", ErrInvalidPostgresPort, c.PostgresPort)
	}
	if strings.TrimSpace(c.PostgresDBName) == "" {
		return fmt.Errorf("%w: database name is empty", ErrInvalidPostgresDBName)
	}
	if !validSSLModes[c.PostgresSSLMode] {
		return fmt.Errorf("%w: %q", ErrInvalidPostgresSSLMode, c.PostgresSSLMode)
	}
	return nil
}
