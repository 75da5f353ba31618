package config

import (
	"fmt"
	"os"
	"time"
)

// ReductionConfig configures the dimensionality reduction primitive.
type ReductionConfig struct {
	Method       string        `mapstructure:"method"` // remote, pca
	BaseURL      string        `mapstructure:"base_url"`
	BaseURLEnv   string        `mapstructure:"base_url_env"`
	APIKey       string        `mapstructure:"api_key"`
	APIKeyEnv    string        `mapstructure:"api_key_env"`
	Timeout      time.Duration `mapstructure:"timeout"`
	LearningRate float64       `mapstructure:"learning_rate"`
	MaxIter      int           `mapstructure:"max_iter"`
	Init         string        `mapstructure:"init"`
	TSNEMethod   string        `mapstructure:"tsne_method"`
}

// ResolveEnvVars loads APIKey and BaseURL from the named environment variables.
// Values already set directly take precedence.
func (c *ReductionConfig) ResolveEnvVars() {
	if c.APIKeyEnv != "" && c.APIKey == "" {
		if val := os.Getenv(c.APIKeyEnv); val != "" {
			c.APIKey = val
		}
	}
	if c.BaseURLEnv != "" && c.BaseURL == "" {
		if val := os.Getenv(c.BaseURLEnv); val != "" {
			c.BaseURL = val
		}
	}
}

// Validate checks that the reduction configuration is usable.
func (c *ReductionConfig) Validate() error {
	switch c.Method {
	case "remote":
		if c.BaseURL == "" {
			return fmt.Errorf("reduction: base_url is required for the remote method")
		}
	case "pca":
	default:
		return fmt.Errorf("reduction: unknown method %q", c.Method)
	}
	if c.MaxIter < 0 {
		return fmt.Errorf("reduction: max_iter must not be negative")
	}
	return nil
}
