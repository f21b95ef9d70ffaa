// Package llm provides the Gemini client used for optional job-posting
// expansion.
package llm

import (
	"fmt"
	"time"
)

// Defaults for posting expansion. A low temperature keeps generated postings
// close to reproducible.
const (
	DefaultModel           = "gemini-2.5-flash"
	DefaultTemperature     = float32(0.1)
	DefaultMaxOutputTokens = int32(2048)
	DefaultTimeout         = 20 * time.Second
)

// Config holds the model settings for one client.
type Config struct {
	Model           string
	Temperature     float32
	MaxOutputTokens int32
	// Timeout bounds a single generation call. Zero means the caller's
	// context alone bounds it.
	Timeout time.Duration
}

// DefaultConfig returns the expansion defaults.
func DefaultConfig() *Config {
	return &Config{
		Model:           DefaultModel,
		Temperature:     DefaultTemperature,
		MaxOutputTokens: DefaultMaxOutputTokens,
		Timeout:         DefaultTimeout,
	}
}

// WithModel returns a copy of c using model. An empty model keeps the current one.
func (c *Config) WithModel(model string) *Config {
	copied := *c
	if model != "" {
		copied.Model = model
	}
	return &copied
}

// Validate checks that the settings can be sent to the API.
func (c *Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be in [0,2], got %g", c.Temperature)
	}
	if c.MaxOutputTokens < 0 {
		return fmt.Errorf("max output tokens must not be negative, got %d", c.MaxOutputTokens)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	return nil
}
