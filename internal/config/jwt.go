package config

import (
	"fmt"
)

// JWTConfig holds configuration for JWT token generation and validation.
type JWTConfig struct {
	Secret          string
	ExpirationHours int
}

// JWT returns the token configuration, or nil when no secret is set and
// authentication is disabled.
func (s ServerConfig) JWT() (*JWTConfig, error) {
	if s.JWTSecret == "" {
		return nil, nil
	}
	cfg := &JWTConfig{
		Secret:          s.JWTSecret,
		ExpirationHours: s.JWTExpirationHours,
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// normalize validates the configuration.
func (c *JWTConfig) normalize() error {
	if c.Secret == "" {
		return fmt.Errorf("jwt_secret cannot be empty")
	}
	if len(c.Secret) < 16 {
		return fmt.Errorf("jwt_secret must be at least 16 characters, got %d", len(c.Secret))
	}
	if c.ExpirationHours < 1 {
		return fmt.Errorf("jwt_expiration_hours must be at least 1 hour, got: %d", c.ExpirationHours)
	}
	return nil
}
