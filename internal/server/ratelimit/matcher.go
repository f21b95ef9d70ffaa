package ratelimit

import (
	"strings"
)

// MatchEndpoint returns the configuration for path and method, or nil when
// the default limit applies. Exact paths win over prefixes.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	for i := range configs {
		cfg := &configs[i]
		if cfg.Path == path && cfg.Method == method {
			return cfg
		}
	}

	for i := range configs {
		cfg := &configs[i]
		if cfg.Method == method && strings.HasSuffix(cfg.Path, "/") && strings.HasPrefix(path, cfg.Path) {
			return cfg
		}
	}

	return nil
}
