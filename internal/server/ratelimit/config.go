package ratelimit

import (
	"strings"
	"time"

	"github.com/jonathan/ats-simulator/internal/config"
)

// EndpointConfig is the limit applied to one route.
type EndpointConfig struct {
	Path   string        // exact path, or a prefix when it ends with "/"
	Method string        // HTTP method
	Limit  int           // requests per window; 0 means unlimited
	Window time.Duration // refill window
	Burst  int           // bucket capacity, defaults to Limit
}

// FromSettings builds a limiter configuration from the server settings.
func FromSettings(rl config.RateLimitConfig) *Config {
	if !rl.Enabled {
		return &Config{Enabled: false}
	}
	return &Config{
		Enabled:         true,
		DefaultLimit:    rl.DefaultPerMin,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
		Whitelist:       toSet(rl.Whitelist),
		Blacklist:       toSet(rl.Blacklist),
		EndpointConfigs: EndpointConfigs(rl.SimulationsPerMin, rl.Burst),
	}
}

// EndpointConfigs returns the route limits. Simulations are the only
// expensive route; health and metrics are never limited.
func EndpointConfigs(simulationsPerMin, burst int) []EndpointConfig {
	return []EndpointConfig{
		{Path: "/simulations", Method: "POST", Limit: simulationsPerMin, Window: time.Minute, Burst: burst},
		{Path: "/health", Method: "GET", Limit: 0},
		{Path: "/metrics", Method: "GET", Limit: 0},
	}
}

func toSet(list []string) map[string]bool {
	result := make(map[string]bool, len(list))
	for _, item := range list {
		for _, ip := range strings.Split(item, ",") {
			if ip = strings.TrimSpace(ip); ip != "" {
				result[ip] = true
			}
		}
	}
	return result
}
