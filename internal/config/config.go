// Package config loads engine, server and CLI configuration from an optional
// config file and ATS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/jonathan/ats-simulator/internal/llm"
	"github.com/jonathan/ats-simulator/internal/scoring"
	"github.com/jonathan/ats-simulator/internal/types"
)

// EnvPrefix prefixes every environment override, e.g. ATS_SERVER_PORT.
const EnvPrefix = "ATS"

// PDF extractor names.
const (
	ExtractorPoppler = "poppler"
	ExtractorService = "service"
)

// Config is the full application configuration.
type Config struct {
	Engine  EngineConfig  `mapstructure:"engine"`
	Scoring ScoringConfig `mapstructure:"scoring"`
	PDF     PDFConfig     `mapstructure:"pdf"`
	Server  ServerConfig  `mapstructure:"server"`
	LLM     LLMConfig     `mapstructure:"llm"`
	Log     LogConfig     `mapstructure:"log"`
}

// EngineConfig tunes the simulation pipeline.
type EngineConfig struct {
	RequestTimeout             time.Duration `mapstructure:"request_timeout"`
	PDFTimeout                 time.Duration `mapstructure:"pdf_timeout"`
	TaxonomyPath               string        `mapstructure:"taxonomy_path"`
	LeadLines                  int           `mapstructure:"lead_lines"`
	MaxExpectedCultureKeywords int           `mapstructure:"max_expected_culture_keywords"`
}

// ScoringConfig tunes the evaluators and the aggregator.
type ScoringConfig struct {
	Weights                    map[string]float64 `mapstructure:"weights"`
	GateThreshold              int                `mapstructure:"gate_threshold"`
	ShadowPenalty              int                `mapstructure:"shadow_penalty"`
	UnstatedShadowPenalty      int                `mapstructure:"unstated_shadow_penalty"`
	LocationPenalty            int                `mapstructure:"location_penalty"`
	SubstantialUpdateThreshold float64            `mapstructure:"substantial_update_threshold"`
	MalformedFieldPenalty      int                `mapstructure:"malformed_field_penalty"`
	NonstandardDatePenalty     int                `mapstructure:"nonstandard_date_penalty"`
}

// PDFConfig selects the PDF text extractor and how resume URLs are fetched.
type PDFConfig struct {
	Extractor    string `mapstructure:"extractor"`
	ServiceURL   string `mapstructure:"service_url"`
	ServiceToken string `mapstructure:"service_token"`
	// AllowPrivateHosts lets the server fetch resume URLs on loopback,
	// private and link-local addresses.
	AllowPrivateHosts bool `mapstructure:"allow_private_hosts"`
}

// ServerConfig configures the HTTP server and its backing stores.
type ServerConfig struct {
	Port               int             `mapstructure:"port"`
	DatabaseURL        string          `mapstructure:"database_url"`
	RedisAddr          string          `mapstructure:"redis_addr"`
	CacheTTL           time.Duration   `mapstructure:"cache_ttl"`
	JWTSecret          string          `mapstructure:"jwt_secret"`
	JWTExpirationHours int             `mapstructure:"jwt_expiration_hours"`
	AllowedOrigins     []string        `mapstructure:"allowed_origins"`
	RateLimit          RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig configures per-client request limits.
type RateLimitConfig struct {
	Enabled           bool     `mapstructure:"enabled"`
	SimulationsPerMin int      `mapstructure:"simulations_per_minute"`
	Burst             int      `mapstructure:"burst"`
	DefaultPerMin     int      `mapstructure:"default_per_minute"`
	Whitelist         []string `mapstructure:"whitelist"`
	Blacklist         []string `mapstructure:"blacklist"`
}

// LLMConfig configures the optional posting expansion.
type LLMConfig struct {
	APIKey              string        `mapstructure:"api_key"`
	Model               string        `mapstructure:"model"`
	Timeout             time.Duration `mapstructure:"timeout"`
	ExpandShortPostings bool          `mapstructure:"expand_short_postings"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Format string `mapstructure:"format"`
	Level  string `mapstructure:"level"`
}

func setDefaults(v *viper.Viper) {
	settings := scoring.DefaultSettings()

	v.SetDefault("engine.request_timeout", 30*time.Second)
	v.SetDefault("engine.pdf_timeout", 5*time.Second)
	v.SetDefault("engine.taxonomy_path", "")
	v.SetDefault("engine.lead_lines", settings.LeadLines)
	v.SetDefault("engine.max_expected_culture_keywords", settings.MaxExpectedCultureKeywords)

	for id, w := range scoring.DefaultWeights() {
		v.SetDefault("scoring.weights."+string(id), w)
	}
	v.SetDefault("scoring.gate_threshold", scoring.DefaultGateThreshold)
	v.SetDefault("scoring.shadow_penalty", settings.ShadowPenalty)
	v.SetDefault("scoring.unstated_shadow_penalty", settings.UnstatedShadowPenalty)
	v.SetDefault("scoring.location_penalty", settings.LocationPenalty)
	v.SetDefault("scoring.substantial_update_threshold", settings.SubstantialUpdateThreshold)
	v.SetDefault("scoring.malformed_field_penalty", settings.MalformedFieldPenalty)
	v.SetDefault("scoring.nonstandard_date_penalty", settings.NonstandardDatePenalty)

	v.SetDefault("pdf.extractor", ExtractorPoppler)
	v.SetDefault("pdf.service_url", "")
	v.SetDefault("pdf.service_token", "")
	v.SetDefault("pdf.allow_private_hosts", false)

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.database_url", "")
	v.SetDefault("server.redis_addr", "")
	v.SetDefault("server.cache_ttl", 24*time.Hour)
	v.SetDefault("server.jwt_secret", "")
	v.SetDefault("server.jwt_expiration_hours", 24)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.rate_limit.enabled", true)
	v.SetDefault("server.rate_limit.simulations_per_minute", 30)
	v.SetDefault("server.rate_limit.burst", 5)
	v.SetDefault("server.rate_limit.default_per_minute", 600)
	v.SetDefault("server.rate_limit.whitelist", []string{})
	v.SetDefault("server.rate_limit.blacklist", []string{})

	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", llm.DefaultModel)
	v.SetDefault("llm.timeout", llm.DefaultTimeout)
	v.SetDefault("llm.expand_short_postings", false)

	v.SetDefault("log.format", "console")
	v.SetDefault("log.level", "info")
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	cfg, err := decode(newViper())
	if err != nil {
		panic(fmt.Sprintf("default config does not decode: %v", err))
	}
	return cfg
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads configuration from path (YAML, JSON or TOML by extension) and the
// environment. With an empty path it looks for ats.{yaml,json} in the working
// directory and carries on with defaults when there is none.
func Load(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("ats")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)))
	if err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Validate checks value ranges and cross-field constraints.
func (c *Config) Validate() error {
	if c.Engine.RequestTimeout <= 0 {
		return fmt.Errorf("config error: 'engine.request_timeout' must be positive")
	}
	if c.Engine.PDFTimeout <= 0 {
		return fmt.Errorf("config error: 'engine.pdf_timeout' must be positive")
	}
	if c.Engine.LeadLines < 1 {
		return fmt.Errorf("config error: 'engine.lead_lines' must be at least 1")
	}
	if c.Engine.MaxExpectedCultureKeywords < 1 {
		return fmt.Errorf("config error: 'engine.max_expected_culture_keywords' must be at least 1")
	}

	if _, err := scoring.NewAggregator(c.Scoring.LayerWeights(), c.Scoring.GateThreshold); err != nil {
		return fmt.Errorf("config error: scoring: %w", err)
	}
	penalties := map[string]int{
		"shadow_penalty":           c.Scoring.ShadowPenalty,
		"unstated_shadow_penalty":  c.Scoring.UnstatedShadowPenalty,
		"location_penalty":         c.Scoring.LocationPenalty,
		"malformed_field_penalty":  c.Scoring.MalformedFieldPenalty,
		"nonstandard_date_penalty": c.Scoring.NonstandardDatePenalty,
	}
	for name, p := range penalties {
		if p < 0 || p > 100 {
			return fmt.Errorf("config error: 'scoring.%s' must be in [0,100], got %d", name, p)
		}
	}
	if t := c.Scoring.SubstantialUpdateThreshold; t <= 0 || t > 1 {
		return fmt.Errorf("config error: 'scoring.substantial_update_threshold' must be in (0,1], got %v", t)
	}

	switch c.PDF.Extractor {
	case ExtractorPoppler:
	case ExtractorService:
		if c.PDF.ServiceURL == "" {
			return fmt.Errorf("config error: 'pdf.service_url' is required for the service extractor")
		}
	default:
		return fmt.Errorf("config error: unknown pdf extractor %q", c.PDF.Extractor)
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config error: 'server.port' out of range: %d", c.Server.Port)
	}
	if c.Server.CacheTTL < 0 {
		return fmt.Errorf("config error: 'server.cache_ttl' must be non-negative")
	}
	if rl := c.Server.RateLimit; rl.Enabled && (rl.SimulationsPerMin < 1 || rl.DefaultPerMin < 1) {
		return fmt.Errorf("config error: 'server.rate_limit' limits must be at least 1 per minute")
	}

	if c.LLM.Timeout < 0 {
		return fmt.Errorf("config error: 'llm.timeout' must be non-negative")
	}
	if c.LLM.ExpandShortPostings && c.LLM.Model == "" {
		return fmt.Errorf("config error: 'llm.model' is required when expansion is enabled")
	}

	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("config error: unknown log format %q", c.Log.Format)
	}
	return nil
}

// LayerWeights returns the configured weights keyed by layer.
func (s ScoringConfig) LayerWeights() map[types.LayerID]float64 {
	weights := make(map[types.LayerID]float64, len(s.Weights))
	for id, w := range s.Weights {
		weights[types.LayerID(strings.ToLower(id))] = w
	}
	return weights
}

// Settings returns the evaluator settings.
func (c *Config) Settings() scoring.Settings {
	return scoring.Settings{
		ShadowPenalty:              c.Scoring.ShadowPenalty,
		UnstatedShadowPenalty:      c.Scoring.UnstatedShadowPenalty,
		LocationPenalty:            c.Scoring.LocationPenalty,
		SubstantialUpdateThreshold: c.Scoring.SubstantialUpdateThreshold,
		LeadLines:                  c.Engine.LeadLines,
		MaxExpectedCultureKeywords: c.Engine.MaxExpectedCultureKeywords,
		MalformedFieldPenalty:      c.Scoring.MalformedFieldPenalty,
		NonstandardDatePenalty:     c.Scoring.NonstandardDatePenalty,
	}
}
