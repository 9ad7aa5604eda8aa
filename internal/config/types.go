package config

import (
	"time"

	"github.com/egressguard/egressguard/internal/detect"
)

// Config represents the main configuration structure
type Config struct {
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Detection DetectionConfig `yaml:"detection" mapstructure:"detection"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
	RateLimit RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`
	Logging   LoggingConfig   `yaml:"logging" mapstructure:"logging"`
	WebSocket WebSocketConfig `yaml:"websocket" mapstructure:"websocket"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port         int           `yaml:"port" mapstructure:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
}

// DetectionConfig contains scan defaults applied to every request that
// does not override them.
type DetectionConfig struct {
	// Detectors lists enabled detector type names; the single entry "all"
	// enables everything.
	Detectors      []string `yaml:"detectors" mapstructure:"detectors"`
	Sensitivity    string   `yaml:"sensitivity" mapstructure:"sensitivity"`
	MaxResults     int      `yaml:"max_results" mapstructure:"max_results"`
	IncludeContext bool     `yaml:"include_context" mapstructure:"include_context"`
	ContextSize    int      `yaml:"context_size" mapstructure:"context_size"`
	MinConfidence  float64  `yaml:"min_confidence" mapstructure:"min_confidence"`
	FilterDomains  []string `yaml:"filter_domains" mapstructure:"filter_domains"`
	Allowlist      []string `yaml:"allowlist" mapstructure:"allowlist"`
	RedactionStyle string   `yaml:"redaction_style" mapstructure:"redaction_style"` // partial or labeled
}

// CacheConfig contains Redis result cache configuration
type CacheConfig struct {
	Enabled        bool          `yaml:"enabled" mapstructure:"enabled"`
	RedisURL       string        `yaml:"redis_url" mapstructure:"redis_url"`
	DefaultTTL     time.Duration `yaml:"default_ttl" mapstructure:"default_ttl"`
	MaxConnections int           `yaml:"max_connections" mapstructure:"max_connections"`
	MinIdleConns   int           `yaml:"min_idle_conns" mapstructure:"min_idle_conns"`
}

// RateLimitConfig contains per-client rate limiting configuration
type RateLimitConfig struct {
	Enabled        bool    `yaml:"enabled" mapstructure:"enabled"`
	RequestsPerSec float64 `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
	Burst          int     `yaml:"burst" mapstructure:"burst"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // json or console
	File   struct {
		Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
		Path    string `yaml:"path" mapstructure:"path"`
	} `yaml:"file" mapstructure:"file"`
}

// WebSocketConfig contains monitoring event stream configuration
type WebSocketConfig struct {
	Enabled             bool     `yaml:"enabled" mapstructure:"enabled"`
	Path                string   `yaml:"path" mapstructure:"path"`
	AllowedOrigins      []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	BroadcastDetections bool     `yaml:"broadcast_detections" mapstructure:"broadcast_detections"`
	BroadcastSystem     bool     `yaml:"broadcast_system" mapstructure:"broadcast_system"`
	BroadcastConnects   bool     `yaml:"broadcast_connections" mapstructure:"broadcast_connections"`
}

// GetDefaults returns a configuration with sensible defaults
func GetDefaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
			MaxBodyBytes: 1 << 20, // 1 MiB of text per scan request
		},
		Detection: DetectionConfig{
			Detectors:      []string{"all"},
			Sensitivity:    "medium",
			MaxResults:     50,
			IncludeContext: true,
			ContextSize:    50,
			FilterDomains:  []string{"example.com", "example.org", "test.com"},
			RedactionStyle: "partial",
		},
		Cache: CacheConfig{
			Enabled:        false,
			RedisURL:       "redis://localhost:6379/0",
			DefaultTTL:     5 * time.Minute,
			MaxConnections: 10,
			MinIdleConns:   2,
		},
		RateLimit: RateLimitConfig{
			Enabled:        true,
			RequestsPerSec: 50,
			Burst:          100,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		WebSocket: WebSocketConfig{
			Enabled:             true,
			Path:                "/ws",
			AllowedOrigins:      []string{"*"},
			BroadcastDetections: true,
			BroadcastSystem:     true,
			BroadcastConnects:   true,
		},
	}
}

// ScanOptions converts the detection section into engine options. The
// "all" sentinel (or an empty list) collapses to the engine default of
// every detector enabled.
func (d DetectionConfig) ScanOptions() *detect.ScanOptions {
	opts := &detect.ScanOptions{
		SensitivityLevel: detect.Sensitivity(d.Sensitivity),
		MaxResults:       d.MaxResults,
		ContextSize:      d.ContextSize,
		MinConfidence:    d.MinConfidence,
		FilterDomains:    d.FilterDomains,
		Allowlist:        d.Allowlist,
	}

	include := d.IncludeContext
	opts.IncludeContext = &include

	all := len(d.Detectors) == 0
	for _, name := range d.Detectors {
		if name == "all" {
			all = true
			break
		}
	}
	if !all {
		for _, name := range d.Detectors {
			opts.EnabledDetectors = append(opts.EnabledDetectors, detect.DetectorType(name))
		}
	}

	return opts
}

// Style returns the configured redaction style as an engine value.
func (d DetectionConfig) Style() detect.RedactionStyle {
	if d.RedactionStyle == "labeled" {
		return detect.RedactionLabeled
	}
	return detect.RedactionPartial
}
