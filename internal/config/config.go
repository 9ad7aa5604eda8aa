package config

import (
	"fmt"
	"strings"

	"github.com/egressguard/egressguard/internal/detect"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	config := GetDefaults()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("/etc/egressguard/")
	viper.AddConfigPath("$HOME/.egressguard/")

	viper.SetEnvPrefix("EGRESSGUARD")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if configPath != "" {
		viper.SetConfigFile(configPath)
	}

	if err := viper.ReadInConfig(); err != nil {
		// Config file not found is not an error - we'll use defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	normalizeConfig(config)

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// normalizeConfig repairs recoverable option mistakes in place. An
// unrecognized sensitivity degrades to medium rather than failing.
func normalizeConfig(config *Config) {
	switch config.Detection.Sensitivity {
	case "low", "medium", "high":
	default:
		config.Detection.Sensitivity = "medium"
	}

	switch config.Detection.RedactionStyle {
	case "partial", "labeled":
	default:
		config.Detection.RedactionStyle = "partial"
	}
}

// validateConfig validates the loaded configuration
func validateConfig(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Logging.Level != "debug" && config.Logging.Level != "info" && config.Logging.Level != "warn" && config.Logging.Level != "error" {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", config.Logging.Level)
	}

	if config.Logging.Format != "json" && config.Logging.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", config.Logging.Format)
	}

	known := make(map[string]bool)
	for _, t := range detect.AllDetectorTypes() {
		known[string(t)] = true
	}
	for _, name := range config.Detection.Detectors {
		if name != "all" && !known[name] {
			return fmt.Errorf("unknown detector: %s", name)
		}
	}

	if config.RateLimit.Enabled && config.RateLimit.RequestsPerSec <= 0 {
		return fmt.Errorf("invalid rate limit: %f requests/sec", config.RateLimit.RequestsPerSec)
	}

	return nil
}

// Watch starts watching the configuration file for changes
func Watch(callback func(*Config)) error {
	viper.WatchConfig()
	viper.OnConfigChange(func(e fsnotify.Event) {
		newConfig := GetDefaults()
		if err := viper.Unmarshal(newConfig); err != nil {
			// Keep serving the previous configuration
			return
		}

		normalizeConfig(newConfig)

		if err := validateConfig(newConfig); err != nil {
			return
		}

		callback(newConfig)
	})

	return nil
}
