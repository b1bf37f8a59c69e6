package docxgen

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Config contains all configuration options for document generation
type Config struct {
	// LogLevel controls the verbosity of logging (debug, info, warn, error, off)
	LogLevel string `yaml:"log_level"`
	// Creator is written to docProps/core.xml as dc:creator
	Creator string `yaml:"creator"`
	// Compress stores package parts deflated; false stores them uncompressed
	Compress bool `yaml:"compress"`
	// DBPath is the SQLite file used by the draft store
	DBPath string `yaml:"db_path"`
	// ListenAddr is the address the HTTP server binds to
	ListenAddr string `yaml:"listen_addr"`
	// MaxRequestBytes caps HTTP request bodies
	MaxRequestBytes int64 `yaml:"max_request_bytes"`
}

var (
	globalConfig      *Config
	globalConfigMutex sync.RWMutex
	configOnce        sync.Once
)

func init() {
	// Initialize global config from environment on first use
	configOnce.Do(func() {
		globalConfig = ConfigFromEnvironment()
	})
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		LogLevel:        "info",
		Creator:         "go-docxgen",
		Compress:        true,
		DBPath:          "docxgen.db",
		ListenAddr:      ":8080",
		MaxRequestBytes: 32 << 20,
	}
}

// ConfigFromEnvironment creates a configuration from environment variables
func ConfigFromEnvironment() *Config {
	config := DefaultConfig()
	applyEnvironment(config)
	return config
}

func applyEnvironment(config *Config) {
	// DOCXGEN_LOG_LEVEL
	if val := os.Getenv("DOCXGEN_LOG_LEVEL"); val != "" {
		config.LogLevel = val
	}

	// DOCXGEN_CREATOR
	if val := os.Getenv("DOCXGEN_CREATOR"); val != "" {
		config.Creator = val
	}

	// DOCXGEN_COMPRESS
	if val := os.Getenv("DOCXGEN_COMPRESS"); val != "" {
		config.Compress = parseBool(val)
	}

	// DOCXGEN_DB_PATH
	if val := os.Getenv("DOCXGEN_DB_PATH"); val != "" {
		config.DBPath = val
	}

	// DOCXGEN_ADDR
	if val := os.Getenv("DOCXGEN_ADDR"); val != "" {
		config.ListenAddr = val
	}

	// DOCXGEN_MAX_REQUEST_BYTES
	if val := os.Getenv("DOCXGEN_MAX_REQUEST_BYTES"); val != "" {
		if n, err := strconv.ParseInt(val, 10, 64); err == nil {
			config.MaxRequestBytes = n
		}
	}
}

// LoadConfigFile reads a YAML configuration file. Keys missing from the file
// keep their defaults and environment variables override the file.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewIOError("read config", path, err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	applyEnvironment(config)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"off":   true,
	}

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return errors.New("invalid log level: " + c.LogLevel)
	}

	if c.MaxRequestBytes <= 0 {
		return errors.New("max request bytes must be positive")
	}

	return nil
}

// GetGlobalConfig returns the global configuration
func GetGlobalConfig() *Config {
	globalConfigMutex.RLock()
	defer globalConfigMutex.RUnlock()

	if globalConfig == nil {
		return DefaultConfig()
	}

	// Return a copy to prevent modification
	configCopy := *globalConfig
	return &configCopy
}

// SetGlobalConfig sets the global configuration
func SetGlobalConfig(config *Config) {
	globalConfigMutex.Lock()
	globalConfig = config
	globalConfigMutex.Unlock()

	// Update logger based on new config (outside the lock to avoid deadlock)
	UpdateLoggerFromConfig()
}

// parseBool parses a boolean value from a string
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}
