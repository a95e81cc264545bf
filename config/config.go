package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Strategy selects how the block persists state back into the host
// application after a successful load.
type Strategy string

const (
	// StrategyWriteThrough declares a LatestUpdate entity type on first use,
	// stores every fetched update as a new host entity, and writes the raw
	// channel identifier onto the block's backing entity.
	StrategyWriteThrough Strategy = "write_through"

	// StrategyNameEcho writes a derived "Latest Channel <id>" label onto the
	// block's backing entity. No entity type is ever declared.
	StrategyNameEcho Strategy = "name_echo"
)

// Config holds the complete application configuration
type Config struct {
	// HTTP server settings
	HTTP struct {
		Address string `yaml:"address"`
		Port    string `yaml:"port"`
	} `yaml:"http"`

	// Latest update API settings
	Latest struct {
		BaseURL string        `yaml:"base_url"`
		APIKey  string        `yaml:"api_key"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"latest"`

	// Entity store settings
	Store struct {
		Path string `yaml:"path"`
	} `yaml:"store"`

	// Block settings
	Block struct {
		EntityID  string   `yaml:"entity_id"`
		ChannelID string   `yaml:"channel_id"`
		Strategy  Strategy `yaml:"strategy"`
	} `yaml:"block"`

	// Logging settings
	LogLevel string `yaml:"log_level"`
}

// Validate performs validation on the configuration
func (c *Config) Validate() error {
	var errors []string

	if c.HTTP.Address == "" {
		errors = append(errors, "HTTP address is required")
	}
	if c.HTTP.Port == "" {
		errors = append(errors, "HTTP port is required")
	}

	if c.Latest.BaseURL == "" {
		errors = append(errors, "Latest base URL is required")
	}
	if c.Latest.APIKey == "" {
		errors = append(errors, "Latest API key is required")
	}
	if c.Latest.Timeout <= 0 {
		errors = append(errors, "Latest timeout must be positive")
	}

	if c.Store.Path == "" {
		errors = append(errors, "Store path is required")
	}

	if c.Block.EntityID == "" {
		errors = append(errors, "Block entity ID is required")
	}
	switch c.Block.Strategy {
	case StrategyWriteThrough, StrategyNameEcho:
	default:
		errors = append(errors, fmt.Sprintf("Block strategy must be %q or %q, got %q",
			StrategyWriteThrough, StrategyNameEcho, c.Block.Strategy))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// Default returns a Config with sensible default values
func Default() *Config {
	cfg := &Config{}

	// HTTP defaults
	cfg.HTTP.Address = "127.0.0.1"
	cfg.HTTP.Port = "8080"

	// Latest API defaults
	cfg.Latest.BaseURL = "https://ltst.xyz"
	cfg.Latest.APIKey = "" // Required, no default
	cfg.Latest.Timeout = 10 * time.Second

	// Store defaults
	cfg.Store.Path = "" // Required, no default

	// Block defaults
	cfg.Block.EntityID = ""
	cfg.Block.ChannelID = ""
	cfg.Block.Strategy = StrategyWriteThrough

	// Logging defaults
	cfg.LogLevel = "INFO"

	return cfg
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Load loads configuration from a file (if provided) and applies environment variable overrides
func Load() (*Config, error) {
	configPath := os.Getenv("CONFIG_FILE")
	if configPath == "" {
		configPath = "config.yaml"
	}

	var cfg *Config

	// Try to load from file if it exists
	if _, err := os.Stat(configPath); err == nil {
		cfg, err = LoadFromFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", configPath, err)
		}
	} else {
		// File doesn't exist, use defaults
		cfg = Default()
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration
func applyEnvOverrides(cfg *Config) error {
	// HTTP settings
	if val := os.Getenv("HTTP_ADDRESS"); val != "" {
		cfg.HTTP.Address = val
	}
	if val := os.Getenv("HTTP_PORT"); val != "" {
		cfg.HTTP.Port = val
	}

	// Latest API settings
	if val := os.Getenv("LATEST_BASE_URL"); val != "" {
		cfg.Latest.BaseURL = val
	}
	if val := os.Getenv("LATEST_API_KEY"); val != "" {
		cfg.Latest.APIKey = val
	}
	if val := os.Getenv("LATEST_TIMEOUT"); val != "" {
		duration, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("invalid LATEST_TIMEOUT format (expected duration like '10s', '1m'): %w", err)
		}
		if duration <= 0 {
			return fmt.Errorf("LATEST_TIMEOUT must be positive, got: %s", val)
		}
		cfg.Latest.Timeout = duration
	}

	// Store settings
	if val := os.Getenv("STORE_PATH"); val != "" {
		absPath, err := validateStorePath(val)
		if err != nil {
			return err
		}
		cfg.Store.Path = absPath
	}

	// Block settings
	if val := os.Getenv("BLOCK_ENTITY_ID"); val != "" {
		cfg.Block.EntityID = val
	}
	if val := os.Getenv("BLOCK_CHANNEL_ID"); val != "" {
		cfg.Block.ChannelID = val
	}
	if val := os.Getenv("BLOCK_STRATEGY"); val != "" {
		cfg.Block.Strategy = Strategy(val)
	}

	// Logging settings
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		cfg.LogLevel = val
	}

	return nil
}

// validateStorePath validates and normalizes the entity store path
func validateStorePath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("store path cannot be empty")
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to resolve absolute path for store path: %w", err)
		}
		return absPath, nil
	}

	return path, nil
}

// Print outputs the configuration to stdout
func (c *Config) Print() {
	fmt.Printf("httpAddress: %v\n", c.HTTP.Address)
	fmt.Printf("httpPort: %v\n", c.HTTP.Port)
	fmt.Printf("latestBaseUrl: %v\n", c.Latest.BaseURL)
	fmt.Printf("latestApiKey: %s\n", redactKey(c.Latest.APIKey))
	fmt.Printf("latestTimeout: %v\n", c.Latest.Timeout)
	fmt.Printf("storePath: %v\n", c.Store.Path)
	fmt.Printf("blockEntityId: %v\n", c.Block.EntityID)
	fmt.Printf("blockChannelId: %v\n", c.Block.ChannelID)
	fmt.Printf("blockStrategy: %v\n", c.Block.Strategy)
	fmt.Printf("logLevel: %v\n", c.LogLevel)
}

// redactKey hides all but the last four characters of an API key
func redactKey(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}
