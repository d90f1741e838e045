package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/sydlexius/zonecast/internal/audio"
	"github.com/sydlexius/zonecast/internal/provider"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
	Audio   AudioConfig   `yaml:"audio"`
	Players PlayersConfig `yaml:"players"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port     int    `yaml:"port"`
	BasePath string `yaml:"base_path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	FilePath string `yaml:"file_path"`
}

// AudioConfig holds the output device inventory.
type AudioConfig struct {
	Devices []audio.Device `yaml:"devices"`
}

// PlayersConfig holds player provider settings.
type PlayersConfig struct {
	DefaultProvider string   `yaml:"default_provider"`
	WebhookURLs     []string `yaml:"webhook_urls"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:     8977,
			BasePath: "",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Players: PlayersConfig{
			DefaultProvider: provider.DefaultProviderName,
		},
	}
}

// Load reads config from a YAML file (if it exists) and overrides with
// environment variables. Environment variables take precedence.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFromFile(path); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	cfg.loadFromEnv()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, c)
}

func (c *Config) loadFromEnv() {
	if v := os.Getenv("ZC_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("ZC_BASE_PATH"); v != "" {
		c.Server.BasePath = v
	}
	if v := os.Getenv("ZC_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("ZC_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("ZC_LOG_FILE"); v != "" {
		c.Logging.FilePath = v
	}
	if v := os.Getenv("ZC_DEFAULT_PROVIDER"); v != "" {
		c.Players.DefaultProvider = v
	}
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Players.DefaultProvider == "" {
		return fmt.Errorf("players.default_provider must not be empty")
	}
	seen := make(map[string]bool, len(c.Audio.Devices))
	for _, d := range c.Audio.Devices {
		if d.ID == "" {
			return fmt.Errorf("audio device %q has no id", d.Name)
		}
		if seen[d.ID] {
			return fmt.Errorf("duplicate audio device id: %s", d.ID)
		}
		seen[d.ID] = true
	}
	return nil
}
