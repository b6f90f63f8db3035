package config

import (
	"errors"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"waystation/internal/apiclient"
	"waystation/internal/logger"
)

type Config struct {
	Client ClientConfig  `yaml:"client"`
	Log    logger.Config `yaml:"log"`
	Server ServerConfig  `yaml:"server"`
}

type ClientConfig struct {
	BaseURL        string            `yaml:"base_url"`
	DefaultHeaders map[string]string `yaml:"default_headers"`
	RateLimit      float64           `yaml:"rate_limit"`
	Burst          int               `yaml:"burst"`
}

type ServerConfig struct {
	Port   int    `yaml:"port"`
	DBPath string `yaml:"db_path"`
	Seed   bool   `yaml:"seed"`
	// RateLimit caps /api/ requests per minute per client; zero disables it.
	RateLimit int `yaml:"rate_limit"`
}

// APIConfig converts the client section into transport configuration.
func (c ClientConfig) APIConfig() apiclient.Config {
	return apiclient.Config{
		BaseURL:        c.BaseURL,
		DefaultHeaders: c.DefaultHeaders,
		RateLimit:      c.RateLimit,
		Burst:          c.Burst,
	}
}

// Load reads a YAML config file. A missing file is not an error: defaults and
// environment overrides still apply. An empty path skips the file.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, err
			}
		}
	}

	cfg.Client.BaseURL = getEnv("WAYSTATION_BASE_URL", cfg.Client.BaseURL)
	cfg.Log.Level = getEnv("WAYSTATION_LOG_LEVEL", cfg.Log.Level)
	cfg.Server.DBPath = getEnv("WAYSTATION_DB", cfg.Server.DBPath)

	// Set defaults
	if cfg.Client.BaseURL == "" {
		cfg.Client.BaseURL = "http://localhost:8000"
	}
	if cfg.Client.RateLimit > 0 && cfg.Client.Burst == 0 {
		cfg.Client.Burst = 1
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Server.DBPath == "" {
		cfg.Server.DBPath = ":memory:"
	}

	return &cfg, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
