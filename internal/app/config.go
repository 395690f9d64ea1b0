package app

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	ServerURL      string `yaml:"server_url"`
	RequestTimeout int    `yaml:"request_timeout_seconds"`
	DocumentType   string `yaml:"document_type"`
	Theme          string `yaml:"theme"`
}

func DefaultConfig() Config {
	return Config{
		ServerURL:      "http://localhost:8000",
		RequestTimeout: 120,
		DocumentType:   "general",
		Theme:          "porcelain",
	}
}

func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.ServerURL == "" {
		cfg.ServerURL = "http://localhost:8000"
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 120
	}
	if cfg.RequestTimeout > 600 {
		cfg.RequestTimeout = 600
	}
	if cfg.DocumentType == "" {
		cfg.DocumentType = "general"
	}
	return cfg, nil
}

func SaveConfig(cfg Config, path string) error {
	if path == "" {
		return errors.New("no path provided for config")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func DefaultConfigPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "docchat", "config.yml")
}

// Timeout returns the configured request timeout as a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}
