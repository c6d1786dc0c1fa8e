package appender

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ConfigFromEnv reads Config from SENTRY_* environment variables.
// A .env file in the working directory is loaded first if present;
// variables already set in the environment take precedence.
// A .env file that exists but cannot be parsed is an error.
func ConfigFromEnv() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, errors.Join(ErrConfiguration, fmt.Errorf("load .env: %w", err))
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Join(ErrConfiguration, err)
	}
	return cfg, nil
}

// ParseConfig decodes a YAML document into Config.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Join(ErrConfiguration, err)
	}
	return cfg, nil
}

// LoadConfigFile reads and decodes a YAML configuration file.
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Join(ErrConfiguration, fmt.Errorf("read %s: %w", path, err))
	}
	return ParseConfig(data)
}
