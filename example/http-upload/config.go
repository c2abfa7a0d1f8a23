package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/mazrean/partstream"
)

type Config struct {
	Addr      string `yaml:"addr"`
	UploadDir string `yaml:"upload_dir"`
	LogLevel  string `yaml:"log_level"`
	Limits    Limits `yaml:"limits"`
}

// Limits left at zero keep the parser defaults.
type Limits struct {
	MaxParts              uint  `yaml:"max_parts"`
	MaxFields             uint  `yaml:"max_fields"`
	MaxFileSize           int64 `yaml:"max_file_size"`
	MaxFieldSize          int64 `yaml:"max_field_size"`
	MaxConcurrentHandlers int   `yaml:"max_concurrent_handlers"`
	LimitAsError          bool  `yaml:"limit_as_error"`
}

func defaultConfig() *Config {
	return &Config{
		Addr:      ":8080",
		UploadDir: "icons",
		LogLevel:  "info",
	}
}

// loadConfig reads the YAML file at path over the defaults.
// An empty path returns the defaults.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %q: %w", path, err)
	}

	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
	}

	if cfg.UploadDir == "" {
		return nil, fmt.Errorf("upload_dir must not be empty")
	}

	return cfg, nil
}

func (c *Config) parserOptions() []partstream.ParserOption {
	var options []partstream.ParserOption
	if c.Limits.MaxParts > 0 {
		options = append(options, partstream.WithMaxParts(c.Limits.MaxParts))
	}
	if c.Limits.MaxFields > 0 {
		options = append(options, partstream.WithMaxFields(c.Limits.MaxFields))
	}
	if c.Limits.MaxFileSize > 0 {
		options = append(options, partstream.WithMaxFileSize(partstream.DataSize(c.Limits.MaxFileSize)))
	}
	if c.Limits.MaxFieldSize > 0 {
		options = append(options, partstream.WithMaxFieldSize(partstream.DataSize(c.Limits.MaxFieldSize)))
	}
	if c.Limits.MaxConcurrentHandlers != 0 {
		options = append(options, partstream.WithMaxConcurrentHandlers(c.Limits.MaxConcurrentHandlers))
	}
	if c.Limits.LimitAsError {
		options = append(options, partstream.WithLimitAsError())
	}

	return options
}

func (c *Config) logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	zapConfig := zap.NewProductionConfig()
	zapConfig.Level = zap.NewAtomicLevelAt(level)

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return logger, nil
}
