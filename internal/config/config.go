package config

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/yousuf/mapindex/internal/sourcemap"
)

// EnvPrefix prefixes the environment variables that override the file,
// e.g. MAPINDEX_DECODER_STRICT or MAPINDEX_SERVER_ADDR.
const EnvPrefix = "mapindex"

// Config represents the main configuration structure
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Decoder DecoderConfig `yaml:"decoder"`
	Cache   CacheConfig   `yaml:"cache"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig configures the MCP server.
type ServerConfig struct {
	Transport       string        `yaml:"transport"` // "stdio" or "http"
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"readTimeout" split_words:"true"`
	WriteTimeout    time.Duration `yaml:"writeTimeout" split_words:"true"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" split_words:"true"`
}

// DecoderConfig mirrors sourcemap.Options.
type DecoderConfig struct {
	Strict           bool `yaml:"strict"`
	MaxSections      int  `yaml:"maxSections" split_words:"true"`
	MaxDocumentBytes int  `yaml:"maxDocumentBytes" split_words:"true"`
}

// CacheConfig bounds the decoded map cache. Zero means unbounded.
type CacheConfig struct {
	MaxEntries int `yaml:"maxEntries" split_words:"true"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Transport:       "stdio",
			Addr:            ":3000",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Decoder: DecoderConfig{
			MaxSections:      10000,
			MaxDocumentBytes: 256 << 20,
		},
		Cache: CacheConfig{MaxEntries: 64},
		Log:   LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads the configuration file at configPath over the defaults, applies
// environment overrides and validates the result. An empty configPath skips
// the file.
func Load(fs afero.Fs, configPath string) (*Config, error) {
	config := Default()

	if configPath != "" {
		data, err := afero.ReadFile(fs, configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, config); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := validate(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}

// validate checks if the configuration is valid
func validate(config *Config) error {
	switch config.Server.Transport {
	case "stdio":
	case "http":
		if config.Server.Addr == "" {
			return errors.New("server: addr is required for http transport")
		}
	default:
		return fmt.Errorf("server: invalid transport %q (must be stdio or http)", config.Server.Transport)
	}

	if config.Decoder.MaxSections < 0 {
		return fmt.Errorf("decoder: maxSections must not be negative, got %d", config.Decoder.MaxSections)
	}
	if config.Decoder.MaxDocumentBytes < 0 {
		return fmt.Errorf("decoder: maxDocumentBytes must not be negative, got %d", config.Decoder.MaxDocumentBytes)
	}
	if config.Cache.MaxEntries < 0 {
		return fmt.Errorf("cache: maxEntries must not be negative, got %d", config.Cache.MaxEntries)
	}

	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	switch config.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log: invalid format %q (must be text or json)", config.Log.Format)
	}

	return nil
}

// Options returns the decoder options the configuration describes.
func (c DecoderConfig) Options() sourcemap.Options {
	return sourcemap.Options{
		Strict:           c.Strict,
		MaxSections:      c.MaxSections,
		MaxDocumentBytes: c.MaxDocumentBytes,
	}
}

// NewLogger builds the process logger. Logs go to out, which is stderr for
// the stdio transport since stdout carries the protocol.
func (c LogConfig) NewLogger(out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	if level, err := logrus.ParseLevel(c.Level); err == nil {
		logger.SetLevel(level)
	}
	if c.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger
}
