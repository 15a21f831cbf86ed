// Package config loads server settings from YAML or TOML files with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/kroksys/jrpc/v2/codec"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

const (
	EnvAddress        = "JRPC_ADDRESS"
	EnvLogLevel       = "JRPC_LOG_LEVEL"
	EnvCodec          = "JRPC_CODEC"
	EnvMaxConcurrency = "JRPC_MAX_CONCURRENCY"
)

var ErrUnsupportedFormat = errors.New("unsupported config format")

type Config struct {
	Server Server `yaml:"server" toml:"server"`
	Log    Log    `yaml:"log" toml:"log"`
}

type Server struct {
	Address string `yaml:"address" toml:"address"`
	// HTTP POST endpoint.
	Path          string `yaml:"path" toml:"path"`
	WebsocketPath string `yaml:"websocket_path" toml:"websocket_path"`
	// Batch members dispatched at the same time, 0 is unlimited.
	MaxConcurrency int    `yaml:"max_concurrency" toml:"max_concurrency"`
	Codec          string `yaml:"codec" toml:"codec"`
}

type Log struct {
	Level string `yaml:"level" toml:"level"`
}

func Default() *Config {
	return &Config{
		Server: Server{
			Address:       "localhost:3333",
			Path:          "/rpc",
			WebsocketPath: "/ws",
			Codec:         "json",
		},
		Log: Log{Level: "info"},
	}
}

// Load reads path (.yaml, .yml or .toml) over the defaults. An empty path
// uses defaults only. Variables from a .env file in the working directory
// and the process environment override file values.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := unmarshal(path, data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func unmarshal(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	case ".toml":
		return toml.Unmarshal(data, cfg)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv(EnvAddress); ok {
		c.Server.Address = v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		c.Log.Level = v
	}
	if v, ok := os.LookupEnv(EnvCodec); ok {
		c.Server.Codec = v
	}
	if v, ok := os.LookupEnv(EnvMaxConcurrency); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMaxConcurrency, err)
		}
		c.Server.MaxConcurrency = n
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Server.Address == "" {
		return fmt.Errorf("server.address required")
	}
	if !strings.HasPrefix(c.Server.Path, "/") {
		return fmt.Errorf("server.path must start with /")
	}
	if c.Server.WebsocketPath != "" {
		if !strings.HasPrefix(c.Server.WebsocketPath, "/") {
			return fmt.Errorf("server.websocket_path must start with /")
		}
		if c.Server.WebsocketPath == c.Server.Path {
			return fmt.Errorf("server.websocket_path and server.path must differ")
		}
	}
	if c.Server.MaxConcurrency < 0 {
		return fmt.Errorf("server.max_concurrency must not be negative")
	}
	if _, err := codec.ByName(c.Server.Codec); err != nil {
		return fmt.Errorf("server.codec: %w", err)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}
