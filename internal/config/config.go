// Package config loads promptkit settings from config.yaml, .env, and
// PROMPTKIT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/promptkit/internal/paths"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "PROMPTKIT"

// Config keys.
const (
	KeyDataDir         = "data_dir"
	KeyListenAddr      = "listen_addr"
	KeyCORSOrigins     = "cors_origins"
	KeyLogLevel        = "log_level"
	KeyLogFormat       = "log_format"
	KeyReadTimeout     = "read_timeout"
	KeyWriteTimeout    = "write_timeout"
	KeyShutdownTimeout = "shutdown_timeout"
)

// Defaults.
const (
	DefaultListenAddr      = ":3000"
	DefaultCORSOrigins     = "http://localhost:3000"
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
)

// Config is the resolved configuration.
type Config struct {
	// DataDir is the raw data_dir value; "" leaves the choice to
	// paths.ResolveDataDir.
	DataDir         string
	ListenAddr      string
	CORSOrigins     []string
	LogLevel        string
	LogFormat       string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Validate checks the listener address, log settings, and timeouts.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.ListenAddr, validation.Required, validation.By(hostPort)),
		validation.Field(&c.LogLevel, validation.Required, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.LogFormat, validation.Required, validation.In("text", "json")),
		validation.Field(&c.ReadTimeout, validation.Required),
		validation.Field(&c.WriteTimeout, validation.Required),
		validation.Field(&c.ShutdownTimeout, validation.Required),
	)
}

func hostPort(value interface{}) error {
	s, _ := value.(string)
	if _, _, err := net.SplitHostPort(s); err != nil {
		return errors.New("must be host:port")
	}
	return nil
}

// fileConfig is the shape of the default config.yaml.
type fileConfig struct {
	DataDir         string `yaml:"data_dir"`
	ListenAddr      string `yaml:"listen_addr"`
	CORSOrigins     string `yaml:"cors_origins"`
	LogLevel        string `yaml:"log_level"`
	LogFormat       string `yaml:"log_format"`
	ReadTimeout     string `yaml:"read_timeout"`
	WriteTimeout    string `yaml:"write_timeout"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

const configHeader = `# promptkit configuration
# Every key can be overridden with a PROMPTKIT_<KEY> environment variable.
# An empty data_dir uses the platform data directory.
`

// WriteDefault writes a default config.yaml into configDir unless one
// already exists. It reports whether a file was written.
func WriteDefault(configDir string) (bool, error) {
	path := paths.ConfigFile(configDir)

	_, err := os.Stat(path)
	if err == nil {
		return false, nil
	}
	if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return false, fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(fileConfig{
		ListenAddr:      DefaultListenAddr,
		CORSOrigins:     DefaultCORSOrigins,
		LogLevel:        DefaultLogLevel,
		LogFormat:       DefaultLogFormat,
		ReadTimeout:     DefaultReadTimeout.String(),
		WriteTimeout:    DefaultWriteTimeout.String(),
		ShutdownTimeout: DefaultShutdownTimeout.String(),
	})
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, append([]byte(configHeader), data...), 0o644); err != nil {
		return false, fmt.Errorf("write config: %w", err)
	}
	return true, nil
}

// Load reads .env from the working directory (if present), then
// config.yaml from configDir (if present), then PROMPTKIT_* variables.
// A missing file at either step is not an error.
func Load(configDir string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault(KeyDataDir, "")
	v.SetDefault(KeyListenAddr, DefaultListenAddr)
	v.SetDefault(KeyCORSOrigins, DefaultCORSOrigins)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeyLogFormat, DefaultLogFormat)
	v.SetDefault(KeyReadTimeout, DefaultReadTimeout)
	v.SetDefault(KeyWriteTimeout, DefaultWriteTimeout)
	v.SetDefault(KeyShutdownTimeout, DefaultShutdownTimeout)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		DataDir:         v.GetString(KeyDataDir),
		ListenAddr:      v.GetString(KeyListenAddr),
		CORSOrigins:     splitList(v.GetString(KeyCORSOrigins)),
		LogLevel:        strings.ToLower(v.GetString(KeyLogLevel)),
		LogFormat:       strings.ToLower(v.GetString(KeyLogFormat)),
		ReadTimeout:     v.GetDuration(KeyReadTimeout),
		WriteTimeout:    v.GetDuration(KeyWriteTimeout),
		ShutdownTimeout: v.GetDuration(KeyShutdownTimeout),
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// splitList splits a comma-separated value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
