// Package config loads ServerConfig and ClientConfig from file, environment,
// and defaults, following the same file -> env -> defaults layering used
// throughout this project's configuration surface.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ardalan-oss/godfs/internal/bytesize"
)

// envPrefix is the prefix for all environment variable overrides, e.g.
// DFS_MOUNT_PATH.
const envPrefix = "DFS"

// LoggingConfig controls logger output, mirroring internal/logger.Config.
type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// MetricsConfig configures the Prometheus metrics HTTP endpoint.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	Port    int  `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`
}

// ServerConfig is the dfsserver daemon's configuration.
type ServerConfig struct {
	// ListenAddr is the address the gRPC server binds, e.g. ":9090".
	ListenAddr string `mapstructure:"listen_addr" validate:"required" yaml:"listen_addr"`

	// MountPath is the directory the server treats as its authoritative store.
	MountPath string `mapstructure:"mount_path" validate:"required" yaml:"mount_path"`

	// ChunkSize bounds each Store/Fetch chunk payload.
	ChunkSize bytesize.ByteSize `mapstructure:"chunk_size" validate:"required,gt=0" yaml:"chunk_size"`

	// NumAsyncThreads sizes the CallbackList worker pool.
	NumAsyncThreads int `mapstructure:"num_async_threads" validate:"required,gt=0" yaml:"num_async_threads"`

	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// ClientConfig is the dfsclient mount's configuration.
type ClientConfig struct {
	// ServerAddr is the dfsserver's gRPC address to dial.
	ServerAddr string `mapstructure:"server_addr" validate:"required" yaml:"server_addr"`

	// MountPath is the local directory kept in sync with the server.
	MountPath string `mapstructure:"mount_path" validate:"required" yaml:"mount_path"`

	// ClientID identifies this mount to the server's lock manager. Defaulted
	// to a generated UUID when unset.
	ClientID string `mapstructure:"client_id" yaml:"client_id"`

	// ChunkSize bounds each Store/Fetch chunk payload.
	ChunkSize bytesize.ByteSize `mapstructure:"chunk_size" validate:"required,gt=0" yaml:"chunk_size"`

	// DeadlineTimeout bounds unary and streaming RPC calls.
	DeadlineTimeout time.Duration `mapstructure:"deadline_timeout_ms" validate:"required,gt=0" yaml:"deadline_timeout_ms"`

	// ResetTimeout is the backoff applied after a failed CallbackList before
	// re-arming the long poll.
	ResetTimeout time.Duration `mapstructure:"reset_timeout_ms" validate:"required,gt=0" yaml:"reset_timeout_ms"`

	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// DefaultServerConfig returns the baseline ServerConfig applied when no
// config file is found.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		ListenAddr:      ":9090",
		MountPath:       "/var/lib/godfs/server",
		ChunkSize:       4 * bytesize.KiB,
		NumAsyncThreads: 4,
		Logging:         LoggingConfig{Level: "INFO", Format: "text", Output: "stdout"},
		Metrics:         MetricsConfig{Enabled: true, Port: 9100},
	}
}

// DefaultClientConfig returns the baseline ClientConfig applied when no
// config file is found. ClientID is left empty; LoadClientConfig fills it
// with a generated UUID.
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		ServerAddr:      "localhost:9090",
		MountPath:       "/var/lib/godfs/client",
		ChunkSize:       4 * bytesize.KiB,
		DeadlineTimeout: 10 * time.Second,
		ResetTimeout:    5 * time.Second,
		Logging:         LoggingConfig{Level: "INFO", Format: "text", Output: "stdout"},
		Metrics:         MetricsConfig{Enabled: true, Port: 9101},
	}
}

// LoadServerConfig loads a ServerConfig from configPath (or the default
// search path if empty), applying env overrides and validation.
func LoadServerConfig(configPath string) (*ServerConfig, error) {
	cfg := DefaultServerConfig()
	found, err := loadInto(configPath, "server", cfg)
	if err != nil {
		return nil, err
	}
	if !found {
		return cfg, nil
	}
	if err := validateStruct(cfg); err != nil {
		return nil, fmt.Errorf("server configuration validation failed: %w", err)
	}
	return cfg, nil
}

// LoadClientConfig loads a ClientConfig from configPath (or the default
// search path if empty), applying env overrides, validation, and a
// generated ClientID when one isn't configured.
func LoadClientConfig(configPath string) (*ClientConfig, error) {
	cfg := DefaultClientConfig()
	found, err := loadInto(configPath, "client", cfg)
	if err != nil {
		return nil, err
	}
	if cfg.ClientID == "" {
		cfg.ClientID = uuid.NewString()
	}
	if !found {
		return cfg, nil
	}
	if err := validateStruct(cfg); err != nil {
		return nil, fmt.Errorf("client configuration validation failed: %w", err)
	}
	return cfg, nil
}

// loadInto reads configPath (or searches the default location tagged by
// role, e.g. "server" or "client") into cfg. When no file is found cfg is
// left at its defaults and the environment is not consulted; when a file
// is read, DFS_-prefixed environment variables override only the keys the
// file contains. Returns whether a file was read.
func loadInto(configPath, role string, cfg any) (bool, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(configDir())
		v.SetConfigName(role)
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := v.Unmarshal(cfg, viper.DecodeHook(decodeHooks())); err != nil {
		return false, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return true, nil
}

// SaveConfig writes cfg as YAML to path, creating parent directories as
// needed.
func SaveConfig(cfg any, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func validateStruct(cfg any) error {
	return validator.New().Struct(cfg)
}

func decodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		byteSizeDecodeHook(),
		durationDecodeHook(),
	)
}

func byteSizeDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(bytesize.ByteSize(0)) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return bytesize.ParseByteSize(v)
		case int:
			return bytesize.ByteSize(v), nil
		case int64:
			return bytesize.ByteSize(v), nil
		case uint64:
			return bytesize.ByteSize(v), nil
		case float64:
			return bytesize.ByteSize(v), nil
		default:
			return data, nil
		}
	}
}

func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v) * time.Millisecond, nil
		case int64:
			return time.Duration(v) * time.Millisecond, nil
		case float64:
			return time.Duration(v) * time.Millisecond, nil
		default:
			return data, nil
		}
	}
}

// GetDefaultConfigPath returns the default location searched for role's
// config file ("server" or "client"), e.g. $XDG_CONFIG_HOME/godfs/server.yaml.
func GetDefaultConfigPath(role string) string {
	return filepath.Join(configDir(), role+".yaml")
}

// configDir returns $XDG_CONFIG_HOME/godfs, falling back to ~/.config/godfs
// and finally to the current directory.
func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "godfs")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "godfs")
}
