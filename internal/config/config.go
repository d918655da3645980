// Package config provides application configuration with multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (SHKVM_API_HOST, SHKVM_API_PORT,
//     MCP_TESSERACT_LANG, MCP_CAPTURE_LOG_DIR, MCP_LOG_LEVEL)
//  2. Config file (~/.mcp-serial-hid-kvm/config.yaml)
//  3. Default values
//
// The server is a thin client: all hardware access happens on the KVM
// server reached via TCP, so the only settings here are the KVM endpoint,
// per-call timeouts, the OCR language, and the capture-log directory.
//
// Error handling uses sentinel errors checked with errors.Is().
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrInvalidKVMHost indicates the KVM server host is empty.
	ErrInvalidKVMHost = errors.New("invalid KVM host")

	// ErrInvalidKVMPort indicates the KVM server port is out of range.
	ErrInvalidKVMPort = errors.New("invalid KVM port")

	// ErrInvalidTimeout indicates a timeout value is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout")

	// ErrInvalidOCRLanguage indicates the OCR language is empty.
	ErrInvalidOCRLanguage = errors.New("invalid OCR language")
)

// Config stores application configuration.
type Config struct {
	// KVM server connection
	KVMHost string `mapstructure:"kvm_host"`
	KVMPort int    `mapstructure:"kvm_port"`

	// Per-call behavior for the KVM connection. Calls fail fast: no
	// retries, one redial attempt on the next call after a transport
	// error.
	DialTimeoutSeconds int `mapstructure:"dial_timeout_seconds"`
	CallTimeoutSeconds int `mapstructure:"call_timeout_seconds"`

	// Local OCR
	OCRLanguage string `mapstructure:"ocr_language"`

	// Capture log directory. Empty string disables capture logging.
	CaptureLogDir string `mapstructure:"capture_log_dir"`

	// Logging
	LogLevel string `mapstructure:"log_level"`
}

// DialTimeout returns the KVM dial timeout as a duration.
func (c *Config) DialTimeout() time.Duration {
	return time.Duration(c.DialTimeoutSeconds) * time.Second
}

// CallTimeout returns the per-call KVM timeout as a duration.
func (c *Config) CallTimeout() time.Duration {
	return time.Duration(c.CallTimeoutSeconds) * time.Second
}

// Load loads configuration.
// Priority: Environment variables > Configuration file > Default values
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".mcp-serial-hid-kvm")

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	setDefaults(v)
	bindEnvVariables(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is not an error, defaults apply.
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using default values",
			"search_paths", []string{configDir, "."})
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("kvm_host", "127.0.0.1")
	v.SetDefault("kvm_port", 9329)
	v.SetDefault("dial_timeout_seconds", 5)
	v.SetDefault("call_timeout_seconds", 30)
	v.SetDefault("ocr_language", "eng")
	v.SetDefault("capture_log_dir", DefaultCaptureLogDir())
	v.SetDefault("log_level", "info")
}

// bindEnvVariables binds the environment variables recognized by the
// original KVM tooling. Names are fixed for compatibility, so automatic
// env mapping is not used.
func bindEnvVariables(v *viper.Viper) {
	mustBind := func(key, env string) {
		// Hardcoded names cannot fail to bind; a panic here is a bug.
		if err := v.BindEnv(key, env); err != nil {
			panic(fmt.Sprintf("binding %s: %v", env, err))
		}
	}

	mustBind("kvm_host", "SHKVM_API_HOST")
	mustBind("kvm_port", "SHKVM_API_PORT")
	mustBind("ocr_language", "MCP_TESSERACT_LANG")
	mustBind("capture_log_dir", "MCP_CAPTURE_LOG_DIR")
	mustBind("log_level", "MCP_LOG_LEVEL")

	// Distinguish "unset" from "set to empty": an empty
	// MCP_CAPTURE_LOG_DIR disables capture logging entirely.
	v.AllowEmptyEnv(true)
}

// DefaultCaptureLogDir returns the platform data directory used for
// capture logs when no explicit directory is configured.
func DefaultCaptureLogDir() string {
	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		base = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(base, "mcp-serial-hid-kvm", "captures")
}
