// Package config handles configuration for ssechat.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/diogo/ssechat/internal/models"
)

// Environment variables that override the config file
const (
	EnvConfigDir = "SSECHAT_CONFIG_DIR"
	EnvEndpoint  = "SSECHAT_ENDPOINT"
)

// DefaultMaxFrameBytes caps a single buffered frame (1 MiB)
const DefaultMaxFrameBytes = 1 << 20

// MarkdownConfig configures markdown rendering options
type MarkdownConfig struct {
	Style            string `json:"style"`              // glamour style name or path to JSON theme
	EnableEmoji      bool   `json:"enable_emoji"`       // Convert :emoji: to unicode
	PreserveNewLines bool   `json:"preserve_newlines"`  // Preserve original line breaks
	TableWrap        bool   `json:"table_wrap"`         // Enable word wrap in table cells
	InlineTableLinks bool   `json:"inline_table_links"` // Render links inline in tables
}

// Config represents the user configuration
type Config struct {
	// Endpoint is the SSE chat endpoint every turn is posted to.
	Endpoint string `json:"endpoint"`
	// Greeting seeds a new conversation as the first assistant message.
	Greeting string `json:"greeting"`
	// RequestTimeout bounds a whole turn in seconds. 0 means no timeout;
	// a stalled stream then waits until the user stops it.
	RequestTimeout int `json:"request_timeout"`
	// MaxFrameBytes caps the partial frame buffered between chunks.
	// Exceeding it fails the turn. 0 disables the cap.
	MaxFrameBytes int `json:"max_frame_bytes"`
	// ResetOnStop clears the whole conversation when a turn is stopped,
	// instead of only aborting the turn.
	ResetOnStop bool `json:"reset_on_stop"`
	// Proxy is an optional proxy URL for the transport.
	Proxy           string         `json:"proxy,omitempty"`
	Debug           bool           `json:"debug"`
	LogFile         string         `json:"log_file,omitempty"`
	CopyToClipboard bool           `json:"copy_to_clipboard"`
	TUITheme        string         `json:"tui_theme,omitempty"`
	Markdown        MarkdownConfig `json:"markdown,omitempty"`
}

// DefaultMarkdownConfig returns the default markdown configuration
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		Style:            "dark",
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
		InlineTableLinks: false,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Endpoint:        models.EndpointStream,
		Greeting:        models.DefaultGreeting,
		RequestTimeout:  0,
		MaxFrameBytes:   DefaultMaxFrameBytes,
		ResetOnStop:     false,
		Debug:           false,
		CopyToClipboard: false,
		TUITheme:        "tokyonight",
		Markdown:        DefaultMarkdownConfig(),
	}
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, ".ssechat"), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// LoadConfig loads the configuration from disk.
// Environment variables take precedence over config file values.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	configPath, err := GetConfigPath()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
	} else if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	if endpoint := os.Getenv(EnvEndpoint); endpoint != "" {
		cfg.Endpoint = endpoint
	}

	return cfg, nil
}

// SaveConfig saves the configuration to disk
func SaveConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.json")

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks the values that would break a turn
func (c Config) Validate() error {
	if err := ValidateEndpoint(c.Endpoint); err != nil {
		return err
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout must be >= 0, got %d", c.RequestTimeout)
	}
	if c.MaxFrameBytes < 0 {
		return fmt.Errorf("max_frame_bytes must be >= 0, got %d", c.MaxFrameBytes)
	}
	return nil
}

// ValidateEndpoint checks that endpoint is an absolute http(s) URL
func ValidateEndpoint(endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid endpoint %q: scheme must be http or https", endpoint)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid endpoint %q: missing host", endpoint)
	}
	return nil
}

// Keys returns the keys accepted by SetValue
func Keys() []string {
	return []string{
		"endpoint",
		"greeting",
		"request_timeout",
		"max_frame_bytes",
		"reset_on_stop",
		"proxy",
		"debug",
		"log_file",
		"copy_to_clipboard",
		"tui_theme",
		"markdown.style",
		"markdown.enable_emoji",
		"markdown.preserve_newlines",
		"markdown.table_wrap",
		"markdown.inline_table_links",
	}
}

// SetValue assigns a string value to the field named by key
func (c *Config) SetValue(key, value string) error {
	var err error
	switch strings.ToLower(key) {
	case "endpoint":
		if err = ValidateEndpoint(value); err == nil {
			c.Endpoint = value
		}
	case "greeting":
		c.Greeting = value
	case "request_timeout":
		c.RequestTimeout, err = parseNonNegative(key, value)
	case "max_frame_bytes":
		c.MaxFrameBytes, err = parseNonNegative(key, value)
	case "reset_on_stop":
		c.ResetOnStop, err = parseBool(key, value)
	case "proxy":
		c.Proxy = value
	case "debug":
		c.Debug, err = parseBool(key, value)
	case "log_file":
		c.LogFile = value
	case "copy_to_clipboard":
		c.CopyToClipboard, err = parseBool(key, value)
	case "tui_theme":
		c.TUITheme = value
	case "markdown.style":
		c.Markdown.Style = value
	case "markdown.enable_emoji":
		c.Markdown.EnableEmoji, err = parseBool(key, value)
	case "markdown.preserve_newlines":
		c.Markdown.PreserveNewLines, err = parseBool(key, value)
	case "markdown.table_wrap":
		c.Markdown.TableWrap, err = parseBool(key, value)
	case "markdown.inline_table_links":
		c.Markdown.InlineTableLinks, err = parseBool(key, value)
	default:
		return fmt.Errorf("unknown config key %q (valid: %s)", key, strings.Join(Keys(), ", "))
	}
	return err
}

func parseBool(key, value string) (bool, error) {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s expects true or false, got %q", key, value)
	}
	return b, nil
}

func parseNonNegative(key, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s expects a non-negative integer, got %q", key, value)
	}
	return n, nil
}
