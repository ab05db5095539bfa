package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"

	"github.com/zhubert/messly/internal/errors"
)

const (
	// DefaultServerURL is used when neither the config file nor the environment name a server.
	DefaultServerURL = "http://localhost:8000"

	DefaultChatRefreshSeconds     = 2
	DefaultMembershipCheckSeconds = 30

	// EnvPrefix is prepended to every environment override, e.g. MESSLY_SERVER_URL.
	EnvPrefix = "MESSLY"
)

// Config holds the client preferences
type Config struct {
	ServerURL              string `json:"server_url,omitempty"`
	Theme                  string `json:"theme,omitempty"`                 // UI theme name (e.g., "dark-purple", "nord")
	NotificationsEnabled   bool   `json:"notifications_enabled,omitempty"` // Desktop notifications for incoming messages
	ChatRefreshSeconds     int    `json:"chat_refresh_seconds,omitempty"`
	MembershipCheckSeconds int    `json:"membership_check_seconds,omitempty"`
	MetricsAddr            string `json:"metrics_addr,omitempty"` // Listen address for /metrics, empty disables it
	LastEmail              string `json:"last_email,omitempty"`   // Pre-fills the login form

	mu       sync.RWMutex
	filePath string
}

// Dir returns the path to the messly directory (~/.messly).
// The session file and custom themes live next to the config.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".messly"), nil
}

// ThemesDir returns the directory scanned for custom *.yaml themes.
func ThemesDir() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "themes"), nil
}

// configPath returns the path to the config file
func configPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or creates a new one if it doesn't exist.
// MESSLY_* environment variables override values from the file.
func Load() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}

	cfg := &Config{filePath: path}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, errors.ConfigLoadFailed(path, err)
	}
	if err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, errors.ConfigLoadFailed(path, err)
		}
	}

	cfg.applyEnv()
	cfg.ensureInitialized()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnv overlays MESSLY_* environment variables. Not thread-safe; only
// called from Load before the Config is shared.
func (c *Config) applyEnv() {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if v.IsSet("server_url") {
		c.ServerURL = v.GetString("server_url")
	}
	if v.IsSet("theme") {
		c.Theme = v.GetString("theme")
	}
	if v.IsSet("notifications") {
		c.NotificationsEnabled = v.GetBool("notifications")
	}
	if v.IsSet("chat_refresh_seconds") {
		c.ChatRefreshSeconds = v.GetInt("chat_refresh_seconds")
	}
	if v.IsSet("membership_check_seconds") {
		c.MembershipCheckSeconds = v.GetInt("membership_check_seconds")
	}
	if v.IsSet("metrics_addr") {
		c.MetricsAddr = v.GetString("metrics_addr")
	}
}

// ensureInitialized fills in defaults for zero values.
//
// Thread-safety: This method is NOT thread-safe and must only be called
// during single-threaded initialization (i.e., from Load() before the Config
// is shared across goroutines).
func (c *Config) ensureInitialized() {
	if c.ServerURL == "" {
		c.ServerURL = DefaultServerURL
	}
	if c.ChatRefreshSeconds == 0 {
		c.ChatRefreshSeconds = DefaultChatRefreshSeconds
	}
	if c.MembershipCheckSeconds == 0 {
		c.MembershipCheckSeconds = DefaultMembershipCheckSeconds
	}
}

// Validate checks that the config is internally consistent.
// This is a read-only operation - call ensureInitialized() first if needed.
func (c *Config) Validate() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	u, err := url.Parse(c.ServerURL)
	if err != nil || u.Host == "" {
		return errors.ConfigInvalid(fmt.Sprintf("server url %q is not a valid URL", c.ServerURL))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.ConfigInvalid(fmt.Sprintf("server url scheme must be http or https, got %q", u.Scheme))
	}
	if c.ChatRefreshSeconds < 0 {
		return errors.ConfigInvalid("chat_refresh_seconds must be positive")
	}
	if c.MembershipCheckSeconds < 0 {
		return errors.ConfigInvalid("membership_check_seconds must be positive")
	}

	return nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(c.filePath), 0755); err != nil {
		return errors.ConfigSaveFailed(c.filePath, err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.ConfigSaveFailed(c.filePath, err)
	}

	if err := os.WriteFile(c.filePath, data, 0644); err != nil {
		return errors.ConfigSaveFailed(c.filePath, err)
	}
	return nil
}

// SetFilePath sets where Save writes the config
func (c *Config) SetFilePath(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.filePath = path
}

// GetServerURL returns the backend base URL
func (c *Config) GetServerURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ServerURL
}

// SetServerURL sets the backend base URL. Used by the --server flag, which
// wins over both the file and the environment.
func (c *Config) SetServerURL(u string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ServerURL = u
}

// GetTheme returns the current theme name
func (c *Config) GetTheme() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Theme
}

// SetTheme sets the current theme name
func (c *Config) SetTheme(theme string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Theme = theme
}

// GetNotificationsEnabled returns whether desktop notifications are enabled
func (c *Config) GetNotificationsEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.NotificationsEnabled
}

// SetNotificationsEnabled sets whether desktop notifications are enabled
func (c *Config) SetNotificationsEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.NotificationsEnabled = enabled
}

// GetChatRefreshSeconds returns the chat list polling interval
func (c *Config) GetChatRefreshSeconds() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.ChatRefreshSeconds <= 0 {
		return DefaultChatRefreshSeconds
	}
	return c.ChatRefreshSeconds
}

// GetMembershipCheckSeconds returns the interval between membership checks
// while a chat is open
func (c *Config) GetMembershipCheckSeconds() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.MembershipCheckSeconds <= 0 {
		return DefaultMembershipCheckSeconds
	}
	return c.MembershipCheckSeconds
}

// GetMetricsAddr returns the /metrics listen address, empty when disabled
func (c *Config) GetMetricsAddr() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.MetricsAddr
}

// SetMetricsAddr sets the /metrics listen address
func (c *Config) SetMetricsAddr(addr string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.MetricsAddr = addr
}

// GetLastEmail returns the email of the last successful login
func (c *Config) GetLastEmail() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.LastEmail
}

// SetLastEmail records the email of the last successful login
func (c *Config) SetLastEmail(email string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.LastEmail = email
}
