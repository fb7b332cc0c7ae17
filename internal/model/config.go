package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// ServerConfig holds connection settings for the mail gateway.
type ServerConfig struct {
	// URL is the root URL of the gateway (e.g. https://gw.example.com:8006).
	URL string `mapstructure:"url" yaml:"url"`

	// InsecureSkipVerify disables TLS certificate verification. Gateways
	// commonly run with self-signed certificates on internal networks.
	InsecureSkipVerify bool `mapstructure:"insecure_skip_verify" yaml:"insecure_skip_verify"`
}

// SessionConfig holds settings for the authenticated session.
type SessionConfig struct {
	// TicketRefreshSec is how often (in seconds) the session store
	// re-exchanges the auth ticket so it does not expire mid-session.
	TicketRefreshSec int `mapstructure:"ticket_refresh_sec" yaml:"ticket_refresh_sec"`

	// DefaultRealm pre-fills the realm field of the login form.
	DefaultRealm string `mapstructure:"default_realm" yaml:"default_realm"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme   string `mapstructure:"theme" yaml:"theme"`
	LogFile string `mapstructure:"log_file" yaml:"log_file"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Session SessionConfig `mapstructure:"session" yaml:"session"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/mailquar/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "mailquar", "config.yaml")
}

// DefaultLogPath returns the default log file location, next to the config.
func DefaultLogPath() string {
	return filepath.Join(filepath.Dir(DefaultConfigPath()), "mailquar.log")
}

func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Session: SessionConfig{
			TicketRefreshSec: 900,
			DefaultRealm:     "pmg",
		},
		Display: DisplayConfig{
			Theme:   "default",
			LogFile: DefaultLogPath(),
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("session.ticket_refresh_sec", 900)
	v.SetDefault("session.default_realm", "pmg")
	v.SetDefault("display.theme", "default")
	v.SetDefault("display.log_file", DefaultLogPath())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultAppConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultAppConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("server", cfg.Server)
	v.Set("session", cfg.Session)
	v.Set("display", cfg.Display)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
