package model

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// APIConfig describes the remote notification store.
type APIConfig struct {
	// BaseURL is the root URL of the REST API, without the /api prefix.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// Token overrides the keyring session token. It is only read from the
	// RDQ_API_TOKEN environment variable and never written to disk.
	Token string `mapstructure:"token" yaml:"-"`
}

// PollingConfig controls the background refresh of the notification list.
type PollingConfig struct {
	IntervalSec int `mapstructure:"interval_sec" yaml:"interval_sec"`
	PageSize    int `mapstructure:"page_size" yaml:"page_size"`
}

// Interval returns the polling interval as a duration.
func (p PollingConfig) Interval() time.Duration {
	return time.Duration(p.IntervalSec) * time.Second
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level       string `mapstructure:"level" yaml:"level"`
	Development bool   `mapstructure:"development" yaml:"development"`

	// File receives log output when set. The terminal UI always logs to a
	// file so the screen is not corrupted.
	File string `mapstructure:"file" yaml:"file"`
}

// ServerConfig holds settings for the development notification store.
type ServerConfig struct {
	Addr          string `mapstructure:"addr" yaml:"addr"`
	DBPath        string `mapstructure:"db_path" yaml:"db_path"`
	JWTSecret     string `mapstructure:"jwt_secret" yaml:"jwt_secret"`
	RatePerMinute int    `mapstructure:"rate_per_minute" yaml:"rate_per_minute"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme string `mapstructure:"theme" yaml:"theme"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	API     APIConfig     `mapstructure:"api" yaml:"api"`
	Polling PollingConfig `mapstructure:"polling" yaml:"polling"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`
}

// ConfigDir returns ~/.config/rdq-notify, or the working directory when
// the home directory cannot be determined.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "rdq-notify")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/rdq-notify/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		API: APIConfig{
			BaseURL: "http://localhost:8080",
		},
		Polling: PollingConfig{
			IntervalSec: 30,
			PageSize:    DefaultPageSize,
		},
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(ConfigDir(), "rdq-notify.log"),
		},
		Server: ServerConfig{
			Addr:          ":8080",
			DBPath:        filepath.Join(ConfigDir(), "notifications.db"),
			JWTSecret:     "dev-secret-change-me",
			RatePerMinute: 600,
		},
		Display: DisplayConfig{
			Theme: "default",
		},
	}
}

// NewViper returns a Viper instance with defaults and RDQ_ environment
// overrides registered. Callers may bind flags on it before LoadConfig.
func NewViper() *viper.Viper {
	d := defaultAppConfig()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("rdq")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("api.base_url", d.API.BaseURL)
	v.SetDefault("polling.interval_sec", d.Polling.IntervalSec)
	v.SetDefault("polling.page_size", d.Polling.PageSize)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.development", d.Log.Development)
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.db_path", d.Server.DBPath)
	v.SetDefault("server.jwt_secret", d.Server.JWTSecret)
	v.SetDefault("server.rate_per_minute", d.Server.RatePerMinute)
	v.SetDefault("display.theme", d.Display.Theme)
	_ = v.BindEnv("api.token")

	return v
}

// LoadConfig reads configuration from the given YAML file path using v.
// If the file does not exist, defaults and environment overrides apply.
func LoadConfig(v *viper.Viper, path string) (*AppConfig, error) {
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Polling.IntervalSec <= 0 {
		cfg.Polling.IntervalSec = 30
	}
	if cfg.Polling.PageSize <= 0 || cfg.Polling.PageSize > MaxPageSize {
		cfg.Polling.PageSize = DefaultPageSize
	}
	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")

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

	v.Set("api.base_url", cfg.API.BaseURL)
	v.Set("polling", cfg.Polling)
	v.Set("log", cfg.Log)
	v.Set("server", cfg.Server)
	v.Set("display", cfg.Display)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
