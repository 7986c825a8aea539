// Package config loads the application settings from a TOML file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// AppName names the configuration directory.
const AppName = "dictbar"

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

type Config struct {
	LogLevel     string        `toml:"log_level"`
	Hotkey       HotkeyConfig  `toml:"hotkey"`
	Web          WebConfig     `toml:"web"`
	Popover      PopoverConfig `toml:"popover"`
	Dictionaries []Dictionary  `toml:"dictionaries"`
}

type HotkeyConfig struct {
	// Backend selects the system-wide key source: "hook" or "carbon".
	Backend string `toml:"backend"`
}

type WebConfig struct {
	Port int `toml:"port"`
}

type PopoverConfig struct {
	// DismissOnClick hides the popover on any mouse click.
	DismissOnClick bool `toml:"dismiss_on_click"`
}

// Dictionary is one site the popover can show.
type Dictionary struct {
	Name  string `toml:"name"`
	Title string `toml:"title"`
	URL   string `toml:"url"`
}

// Default configuration
func defaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Hotkey: HotkeyConfig{
			Backend: "hook",
		},
		Web: WebConfig{
			Port: 7469,
		},
		Popover: PopoverConfig{
			DismissOnClick: true,
		},
		Dictionaries: []Dictionary{
			{Name: "naver", Title: "Naver Dictionary", URL: "https://dict.naver.com"},
			{Name: "daum", Title: "Daum Dictionary", URL: "https://dic.daum.net"},
			{Name: "naver_japanese", Title: "Naver Japanese", URL: "https://ja.dict.naver.com"},
			{Name: "google_translate", Title: "Google Translate", URL: "https://translate.google.com"},
		},
	}
}

// Default returns a fresh copy of the default configuration.
func Default() *Config {
	return defaultConfig()
}

// Dir returns the configuration directory, creating it if needed.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}

	configDir := filepath.Join(base, AppName)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return configDir, nil
}

// ConfigPath returns the path to the configuration file
func ConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load loads the configuration from the default location.
func Load() (*Config, error) {
	configPath, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configPath)
}

// LoadFrom loads the configuration from path.
// If the file doesn't exist, it creates it with default values
func LoadFrom(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := defaultConfig()
		if err := Save(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return cfg, nil
	}
	return decode(configPath)
}

func decode(configPath string) (*Config, error) {
	cfg := defaultConfig()
	// Decoding into the default slice would merge file entries into it.
	defaults := cfg.Dictionaries
	cfg.Dictionaries = nil
	md, err := toml.DecodeFile(configPath, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if !md.IsDefined("dictionaries") {
		cfg.Dictionaries = defaults
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the TOML file
func Save(path string, cfg *Config) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Validate checks the values a user may have edited by hand.
func (c *Config) Validate() error {
	switch c.Hotkey.Backend {
	case "", "hook", "carbon":
	default:
		return fmt.Errorf("%w: unknown hotkey backend %q", ErrInvalid, c.Hotkey.Backend)
	}
	if c.Web.Port < 0 || c.Web.Port > 65535 {
		return fmt.Errorf("%w: web port %d out of range", ErrInvalid, c.Web.Port)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	if len(c.Dictionaries) == 0 {
		return fmt.Errorf("%w: no dictionaries configured", ErrInvalid)
	}

	seen := make(map[string]bool, len(c.Dictionaries))
	for i, d := range c.Dictionaries {
		if d.Name == "" || d.URL == "" {
			return fmt.Errorf("%w: dictionary %d needs a name and url", ErrInvalid, i+1)
		}
		if seen[d.Name] {
			return fmt.Errorf("%w: duplicate dictionary %q", ErrInvalid, d.Name)
		}
		seen[d.Name] = true
	}
	return nil
}

// DictionaryIndex returns the position of the named dictionary, or -1.
func (c *Config) DictionaryIndex(name string) int {
	for i, d := range c.Dictionaries {
		if d.Name == name {
			return i
		}
	}
	return -1
}

// ParseLogLevel converts a level name to a slog level. Empty means info.
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w: unknown log level %q", ErrInvalid, level)
	}
}
