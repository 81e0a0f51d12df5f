package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the termexplain configuration.
type Config struct {
	Provider    string        `yaml:"provider" json:"provider"`
	Model       string        `yaml:"model" json:"model"`
	Format      string        `yaml:"format" json:"format"`
	Temperature float64       `yaml:"temperature" json:"temperature"`
	MaxTokens   int           `yaml:"maxTokens" json:"maxTokens"`
	Cache       CacheConfig   `yaml:"cache" json:"cache"`
	Privacy     PrivacyConfig `yaml:"privacy" json:"privacy"`
	Log         LogConfig     `yaml:"log" json:"log"`
	Run         RunConfig     `yaml:"run" json:"run"`
}

// CacheConfig controls the explanation cache.
type CacheConfig struct {
	Enabled    bool   `yaml:"enabled" json:"enabled"`
	Dir        string `yaml:"dir" json:"dir"`
	MaxAgeDays int    `yaml:"maxAgeDays" json:"maxAgeDays"`
	// AutoSave stores every fresh explanation without --save.
	AutoSave bool `yaml:"autoSave" json:"autoSave"`
}

// PrivacyConfig controls what is scrubbed from error text before it is sent
// to a provider.
type PrivacyConfig struct {
	RedactSecrets bool `yaml:"redactSecrets" json:"redactSecrets"`
	RedactHome    bool `yaml:"redactHome" json:"redactHome"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file,omitempty" json:"file,omitempty"`
}

// RunConfig controls --file execution.
type RunConfig struct {
	TimeoutSeconds int `yaml:"timeoutSeconds" json:"timeoutSeconds"`
}

// Default returns a Config with all defaults applied.
func Default() Config {
	return Config{
		Provider:    "gemini",
		Format:      "pretty",
		Temperature: 0.3,
		MaxTokens:   500,
		Cache: CacheConfig{
			Enabled:    true,
			Dir:        "history",
			MaxAgeDays: 30,
		},
		Privacy: PrivacyConfig{
			RedactSecrets: true,
			RedactHome:    true,
		},
		Log: LogConfig{
			Level: "warn",
		},
		Run: RunConfig{
			TimeoutSeconds: 30,
		},
	}
}

// ConfigDir returns the platform-appropriate config directory for termexplain.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "termexplain"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "termexplain"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "termexplain"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "termexplain"), nil
	default:
		return filepath.Join(home, ".config", "termexplain"), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// LoadFile returns the defaults overlaid with the config file. A missing
// file is not an error.
func LoadFile() (Config, error) {
	cfg := Default()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to the config file.
func Save(cfg Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// Load builds the effective config by merging: defaults <- file <- env <- overrides.
// The overrides map comes from CLI flags (only non-zero values should be set).
func Load(overrides map[string]string) (Config, error) {
	cfg, err := LoadFile()
	if err != nil {
		return Config{}, err
	}
	if err := mergeEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := mergeOverrides(&cfg, overrides); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// envKeys maps environment variables to config keys understood by SetField.
var envKeys = []struct {
	env string
	key string
}{
	{"TERMEXPLAIN_PROVIDER", "provider"},
	{"TERMEXPLAIN_MODEL", "model"},
	{"TERMEXPLAIN_FORMAT", "format"},
	{"TERMEXPLAIN_CACHE_DIR", "cache.dir"},
	{"TERMEXPLAIN_CACHE_MAX_AGE_DAYS", "cache.maxAgeDays"},
	{"TERMEXPLAIN_LOG_LEVEL", "log.level"},
	{"TERMEXPLAIN_LOG_FILE", "log.file"},
}

func mergeEnv(cfg *Config) error {
	for _, e := range envKeys {
		v := os.Getenv(e.env)
		if v == "" {
			continue
		}
		if err := SetField(cfg, e.key, v); err != nil {
			return fmt.Errorf("%s: %w", e.env, err)
		}
	}
	return nil
}

func mergeOverrides(cfg *Config, overrides map[string]string) error {
	for key, v := range overrides {
		if v == "" {
			continue
		}
		if err := SetField(cfg, key, v); err != nil {
			return err
		}
	}
	return nil
}

// Keys lists the keys accepted by SetField.
func Keys() []string {
	return []string{
		"provider", "model", "format", "temperature", "maxTokens",
		"cache.enabled", "cache.dir", "cache.maxAgeDays", "cache.autoSave",
		"privacy.redactSecrets", "privacy.redactHome",
		"log.level", "log.file", "run.timeoutSeconds",
	}
}

// SetField sets a single config field by key name. Returns error if key is unknown.
func SetField(cfg *Config, key, value string) error {
	switch key {
	case "provider":
		cfg.Provider = value
	case "model":
		cfg.Model = value
	case "format":
		switch value {
		case "pretty", "plain", "markdown", "json":
		default:
			return fmt.Errorf("format must be one of pretty, plain, markdown, json (got %q)", value)
		}
		cfg.Format = value
	case "temperature":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("temperature must be a number: %w", err)
		}
		cfg.Temperature = f
	case "maxTokens":
		n, err := positiveInt(key, value)
		if err != nil {
			return err
		}
		cfg.MaxTokens = n
	case "cache.enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("cache.enabled must be a boolean: %w", err)
		}
		cfg.Cache.Enabled = b
	case "cache.dir":
		cfg.Cache.Dir = value
	case "cache.maxAgeDays":
		n, err := positiveInt(key, value)
		if err != nil {
			return err
		}
		cfg.Cache.MaxAgeDays = n
	case "cache.autoSave":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("cache.autoSave must be a boolean: %w", err)
		}
		cfg.Cache.AutoSave = b
	case "privacy.redactSecrets":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("privacy.redactSecrets must be a boolean: %w", err)
		}
		cfg.Privacy.RedactSecrets = b
	case "privacy.redactHome":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("privacy.redactHome must be a boolean: %w", err)
		}
		cfg.Privacy.RedactHome = b
	case "log.level":
		cfg.Log.Level = strings.ToLower(value)
	case "log.file":
		cfg.Log.File = value
	case "run.timeoutSeconds":
		n, err := positiveInt(key, value)
		if err != nil {
			return err
		}
		cfg.Run.TimeoutSeconds = n
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

func positiveInt(key, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %d", key, n)
	}
	return n, nil
}
