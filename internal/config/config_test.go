package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "gemini", cfg.Provider)
	assert.Empty(t, cfg.Model, "empty model selects the provider default")
	assert.Equal(t, "pretty", cfg.Format)
	assert.InDelta(t, 0.3, cfg.Temperature, 1e-9)
	assert.Equal(t, 500, cfg.MaxTokens)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, "history", cfg.Cache.Dir)
	assert.Equal(t, 30, cfg.Cache.MaxAgeDays)
	assert.False(t, cfg.Cache.AutoSave)
	assert.True(t, cfg.Privacy.RedactSecrets)
	assert.True(t, cfg.Privacy.RedactHome)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Empty(t, cfg.Log.File)
	assert.Equal(t, 30, cfg.Run.TimeoutSeconds)
}

func TestSetField(t *testing.T) {
	cfg := Default()

	tests := []struct {
		key   string
		value string
	}{
		{"provider", "openai"},
		{"model", "gpt-4o"},
		{"format", "json"},
		{"temperature", "0.7"},
		{"maxTokens", "800"},
		{"cache.enabled", "false"},
		{"cache.dir", "/tmp/history"},
		{"cache.maxAgeDays", "7"},
		{"cache.autoSave", "true"},
		{"privacy.redactSecrets", "false"},
		{"privacy.redactHome", "false"},
		{"log.level", "DEBUG"},
		{"log.file", "/tmp/termexplain.log"},
		{"run.timeoutSeconds", "5"},
	}

	for _, tt := range tests {
		require.NoError(t, SetField(&cfg, tt.key, tt.value), "SetField(%q, %q)", tt.key, tt.value)
	}

	assert.Equal(t, "openai", cfg.Provider)
	assert.Equal(t, "gpt-4o", cfg.Model)
	assert.Equal(t, "json", cfg.Format)
	assert.InDelta(t, 0.7, cfg.Temperature, 1e-9)
	assert.Equal(t, 800, cfg.MaxTokens)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, "/tmp/history", cfg.Cache.Dir)
	assert.Equal(t, 7, cfg.Cache.MaxAgeDays)
	assert.True(t, cfg.Cache.AutoSave)
	assert.False(t, cfg.Privacy.RedactSecrets)
	assert.False(t, cfg.Privacy.RedactHome)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/tmp/termexplain.log", cfg.Log.File)
	assert.Equal(t, 5, cfg.Run.TimeoutSeconds)
}

func TestSetField_KeysAreAllSettable(t *testing.T) {
	samples := map[string]string{
		"temperature":           "0.1",
		"maxTokens":             "10",
		"format":                "plain",
		"cache.enabled":         "true",
		"cache.maxAgeDays":      "1",
		"cache.autoSave":        "false",
		"privacy.redactSecrets": "true",
		"privacy.redactHome":    "true",
		"run.timeoutSeconds":    "1",
	}
	for _, key := range Keys() {
		cfg := Default()
		v, ok := samples[key]
		if !ok {
			v = "x"
		}
		assert.NoError(t, SetField(&cfg, key, v), key)
	}
}

func TestSetField_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown key", "nonexistent", "value"},
		{"non-integer", "cache.maxAgeDays", "notanumber"},
		{"zero age", "cache.maxAgeDays", "0"},
		{"negative tokens", "maxTokens", "-5"},
		{"bad bool", "cache.enabled", "maybe"},
		{"bad float", "temperature", "warm"},
		{"bad format", "format", "sarif"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			assert.Error(t, SetField(&cfg, tt.key, tt.value))
		})
	}
}

func TestConfigPrecedence(t *testing.T) {
	t.Setenv("TERMEXPLAIN_PROVIDER", "openai")

	cfg := Default()
	require.NoError(t, mergeEnv(&cfg))
	assert.Equal(t, "openai", cfg.Provider)

	require.NoError(t, mergeOverrides(&cfg, map[string]string{"provider": "anthropic"}))
	assert.Equal(t, "anthropic", cfg.Provider)
}

func TestMergeOverrides_SkipsEmpty(t *testing.T) {
	cfg := Default()
	require.NoError(t, mergeOverrides(&cfg, map[string]string{"provider": "", "model": "m"}))
	assert.Equal(t, "gemini", cfg.Provider)
	assert.Equal(t, "m", cfg.Model)
}

func TestMergeEnv_CacheSettings(t *testing.T) {
	t.Setenv("TERMEXPLAIN_CACHE_DIR", "/var/tmp/te")
	t.Setenv("TERMEXPLAIN_CACHE_MAX_AGE_DAYS", "3")
	t.Setenv("TERMEXPLAIN_LOG_LEVEL", "info")

	cfg := Default()
	require.NoError(t, mergeEnv(&cfg))
	assert.Equal(t, "/var/tmp/te", cfg.Cache.Dir)
	assert.Equal(t, 3, cfg.Cache.MaxAgeDays)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestMergeEnv_InvalidMaxAge(t *testing.T) {
	t.Setenv("TERMEXPLAIN_CACHE_MAX_AGE_DAYS", "abc")

	cfg := Default()
	err := mergeEnv(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TERMEXPLAIN_CACHE_MAX_AGE_DAYS")
}

func TestConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")
	dir, err := ConfigDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/xdg-test", "termexplain"), dir)
}

func TestConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-test")
	path, err := ConfigPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/xdg-test", "termexplain", "config.yaml"), path)
}

func TestSaveAndLoadFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := Default()
	cfg.Provider = "openai"
	cfg.Model = "gpt-4o"
	cfg.Cache.MaxAgeDays = 14
	cfg.Privacy.RedactHome = false

	require.NoError(t, Save(cfg))

	loaded, err := LoadFile()
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadFile_NoFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := LoadFile()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile_PartialKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	path := filepath.Join(dir, "termexplain", "config.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("cache:\n  enabled: false\n"), 0o644))

	cfg, err := LoadFile()
	require.NoError(t, err)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, 30, cfg.Cache.MaxAgeDays)
	assert.Equal(t, "gemini", cfg.Provider)
}

func TestLoadFile_Malformed(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	path := filepath.Join(dir, "termexplain", "config.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("provider: [unclosed\n"), 0o644))

	_, err := LoadFile()
	assert.Error(t, err)
}

func TestLoad_Integration(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load(map[string]string{"provider": "openai"})
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.Provider)
	assert.Equal(t, 30, cfg.Cache.MaxAgeDays)
}
