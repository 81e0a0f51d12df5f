// Package config loads and merges termexplain configuration from multiple sources.
//
// Precedence (highest to lowest):
//  1. CLI flags
//  2. Environment variables (TERMEXPLAIN_PROVIDER, TERMEXPLAIN_MODEL, TERMEXPLAIN_CACHE_DIR, etc.)
//  3. Config file ($XDG_CONFIG_HOME/termexplain/config.yaml)
//  4. Built-in defaults
//
// Use [Load] to obtain a merged [Config], [Save] to write a config file, and
// [SetField] to update a single dotted key such as "cache.maxAgeDays".
package config
