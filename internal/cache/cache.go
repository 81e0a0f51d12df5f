package cache

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog"
)

// DefaultDir is the cache directory used when none is configured. It is
// relative to the working directory.
const DefaultDir = "history"

// Stats describes the cache contents. It is computed on every call.
type Stats struct {
	File           string  `json:"file"`
	TotalEntries   int     `json:"totalEntries"`
	ValidEntries   int     `json:"validEntries"`
	ExpiredEntries int     `json:"expiredEntries"`
	CacheSizeBytes int64   `json:"cacheSizeBytes"`
	CacheSizeMB    float64 `json:"cacheSizeMB"`
}

// Cache is the explanation cache. It owns the in-memory mapping and writes
// it through to its Store after every change.
//
// A Cache is not safe for concurrent use.
type Cache struct {
	dir        string
	maxAgeDays int
	store      *Store
	records    map[string]Record
	log        zerolog.Logger
	now        func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger used for persistence warnings and errors.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Cache) { c.log = l }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New opens the cache in dir, creating the directory if needed, and loads
// the existing cache file. An empty dir selects DefaultDir and a
// non-positive maxAgeDays selects DefaultMaxAgeDays. A missing or corrupt
// cache file yields an empty cache.
func New(dir string, maxAgeDays int, opts ...Option) (*Cache, error) {
	if dir == "" {
		dir = DefaultDir
	}
	if maxAgeDays <= 0 {
		maxAgeDays = DefaultMaxAgeDays
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	c := &Cache{
		dir:        dir,
		maxAgeDays: maxAgeDays,
		store:      NewStore(filepath.Join(dir, FileName)),
		log:        zerolog.Nop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	records, err := c.store.Load()
	if err != nil {
		c.log.Warn().Err(err).Str("file", c.store.Path()).Msg("failed to load cache, starting empty")
	} else {
		c.log.Debug().Int("entries", len(records)).Msg("loaded cache")
	}
	c.records = records
	return c, nil
}

// Get returns the cached explanation for errorText. Expired entries are
// removed and reported as misses.
func (c *Cache) Get(errorText string) (string, bool) {
	key := HashKey(errorText)
	rec, ok := c.records[key]
	if !ok {
		return "", false
	}
	if IsExpired(rec, c.maxAgeDays, c.now()) {
		c.log.Debug().Str("error", preview(errorText)).Msg("cache entry expired")
		delete(c.records, key)
		c.persist()
		return "", false
	}
	c.log.Debug().Str("error", preview(errorText)).Msg("cache hit")
	return rec.Explanation, true
}

// Save stores explanation for errorText, replacing any previous entry and
// restarting its expiry clock.
func (c *Cache) Save(errorText, explanation string) {
	key := HashKey(errorText)
	c.records[key] = Record{
		ErrorText:   errorText,
		Explanation: explanation,
		Timestamp:   FormatTimestamp(c.now()),
		Hash:        key,
	}
	c.persist()
	c.log.Debug().Str("error", preview(errorText)).Msg("cached explanation")
}

// ClearExpired removes every expired entry and returns how many were
// removed. The file is only rewritten when something was removed.
func (c *Cache) ClearExpired() int {
	now := c.now()
	removed := 0
	for key, rec := range c.records {
		if IsExpired(rec, c.maxAgeDays, now) {
			delete(c.records, key)
			removed++
		}
	}
	if removed > 0 {
		c.persist()
		c.log.Info().Int("removed", removed).Msg("cleared expired cache entries")
	}
	return removed
}

// ClearAll removes every entry and rewrites the file, even when the cache
// is already empty.
func (c *Cache) ClearAll() {
	c.records = map[string]Record{}
	c.persist()
	c.log.Info().Msg("cleared all cache entries")
}

// Stats returns live statistics.
func (c *Cache) Stats() Stats {
	now := c.now()
	stats := Stats{
		File:         c.store.Path(),
		TotalEntries: len(c.records),
	}
	for _, rec := range c.records {
		if IsExpired(rec, c.maxAgeDays, now) {
			stats.ExpiredEntries++
		}
	}
	stats.ValidEntries = stats.TotalEntries - stats.ExpiredEntries
	stats.CacheSizeBytes = c.store.Size()
	stats.CacheSizeMB = math.Round(float64(stats.CacheSizeBytes)/(1024*1024)*100) / 100
	return stats
}

// Export writes the current entries to path in the cache file format. The
// primary cache file is not touched. Failures are logged and reported by
// the returned flag.
func (c *Cache) Export(path string) bool {
	if err := WriteFile(path, c.records); err != nil {
		c.log.Error().Err(err).Str("path", path).Msg("failed to export cache")
		return false
	}
	c.log.Info().Int("entries", len(c.records)).Str("path", path).Msg("exported cache")
	return true
}

// Import merges the entries in path into the cache. Imported entries replace
// existing entries with the same key regardless of their timestamps. If the
// file cannot be read or decoded the cache is left unchanged and the error
// is returned. It returns the number of imported entries.
func (c *Cache) Import(path string) (int, error) {
	imported, err := ReadFile(path)
	if err != nil {
		c.log.Error().Err(err).Str("path", path).Msg("failed to import cache")
		return 0, err
	}
	for key, rec := range imported {
		c.records[key] = rec
	}
	c.persist()
	c.log.Info().Int("entries", len(imported)).Str("path", path).Msg("imported cache")
	return len(imported), nil
}

// Records returns a copy of all entries, newest first. Entries with
// unreadable timestamps sort last.
func (c *Cache) Records() []Record {
	out := make([]Record, 0, len(c.records))
	for _, rec := range c.records {
		out = append(out, rec)
	}
	sort.SliceStable(out, func(i, j int) bool {
		ti, _ := ParseTimestamp(out[i].Timestamp)
		tj, _ := ParseTimestamp(out[j].Timestamp)
		if ti.Equal(tj) {
			return out[i].Hash < out[j].Hash
		}
		return ti.After(tj)
	})
	return out
}

// IsExpired reports whether rec is expired under this cache's policy.
func (c *Cache) IsExpired(rec Record) bool {
	return IsExpired(rec, c.maxAgeDays, c.now())
}

// Len returns the number of entries, expired ones included.
func (c *Cache) Len() int {
	return len(c.records)
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

// File returns the path of the durable cache file.
func (c *Cache) File() string {
	return c.store.Path()
}

// MaxAgeDays returns the configured maximum entry age.
func (c *Cache) MaxAgeDays() int {
	return c.maxAgeDays
}

func (c *Cache) persist() {
	if err := c.store.Save(c.records); err != nil {
		c.log.Error().Err(err).Str("file", c.store.Path()).Msg("failed to save cache")
	}
}

// preview shortens error text for log lines.
func preview(s string) string {
	const limit = 50
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}
