package cache

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/zerr"
)

// FileName is the name of the durable cache file inside the cache directory.
const FileName = "error_logs.json"

// ErrMalformed is returned when a cache file exists but does not decode to
// a key -> record object.
var ErrMalformed = errors.New("malformed cache file")

// Record is a cached error/explanation pair.
type Record struct {
	ErrorText   string `json:"error_text"`
	Explanation string `json:"explanation"`
	Timestamp   string `json:"timestamp"`
	Hash        string `json:"hash"`
}

// Store persists the full key -> record mapping to one JSON file.
type Store struct {
	path string
}

// NewStore creates a Store backed by the file at path.
func NewStore(path string) *Store {
	return &Store{path: filepath.Clean(path)}
}

// Path returns the durable file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the durable file. A missing file yields an empty mapping and no
// error. Any other failure also yields an empty mapping, together with the
// reason; malformed content wraps ErrMalformed.
func (s *Store) Load() (map[string]Record, error) {
	records, err := ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]Record{}, nil
		}
		return map[string]Record{}, err
	}
	return records, nil
}

// Save overwrites the durable file with records.
func (s *Store) Save(records map[string]Record) error {
	return WriteFile(s.path, records)
}

// Size returns the size in bytes of the durable file, or 0 if it does not
// exist.
func (s *Store) Size() int64 {
	info, err := os.Stat(s.path)
	if err != nil {
		return 0
	}
	return info.Size()
}

// ReadFile decodes a cache file. Records are re-keyed by the hash of their
// own error text.
func ReadFile(path string) (map[string]Record, error) {
	//nolint:gosec // path is chosen by the local user
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read cache file"), "path", path)
	}

	var raw map[string]Record
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, zerr.With(
			zerr.With(zerr.Wrap(ErrMalformed, "failed to decode cache file"), "path", path),
			"cause", err.Error(),
		)
	}
	return rekey(raw), nil
}

// WriteFile encodes records to path. The data is written to a temporary
// file in the same directory and renamed into place, so readers never see a
// partially written file.
func WriteFile(path string, records map[string]Record) error {
	if records == nil {
		records = map[string]Record{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return zerr.Wrap(err, "failed to encode cache file")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create cache directory"), "dir", dir)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create temp file"), "dir", dir)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return zerr.With(zerr.Wrap(err, "failed to write cache file"), "path", path)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return zerr.With(zerr.Wrap(err, "failed to close cache file"), "path", path)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return zerr.With(zerr.Wrap(err, "failed to set cache file mode"), "path", path)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return zerr.With(zerr.Wrap(err, "failed to replace cache file"), "path", path)
	}
	return nil
}

// rekey enforces that every record lives under the hash of its error text.
func rekey(raw map[string]Record) map[string]Record {
	out := make(map[string]Record, len(raw))
	for _, rec := range raw {
		key := HashKey(rec.ErrorText)
		rec.Hash = key
		out[key] = rec
	}
	return out
}
