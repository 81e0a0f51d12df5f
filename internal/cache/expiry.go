package cache

import (
	"time"
)

// DefaultMaxAgeDays is the age after which a record is considered stale.
const DefaultMaxAgeDays = 30

// timestampLayouts are tried in order when reading a record timestamp.
// The naive layouts cover history files written without a zone offset;
// those are interpreted in local time.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// ParseTimestamp parses a record timestamp.
func ParseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for i, layout := range timestampLayouts {
		var (
			t   time.Time
			err error
		)
		if i == 0 {
			t, err = time.Parse(layout, s)
		} else {
			t, err = time.ParseInLocation(layout, s, time.Local)
		}
		if err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatTimestamp renders t the way Save stores it.
func FormatTimestamp(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

// IsExpired reports whether rec is older than maxAgeDays calendar days at
// now. A record whose timestamp cannot be parsed is always expired. A record
// exactly at its expiry instant is still valid.
func IsExpired(rec Record, maxAgeDays int, now time.Time) bool {
	ts, ok := ParseTimestamp(rec.Timestamp)
	if !ok {
		return true
	}
	expiry := ts.AddDate(0, 0, maxAgeDays)
	return now.After(expiry)
}
