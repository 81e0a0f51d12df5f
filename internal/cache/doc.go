// Package cache provides the on-disk explanation cache.
//
// Explanations are keyed by the SHA-256 of the raw error text (no
// normalization) and stored together in a single JSON file,
// <dir>/error_logs.json. The whole file is loaded when a [Cache] is
// constructed and rewritten after every mutation. Entries older than the
// configured maximum age (30 days by default) are evicted lazily on read or
// explicitly via [Cache.ClearExpired].
//
// Persistence failures never reach the caller of Get, Save, ClearExpired,
// ClearAll or Export: they are logged and the in-memory state stays
// authoritative for the rest of the process. Only [Cache.Import] reports
// failure, and a failed import leaves the cache untouched.
package cache
