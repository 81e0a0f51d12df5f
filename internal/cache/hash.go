package cache

import (
	"crypto/sha256"
	"fmt"
)

// HashKey returns the lowercase hex SHA-256 of text. The text is hashed
// byte-for-byte, so inputs differing only in whitespace or case get
// different keys.
func HashKey(text string) string {
	h := sha256.Sum256([]byte(text))
	return fmt.Sprintf("%x", h)
}
