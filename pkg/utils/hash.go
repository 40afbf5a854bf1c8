package utils

import (
	"crypto/sha1"
	"encoding/hex"
)

// HashString generates a stable SHA1 hex digest of a string. Used to derive
// deduplicating issue IDs from report content.
func HashString(s string) string {
	h := sha1.Sum([]byte(s))
	return hex.EncodeToString(h[:])
}
