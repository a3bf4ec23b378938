// Package checksum computes content digests used for HTTP validators.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// ETag returns a strong entity tag for a digest produced by Sum.
func ETag(sum string) string {
	return `"` + sum + `"`
}
