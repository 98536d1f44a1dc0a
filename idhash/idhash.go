// Package idhash derives short stable identifiers from strings.
package idhash

import (
	"crypto/sha256"

	"github.com/jxskiss/base62"
)

// Hash returns a base62-encoded id, based upon sha256 of string.
func Hash(s string) string {
	return HashBytes([]byte(s))
}

// HashBytes returns a base62-encoded id, based upon sha256 of bytes.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return base62.StdEncoding.EncodeToString(sum[:16])
}
