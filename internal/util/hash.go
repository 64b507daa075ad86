package util

import (
	"crypto/sha256"
	"fmt"
)

// GenerateHash returns a SHA256 hash over an original text and its rewritten form.
func GenerateHash(original, result string) string {
	hasher := sha256.New()
	hasher.Write([]byte(original))
	hasher.Write([]byte{0})
	hasher.Write([]byte(result))
	return fmt.Sprintf("%x", hasher.Sum(nil))
}
