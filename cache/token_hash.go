package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashToken returns a SHA-256 fingerprint of a token. Cache keys carry
// the fingerprint instead of the raw token, so a dumped cache never
// leaks replayable credentials.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
