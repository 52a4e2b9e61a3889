package utils

import (
	"crypto/rand"   // secure random number generation
	"encoding/hex"  // hex encoding for token strings
)

// RandomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data. It is used to produce stored
// filenames for uploads, where collisions must be practically impossible.
// If the random number generator fails, an error is returned.
func RandomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
