package common

import (
	"crypto/rand"
	"encoding/hex"
)

// RandomHex returns a hex string built from size cryptographically random
// bytes, so the result is 2*size characters long. Used for opaque refresh
// token secrets.
func RandomHex(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
