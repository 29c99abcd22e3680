package services

import "golang.org/x/crypto/bcrypt"

// bcrypt only considers the first 72 bytes of its input; longer passwords are
// allowed by validation (up to 128 chars), so truncate before hashing instead
// of surfacing bcrypt's length error.
const bcryptMaxInput = 72

func truncateSecret(secret string) []byte {
	b := []byte(secret)
	if len(b) > bcryptMaxInput {
		b = b[:bcryptMaxInput]
	}
	return b
}

func hashSecret(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(truncateSecret(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// compareSecret re-hashes candidate against the stored salted hash. bcrypt's
// comparison is constant-effort; no raw string equality anywhere.
func compareSecret(hash, candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), truncateSecret(candidate)) == nil
}
