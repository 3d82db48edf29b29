package auth

import "golang.org/x/crypto/bcrypt"

const bcryptCost = 10

// PasswordHasher provides one-way password hashing. Hashes are salted, so
// two hashes of the same plaintext differ byte-for-byte.
type PasswordHasher struct{}

func NewPasswordHasher() *PasswordHasher {
	return &PasswordHasher{}
}

func (h *PasswordHasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify reports whether digest was produced from plaintext by Hash.
// Malformed or foreign digest formats verify as false rather than erroring.
func (h *PasswordHasher) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
