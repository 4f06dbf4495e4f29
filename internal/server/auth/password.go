package auth

import "golang.org/x/crypto/bcrypt"

// DefaultBcryptCost is the work factor used when the configuration does not
// override it. bcrypt's own bounds apply on top.
const DefaultBcryptCost = 12

// HashPassword derives a salted bcrypt digest of the plaintext password.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// VerifyPassword reports whether the plaintext password matches the stored
// digest. The mismatch comparison is constant-time inside bcrypt. A malformed
// digest (corrupted storage) reads as a failed verification, never as a
// failure that aborts the request pipeline.
func VerifyPassword(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
