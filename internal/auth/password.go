package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is the work factor used when none is configured.
const DefaultBcryptCost = 10

// maxPasswordBytes is the longest input bcrypt will hash.
const maxPasswordBytes = 72

// PasswordHasher turns plaintext passwords into one-way digests and checks
// candidates against them.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// BcryptHasher implements PasswordHasher with a salted bcrypt digest.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a hasher using cost, clamped to the range bcrypt accepts.
// A zero cost selects DefaultBcryptCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	switch {
	case cost == 0:
		cost = DefaultBcryptCost
	case cost < bcrypt.MinCost:
		cost = bcrypt.MinCost
	case cost > bcrypt.MaxCost:
		cost = bcrypt.MaxCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash returns the bcrypt digest of password.
func (h *BcryptHasher) Hash(password string) (string, error) {
	if err := validatePassword(password); err != nil {
		return "", err
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(digest), nil
}

// Verify reports whether password matches hash. Malformed hashes never match.
// Passwords longer than bcrypt's input limit never match; bcrypt would
// otherwise compare only their first maxPasswordBytes bytes.
func (h *BcryptHasher) Verify(password, hash string) bool {
	tooLong := len(password) > maxPasswordBytes
	if tooLong {
		password = password[:maxPasswordBytes]
	}
	// rejection time must not depend on password length
	match := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
	return match && !tooLong
}

func validatePassword(password string) error {
	if password == "" {
		return validationError("Password is required")
	}
	if len(password) > maxPasswordBytes {
		return validationError(fmt.Sprintf("Password must be at most %d bytes", maxPasswordBytes))
	}
	return nil
}
