// Package password provides password hashing and validation helpers.
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"gamerchat-backend/pkg/constants"
)

// HashCost is the bcrypt work factor used for new password hashes
const HashCost = 12

// Hash hashes a plaintext password with bcrypt
func Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), HashCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Compare checks a plaintext password against a stored bcrypt hash
func Compare(hash, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// Validate checks a plaintext password against the minimum policy
func Validate(plaintext string) error {
	if len(plaintext) < constants.MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", constants.MinPasswordLength)
	}
	// bcrypt silently truncates beyond 72 bytes
	if len(plaintext) > 72 {
		return fmt.Errorf("password must be at most 72 characters")
	}
	return nil
}
