package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost pins the hash cost explicitly rather than tracking the
// library default.
const bcryptCost = 10

// HashPassword hashes a plaintext password for storage in the users table.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// ComparePassword checks a plaintext password against its stored hash.
func ComparePassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
