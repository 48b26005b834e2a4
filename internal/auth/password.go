// Package auth provides password hashing and signed token handling.
package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost is used when no cost is configured.
// bcrypt.DefaultCost (10) is the floor; 12 is the OWASP-recommended value.
const DefaultBcryptCost = 12

// HashPassword creates a salted bcrypt hash of the given password.
// Cost values outside bcrypt's valid range fall back to DefaultBcryptCost.
func HashPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	return string(hash), nil
}

// VerifyPassword reports whether the password matches the stored hash.
// A malformed or truncated stored hash simply fails verification; callers
// never have to distinguish "wrong password" from "broken hash".
func VerifyPassword(password, encodedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password)) == nil
}
