package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var errEmptyCredential = errors.New("empty credential")

// HashPassword bcrypt-hashes a plaintext password for storage on the user
// document.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errEmptyCredential
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword checks a login attempt against the stored hash. Any
// non-nil return means the credentials do not match.
func ComparePassword(hash, password string) error {
	if hash == "" || password == "" {
		return errEmptyCredential
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
