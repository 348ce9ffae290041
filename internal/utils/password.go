package utils

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrEmptyField is returned when a hash or verify argument is blank.
var ErrEmptyField = errors.New("empty password field")

// HashPassword returns bcrypt hash using the given cost.
func HashPassword(plain string, cost int) (string, error) {
	if plain == "" {
		return "", ErrEmptyField
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword safely compares bcrypt hash and plain password.
func VerifyPassword(hash, plain string) (bool, error) {
	if hash == "" || plain == "" {
		return false, ErrEmptyField
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil, nil
}
