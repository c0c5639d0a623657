package auth

import (
	"errors"
	"fmt"
	"sync"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
	ErrPasswordTooLong  = errors.New("password must be at most 72 bytes")
	ErrPasswordMismatch = errors.New("password does not match")
)

const (
	bcryptCost        = bcrypt.DefaultCost
	MinPasswordLength = 8
	// MaxPasswordBytes is the longest input bcrypt accepts
	MaxPasswordBytes = 72
)

// HashPassword hashes a password of at least MinPasswordLength runes and at
// most MaxPasswordBytes bytes
func HashPassword(password string) (string, error) {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return "", ErrPasswordTooShort
	}
	if len(password) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

var (
	placeholderOnce sync.Once
	placeholderHash []byte
)

// ComparePassword checks password against hash. An empty hash stands for an
// unknown account: a placeholder hash is still compared so the response
// time does not reveal whether the account exists.
func ComparePassword(hash, password string) error {
	target := []byte(hash)
	if hash == "" {
		placeholderOnce.Do(func() {
			placeholderHash, _ = bcrypt.GenerateFromPassword([]byte("placeholder-password"), bcryptCost)
		})
		target = placeholderHash
	}

	if err := bcrypt.CompareHashAndPassword(target, []byte(password)); err != nil || hash == "" {
		return ErrPasswordMismatch
	}
	return nil
}
