package service

import (
	"unicode"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 8
	// bcrypt only reads this many bytes of input.
	maxBcryptInput = 72
)

// ValidatePasswordStrength enforces the update-path policy: at least 8 characters,
// one decimal digit and one character that is neither a letter nor a digit.
func ValidatePasswordStrength(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return ErrWeakPassword
	}

	var hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case !unicode.IsLetter(r):
			hasSpecial = true
		}
	}
	if !hasDigit || !hasSpecial {
		return ErrWeakPassword
	}
	return nil
}

// HashPassword returns the bcrypt hash of password at the given cost.
// Input past the first 72 bytes is ignored.
func HashPassword(password string, cost int) (string, error) {
	input := []byte(password)
	if len(input) > maxBcryptInput {
		input = input[:maxBcryptInput]
	}
	hash, err := bcrypt.GenerateFromPassword(input, cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
