package services

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MinPasswordLength is the minimum accepted password length in characters
const MinPasswordLength = 8

var commonPasswords = map[string]bool{
	"12345678":  true,
	"123456789": true,
	"password":  true,
	"parola123": true,
	"sifre123":  true,
	"qwertyui":  true,
	"11111111":  true,
}

// ValidatePassword checks a new password against the policy:
// - At least MinPasswordLength characters
// - At least one letter
// - Not one of the well-known passwords
// Every failure wraps ErrWeakPassword.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return fmt.Errorf("%w: too short", ErrWeakPassword)
	}

	hasLetter := false
	for _, char := range password {
		if unicode.IsLetter(char) {
			hasLetter = true
			break
		}
	}
	if !hasLetter {
		return fmt.Errorf("%w: no letter", ErrWeakPassword)
	}

	if commonPasswords[strings.ToLower(password)] {
		return fmt.Errorf("%w: too common", ErrWeakPassword)
	}
	return nil
}
