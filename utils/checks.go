package utils

import (
	"errors"
	"regexp"
	"strings"
	"unicode"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// NormalizeEmail lowercases and trims an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmailFormat checks the basic shape of an email address.
func ValidateEmailFormat(email string) error {
	if !emailPattern.MatchString(email) {
		return errors.New("Invalid email format")
	}
	return nil
}

// ValidatePasswordStrength enforces the registration password rules: at
// least 8 characters with one uppercase letter, one lowercase letter and one
// digit.
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return errors.New("Password must be at least 8 characters long")
	}
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper {
		return errors.New("Password must contain at least one uppercase letter")
	}
	if !lower {
		return errors.New("Password must contain at least one lowercase letter")
	}
	if !digit {
		return errors.New("Password must contain at least one digit")
	}
	return nil
}
