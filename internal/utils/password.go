package utils

import (
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// passwordSymbols is the fixed punctuation set a password must draw at
// least one character from.
const passwordSymbols = `!@#$%^&*(),.?":{}|<>`

// HashPassword returns bcrypt hash using the given cost.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword safely compares bcrypt hash and plain password.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// ValidatePassword reports whether a password satisfies the registration
// policy: at least 8 characters, one uppercase letter, one digit and one
// symbol from passwordSymbols. It is a pure function with no side effects.
func ValidatePassword(p string) bool {
	if len(p) < 8 {
		return false
	}
	var hasUpper, hasDigit, hasSymbol bool
	for _, r := range p {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(passwordSymbols, r):
			hasSymbol = true
		}
	}
	return hasUpper && hasDigit && hasSymbol
}
