package utils

import (
	"regexp"
	"unicode"
)

var emailRe = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// ValidEmail reports whether s looks like an email address. The check is
// deliberately loose; deliverability is the mail provider's problem.
func ValidEmail(s string) bool {
	return emailRe.MatchString(s)
}

// ValidPassword enforces the signup rule: at least 8 characters with at
// least one letter and one digit.
func ValidPassword(s string) bool {
	if len([]rune(s)) < 8 {
		return false
	}
	var hasLetter, hasDigit bool
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	return hasLetter && hasDigit
}
