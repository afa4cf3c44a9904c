// utils/validation.go
package utils

import (
	"fmt"
	"regexp"
	"strings"
)

var digitsOnly = regexp.MustCompile(`^[0-9]+$`)

// ValidatePhone checks if a phone number is in a valid international format
func ValidatePhone(phone string) bool {
	cleaned := cleanPhone(phone)

	// Regular expression for international phone numbers
	// Allows + prefix followed by 7-15 digits
	regex := `^\+?[1-9]\d{1,14}$`
	match, _ := regexp.MatchString(regex, cleaned)
	return match
}

// NormalizePhone converts a phone number to the E.164 form Twilio requires.
// Numbers already carrying a + prefix pass through after cleaning; bare
// 10-digit numbers are assumed to be US/Canada (+1). Anything else is
// rejected so the caller can fail the send without hitting the transport.
func NormalizePhone(phone string) (string, error) {
	cleaned := cleanPhone(phone)
	if cleaned == "" {
		return "", fmt.Errorf("empty phone number")
	}

	if strings.HasPrefix(cleaned, "+") {
		if !ValidatePhone(cleaned) {
			return "", fmt.Errorf("invalid phone number %q", phone)
		}
		return cleaned, nil
	}

	if !digitsOnly.MatchString(cleaned) {
		return "", fmt.Errorf("invalid phone number %q", phone)
	}

	switch {
	case len(cleaned) == 10:
		return "+1" + cleaned, nil
	case len(cleaned) == 11 && cleaned[0] == '1':
		return "+" + cleaned, nil
	}
	return "", fmt.Errorf("cannot normalize phone number %q", phone)
}

func cleanPhone(phone string) string {
	cleaned := strings.TrimSpace(phone)
	for _, ch := range []string{" ", "-", "(", ")", "."} {
		cleaned = strings.ReplaceAll(cleaned, ch, "")
	}
	return cleaned
}
