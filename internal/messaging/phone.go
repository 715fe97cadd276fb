package messaging

import (
	"regexp"
	"strings"
)

var nonDigitRe = regexp.MustCompile(`\D`)

// Digits strips everything except digits.
func Digits(value string) string {
	return nonDigitRe.ReplaceAllString(value, "")
}

// NormalizeE164 ensures the value begins with + and only contains digits
// afterward. Bare 10-digit numbers are treated as North American.
func NormalizeE164(value string) string {
	digits := Digits(strings.TrimSpace(value))
	if digits == "" {
		return ""
	}
	if len(digits) == 10 {
		digits = "1" + digits
	}
	return "+" + digits
}

// LookupVariants returns the stored formats a phone number may appear in:
// the national digits, "+1" and "1" prefixed forms, and the raw input.
func LookupVariants(value string) []string {
	raw := strings.TrimSpace(value)
	digits := Digits(raw)
	if digits == "" {
		return nil
	}
	national := digits
	if len(digits) == 11 && strings.HasPrefix(digits, "1") {
		national = digits[1:]
	}

	seen := make(map[string]bool, 5)
	var out []string
	for _, v := range []string{national, "+1" + national, "1" + national, digits, raw} {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
