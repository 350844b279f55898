package relay

import "strings"

const defaultCountryCode = "54"

// NormalizePhone converts a user-entered phone number into the relay's
// expected format: country-code-prefixed, digits only.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(phone) {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return ""
	}

	// Strip the international-dialing prefix if present.
	digits = strings.TrimPrefix(digits, "00")

	if strings.HasPrefix(digits, defaultCountryCode) {
		return digits
	}
	// Local numbers written with a leading zero.
	digits = strings.TrimPrefix(digits, "0")
	return defaultCountryCode + digits
}
