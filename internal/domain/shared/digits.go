package shared

import "strings"

// DigitsOnly keeps the ASCII digits of s, as stored for CEP, CPF and
// similar registration numbers.
func DigitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
