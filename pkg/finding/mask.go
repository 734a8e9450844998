package finding

import "strings"

const (
	// maskKeep is how many characters survive at each end of a masked value.
	maskKeep = 4
	// maskFullyBelow: values this short or shorter are starred completely.
	maskFullyBelow = 2 * maskKeep
)

// Mask redacts a secret value, keeping the first and last maskKeep runes.
// Masking an already masked value returns it unchanged.
func Mask(value string) string {
	r := []rune(value)
	if len(r) == 0 {
		return ""
	}
	if len(r) <= maskFullyBelow {
		return strings.Repeat("*", len(r))
	}
	return string(r[:maskKeep]) + strings.Repeat("*", len(r)-2*maskKeep) + string(r[len(r)-maskKeep:])
}
