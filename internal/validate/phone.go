package validate

import "strings"

// phoneRule is the set of allowed subscriber lengths for a calling code.
type phoneRule struct {
	prefix  string
	lengths []int
}

// phoneRules are tried in order; the first prefix whose remainder length is
// allowed accepts the number.
var phoneRules = []phoneRule{
	{"374", []int{8}},         // Armenia
	{"1", []int{10}},          // US/Canada
	{"44", []int{10, 11}},     // UK
	{"49", []int{10, 11, 12}}, // Germany
	{"33", []int{9, 10}},      // France
	{"39", []int{9, 10, 11}},  // Italy
	{"7", []int{10}},          // Russia
	{"81", []int{10, 11}},     // Japan
	{"86", []int{11}},         // China
	{"91", []int{10}},         // India
}

// Digit count accepted after the '+' when no calling-code rule matches.
const (
	phoneFallbackMin = 8
	phoneFallbackMax = 15
)

// NormalizePhone keeps the digits of s and a leading '+'. A '+' anywhere
// other than the first significant character is dropped.
func NormalizePhone(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && b.Len() == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidPhone reports whether s looks like an international phone number.
//
// This is a heuristic, not E.164 validation: a number must start with '+',
// and is accepted if any known calling code matches with an allowed
// remainder length, or else if it has 8 to 15 digits in total.
func ValidPhone(s string) bool {
	clean := NormalizePhone(s)
	if !strings.HasPrefix(clean, "+") {
		return false
	}
	digits := clean[1:]
	for _, rule := range phoneRules {
		if !strings.HasPrefix(digits, rule.prefix) {
			continue
		}
		rest := len(digits) - len(rule.prefix)
		for _, n := range rule.lengths {
			if rest == n {
				return true
			}
		}
	}
	return len(digits) >= phoneFallbackMin && len(digits) <= phoneFallbackMax
}
