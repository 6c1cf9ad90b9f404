package core

import "strings"

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// CompactString strips all whitespace from `s` and upper-cases it. Used to
// normalize identifier-like input such as matric numbers.
func CompactString(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), ""))
}
