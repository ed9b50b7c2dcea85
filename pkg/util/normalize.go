package util

import "strings"

// NormalizeName lowercases a display name and strips everything that is not
// a letter or digit. The result is the per-account uniqueness key for
// regions and locations, so "Store #1" and "store 1" resolve to the same
// entity.
func NormalizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
