// HubBridge - Slug Resolution
// Copyright (c) 2025 - Open Source Project

package hubbridge

import "strings"

// Slugify converts a human-readable label into a stable identifier that is
// safe as a URL path segment and as a topic segment. The mapping is pure and
// deterministic so repeated refreshes always produce the same addressing:
// lower-cased, with runs of whitespace and punctuation collapsed to a single
// hyphen. Underscores are kept as-is.
func Slugify(label string) string {
	var b strings.Builder
	b.Grow(len(label))

	pendingSep := false
	for _, r := range strings.ToLower(label) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			if pendingSep && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingSep = false
			b.WriteRune(r)
		default:
			pendingSep = true
		}
	}

	return b.String()
}
