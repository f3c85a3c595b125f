// Package pattern matches transaction text against keyword rules.
package pattern

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalize canonicalises text for keyword comparison: NFKC compatibility
// folding (full-width and half-width forms collapse), upper case, surrounding
// white space trimmed. Rule keywords and transaction text must both pass
// through it.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	return strings.TrimSpace(strings.ToUpper(norm.NFKC.String(text)))
}
