package engine

import (
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ParseAmount turns a raw amount cell into whole currency units.
//
// Everything after the first '.' is discarded (cents are truncated, not
// rounded). Of what remains only ASCII digits are kept, plus a minus sign
// when it appears before the first digit. Input that leaves no digits, or
// that overflows int64, yields 0. ParseAmount never fails.
func ParseAmount(raw string) int64 {
	if strings.TrimSpace(raw) == "" {
		return 0
	}

	// Full-width digits and separators become ASCII.
	s := norm.NFKC.String(raw)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i]
	}

	var digits strings.Builder
	negative := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits.WriteRune(r)
		case r == '-' && digits.Len() == 0:
			negative = true
		}
	}

	if digits.Len() == 0 {
		return 0
	}

	v, err := strconv.ParseInt(digits.String(), 10, 64)
	if err != nil {
		return 0
	}
	if negative {
		return -v
	}
	return v
}
