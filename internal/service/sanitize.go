package service

import (
	"strconv"
	"strings"
	"unicode"
)

// SanitizeUserID strips every non-digit from raw and parses the rest as a base-10 id.
// Decimal digits from any script count, so "١٢" is 12.
// An empty remainder or a value that does not fit in int64 is ErrInvalidIdentifier.
func SanitizeUserID(raw string) (int64, error) {
	clean := strings.Map(func(r rune) rune {
		v, ok := digitValue(r)
		if !ok {
			return -1
		}
		return '0' + v
	}, strings.TrimSpace(raw))

	if clean == "" || strings.IndexFunc(clean, func(r rune) bool { return !unicode.IsDigit(r) }) >= 0 {
		return 0, ErrInvalidIdentifier
	}

	id, err := strconv.ParseInt(clean, 10, 64)
	if err != nil {
		return 0, ErrInvalidIdentifier
	}
	return id, nil
}

// digitValue returns the value of a decimal digit rune. Unicode lays out decimal
// digits in contiguous runs of ten starting at zero, and unicode.Digit merges
// adjacent runs into one range.
func digitValue(r rune) (rune, bool) {
	if r >= '0' && r <= '9' {
		return r - '0', true
	}
	if !unicode.IsDigit(r) {
		return 0, false
	}
	for _, rng := range unicode.Digit.R16 {
		lo, hi := rune(rng.Lo), rune(rng.Hi)
		if r >= lo && r <= hi {
			return ((r - lo) / rune(rng.Stride)) % 10, true
		}
	}
	for _, rng := range unicode.Digit.R32 {
		lo, hi := rune(rng.Lo), rune(rng.Hi)
		if r >= lo && r <= hi {
			return ((r - lo) / rune(rng.Stride)) % 10, true
		}
	}
	return 0, false
}
