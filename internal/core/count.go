// Package core provides headcount parsing and handling utilities.
//
// This file contains the parsing rules for the count fields of the entry form.
package core

import (
	"strconv"
	"strings"
)

// ParseCount converts a count field to an int.
//
// Blank input is treated as zero. Anything strconv.Atoi rejects is an
// ErrInvalidCount; negative values parse but are reported as ErrNegativeCount
// so callers can tell the two apart.
//
// Examples:
//   ParseCount("")    -> 0, nil
//   ParseCount(" 12") -> 12, nil
//   ParseCount("-1")  -> -1, ErrNegativeCount
//   ParseCount("abc") -> 0, ErrInvalidCount
func ParseCount(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, ErrInvalidCount
	}
	if n < 0 {
		return n, ErrNegativeCount
	}
	return n, nil
}

// FormatCount renders a count the way the form fields expect it.
func FormatCount(n int) string {
	return strconv.Itoa(n)
}
