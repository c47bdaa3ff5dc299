package idformat

import (
	"strconv"
	"strings"
)

// Format derives the textual tracking number from an allocated counter value:
// prefix + upper-case base-36 rendering of the value. Pure and deterministic,
// same inputs always give the same identifier.
func Format(prefix string, n int64) string {
	return prefix + strings.ToUpper(strconv.FormatInt(n, 36))
}
