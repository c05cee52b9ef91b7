// Package utils provides small, generic helpers shared by the transport and
// service layers. Nothing here knows about personas or feedback.
package utils

import (
	"math"
	"strconv"
)

// AtoiDefault parses s as a base-10 int, returning def when s is empty or
// not a valid integer. Whitespace is not trimmed.
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// Clamp bounds v to [lo, hi].
func Clamp[T ~int | ~int64 | ~float64](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// RoundScore rounds a model-provided score half away from zero and bounds it
// to [lo, hi]. NaN and infinities collapse to lo.
func RoundScore(v float64, lo, hi int) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return lo
	}
	return Clamp(int(math.Round(v)), lo, hi)
}
