// Package example provides lazy access to tf.Example records: a feature name
// is indexed on Parse, its value decoded only when requested.
/*
 * Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
 */
package example

import (
	"math"
	"strconv"
	"strings"
)

// Canonical text of numeric key values. Both parties must render the same
// logical value identically, independent of how it was encoded on the wire.

func FormatInt64(v int64) []byte { return strconv.AppendInt(nil, v, 10) }

// FormatFloat renders a float32 the way JVM-based producers do
// (Float.toString): plain decimal with at least one fractional digit
// within [1e-3, 1e7), computerized scientific notation ("1.5E-4") outside;
// shortest digits that round-trip to the same float32.
func FormatFloat(v float32) []byte {
	f := float64(v)
	switch {
	case math.IsNaN(f):
		return []byte("NaN")
	case math.IsInf(f, 1):
		return []byte("Infinity")
	case math.IsInf(f, -1):
		return []byte("-Infinity")
	case f == 0:
		if math.Signbit(f) {
			return []byte("-0.0")
		}
		return []byte("0.0")
	}
	if abs := math.Abs(f); abs >= 1e-3 && abs < 1e7 {
		b := strconv.AppendFloat(nil, f, 'f', -1, 32)
		if !strings.ContainsRune(string(b), '.') {
			b = append(b, '.', '0')
		}
		return b
	}
	// 'E' yields e.g. "1.5E-04" or "1E+10"
	s := strconv.FormatFloat(f, 'E', -1, 32)
	i := strings.IndexByte(s, 'E')
	mant, exp := s[:i], s[i+1:]
	if !strings.ContainsRune(mant, '.') {
		mant += ".0"
	}
	e, _ := strconv.Atoi(exp) // drops '+' and leading zeros
	return strconv.AppendInt([]byte(mant+"E"), int64(e), 10)
}
