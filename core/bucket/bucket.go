// Package bucket derives the output bucket label of a row.
/*
 * Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
 */
package bucket

import (
	"fmt"
	"unicode/utf8"
)

// ParseError labels rows whose bucket value cannot be rendered.
const ParseError = "parse_error_bucket"

// Of renders row[idx] as a bucket label. Never fails: anything that cannot be
// rendered as valid text (missing, nil, undecodable) yields ParseError.
func Of(row []any, idx int) (label string) {
	if idx < 0 || idx >= len(row) {
		return ParseError
	}
	defer func() {
		if r := recover(); r != nil {
			label = ParseError
		}
	}()
	switch v := row[idx].(type) {
	case nil:
		return ParseError
	case []byte:
		if v == nil || !utf8.Valid(v) {
			return ParseError
		}
		return string(v)
	case string:
		if !utf8.ValidString(v) {
			return ParseError
		}
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
