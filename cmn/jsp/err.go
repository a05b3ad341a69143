// Package jsp (JSON persistence) provides utilities to store and load arbitrary
// JSON-encoded structures with optional checksumming and compression.
/*
 * Copyright (c) 2021-2026, NVIDIA CORPORATION. All rights reserved.
 */
package jsp

import (
	"errors"
	"fmt"
)

type (
	ErrBadSignature struct {
		tag      string
		got      string
		expected string
	}
	ErrUnsupportedVersion struct {
		tag      string
		what     string
		got      uint32
		expected uint32
	}
	ErrBadCksum struct {
		tag      string
		expected uint64
		actual   uint64
	}
)

func (e *ErrBadSignature) Error() string {
	return fmt.Sprintf("bad signature %q: got %q, expected %q", e.tag, e.got, e.expected)
}

func (e *ErrUnsupportedVersion) Error() string {
	return fmt.Sprintf("unsupported %s %q: got %d, expected %d", e.what, e.tag, e.got, e.expected)
}

func (e *ErrBadCksum) Error() string {
	return fmt.Sprintf("BAD META CHECKSUM: %q: xxhash(%x != %x)", e.tag, e.actual, e.expected)
}

func IsErrBadCksum(err error) bool {
	var e *ErrBadCksum
	return errors.As(err, &e)
}
