// Package cos provides common low-level types and utilities for all xjoin packages
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package cos

import (
	"fmt"
	"hash/crc32"
)

// TFRecord-style masking of CRC32C values
const crcMaskDelta = 0xa282ead8

var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

type ErrBadCksum struct {
	expected, actual uint32
	context          string
}

func CRC32C(b []byte) uint32 { return crc32.Checksum(b, crc32cTable) }

// MaskCRC rotates right by 15 bits and adds a fixed delta, so that a plain
// CRC32C computed over data that itself embeds CRCs is unlikely to collide.
func MaskCRC(crc uint32) uint32 { return ((crc >> 15) | (crc << 17)) + crcMaskDelta }

func UnmaskCRC(masked uint32) uint32 {
	rot := masked - crcMaskDelta
	return (rot >> 17) | (rot << 15)
}

func MaskedCRC32C(b []byte) uint32 { return MaskCRC(CRC32C(b)) }

//
// errors
//

func NewErrBadCksum(expected, actual uint32, context string) *ErrBadCksum {
	return &ErrBadCksum{expected: expected, actual: actual, context: context}
}

func (e *ErrBadCksum) Error() string {
	var context string
	if e.context != "" {
		context = " (context: " + e.context + ")"
	}
	return fmt.Sprintf("BAD CHECKSUM: crc32c(%x != %x)%s", e.expected, e.actual, context)
}

func IsErrBadCksum(err error) bool {
	_, ok := err.(*ErrBadCksum)
	return ok
}
