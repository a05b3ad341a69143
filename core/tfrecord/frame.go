// Package tfrecord implements the length-framed, CRC32C-masked record container
// (a.k.a. TFRecord): reading, validating, and writing frames.
/*
 * Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
 */
package tfrecord

import (
	"encoding/binary"
	"errors"

	"github.com/NVIDIA/xjoin/cmn/cos"
)

// on-disk layout (all integers little-endian):
//
//	0 ------- 7 | 8 ------------- 11 | 12 ----- 12+len-1 | 12+len ---------- 15+len
//	[  length  ] [ masked crc(length) ] [     payload     ] [ masked crc(payload)  ]
const (
	lengthSize = 8
	crcSize    = 4
	HeaderSize = lengthSize + crcSize
	FooterSize = crcSize
	Overhead   = HeaderSize + FooterSize
)

const (
	DefaultBufSize       = 4 * cos.KiB
	DefaultMaxRecordSize = 256 * cos.MiB
)

var (
	ErrFrameCorrupt = errors.New("frame corrupt")
	ErrTruncated    = errors.New("truncated stream")
	ErrClosed       = errors.New("reader closed")
)

// Frame is a single decoded container record. Payload is owned by the caller.
type Frame struct {
	Payload    []byte
	Length     uint64
	LengthCRC  uint32
	PayloadCRC uint32
}

func NewFrame(payload []byte) Frame {
	var lb [lengthSize]byte
	binary.LittleEndian.PutUint64(lb[:], uint64(len(payload)))
	return Frame{
		Payload:    payload,
		Length:     uint64(len(payload)),
		LengthCRC:  cos.MaskedCRC32C(lb[:]),
		PayloadCRC: cos.MaskedCRC32C(payload),
	}
}

// Size returns the number of bytes the frame occupies on the wire.
func (f *Frame) Size() int64 { return int64(f.Length) + Overhead }

// Validate re-checks both checksums and the length invariant.
func (f *Frame) Validate() error {
	var lb [lengthSize]byte
	if f.Length != uint64(len(f.Payload)) {
		return ErrFrameCorrupt
	}
	binary.LittleEndian.PutUint64(lb[:], f.Length)
	if cos.MaskedCRC32C(lb[:]) != f.LengthCRC || cos.MaskedCRC32C(f.Payload) != f.PayloadCRC {
		return ErrFrameCorrupt
	}
	return nil
}

// AppendFrame appends the encoded frame for `payload` to dst.
func AppendFrame(dst, payload []byte) []byte {
	var hdr [HeaderSize]byte
	binary.LittleEndian.PutUint64(hdr[:lengthSize], uint64(len(payload)))
	binary.LittleEndian.PutUint32(hdr[lengthSize:], cos.MaskedCRC32C(hdr[:lengthSize]))
	dst = append(dst, hdr[:]...)
	dst = append(dst, payload...)
	return binary.LittleEndian.AppendUint32(dst, cos.MaskedCRC32C(payload))
}

func Encode(payload []byte) []byte {
	return AppendFrame(make([]byte, 0, len(payload)+Overhead), payload)
}
