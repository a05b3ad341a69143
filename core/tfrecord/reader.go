// Package tfrecord implements the length-framed, CRC32C-masked record container
// (a.k.a. TFRecord): reading, validating, and writing frames.
/*
 * Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
 */
package tfrecord

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/NVIDIA/xjoin/cmn/cos"
)

type (
	ReaderArgs struct {
		BufSize       int   // read buffer; zero selects DefaultBufSize
		MaxRecordSize int64 // upper bound on a frame's payload; zero selects DefaultMaxRecordSize
		SkipCRC       bool  // read checksums but do not verify them
	}

	// Reader decodes frames from a single, sequentially consumed stream.
	// Not safe for concurrent use.
	Reader struct {
		src     io.Reader
		br      *bufio.Reader
		maxSize uint64
		off     int64 // offset of the next frame
		cnt     int64 // frames decoded so far
		hdr     [HeaderSize]byte
		ftr     [FooterSize]byte
		skipCRC bool
	}
)

func NewReader(r io.Reader, args *ReaderArgs) *Reader {
	var a ReaderArgs
	if args != nil {
		a = *args
	}
	if a.BufSize <= 0 {
		a.BufSize = DefaultBufSize
	}
	if a.MaxRecordSize <= 0 {
		a.MaxRecordSize = DefaultMaxRecordSize
	}
	return &Reader{
		src:     r,
		br:      bufio.NewReaderSize(r, a.BufSize),
		maxSize: uint64(a.MaxRecordSize),
		skipCRC: a.SkipCRC,
	}
}

// Offset returns the stream offset of the next frame.
func (r *Reader) Offset() int64 { return r.off }

// Count returns the number of frames decoded so far.
func (r *Reader) Count() int64 { return r.cnt }

// Next decodes the next frame. It returns io.EOF only when the stream ends
// exactly at a frame boundary; ErrTruncated when it ends anywhere else;
// ErrFrameCorrupt when either checksum fails (or the length is implausible).
func (r *Reader) Next() (f Frame, err error) {
	if r.br == nil {
		return f, ErrClosed
	}
	var n int
	n, err = io.ReadFull(r.br, r.hdr[:])
	if err != nil {
		if n == 0 && err == io.EOF {
			return f, io.EOF
		}
		return f, r.readErr(err, "header")
	}
	f.Length = binary.LittleEndian.Uint64(r.hdr[:lengthSize])
	f.LengthCRC = binary.LittleEndian.Uint32(r.hdr[lengthSize:])
	if !r.skipCRC {
		if actual := cos.MaskedCRC32C(r.hdr[:lengthSize]); actual != f.LengthCRC {
			return f, r.corrupt(cos.NewErrBadCksum(f.LengthCRC, actual, "length"))
		}
	}
	if f.Length > r.maxSize {
		return f, r.corrupt(fmt.Errorf("length %d exceeds max record size %d", f.Length, r.maxSize))
	}

	f.Payload = make([]byte, f.Length)
	if _, err = io.ReadFull(r.br, f.Payload); err != nil {
		return Frame{}, r.readErr(err, "payload")
	}
	if _, err = io.ReadFull(r.br, r.ftr[:]); err != nil {
		return Frame{}, r.readErr(err, "payload checksum")
	}
	f.PayloadCRC = binary.LittleEndian.Uint32(r.ftr[:])
	if !r.skipCRC {
		if actual := cos.MaskedCRC32C(f.Payload); actual != f.PayloadCRC {
			return Frame{}, r.corrupt(cos.NewErrBadCksum(f.PayloadCRC, actual, "payload"))
		}
	}
	r.off += f.Size()
	r.cnt++
	return f, nil
}

// Read is Next that returns the payload only.
func (r *Reader) Read() ([]byte, error) {
	f, err := r.Next()
	return f.Payload, err
}

// Close releases the underlying stream (if closable); the reader is unusable afterwards.
func (r *Reader) Close() (err error) {
	if r.br == nil {
		return nil
	}
	r.br = nil
	if c, ok := r.src.(io.Closer); ok {
		err = c.Close()
	}
	r.src = nil
	return err
}

func (r *Reader) readErr(err error, what string) error {
	if cos.IsEOF(err) {
		return fmt.Errorf("%w: record #%d at offset %d: short %s", ErrTruncated, r.cnt, r.off, what)
	}
	return err
}

func (r *Reader) corrupt(cause error) error {
	return fmt.Errorf("%w: record #%d at offset %d: %w", ErrFrameCorrupt, r.cnt, r.off, cause)
}
