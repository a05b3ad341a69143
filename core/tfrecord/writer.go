// Package tfrecord implements the length-framed, CRC32C-masked record container
// (a.k.a. TFRecord): reading, validating, and writing frames.
/*
 * Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
 */
package tfrecord

import (
	"encoding/binary"
	"io"

	"github.com/NVIDIA/xjoin/cmn/cos"
)

// Writer frames each payload it is given; buffering is up to the caller.
type Writer struct {
	w   io.Writer
	n   int64
	cnt int64
	hdr [HeaderSize]byte
	ftr [FooterSize]byte
}

func NewWriter(w io.Writer) *Writer { return &Writer{w: w} }

func (w *Writer) WriteRecord(payload []byte) error {
	binary.LittleEndian.PutUint64(w.hdr[:lengthSize], uint64(len(payload)))
	binary.LittleEndian.PutUint32(w.hdr[lengthSize:], cos.MaskedCRC32C(w.hdr[:lengthSize]))
	binary.LittleEndian.PutUint32(w.ftr[:], cos.MaskedCRC32C(payload))
	if _, err := w.w.Write(w.hdr[:]); err != nil {
		return err
	}
	if _, err := w.w.Write(payload); err != nil {
		return err
	}
	if _, err := w.w.Write(w.ftr[:]); err != nil {
		return err
	}
	w.n += int64(len(payload)) + Overhead
	w.cnt++
	return nil
}

// Written returns the total number of bytes written.
func (w *Writer) Written() int64 { return w.n }

func (w *Writer) Count() int64 { return w.cnt }
