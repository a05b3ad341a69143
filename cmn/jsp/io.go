// Package jsp (JSON persistence) provides utilities to store and load arbitrary
// JSON-encoded structures with optional checksumming and compression.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package jsp

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/NVIDIA/xjoin/cmn/cos"
	"github.com/NVIDIA/xjoin/cmn/debug"

	onexxh "github.com/OneOfOne/xxhash"
	jsoniter "github.com/json-iterator/go"
	"github.com/pierrec/lz4/v4"
)

const (
	signature = "xjoin" // file signature
	//                              0 ---------------- 63  64 ------ 95 | 96 ------ 127
	prefLen = 2 * cos.SizeofI64 // [ signature | jsp ver | meta version |   bit flags  ]
	jspVer  = 1

	flagCompress = 1 << 0
	flagChecksum = 1 << 1
)

func EncodeBuf(v any, opts Options) []byte {
	buf := &bytes.Buffer{}
	err := Encode(buf, v, opts)
	debug.AssertNoErr(err)
	return buf.Bytes()
}

// Encode writes [prefix][checksum][payload], where the payload is JSON,
// optionally lz4-compressed, and the checksum covers the payload as written.
func Encode(w io.Writer, v any, opts Options) (err error) {
	var (
		payload = &bytes.Buffer{}
		jw      io.Writer
		zw      *lz4.Writer
	)
	jw = payload
	if opts.Compress {
		zw = lz4.NewWriter(payload)
		jw = zw
	}
	enc := jsoniter.NewEncoder(jw)
	if opts.Indent {
		enc.SetIndent("", "  ")
	}
	if err = enc.Encode(v); err != nil {
		return
	}
	if zw != nil {
		if err = zw.Close(); err != nil {
			return
		}
	}
	if opts.Signature {
		var prefix [prefLen]byte
		l := len(signature)
		debug.Assert(l < cos.SizeofI64)
		copy(prefix[:], signature)
		prefix[l] = jspVer
		binary.BigEndian.PutUint32(prefix[cos.SizeofI64:], opts.Metaver)
		var flags uint32
		if opts.Compress {
			flags |= flagCompress
		}
		if opts.Checksum {
			flags |= flagChecksum
		}
		binary.BigEndian.PutUint32(prefix[cos.SizeofI64+cos.SizeofI32:], flags)
		if _, err = w.Write(prefix[:]); err != nil {
			return
		}
	}
	if opts.Checksum {
		var cksum [cos.SizeofI64]byte
		binary.BigEndian.PutUint64(cksum[:], onexxh.Checksum64S(payload.Bytes(), cos.MLCG32))
		if _, err = w.Write(cksum[:]); err != nil {
			return
		}
	}
	_, err = w.Write(payload.Bytes())
	return
}

// Decode is the inverse of Encode. With a signature, the packing flags are
// taken from the prefix and override opts.
func Decode(r io.Reader, v any, opts Options, tag string) error {
	if opts.Signature {
		var prefix [prefLen]byte
		if _, err := io.ReadFull(r, prefix[:]); err != nil {
			return err
		}
		l := len(signature)
		if got := string(prefix[:l]); got != signature {
			return &ErrBadSignature{tag: tag, got: got, expected: signature}
		}
		if prefix[l] != jspVer {
			return &ErrUnsupportedVersion{tag: tag, what: "jsp version", got: uint32(prefix[l]), expected: jspVer}
		}
		metaver := binary.BigEndian.Uint32(prefix[cos.SizeofI64:])
		if opts.Metaver != 0 && metaver != opts.Metaver {
			return &ErrUnsupportedVersion{tag: tag, what: "meta version", got: metaver, expected: opts.Metaver}
		}
		flags := binary.BigEndian.Uint32(prefix[cos.SizeofI64+cos.SizeofI32:])
		opts.Compress = flags&flagCompress != 0
		opts.Checksum = flags&flagChecksum != 0
	}
	var src = r
	if opts.Checksum {
		var cksum [cos.SizeofI64]byte
		if _, err := io.ReadFull(r, cksum[:]); err != nil {
			return err
		}
		payload, err := io.ReadAll(r)
		if err != nil {
			return err
		}
		expected := binary.BigEndian.Uint64(cksum[:])
		if actual := onexxh.Checksum64S(payload, cos.MLCG32); actual != expected {
			return &ErrBadCksum{tag: tag, expected: expected, actual: actual}
		}
		src = bytes.NewReader(payload)
	}
	if opts.Compress {
		src = lz4.NewReader(src)
	}
	return jsoniter.NewDecoder(src).Decode(v)
}
