// Package cos provides common low-level types and utilities for all xjoin packages
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package cos

import (
	"os"
	"unsafe"
)

const (
	KiB = 1024
	MiB = 1024 * KiB
	GiB = 1024 * MiB

	SizeofI64 = int(unsafe.Sizeof(uint64(0)))
	SizeofI32 = int(unsafe.Sizeof(uint32(0)))

	MLCG32 = 1103515245 // xxhash seed

	PermRWR   os.FileMode = 0o640 // POSIX perms
	PermRWXRX os.FileMode = 0o750
)

const (
	LetterRunes = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	LenRunes    = len(LetterRunes)
)

type StrSet map[string]struct{}

func NewStrSet(keys ...string) (ss StrSet) {
	ss = make(StrSet, len(keys))
	for _, k := range keys {
		ss[k] = struct{}{}
	}
	return
}

func (ss StrSet) Contains(key string) (yes bool) {
	_, yes = ss[key]
	return
}

// UnsafeS converts []byte to string without copying; the caller must not
// modify the slice afterwards.
func UnsafeS(b []byte) string { return unsafe.String(unsafe.SliceData(b), len(b)) }

// UnsafeB is the reverse of UnsafeS; the result must be treated as read-only.
func UnsafeB(s string) []byte { return unsafe.Slice(unsafe.StringData(s), len(s)) }

func Plural(num int) (s string) {
	if num != 1 {
		s = "s"
	}
	return
}
