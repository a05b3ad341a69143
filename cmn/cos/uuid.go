// Package cos provides common low-level types and utilities for all xjoin packages
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package cos

import (
	"math/rand/v2"
	"sync/atomic"

	"github.com/teris-io/shortid"
)

const (
	// Alphabet for generating UUIDs similar to the shortid.DEFAULT_ABC
	// NOTE: len(uuidABC) > 0x3f - see GenTie()
	uuidABC = "-5nZJDft6LuzsjGNpPwY7rQa39vehq4i1cV2FROo8yHSlC0BUEdWbIxMmTgKXAk_"

	lenShortID = 9
)

var (
	sids [4]*shortid.Shortid
	rtie atomic.Uint32
)

// NOTE: `shortid` uses hardcoded 01/2016 as a starting timestamp
func InitShortID(seed uint64) {
	for i := range sids {
		sids[i] = shortid.MustNew(uint8(i+1) /*worker*/, uuidABC, seed)
	}
	rtie.Store(uint32(seed))
}

// GenUUID generates unique and filename-friendly IDs: never starting or
// ending with '-' or '_'. Falls back to random letters if InitShortID
// was not called.
func GenUUID() (uuid string) {
	for _, sid := range sids {
		if sid == nil {
			break
		}
		var err error
		uuid, err = sid.Generate()
		if err == nil && IsAlphaNice(uuid) {
			return
		}
	}
	return RandStringStrong(lenShortID)
}

func IsAlphaNice(s string) bool {
	l := len(s)
	return l > 0 && s[0] != '-' && s[0] != '_' && s[l-1] != '-' && s[l-1] != '_'
}

// GenTie returns a short suffix unique within this process (e.g. temp file names).
func GenTie() string {
	tie := rtie.Add(1)
	b0 := uuidABC[tie&0x3f]
	b1 := uuidABC[-tie&0x3f]
	b2 := uuidABC[(tie>>2)&0x3f]
	return string([]byte{b0, b1, b2})
}

func RandStringStrong(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = LetterRunes[rand.IntN(LenRunes)]
	}
	return string(b)
}
