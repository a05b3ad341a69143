// Package keyed turns raw records into (hash key, sort key, raw record)
// triples, the unit every downstream join stage operates on.
/*
 * Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
 */
package keyed

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/tinylib/msgp/msgp"
)

//go:generate msgp -tests=false -marshal=true -io=true
//msgp:tuple Triple

const sampleKeySep = '#'

// Triple is the extraction result for one record. All three slices are
// owned by the triple.
type Triple struct {
	Hash []byte `msg:"h"` // co-location key
	Sort []byte `msg:"s"` // ordering within a hash key
	Raw  []byte `msg:"r"` // the record exactly as read
}

func (t *Triple) String() string {
	return fmt.Sprintf("triple[%q, %q, %dB]", t.Hash, t.Sort, len(t.Raw))
}

// SampleKey returns "hash#sort", the key under which a sample is stored
// when deduplicating and ordering.
func (t *Triple) SampleKey() []byte {
	k := make([]byte, 0, len(t.Hash)+1+len(t.Sort))
	k = append(k, t.Hash...)
	k = append(k, sampleKeySep)
	return append(k, t.Sort...)
}

// StoreKey is an unambiguous form of SampleKey: the hash key carries its
// decimal length ("3:a#b#c"), so that ("a#b", "c") and ("a", "b#c") differ.
func (t *Triple) StoreKey() []byte {
	k := make([]byte, 0, len(t.Hash)+len(t.Sort)+8)
	k = strconv.AppendInt(k, int64(len(t.Hash)), 10)
	k = append(k, ':')
	k = append(k, t.Hash...)
	k = append(k, sampleKeySep)
	return append(k, t.Sort...)
}

// SplitSampleKey is the inverse of SampleKey. The sort key is taken after
// the last separator so that hash keys may themselves contain one.
func SplitSampleKey(key []byte) (hash, sort []byte, ok bool) {
	i := bytes.LastIndexByte(key, sampleKeySep)
	if i < 0 {
		return nil, nil, false
	}
	return key[:i], key[i+1:], true
}

// Compare orders samples by sort key, then by hash key (bytewise).
func Compare(a, b *Triple) int {
	if c := bytes.Compare(a.Sort, b.Sort); c != 0 {
		return c
	}
	return bytes.Compare(a.Hash, b.Hash)
}

// CompareSampleKeys applies Compare to two encoded sample keys.
func CompareSampleKeys(a, b []byte) int {
	ha, sa, _ := SplitSampleKey(a)
	hb, sb, _ := SplitSampleKey(b)
	if c := bytes.Compare(sa, sb); c != 0 {
		return c
	}
	return bytes.Compare(ha, hb)
}

// CompareMsg applies Compare to two msgp-encoded triples without decoding
// (or copying) the raw records. Undecodable input sorts first.
func CompareMsg(a, b []byte) int {
	ha, sa := peekKeys(a)
	hb, sb := peekKeys(b)
	if c := bytes.Compare(sa, sb); c != 0 {
		return c
	}
	return bytes.Compare(ha, hb)
}

func peekKeys(b []byte) (hash, sort []byte) {
	_, b, err := msgp.ReadArrayHeaderBytes(b)
	if err != nil {
		return nil, nil
	}
	if hash, b, err = msgp.ReadBytesZC(b); err != nil {
		return nil, nil
	}
	if sort, _, err = msgp.ReadBytesZC(b); err != nil {
		return nil, nil
	}
	return hash, sort
}
