// Package example provides lazy access to tf.Example records: a feature name
// is indexed on Parse, its value decoded only when requested.
/*
 * Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
 */
package example

import (
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

type Kind uint8

// enum: Feature.kind (the protobuf field numbers)
const (
	KindNone  Kind = 0
	KindBytes Kind = 1
	KindFloat Kind = 2
	KindInt64 Kind = 3
)

// Value is a fully decoded feature; exactly one of the lists is populated.
type Value struct {
	Bytes  [][]byte
	Floats []float32
	Ints   []int64
	Kind   Kind
}

func (k Kind) String() string {
	switch k {
	case KindBytes:
		return "bytes_list"
	case KindFloat:
		return "float_list"
	case KindInt64:
		return "int64_list"
	default:
		return "none"
	}
}

func (v *Value) Len() int {
	switch v.Kind {
	case KindBytes:
		return len(v.Bytes)
	case KindFloat:
		return len(v.Floats)
	case KindInt64:
		return len(v.Ints)
	}
	return 0
}

// decodeFeature returns the (last-set) oneof kind and its encoded list message.
func decodeFeature(raw []byte) (kind Kind, list []byte, err error) {
	err = walk(raw, func(num protowire.Number, typ protowire.Type, v []byte) error {
		switch k := Kind(num); k {
		case KindBytes, KindFloat, KindInt64:
			if typ != protowire.BytesType {
				return malformed("%s: wire type %d", k, typ)
			}
			kind, list = k, v
		}
		return nil
	})
	return
}

//
// element 0
//

var errEmptyList = malformed("empty value list")

func firstBytes(list []byte) (first []byte, err error) {
	var found bool
	err = walk(list, func(num protowire.Number, typ protowire.Type, v []byte) error {
		if num != fieldListVals || found {
			return nil
		}
		if typ != protowire.BytesType {
			return malformed("bytes value: wire type %d", typ)
		}
		first, found = v, true
		return nil
	})
	if err == nil && !found {
		err = errEmptyList
	}
	return
}

func firstInt64(list []byte) (int64, error) {
	vals, err := scanInt64(list, 1)
	if err != nil {
		return 0, err
	}
	if len(vals) == 0 {
		return 0, errEmptyList
	}
	return vals[0], nil
}

func firstFloat(list []byte) (float32, error) {
	vals, err := scanFloat(list, 1)
	if err != nil {
		return 0, err
	}
	if len(vals) == 0 {
		return 0, errEmptyList
	}
	return vals[0], nil
}

//
// full decode
//

func decodeBytesList(list []byte) (vals [][]byte, err error) {
	err = walk(list, func(num protowire.Number, typ protowire.Type, v []byte) error {
		if num != fieldListVals {
			return nil
		}
		if typ != protowire.BytesType {
			return malformed("bytes value: wire type %d", typ)
		}
		vals = append(vals, v)
		return nil
	})
	return
}

func decodeInt64List(list []byte) ([]int64, error)   { return scanInt64(list, -1) }
func decodeFloatList(list []byte) ([]float32, error) { return scanFloat(list, -1) }

// scanInt64 accepts packed and unpacked encodings (and any mix of the two);
// it stops early once `limit` values are collected (limit < 0: no limit).
func scanInt64(list []byte, limit int) (vals []int64, err error) {
	for len(list) > 0 && (limit < 0 || len(vals) < limit) {
		num, typ, n := protowire.ConsumeTag(list)
		if n < 0 {
			return nil, malformed("int64 list: %v", protowire.ParseError(n))
		}
		list = list[n:]
		switch {
		case num == fieldListVals && typ == protowire.VarintType:
			x, n := protowire.ConsumeVarint(list)
			if n < 0 {
				return nil, malformed("int64 value: %v", protowire.ParseError(n))
			}
			vals = append(vals, int64(x))
			list = list[n:]
		case num == fieldListVals && typ == protowire.BytesType:
			packed, n := protowire.ConsumeBytes(list)
			if n < 0 {
				return nil, malformed("packed int64: %v", protowire.ParseError(n))
			}
			for len(packed) > 0 {
				x, m := protowire.ConsumeVarint(packed)
				if m < 0 {
					return nil, malformed("packed int64: %v", protowire.ParseError(m))
				}
				vals = append(vals, int64(x))
				packed = packed[m:]
			}
			list = list[n:]
		case num == fieldListVals:
			return nil, malformed("int64 value: wire type %d", typ)
		default:
			n = protowire.ConsumeFieldValue(num, typ, list)
			if n < 0 {
				return nil, malformed("int64 list field %d: %v", num, protowire.ParseError(n))
			}
			list = list[n:]
		}
	}
	return vals, nil
}

func scanFloat(list []byte, limit int) (vals []float32, err error) {
	for len(list) > 0 && (limit < 0 || len(vals) < limit) {
		num, typ, n := protowire.ConsumeTag(list)
		if n < 0 {
			return nil, malformed("float list: %v", protowire.ParseError(n))
		}
		list = list[n:]
		switch {
		case num == fieldListVals && typ == protowire.Fixed32Type:
			x, n := protowire.ConsumeFixed32(list)
			if n < 0 {
				return nil, malformed("float value: %v", protowire.ParseError(n))
			}
			vals = append(vals, math.Float32frombits(x))
			list = list[n:]
		case num == fieldListVals && typ == protowire.BytesType:
			packed, n := protowire.ConsumeBytes(list)
			if n < 0 {
				return nil, malformed("packed float: %v", protowire.ParseError(n))
			}
			if len(packed)%4 != 0 {
				return nil, malformed("packed float: length %d", len(packed))
			}
			for len(packed) > 0 {
				x, m := protowire.ConsumeFixed32(packed)
				if m < 0 {
					return nil, malformed("packed float: %v", protowire.ParseError(m))
				}
				vals = append(vals, math.Float32frombits(x))
				packed = packed[m:]
			}
			list = list[n:]
		case num == fieldListVals:
			return nil, malformed("float value: wire type %d", typ)
		default:
			n = protowire.ConsumeFieldValue(num, typ, list)
			if n < 0 {
				return nil, malformed("float list field %d: %v", num, protowire.ParseError(n))
			}
			list = list[n:]
		}
	}
	return vals, nil
}
