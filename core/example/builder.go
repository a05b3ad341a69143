// Package example provides lazy access to tf.Example records: a feature name
// is indexed on Parse, its value decoded only when requested.
/*
 * Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
 */
package example

import (
	"math"
	"sort"

	"google.golang.org/protobuf/encoding/protowire"
)

// Builder assembles and encodes a tf.Example. Numeric lists are packed.
// Marshal output is deterministic (features sorted by name).
type Builder struct {
	feats map[string][]byte // name => encoded Feature
}

func NewBuilder() *Builder { return &Builder{feats: make(map[string][]byte, 8)} }

func (b *Builder) Bytes(name string, vals ...[]byte) *Builder {
	var list []byte
	for _, v := range vals {
		list = protowire.AppendTag(list, fieldListVals, protowire.BytesType)
		list = protowire.AppendBytes(list, v)
	}
	return b.set(name, KindBytes, list)
}

func (b *Builder) Strings(name string, vals ...string) *Builder {
	bvals := make([][]byte, len(vals))
	for i, v := range vals {
		bvals[i] = []byte(v)
	}
	return b.Bytes(name, bvals...)
}

func (b *Builder) Int64(name string, vals ...int64) *Builder {
	var packed []byte
	for _, v := range vals {
		packed = protowire.AppendVarint(packed, uint64(v))
	}
	return b.set(name, KindInt64, packList(packed, len(vals)))
}

func (b *Builder) Float(name string, vals ...float32) *Builder {
	var packed []byte
	for _, v := range vals {
		packed = protowire.AppendFixed32(packed, math.Float32bits(v))
	}
	return b.set(name, KindFloat, packList(packed, len(vals)))
}

// Raw sets an already-encoded Feature message (e.g., an unpacked list).
func (b *Builder) Raw(name string, feature []byte) *Builder {
	b.feats[name] = feature
	return b
}

func (b *Builder) Marshal() []byte {
	names := make([]string, 0, len(b.feats))
	for name := range b.feats {
		names = append(names, name)
	}
	sort.Strings(names)

	var features []byte
	for _, name := range names {
		var entry []byte
		entry = protowire.AppendTag(entry, fieldMapKey, protowire.BytesType)
		entry = protowire.AppendString(entry, name)
		entry = protowire.AppendTag(entry, fieldMapValue, protowire.BytesType)
		entry = protowire.AppendBytes(entry, b.feats[name])

		features = protowire.AppendTag(features, fieldFeature, protowire.BytesType)
		features = protowire.AppendBytes(features, entry)
	}
	out := protowire.AppendTag(nil, fieldFeatures, protowire.BytesType)
	return protowire.AppendBytes(out, features)
}

func (b *Builder) set(name string, kind Kind, list []byte) *Builder {
	feature := protowire.AppendTag(nil, protowire.Number(kind), protowire.BytesType)
	b.feats[name] = protowire.AppendBytes(feature, list)
	return b
}

// an empty packed field is omitted altogether (proto3 semantics)
func packList(packed []byte, cnt int) (list []byte) {
	if cnt == 0 {
		return nil
	}
	list = protowire.AppendTag(list, fieldListVals, protowire.BytesType)
	return protowire.AppendBytes(list, packed)
}
