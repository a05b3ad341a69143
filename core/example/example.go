// Package example provides lazy access to tf.Example records: a feature name
// is indexed on Parse, its value decoded only when requested.
/*
 * Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
 */
package example

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"github.com/NVIDIA/xjoin/cmn/cos"

	"google.golang.org/protobuf/encoding/protowire"
)

// tf.Example wire schema:
//
//	Example  { Features features = 1; }
//	Features { map<string, Feature> feature = 1; }  // entry: key = 1, value = 2
//	Feature  { oneof kind { BytesList = 1; FloatList = 2; Int64List = 3; } }
//	*List    { repeated <T> value = 1; }            // float and int64 typically packed
const (
	fieldFeatures = 1
	fieldFeature  = 1
	fieldMapKey   = 1
	fieldMapValue = 2
	fieldListVals = 1
)

var (
	ErrPayloadMalformed = errors.New("payload malformed")
	ErrFieldNotFound    = cos.ErrFieldNotFound
)

// Example is a parsed (indexed) record. Feature values alias the payload
// passed to Parse, which must not be modified while the Example is in use.
type Example struct {
	feats map[string][]byte // name => encoded Feature message
}

// Parse indexes feature names to their encoded values; values are not decoded.
func Parse(payload []byte) (*Example, error) {
	ex := &Example{feats: make(map[string][]byte, 8)}
	err := walk(payload, func(num protowire.Number, typ protowire.Type, v []byte) error {
		if num != fieldFeatures {
			return nil
		}
		if typ != protowire.BytesType {
			return malformed("features: wire type %d", typ)
		}
		return ex.indexFeatures(v)
	})
	if err != nil {
		return nil, err
	}
	return ex, nil
}

func (ex *Example) indexFeatures(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, entry []byte) error {
		if num != fieldFeature {
			return nil
		}
		if typ != protowire.BytesType {
			return malformed("feature map entry: wire type %d", typ)
		}
		var (
			name  string
			value []byte
		)
		err := walk(entry, func(num protowire.Number, typ protowire.Type, v []byte) error {
			switch num {
			case fieldMapKey:
				if typ != protowire.BytesType {
					return malformed("feature name: wire type %d", typ)
				}
				name = string(v)
			case fieldMapValue:
				if typ != protowire.BytesType {
					return malformed("feature %q value: wire type %d", name, typ)
				}
				value = v
			}
			return nil
		})
		if err != nil {
			return err
		}
		// map semantics: the last entry for a given key wins
		ex.feats[name] = value
		return nil
	})
}

func (ex *Example) Len() int { return len(ex.feats) }

func (ex *Example) Has(name string) bool {
	_, ok := ex.feats[name]
	return ok
}

// Names returns feature names in sorted order.
func (ex *Example) Names() []string {
	names := make([]string, 0, len(ex.feats))
	for name := range ex.feats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Kind decodes the feature's oneof discriminator only.
func (ex *Example) Kind(name string) (Kind, error) {
	raw, ok := ex.feats[name]
	if !ok {
		return KindNone, notFound(name)
	}
	kind, _, err := decodeFeature(raw)
	return kind, err
}

// Field returns the canonical key bytes of the named feature: element 0 of a
// bytes list as is; element 0 of an int64 or float list as decimal UTF-8 text.
func (ex *Example) Field(name string) ([]byte, error) {
	raw, ok := ex.feats[name]
	if !ok {
		return nil, notFound(name)
	}
	kind, list, err := decodeFeature(raw)
	if err != nil {
		return nil, fmt.Errorf("feature %q: %w", name, err)
	}
	switch kind {
	case KindBytes:
		v, err := firstBytes(list)
		if err != nil {
			return nil, fmt.Errorf("feature %q: %w", name, err)
		}
		return bytes.Clone(v), nil
	case KindInt64:
		v, err := firstInt64(list)
		if err != nil {
			return nil, fmt.Errorf("feature %q: %w", name, err)
		}
		return FormatInt64(v), nil
	case KindFloat:
		v, err := firstFloat(list)
		if err != nil {
			return nil, fmt.Errorf("feature %q: %w", name, err)
		}
		return FormatFloat(v), nil
	default:
		return nil, malformed("feature %q: no value kind set", name)
	}
}

// Values fully decodes the named feature.
func (ex *Example) Values(name string) (*Value, error) {
	raw, ok := ex.feats[name]
	if !ok {
		return nil, notFound(name)
	}
	kind, list, err := decodeFeature(raw)
	if err != nil {
		return nil, fmt.Errorf("feature %q: %w", name, err)
	}
	val := &Value{Kind: kind}
	switch kind {
	case KindBytes:
		val.Bytes, err = decodeBytesList(list)
	case KindInt64:
		val.Ints, err = decodeInt64List(list)
	case KindFloat:
		val.Floats, err = decodeFloatList(list)
	}
	if err != nil {
		return nil, fmt.Errorf("feature %q: %w", name, err)
	}
	return val, nil
}

// Validate decodes every feature; Parse alone only checks the outer structure.
func (ex *Example) Validate() error {
	for name := range ex.feats {
		if _, err := ex.Values(name); err != nil {
			return err
		}
	}
	return nil
}

//
// wire helpers
//

// walk iterates top-level fields; `v` is the length-delimited content for
// BytesType and nil otherwise.
func walk(b []byte, cb func(num protowire.Number, typ protowire.Type, v []byte) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return malformed("tag: %v", protowire.ParseError(n))
		}
		b = b[n:]
		var v []byte
		if typ == protowire.BytesType {
			v, n = protowire.ConsumeBytes(b)
		} else {
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return malformed("field %d: %v", num, protowire.ParseError(n))
		}
		b = b[n:]
		if err := cb(num, typ, v); err != nil {
			return err
		}
	}
	return nil
}

func malformed(format string, a ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrPayloadMalformed}, a...)...)
}

func notFound(name string) error {
	return fmt.Errorf("%w: %q", ErrFieldNotFound, name)
}
