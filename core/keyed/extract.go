/*
 * Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
 */
package keyed

import (
	"fmt"

	"github.com/NVIDIA/xjoin/core/csvrec"
	"github.com/NVIDIA/xjoin/core/example"
)

type (
	Extractor interface {
		Extract(rec *Record) (*Triple, error)
	}

	// ExampleExtractor reads both keys from a tf.Example payload.
	ExampleExtractor struct {
		HashKey string
		SortKey string
	}

	// CSVExtractor reads both keys by position; positions are resolved from
	// the header once, at construction.
	CSVExtractor struct {
		hashKey, sortKey string
		hashIdx, sortIdx int
	}
)

// interface guard
var (
	_ Extractor = (*ExampleExtractor)(nil)
	_ Extractor = (*CSVExtractor)(nil)
)

// NewExtractor returns the extractor matching the source. For delimited
// sources it reads the header; a key missing from the header is returned
// as ErrFieldNotFound and is terminal for the stream.
func NewExtractor(src Source, hashKey, sortKey string) (Extractor, error) {
	if s, ok := src.(*CSVSource); ok {
		hdr, err := s.Header()
		if err != nil {
			return nil, err
		}
		return NewCSVExtractor(hdr, hashKey, sortKey)
	}
	return &ExampleExtractor{HashKey: hashKey, SortKey: sortKey}, nil
}

func (e *ExampleExtractor) Extract(rec *Record) (*Triple, error) {
	ex, err := example.Parse(rec.Raw)
	if err != nil {
		return nil, err
	}
	t := &Triple{Raw: rec.Raw}
	if t.Hash, err = ex.Field(e.HashKey); err != nil {
		return nil, err
	}
	if t.Sort, err = ex.Field(e.SortKey); err != nil {
		return nil, err
	}
	return t, nil
}

func NewCSVExtractor(hdr *csvrec.Header, hashKey, sortKey string) (*CSVExtractor, error) {
	hashIdx, err := hdr.Index(hashKey)
	if err != nil {
		return nil, err
	}
	sortIdx, err := hdr.Index(sortKey)
	if err != nil {
		return nil, err
	}
	return &CSVExtractor{hashKey: hashKey, sortKey: sortKey, hashIdx: hashIdx, sortIdx: sortIdx}, nil
}

func (e *CSVExtractor) Extract(rec *Record) (*Triple, error) {
	if need := max(e.hashIdx, e.sortIdx); need >= len(rec.Fields) {
		return nil, fmt.Errorf("%w: line %d has %d fields, %q/%q need %d",
			csvrec.ErrRecordMalformed, rec.Line, len(rec.Fields), e.hashKey, e.sortKey, need+1)
	}
	return &Triple{
		Hash: []byte(rec.Fields[e.hashIdx]),
		Sort: []byte(rec.Fields[e.sortIdx]),
		Raw:  rec.Raw,
	}, nil
}
