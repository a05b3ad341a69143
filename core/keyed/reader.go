/*
 * Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
 */
package keyed

import (
	"errors"
	"fmt"

	"github.com/NVIDIA/xjoin/cmn/cos"
	"github.com/NVIDIA/xjoin/cmn/nlog"
	"github.com/NVIDIA/xjoin/core/csvrec"
	"github.com/NVIDIA/xjoin/core/example"
)

// drop reasons
const (
	DropPayloadMalformed DropReason = iota
	DropFieldNotFound
	DropRecordMalformed
	numDropReasons
)

const (
	logFirstDrops = 8
	logEveryDrops = 10_000
)

type (
	DropReason int

	Stats struct {
		Read    int64 // records consumed from the source
		Emitted int64 // triples returned
		Dropped [numDropReasons]int64
	}

	// Reader yields triples from one source, skipping (and counting) records
	// that fail individually. Stream-level failures are returned as is.
	// Not safe for concurrent use.
	Reader struct {
		src     Source
		ext     Extractor
		hashKey string
		sortKey string
		stats   Stats
	}
)

func (r DropReason) String() string {
	switch r {
	case DropPayloadMalformed:
		return "payload-malformed"
	case DropFieldNotFound:
		return "field-not-found"
	case DropRecordMalformed:
		return "record-malformed"
	}
	return fmt.Sprintf("drop(%d)", int(r))
}

func DropReasons() []DropReason {
	return []DropReason{DropPayloadMalformed, DropFieldNotFound, DropRecordMalformed}
}

func (s *Stats) TotalDropped() (n int64) {
	for _, d := range s.Dropped {
		n += d
	}
	return
}

func NewReader(src Source, hashKey, sortKey string) *Reader {
	return &Reader{src: src, hashKey: hashKey, sortKey: sortKey}
}

func (r *Reader) Source() Source { return r.src }
func (r *Reader) Stats() Stats   { return r.stats }
func (r *Reader) Close() error   { return r.src.Close() }

// Next returns the next triple, or io.EOF once the source is exhausted.
func (r *Reader) Next() (*Triple, error) {
	if r.ext == nil {
		ext, err := NewExtractor(r.src, r.hashKey, r.sortKey)
		if err != nil {
			if cos.IsEOF(err) {
				return nil, err
			}
			return nil, fmt.Errorf("%s: %w", r.src.Name(), err)
		}
		r.ext = ext
	}
	for {
		rec, err := r.src.Next()
		if err != nil {
			if reason, ok := dropReason(err); ok {
				r.stats.Read++
				r.drop(reason, err)
				continue
			}
			return nil, err
		}
		r.stats.Read++
		t, err := r.ext.Extract(rec)
		if err != nil {
			reason, ok := dropReason(err)
			if !ok {
				return nil, fmt.Errorf("%s: %w", r.src.Name(), err)
			}
			r.drop(reason, err)
			continue
		}
		r.stats.Emitted++
		return t, nil
	}
}

func (r *Reader) drop(reason DropReason, err error) {
	r.stats.Dropped[reason]++
	n := r.stats.TotalDropped()
	if n <= logFirstDrops || n%logEveryDrops == 0 {
		nlog.Warningf("%s: dropped record (%s, total dropped %d of %d): %v", r.src.Name(), reason, n, r.stats.Read, err)
	}
}

func dropReason(err error) (DropReason, bool) {
	switch {
	case errors.Is(err, example.ErrPayloadMalformed):
		return DropPayloadMalformed, true
	case errors.Is(err, cos.ErrFieldNotFound):
		return DropFieldNotFound, true
	case errors.Is(err, csvrec.ErrRecordMalformed):
		return DropRecordMalformed, true
	}
	return 0, false
}
