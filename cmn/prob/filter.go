// Package prob provides a growable probabilistic membership filter.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package prob

import (
	"sync"

	cuckoo "github.com/seiflotfy/cuckoofilter"
)

const (
	DefaultInitSize = 1 << 20
	growFactor      = 3
)

// Filter is a chain of cuckoo filters: when the newest one fills up, a new
// filter `growFactor` times larger is appended. Lookups may yield false
// positives, never false negatives. Safe for concurrent use.
type Filter struct {
	filters []*cuckoo.Filter
	size    uint
	cnt     int64
	mtx     sync.RWMutex
}

// NewFilter returns a filter whose first segment holds about initSize keys;
// zero selects DefaultInitSize.
func NewFilter(initSize uint) *Filter {
	if initSize == 0 {
		initSize = DefaultInitSize
	}
	return &Filter{filters: make([]*cuckoo.Filter, 0, 4), size: initSize}
}

func (f *Filter) Lookup(k []byte) bool {
	f.mtx.RLock()
	defer f.mtx.RUnlock()
	for idx := len(f.filters) - 1; idx >= 0; idx-- {
		if f.filters[idx].Lookup(k) {
			return true
		}
	}
	return false
}

func (f *Filter) Insert(k []byte) {
	f.mtx.Lock()
	var last *cuckoo.Filter
	if len(f.filters) == 0 {
		last = cuckoo.NewFilter(f.size)
		f.filters = append(f.filters, last)
	} else {
		last = f.filters[len(f.filters)-1]
	}
	if !last.Insert(k) {
		f.size *= growFactor
		last = cuckoo.NewFilter(f.size)
		f.filters = append(f.filters, last)
		last.Insert(k)
	}
	f.cnt++
	f.mtx.Unlock()
}

// InsertUnique inserts the key unless it is (probably) present already and
// reports whether it did.
func (f *Filter) InsertUnique(k []byte) bool {
	if f.Lookup(k) {
		return false
	}
	f.Insert(k)
	return true
}

func (f *Filter) Delete(k []byte) {
	f.mtx.Lock()
	for _, filter := range f.filters {
		if filter.Delete(k) {
			f.cnt--
			break
		}
	}
	// drop emptied segments except the first
	kept := f.filters[:0]
	for idx, filter := range f.filters {
		if idx == 0 || filter.Count() > 0 {
			kept = append(kept, filter)
		}
	}
	clear(f.filters[len(kept):])
	f.filters = kept
	f.mtx.Unlock()
}

// Len returns the number of inserted keys that were not deleted.
func (f *Filter) Len() int64 {
	f.mtx.RLock()
	defer f.mtx.RUnlock()
	return f.cnt
}

func (f *Filter) Segments() int {
	f.mtx.RLock()
	defer f.mtx.RUnlock()
	return len(f.filters)
}

func (f *Filter) Reset() {
	f.mtx.Lock()
	for _, filter := range f.filters {
		filter.Reset()
	}
	clear(f.filters)
	f.filters = f.filters[:0]
	f.cnt = 0
	f.mtx.Unlock()
}
