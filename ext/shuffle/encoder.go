/*
 * Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
 */
package shuffle

import (
	"strings"
	"sync"

	"github.com/NVIDIA/xjoin/core/tfrecord"

	"github.com/pkg/errors"
)

type (
	// Encoder frames values into a part file.
	Encoder interface {
		// Begin returns the bytes that open every part file.
		Begin() []byte
		// Append frames value into dst.
		Append(dst, value []byte) []byte
	}

	tfrecordEncoder struct{}

	// csvEncoder writes raw lines under the header of the input splits,
	// which must all agree.
	csvEncoder struct {
		header string
		sep    string
		mu     sync.Mutex
	}
)

// interface guard
var (
	_ Encoder = (*tfrecordEncoder)(nil)
	_ Encoder = (*csvEncoder)(nil)
)

func (tfrecordEncoder) Begin() []byte                   { return nil }
func (tfrecordEncoder) Append(dst, value []byte) []byte { return tfrecord.AppendFrame(dst, value) }

func newCSVEncoder(sep byte) *csvEncoder { return &csvEncoder{sep: string(sep)} }

func (e *csvEncoder) setHeader(names []string) error {
	h := strings.Join(names, e.sep)
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.header == "" {
		e.header = h
		return nil
	}
	if e.header != h {
		return errors.Errorf("header mismatch: %q vs %q", h, e.header)
	}
	return nil
}

func (e *csvEncoder) Begin() []byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.header == "" {
		return nil
	}
	return []byte(e.header + "\n")
}

func (*csvEncoder) Append(dst, value []byte) []byte {
	dst = append(dst, value...)
	return append(dst, '\n')
}
