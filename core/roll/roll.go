// Package roll decides when a part-file writer closes its current file and
// starts a new one.
/*
 * Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
 */
package roll

import (
	"errors"
	"fmt"
)

const DefaultRows = 10240

var ErrBadThreshold = errors.New("roll threshold must be positive")

// Policy rolls after every `threshold` events. It is owned by a single
// writer and is not safe for concurrent use.
type Policy struct {
	threshold int64
	count     int64
}

// New returns a count-based policy; zero selects DefaultRows.
func New(threshold int64) (*Policy, error) {
	if threshold == 0 {
		threshold = DefaultRows
	}
	if threshold < 0 {
		return nil, fmt.Errorf("%w: %d", ErrBadThreshold, threshold)
	}
	return &Policy{threshold: threshold}, nil
}

func (p *Policy) Threshold() int64 { return p.threshold }
func (p *Policy) Pending() int64   { return p.count }

// OnEvent counts one event and reports whether the current part is complete.
func (p *Policy) OnEvent() bool {
	p.count++
	if p.count >= p.threshold {
		p.count = 0
		return true
	}
	return false
}

// checkpoints and timers never roll

func (*Policy) OnCheckpoint() bool     { return false }
func (*Policy) OnProcessingTime() bool { return false }

// Reset discards the pending count, e.g. after the writer rolled for another reason.
func (p *Policy) Reset() { p.count = 0 }
