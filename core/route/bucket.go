/*
 * Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
 */
package route

import "fmt"

// BucketSelector spreads keys over Buckets*FanOut slots and folds every
// FanOut consecutive slots into one bucket. With FanOut > 1 one client
// bucket serves several server-side buckets, and LocalBucket picks among
// them.
type BucketSelector struct {
	Buckets int
	FanOut  int
}

func NewBucketSelector(buckets, fanOut int) (*BucketSelector, error) {
	if buckets <= 0 || fanOut <= 0 {
		return nil, fmt.Errorf("%w: buckets %d, fan-out %d", ErrBadParams, buckets, fanOut)
	}
	return &BucketSelector{Buckets: buckets, FanOut: fanOut}, nil
}

func (bs *BucketSelector) Select(key []byte) int {
	n := uint64(bs.Buckets * bs.FanOut)
	return int(Digest(key)%n) / bs.FanOut
}

// Key returns the explicit routing key for the bucket the key selects.
func (bs *BucketSelector) Key(key []byte) []byte { return ExplicitKey(bs.Select(key)) }

func LocalBucket(key []byte, fanOut int) int {
	return int(Digest(key) % uint64(fanOut))
}
