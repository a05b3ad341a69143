// Package route maps record keys onto downstream channels so that two
// independent parties place matching keys into the same channel.
/*
 * Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
 */
package route

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/NVIDIA/xjoin/cmn/cos"
	"github.com/NVIDIA/xjoin/cmn/debug"
	"github.com/NVIDIA/xjoin/cmn/xoshiro256"

	onexxh "github.com/OneOfOne/xxhash"
)

const (
	MaxKeyGroups = 1 << 15

	minDefaultKeyGroups = 128

	ExplicitKeyLen = 4 // big-endian channel index
)

// routing strategies
const (
	Hashed Strategy = iota
	Explicit
)

var (
	ErrChannelOutOfRange = errors.New("channel out of range")
	ErrBadParams         = errors.New("invalid routing parameters")
)

type (
	Strategy int

	// Router is immutable once created and safe for concurrent use.
	Router struct {
		strategy     Strategy
		parallelism  int
		maxKeyGroups int
	}
)

/////////////
// Strategy //
/////////////

func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(s) {
	case "", "hashed", "hash":
		return Hashed, nil
	case "explicit":
		return Explicit, nil
	}
	return 0, fmt.Errorf("%w: unknown routing strategy %q", ErrBadParams, s)
}

func (s Strategy) String() string {
	switch s {
	case Hashed:
		return "hashed"
	case Explicit:
		return "explicit"
	}
	return fmt.Sprintf("strategy(%d)", int(s))
}

////////////
// Router //
////////////

// New validates 0 < parallelism <= maxKeyGroups <= MaxKeyGroups.
// Zero maxKeyGroups selects DefaultKeyGroups(parallelism).
func New(strategy Strategy, parallelism, maxKeyGroups int) (*Router, error) {
	if strategy != Hashed && strategy != Explicit {
		return nil, fmt.Errorf("%w: %s", ErrBadParams, strategy)
	}
	if parallelism <= 0 {
		return nil, fmt.Errorf("%w: parallelism %d must be positive", ErrBadParams, parallelism)
	}
	if maxKeyGroups == 0 {
		maxKeyGroups = DefaultKeyGroups(parallelism)
	}
	if maxKeyGroups <= 0 || maxKeyGroups > MaxKeyGroups {
		return nil, fmt.Errorf("%w: max key groups %d not in (0, %d]", ErrBadParams, maxKeyGroups, MaxKeyGroups)
	}
	if parallelism > maxKeyGroups {
		return nil, fmt.Errorf("%w: parallelism %d exceeds max key groups %d", ErrBadParams, parallelism, maxKeyGroups)
	}
	return &Router{strategy: strategy, parallelism: parallelism, maxKeyGroups: maxKeyGroups}, nil
}

func (r *Router) Strategy() Strategy { return r.strategy }
func (r *Router) Parallelism() int   { return r.parallelism }
func (r *Router) MaxKeyGroups() int  { return r.maxKeyGroups }

func (r *Router) String() string {
	return fmt.Sprintf("router[%s, p=%d, kg=%d]", r.strategy, r.parallelism, r.maxKeyGroups)
}

// Channel returns the destination channel in [0, parallelism).
func (r *Router) Channel(key []byte) (int, error) {
	if r.strategy == Explicit {
		return r.explicit(key)
	}
	return r.ChannelOf(KeyGroup(key, r.maxKeyGroups)), nil
}

// ChannelOf maps a key group onto the channel owning its contiguous range.
func (r *Router) ChannelOf(keyGroup int) int {
	debug.Assert(keyGroup >= 0 && keyGroup < r.maxKeyGroups, keyGroup)
	return keyGroup * r.parallelism / r.maxKeyGroups
}

// KeyGroupRange returns the inclusive [start, end] key groups owned by the channel.
func (r *Router) KeyGroupRange(channel int) (start, end int) {
	cos.Assertf(channel >= 0 && channel < r.parallelism, "channel %d out of [0, %d)", channel, r.parallelism)
	start = (channel*r.maxKeyGroups + r.parallelism - 1) / r.parallelism
	end = ((channel+1)*r.maxKeyGroups - 1) / r.parallelism
	return
}

func (r *Router) explicit(key []byte) (int, error) {
	if len(key) < ExplicitKeyLen {
		return 0, fmt.Errorf("%w: explicit key too short (%d bytes)", ErrChannelOutOfRange, len(key))
	}
	idx := binary.BigEndian.Uint32(key)
	if idx >= uint32(r.parallelism) {
		return 0, fmt.Errorf("%w: index %d, parallelism %d", ErrChannelOutOfRange, idx, r.parallelism)
	}
	return int(idx), nil
}

//
// helpers
//

// Digest is the stable 64-bit key hash shared by routing and bucket selection.
func Digest(key []byte) uint64 {
	return xoshiro256.Hash(onexxh.Checksum64S(key, cos.MLCG32))
}

func KeyGroup(key []byte, maxKeyGroups int) int {
	return int(Digest(key) % uint64(maxKeyGroups))
}

// ExplicitKey encodes a channel index for Explicit routing.
func ExplicitKey(index int) []byte {
	cos.Assertf(index >= 0 && uint64(index) <= 0xffffffff, "explicit index %d", index)
	b := make([]byte, ExplicitKeyLen)
	binary.BigEndian.PutUint32(b, uint32(index))
	return b
}

// DefaultKeyGroups: 1.5 x parallelism rounded up to a power of two,
// clamped to [128, MaxKeyGroups].
func DefaultKeyGroups(parallelism int) int {
	n := minDefaultKeyGroups
	want := parallelism + parallelism/2
	for n < want && n < MaxKeyGroups {
		n <<= 1
	}
	return n
}
