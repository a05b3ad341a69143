/*
 * Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
 */
package shuffle

import (
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Checksum summarizes the keys emitted by one channel so that two parties
// can compare outputs without exchanging them. Chain depends on emission
// order (meaningful with ordered output); Sum does not.
type Checksum struct {
	d     *xxhash.Digest
	chain uint64
	sum   uint64
	cnt   int64
	buf   []byte
}

func NewChecksum(seed uint64) *Checksum {
	return &Checksum{d: xxhash.New(), chain: seed, buf: make([]byte, 0, 20)}
}

// Add folds one value: chain = xxhash(decimal(chain) | value).
func (c *Checksum) Add(v []byte) {
	c.d.Reset()
	c.buf = strconv.AppendUint(c.buf[:0], c.chain, 10)
	c.d.Write(c.buf)
	c.d.Write(v)
	c.chain = c.d.Sum64()
	c.sum += xxhash.Sum64(v)
	c.cnt++
}

func (c *Checksum) Chain() uint64 { return c.chain }
func (c *Checksum) Sum() uint64   { return c.sum }
func (c *Checksum) Count() int64  { return c.cnt }

func (c *Checksum) String() string {
	return fmt.Sprintf("cksum[n=%d, chain=%016x, sum=%016x]", c.cnt, c.chain, c.sum)
}

// ChainOf is the chained checksum of values in the given order.
func ChainOf(values ...[]byte) uint64 {
	c := NewChecksum(0)
	for _, v := range values {
		c.Add(v)
	}
	return c.Chain()
}
