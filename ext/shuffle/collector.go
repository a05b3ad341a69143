/*
 * Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
 */
package shuffle

import (
	"strconv"
	"sync"

	"github.com/NVIDIA/xjoin/cmn/cos"
	"github.com/NVIDIA/xjoin/cmn/prob"
	"github.com/NVIDIA/xjoin/core/keyed"
	"github.com/NVIDIA/xjoin/dbdriver"
	"github.com/NVIDIA/xjoin/stats"

	"github.com/pkg/errors"
)

type (
	CollectorArgs struct {
		Sink      *Sink
		DB        dbdriver.Driver // required with Dedup or Sorted
		Tracker   *stats.Tracker
		Channel   int
		BucketIdx int
		ValueIdx  int
		Dedup     bool // skip repeated (hash, sort) samples
		Sorted    bool // emit ordered by (sort key, hash key)
	}

	ChannelInfo struct {
		Bucket  string `json:"bucket"`
		Chain   string `json:"chain"`
		Sum     string `json:"sum"`
		Channel int    `json:"channel"`
		Rows    int64  `json:"rows"`
		Dups    int64  `json:"dups"`
	}

	// Collector receives every triple routed to one channel. Without dedup
	// and ordering rows stream straight into the sink; otherwise samples are
	// staged in the store and emitted by Flush. Safe for concurrent use.
	Collector struct {
		args   CollectorArgs
		filter *prob.Filter
		cksum  *Checksum
		label  string
		coll   string // store collection
		row    []any
		seq    int64
		dups   int64
		mu     sync.Mutex
	}
)

func NewCollector(args *CollectorArgs) (*Collector, error) {
	c := &Collector{
		args:  *args,
		cksum: NewChecksum(0),
		label: strconv.Itoa(args.Channel),
		coll:  "ch-" + strconv.Itoa(args.Channel),
		row:   make([]any, 2),
	}
	if !c.staged() {
		return c, nil
	}
	if args.DB == nil {
		return nil, errors.Errorf("channel %d: sample store required", args.Channel)
	}
	if args.Dedup {
		c.filter = prob.NewFilter(0)
	}
	if args.Sorted {
		less := func(a, b string) bool { return keyed.CompareMsg(cos.UnsafeB(a), cos.UnsafeB(b)) < 0 }
		if err := args.DB.CreateIndex(c.coll, less); err != nil {
			return nil, errors.WithMessagef(err, "channel %d", args.Channel)
		}
	}
	return c, nil
}

func (c *Collector) staged() bool { return c.args.Dedup || c.args.Sorted }

func (c *Collector) Add(t *keyed.Triple) error {
	if !c.staged() {
		c.mu.Lock()
		err := c.emit(t)
		c.mu.Unlock()
		return err
	}
	value, err := t.MarshalMsg(nil)
	if err != nil {
		return err
	}
	key := t.StoreKey()
	if !c.args.Dedup {
		c.mu.Lock()
		c.seq++
		seq := c.seq
		c.mu.Unlock()
		key = strconv.AppendInt(append(key, '#'), seq, 10)
		return c.args.DB.SetString(c.coll, cos.UnsafeS(key), cos.UnsafeS(value))
	}

	// a definite miss in the filter skips the exact lookup
	c.mu.Lock()
	defer c.mu.Unlock()
	inserted := true
	if c.filter.Lookup(key) {
		inserted, err = c.args.DB.Insert(c.coll, cos.UnsafeS(key), cos.UnsafeS(value))
	} else {
		err = c.args.DB.SetString(c.coll, cos.UnsafeS(key), cos.UnsafeS(value))
	}
	if err != nil {
		return err
	}
	if !inserted {
		c.dups++
		if c.args.Tracker != nil {
			c.args.Tracker.Inc(stats.DupCount)
		}
		return nil
	}
	c.filter.Insert(key)
	return nil
}

// Flush emits staged samples (in order, if sorted) and empties the store.
func (c *Collector) Flush() (err error) {
	if !c.staged() {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	err2 := c.args.DB.Ascend(c.coll, func(_, value string) bool {
		t := &keyed.Triple{}
		if _, err = t.UnmarshalMsg([]byte(value)); err != nil {
			return false
		}
		err = c.emit(t)
		return err == nil
	})
	if err == nil {
		err = err2
	}
	if err != nil {
		return errors.WithMessagef(err, "channel %d: flush", c.args.Channel)
	}
	if c.filter != nil {
		c.filter.Reset()
	}
	return c.args.DB.DeleteCollection(c.coll)
}

// emit is called under lock
func (c *Collector) emit(t *keyed.Triple) error {
	c.row[c.args.BucketIdx] = c.label
	c.row[c.args.ValueIdx] = t.Raw
	if err := c.args.Sink.Write(c.row); err != nil {
		return err
	}
	c.cksum.Add(t.Hash)
	return nil
}

func (c *Collector) Info() ChannelInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ChannelInfo{
		Channel: c.args.Channel,
		Bucket:  c.label,
		Rows:    c.cksum.Count(),
		Dups:    c.dups,
		Chain:   strconv.FormatUint(c.cksum.Chain(), 16),
		Sum:     strconv.FormatUint(c.cksum.Sum(), 16),
	}
}
