/*
 * Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
 */
package shuffle

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/NVIDIA/xjoin/cmn/cos"
	"github.com/NVIDIA/xjoin/cmn/nlog"
	"github.com/NVIDIA/xjoin/core/bucket"
	"github.com/NVIDIA/xjoin/core/roll"
	"github.com/NVIDIA/xjoin/stats"

	"github.com/pkg/errors"
)

const (
	partPrefix     = "part-"
	inProgressSufx = ".inprogress"
	partBufSize    = 64 * cos.KiB
)

type (
	SinkArgs struct {
		Dir       string
		Encoder   Encoder
		Tracker   *stats.Tracker
		RollRows  int64
		BucketIdx int
		ValueIdx  int
	}

	PartInfo struct {
		Bucket string `json:"bucket"`
		Name   string `json:"name"` // relative to the output directory
		Rows   int64  `json:"rows"`
		Size   int64  `json:"size"`
	}

	// Sink writes (bucket, value) rows into rolling part files, one
	// directory per bucket. Safe for concurrent use; rows of the same bucket
	// are serialized.
	Sink struct {
		args   SinkArgs
		uuid   string
		parts  map[string]*part
		done   []PartInfo
		mu     sync.Mutex
		closed bool
	}

	part struct {
		sink   *Sink
		policy *roll.Policy
		fh     *os.File
		bw     *bufio.Writer
		bucket string
		fqn    string // in-progress path while open
		buf    []byte
		seq    int
		rows   int64
		size   int64
		mu     sync.Mutex
	}
)

func NewSink(args *SinkArgs) (*Sink, error) {
	if _, err := roll.New(args.RollRows); err != nil {
		return nil, err
	}
	if err := cos.CreateDir(args.Dir); err != nil {
		return nil, errors.Wrapf(err, "output directory %q", args.Dir)
	}
	return &Sink{args: *args, uuid: cos.GenUUID(), parts: make(map[string]*part, 8)}, nil
}

func (s *Sink) UUID() string { return s.uuid }

// Write appends one row; the bucket assigner picks the bucket directory.
func (s *Sink) Write(row []any) error {
	value, ok := s.value(row)
	if !ok {
		return errors.Errorf("row of %d: no bytes value at position %d", len(row), s.args.ValueIdx)
	}
	p, err := s.part(bucket.Of(row, s.args.BucketIdx))
	if err != nil {
		return err
	}
	return p.write(value)
}

func (s *Sink) value(row []any) ([]byte, bool) {
	if s.args.ValueIdx < 0 || s.args.ValueIdx >= len(row) {
		return nil, false
	}
	v, ok := row[s.args.ValueIdx].([]byte)
	return v, ok
}

func (s *Sink) part(label string) (*part, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, errors.New("sink closed")
	}
	if p, ok := s.parts[label]; ok {
		return p, nil
	}
	if err := cos.CreateDir(filepath.Join(s.args.Dir, label)); err != nil {
		return nil, err
	}
	policy, _ := roll.New(s.args.RollRows)
	p := &part{sink: s, bucket: label, policy: policy, buf: make([]byte, 0, cos.KiB)}
	s.parts[label] = p
	return p, nil
}

func (s *Sink) finished(pi PartInfo) {
	s.mu.Lock()
	s.done = append(s.done, pi)
	s.mu.Unlock()
	if s.args.Tracker != nil {
		s.args.Tracker.Inc(stats.RollCount)
	}
}

// Close completes every open part and returns all part files written,
// sorted by name.
func (s *Sink) Close() ([]PartInfo, error) {
	s.mu.Lock()
	s.closed = true
	parts := make([]*part, 0, len(s.parts))
	for _, p := range s.parts {
		parts = append(parts, p)
	}
	s.mu.Unlock()

	errs := cos.NewErrs()
	for _, p := range parts {
		p.mu.Lock()
		if err := p.complete(); err != nil {
			errs.Add(err)
		}
		p.mu.Unlock()
	}
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	sort.Slice(done, func(i, j int) bool { return done[i].Name < done[j].Name })
	if _, err := errs.JoinErr(); err != nil {
		return done, err
	}
	return done, nil
}

// Abort discards the output of a failed job: open parts are closed and
// removed, and so are the parts already completed.
func (s *Sink) Abort() error {
	s.mu.Lock()
	s.closed = true
	parts := make([]*part, 0, len(s.parts))
	for _, p := range s.parts {
		parts = append(parts, p)
	}
	s.mu.Unlock()

	errs := cos.NewErrs()
	for _, p := range parts {
		p.mu.Lock()
		if err := p.discard(); err != nil {
			errs.Add(err)
		}
		p.mu.Unlock()
	}
	s.mu.Lock()
	done := s.done
	s.done = nil
	s.mu.Unlock()
	for _, pi := range done {
		if err := os.Remove(filepath.Join(s.args.Dir, pi.Name)); err != nil && !os.IsNotExist(err) {
			errs.Add(err)
		}
	}
	nlog.Warningf("sink %s aborted: removed %d completed part%s", s.uuid, len(done), cos.Plural(len(done)))
	_, err := errs.JoinErr()
	return err
}

//////////
// part //
//////////

func (p *part) name() string { return fmt.Sprintf("%s%s-%d", partPrefix, p.sink.uuid, p.seq) }

func (p *part) open() (err error) {
	p.fqn = filepath.Join(p.sink.args.Dir, p.bucket, "."+p.name()+inProgressSufx)
	if p.fh, err = cos.CreateFile(p.fqn); err != nil {
		return err
	}
	p.bw = bufio.NewWriterSize(p.fh, partBufSize)
	p.rows, p.size = 0, 0
	if begin := p.sink.args.Encoder.Begin(); len(begin) > 0 {
		n, err := p.bw.Write(begin)
		p.size += int64(n)
		return err
	}
	return nil
}

func (p *part) write(value []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fh == nil {
		if err := p.open(); err != nil {
			return errors.Wrapf(err, "open part in bucket %q", p.bucket)
		}
	}
	p.buf = p.sink.args.Encoder.Append(p.buf[:0], value)
	n, err := p.bw.Write(p.buf)
	p.size += int64(n)
	if err != nil {
		return errors.Wrapf(err, "write %s", p.fqn)
	}
	p.rows++
	if tracker := p.sink.args.Tracker; tracker != nil {
		tracker.Add(stats.OutSize, int64(n))
	}
	if p.policy.OnEvent() {
		return p.complete()
	}
	return nil
}

// complete flushes, closes, and renames the in-progress file to its final name.
func (p *part) complete() error {
	if p.fh == nil {
		return nil
	}
	err := p.bw.Flush()
	if errC := p.fh.Close(); err == nil {
		err = errC
	}
	p.fh, p.bw = nil, nil
	if err != nil {
		return errors.Wrapf(err, "close %s", p.fqn)
	}
	rel := filepath.Join(p.bucket, p.name())
	if err := os.Rename(p.fqn, filepath.Join(p.sink.args.Dir, rel)); err != nil {
		return err
	}
	p.sink.finished(PartInfo{Bucket: p.bucket, Name: rel, Rows: p.rows, Size: p.size})
	nlog.Infof("%s: %d row%s, %d bytes", rel, p.rows, cos.Plural(int(p.rows)), p.size)
	p.seq++
	return nil
}

// discard closes and removes the in-progress file, if any.
func (p *part) discard() error {
	if p.fh == nil {
		return nil
	}
	err := p.fh.Close()
	p.fh, p.bw = nil, nil
	if errR := os.Remove(p.fqn); errR != nil && err == nil {
		err = errR
	}
	return err
}
