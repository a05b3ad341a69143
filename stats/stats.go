// Package stats provides methods and functionality to register, track, log,
// and export metrics that, for the most part, include "counter" and "gauge" kinds.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package stats

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	ratomic "sync/atomic"

	"github.com/NVIDIA/xjoin/cmn/cos"
	"github.com/NVIDIA/xjoin/cmn/debug"
	"github.com/NVIDIA/xjoin/cmn/nlog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "xjoin"

const (
	KindCounter = "counter"
	KindGauge   = "gauge"
	KindSize    = "size" // counter in bytes
)

// metric names
const (
	// KindCounter
	ReadCount    = "read.n"    // records consumed from all sources
	DropCount    = "drop.n"    // records dropped; label: reason
	CorruptCount = "corrupt.n" // streams terminated by a corrupt or truncated frame
	RoutedCount  = "routed.n"  // triples routed; label: channel
	DupCount     = "dup.n"     // samples skipped as duplicates
	RollCount    = "roll.n"    // part files completed
	ErrCount     = "err.n"     // stream-level errors other than corruption

	// KindSize
	OutSize = "out.size" // bytes written to part files

	// KindGauge
	ActiveSplits = "splits.active"
)

// variable labels
const (
	LabelReason  = "reason"
	LabelChannel = "channel"
)

type (
	statsValue struct {
		prom  iprom
		kind  string
		label string
		Value int64
	}

	iprom interface {
		add(val int64)
		addWith(val int64, labels prometheus.Labels)
		set(val int64)
	}
	counter    struct{ prometheus.Counter }
	counterVec struct{ *prometheus.CounterVec }
	gauge      struct{ prometheus.Gauge }

	// Tracker is a named set of metrics mirrored into a private Prometheus
	// registry. Safe for concurrent use.
	Tracker struct {
		reg    *prometheus.Registry
		values map[string]*statsValue
		mu     sync.RWMutex
	}
)

// interface guard
var (
	_ iprom = (*counter)(nil)
	_ iprom = (*counterVec)(nil)
	_ iprom = (*gauge)(nil)
)

func (v counter) add(val int64)                                  { v.Add(float64(val)) }
func (counter) addWith(int64, prometheus.Labels)                 { debug.Assert(false, "counter has no labels") }
func (counter) set(int64)                                        { debug.Assert(false, "cannot set counter") }
func (counterVec) add(int64)                                     { debug.Assert(false, "counter vector requires labels") }
func (v counterVec) addWith(val int64, labels prometheus.Labels) { v.With(labels).Add(float64(val)) }
func (counterVec) set(int64)                                     { debug.Assert(false, "cannot set counter") }
func (v gauge) add(val int64)                                    { v.Add(float64(val)) }
func (gauge) addWith(int64, prometheus.Labels)                   { debug.Assert(false, "gauge has no labels") }
func (v gauge) set(val int64)                                    { v.Set(float64(val)) }

// NewTracker registers all job metrics.
func NewTracker() *Tracker {
	t := &Tracker{reg: prometheus.NewRegistry(), values: make(map[string]*statsValue, 16)}
	t.reg.MustRegister(collectors.NewGoCollector())

	t.reg1(ReadCount, KindCounter, "records read from all input splits")
	t.reg1(DropCount, KindCounter, "records dropped as individually unreadable", LabelReason)
	t.reg1(CorruptCount, KindCounter, "input splits terminated by a corrupt or truncated frame")
	t.reg1(RoutedCount, KindCounter, "triples routed to a channel", LabelChannel)
	t.reg1(DupCount, KindCounter, "duplicate samples skipped")
	t.reg1(RollCount, KindCounter, "part files completed")
	t.reg1(ErrCount, KindCounter, "stream-level errors")
	t.reg1(OutSize, KindSize, "bytes written to part files")
	t.reg1(ActiveSplits, KindGauge, "input splits being read")
	return t
}

// "read.n" => "xjoin_read_total"; "out.size" => "xjoin_out_bytes_total"
func promName(name, kind string) string {
	base := name[:strings.IndexByte(name, '.')]
	switch kind {
	case KindCounter:
		return prometheus.BuildFQName(namespace, "", base+"_total")
	case KindSize:
		return prometheus.BuildFQName(namespace, "", base+"_bytes_total")
	default:
		return prometheus.BuildFQName(namespace, "", base)
	}
}

func (t *Tracker) reg1(name, kind, help string, varLabels ...string) {
	debug.Assert(strings.IndexByte(name, '.') > 0, name)
	v := &statsValue{kind: kind, label: name}
	fqn := promName(name, kind)
	switch {
	case kind == KindGauge:
		g := prometheus.NewGauge(prometheus.GaugeOpts{Name: fqn, Help: help})
		t.reg.MustRegister(g)
		v.prom = gauge{g}
	case len(varLabels) > 0:
		cv := prometheus.NewCounterVec(prometheus.CounterOpts{Name: fqn, Help: help}, varLabels)
		t.reg.MustRegister(cv)
		v.prom = counterVec{cv}
	default:
		c := prometheus.NewCounter(prometheus.CounterOpts{Name: fqn, Help: help})
		t.reg.MustRegister(c)
		v.prom = counter{c}
	}
	t.values[name] = v
}

func (t *Tracker) get(name string) *statsValue {
	t.mu.RLock()
	v, ok := t.values[name]
	t.mu.RUnlock()
	cos.Assertf(ok, "unknown metric %q", name)
	return v
}

func (t *Tracker) Inc(name string) { t.Add(name, 1) }

func (t *Tracker) Add(name string, val int64) {
	v := t.get(name)
	ratomic.AddInt64(&v.Value, val)
	v.prom.add(val)
}

// AddWith adds to a labeled counter; the unlabeled total is kept as well.
func (t *Tracker) AddWith(name string, val int64, labels map[string]string) {
	v := t.get(name)
	ratomic.AddInt64(&v.Value, val)
	v.prom.addWith(val, labels)
}

func (t *Tracker) Set(name string, val int64) {
	v := t.get(name)
	ratomic.StoreInt64(&v.Value, val)
	v.prom.set(val)
}

func (t *Tracker) Get(name string) int64 { return ratomic.LoadInt64(&t.get(name).Value) }

// Registry exposes the private registry, e.g. to serve it over HTTP.
func (t *Tracker) Registry() *prometheus.Registry { return t.reg }

// Snapshot returns current totals by metric name.
func (t *Tracker) Snapshot() map[string]int64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	snap := make(map[string]int64, len(t.values))
	for name, v := range t.values {
		snap[name] = ratomic.LoadInt64(&v.Value)
	}
	return snap
}

// Log writes non-zero totals as a single line.
func (t *Tracker) Log(prefix string) {
	snap := t.Snapshot()
	names := make([]string, 0, len(snap))
	for name, val := range snap {
		if val != 0 {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return
	}
	sort.Strings(names)
	var sb strings.Builder
	for i, name := range names {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s=%d", name, snap[name])
	}
	nlog.Infoln(prefix, sb.String())
}
