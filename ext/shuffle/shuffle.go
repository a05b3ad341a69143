// Package shuffle is a local host for keyed ingestion: it reads input splits,
// routes every record to a channel, and writes per-channel part files that a
// peer party produces identically for matching keys.
/*
 * Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
 */
package shuffle

import (
	"context"
	"io"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/NVIDIA/xjoin/cmn"
	"github.com/NVIDIA/xjoin/cmn/cos"
	"github.com/NVIDIA/xjoin/cmn/nlog"
	"github.com/NVIDIA/xjoin/core/keyed"
	"github.com/NVIDIA/xjoin/core/route"
	"github.com/NVIDIA/xjoin/core/tfrecord"
	"github.com/NVIDIA/xjoin/dbdriver"
	"github.com/NVIDIA/xjoin/stats"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

var errNoSplits = errors.New("no input splits")

// Job is a single run over a fixed set of input splits.
type Job struct {
	config     *cmn.Config
	tracker    *stats.Tracker
	router     *route.Router
	selector   *route.BucketSelector // explicit routing only
	sink       *Sink
	csv        *csvEncoder // csv input only
	db         *dbdriver.BuntDriver
	collectors []*Collector
	format     keyed.Format
}

func NewJob(config *cmn.Config, tracker *stats.Tracker) (*Job, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if len(config.Input.Files) == 0 {
		return nil, errNoSplits
	}
	if tracker == nil {
		tracker = stats.NewTracker()
	}
	j := &Job{config: config, tracker: tracker}
	if err := j.init(); err != nil {
		j.cleanup()
		return nil, err
	}
	return j, nil
}

func (j *Job) init() (err error) {
	if j.format, err = keyed.ParseFormat(j.config.Input.Format); err != nil {
		return err
	}
	rc := &j.config.Routing
	strategy, err := route.ParseStrategy(rc.Strategy)
	if err != nil {
		return err
	}
	if j.router, err = route.New(strategy, rc.Parallelism, rc.MaxKeyGroups); err != nil {
		return err
	}
	if strategy == route.Explicit {
		if j.selector, err = route.NewBucketSelector(rc.BucketNum, rc.FanOut); err != nil {
			return err
		}
	}
	nlog.Infoln("routing:", j.router.String())

	var enc Encoder = tfrecordEncoder{}
	if j.format == keyed.FormatCSV {
		j.csv = newCSVEncoder(j.config.Input.Sep())
		enc = j.csv
	}
	oc := &j.config.Output
	j.sink, err = NewSink(&SinkArgs{
		Dir:       oc.Dir,
		Encoder:   enc,
		Tracker:   j.tracker,
		RollRows:  oc.RollRows,
		BucketIdx: oc.BucketIdx,
		ValueIdx:  oc.ValueIdx,
	})
	if err != nil {
		return err
	}
	if oc.Dedup || oc.SortOutput {
		if j.db, err = dbdriver.NewBuntDB(dbdriver.InMemory); err != nil {
			return errors.WithMessage(err, "sample store")
		}
	}
	j.collectors = make([]*Collector, j.router.Parallelism())
	for ch := range j.collectors {
		args := &CollectorArgs{
			Sink:      j.sink,
			Tracker:   j.tracker,
			Channel:   ch,
			BucketIdx: oc.BucketIdx,
			ValueIdx:  oc.ValueIdx,
			Dedup:     oc.Dedup,
			Sorted:    oc.SortOutput,
		}
		if j.db != nil {
			args.DB = j.db
		}
		if j.collectors[ch], err = NewCollector(args); err != nil {
			return err
		}
	}
	return nil
}

func (j *Job) UUID() string { return j.sink.UUID() }

// Run reads all splits concurrently, then flushes the collectors, completes
// all part files, and saves the manifest. The first split failure cancels
// the rest.
func (j *Job) Run(ctx context.Context) (*Manifest, error) {
	defer j.cleanup()
	var (
		ic      = &j.config.Input
		m       = j.newManifest()
		workers = ic.Workers
	)
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	m.Splits = make([]SplitInfo, len(ic.Files))
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(workers)
	for i, fpath := range ic.Files {
		group.Go(func() error {
			j.tracker.Add(stats.ActiveSplits, 1)
			defer j.tracker.Add(stats.ActiveSplits, -1)
			si, err := j.runSplit(gctx, fpath)
			m.Splits[i] = si
			return err
		})
	}
	if err := group.Wait(); err != nil {
		j.tracker.Log(j.UUID() + ":")
		return m, j.abort(err)
	}

	// emit staged samples
	group, _ = errgroup.WithContext(ctx)
	group.SetLimit(workers)
	for _, c := range j.collectors {
		group.Go(c.Flush)
	}
	if err := group.Wait(); err != nil {
		return m, j.abort(err)
	}

	parts, err := j.sink.Close()
	if err != nil {
		return m, j.abort(err)
	}
	m.Parts = parts
	m.Channels = make([]ChannelInfo, len(j.collectors))
	for ch, c := range j.collectors {
		m.Channels[ch] = c.Info()
	}
	m.Finished = time.Now()
	if err := m.Save(j.config.Output.Dir); err != nil {
		return m, j.abort(errors.WithMessage(err, "save manifest"))
	}
	j.tracker.Log(j.UUID() + ":")
	nlog.Infof("%s: %d split%s, %d row%s in %d part%s, took %v", j.UUID(),
		len(m.Splits), cos.Plural(len(m.Splits)), m.TotalRows(), cos.Plural(int(m.TotalRows())),
		len(m.Parts), cos.Plural(len(m.Parts)), m.Finished.Sub(m.Started))
	return m, nil
}

// abort discards all part files so that a failed job leaves no output
// that looks committed.
func (j *Job) abort(err error) error {
	if errA := j.sink.Abort(); errA != nil {
		nlog.Errorln(j.UUID()+": failed to discard output:", errA)
	}
	return err
}

func (j *Job) newManifest() *Manifest {
	return &Manifest{
		Started:      time.Now(),
		UUID:         j.UUID(),
		Format:       j.format.String(),
		Routing:      j.router.Strategy().String(),
		HashKey:      j.config.Keys.HashKey,
		SortKey:      j.config.Keys.SortKey,
		Parallelism:  j.router.Parallelism(),
		MaxKeyGroups: j.router.MaxKeyGroups(),
		Dedup:        j.config.Output.Dedup,
		SortOutput:   j.config.Output.SortOutput,
	}
}

func (j *Job) runSplit(ctx context.Context, fpath string) (si SplitInfo, err error) {
	si.File = fpath
	defer func() {
		if err != nil {
			si.Err = err.Error()
		}
	}()
	fh, err := os.Open(fpath)
	if err != nil {
		return si, err
	}
	ic := &j.config.Input
	src, err := keyed.NewSource(j.format, fpath, fh, &keyed.SourceArgs{
		BufSize:       int(ic.ReadBufSize),
		MaxRecordSize: ic.MaxRecordSize,
		SkipCRC:       !ic.CRCCheck,
		Sep:           ic.Sep(),
	})
	if err != nil {
		cos.Close(fh)
		return si, err
	}
	r := keyed.NewReader(src, j.config.Keys.HashKey, j.config.Keys.SortKey)
	defer func() {
		cos.Close(r)
		j.report(r, &si)
	}()

	var headerChecked bool
	for {
		if err = ctx.Err(); err != nil {
			return si, err
		}
		var t *keyed.Triple
		t, err = r.Next()
		if err == io.EOF {
			return si, nil
		}
		if err != nil {
			if errors.Is(err, tfrecord.ErrFrameCorrupt) || errors.Is(err, tfrecord.ErrTruncated) {
				j.tracker.Inc(stats.CorruptCount)
			} else {
				j.tracker.Inc(stats.ErrCount)
			}
			return si, errors.Wrapf(err, "split %q", fpath)
		}
		if !headerChecked {
			if err = j.checkHeader(src); err != nil {
				return si, errors.Wrapf(err, "split %q", fpath)
			}
			headerChecked = true
		}
		if err = j.route(t); err != nil {
			return si, errors.Wrapf(err, "split %q", fpath)
		}
	}
}

func (j *Job) checkHeader(src keyed.Source) error {
	cs, ok := src.(*keyed.CSVSource)
	if !ok {
		return nil
	}
	hdr, err := cs.Header()
	if err != nil {
		return err
	}
	return j.csv.setHeader(hdr.Names())
}

func (j *Job) route(t *keyed.Triple) error {
	key := t.Hash
	if j.selector != nil {
		key = j.selector.Key(t.Hash)
	}
	ch, err := j.router.Channel(key)
	if err != nil {
		j.tracker.Inc(stats.ErrCount)
		return err
	}
	j.tracker.AddWith(stats.RoutedCount, 1, map[string]string{stats.LabelChannel: strconv.Itoa(ch)})
	return j.collectors[ch].Add(t)
}

func (j *Job) report(r *keyed.Reader, si *SplitInfo) {
	st := r.Stats()
	si.Read, si.Emitted = st.Read, st.Emitted
	j.tracker.Add(stats.ReadCount, st.Read)
	for _, reason := range keyed.DropReasons() {
		n := st.Dropped[reason]
		if n == 0 {
			continue
		}
		if si.Dropped == nil {
			si.Dropped = make(map[string]int64, 2)
		}
		si.Dropped[reason.String()] = n
		j.tracker.AddWith(stats.DropCount, n, map[string]string{stats.LabelReason: reason.String()})
	}
}

func (j *Job) cleanup() {
	if j.db != nil {
		if err := j.db.Close(); err != nil {
			nlog.Warningln("sample store:", err)
		}
		j.db = nil
	}
}
