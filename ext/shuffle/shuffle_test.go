/*
 * Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
 */
package shuffle_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/NVIDIA/xjoin/cmn"
	"github.com/NVIDIA/xjoin/core/example"
	"github.com/NVIDIA/xjoin/core/route"
	"github.com/NVIDIA/xjoin/core/tfrecord"
	"github.com/NVIDIA/xjoin/ext/shuffle"
	"github.com/NVIDIA/xjoin/stats"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func sample(id string, ts int64) []byte {
	return example.NewBuilder().Strings("id", id).Int64("ts", ts).Marshal()
}

func writeSplit(dir, name string, payloads ...[]byte) string {
	fqn := filepath.Join(dir, name)
	fh, err := os.Create(fqn)
	Expect(err).NotTo(HaveOccurred())
	w := tfrecord.NewWriter(fh)
	for _, p := range payloads {
		Expect(w.WriteRecord(p)).To(Succeed())
	}
	Expect(fh.Close()).To(Succeed())
	return fqn
}

func writeFile(dir, name, content string) string {
	fqn := filepath.Join(dir, name)
	Expect(os.WriteFile(fqn, []byte(content), 0o644)).To(Succeed())
	return fqn
}

// readTFParts returns decoded payloads per bucket, in part-file order.
func readTFParts(dir string, m *shuffle.Manifest) map[string][][]byte {
	out := make(map[string][][]byte)
	for _, pi := range m.Parts {
		fh, err := os.Open(filepath.Join(dir, pi.Name))
		Expect(err).NotTo(HaveOccurred())
		r := tfrecord.NewReader(fh, nil)
		var n int64
		for {
			payload, err := r.Read()
			if err == io.EOF {
				break
			}
			Expect(err).NotTo(HaveOccurred())
			out[pi.Bucket] = append(out[pi.Bucket], bytes.Clone(payload))
			n++
		}
		Expect(r.Close()).To(Succeed())
		Expect(n).To(Equal(pi.Rows))
	}
	return out
}

// listFiles returns all regular files under dir.
func listFiles(dir string) (files []string) {
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err == nil && d.Type().IsRegular() {
			files = append(files, path)
		}
		return err
	})
	Expect(err).NotTo(HaveOccurred())
	return files
}

func idOf(payload []byte) string {
	ex, err := example.Parse(payload)
	Expect(err).NotTo(HaveOccurred())
	v, err := ex.Field("id")
	Expect(err).NotTo(HaveOccurred())
	return string(v)
}

func tsOf(payload []byte) int64 {
	ex, err := example.Parse(payload)
	Expect(err).NotTo(HaveOccurred())
	v, err := ex.Field("ts")
	Expect(err).NotTo(HaveOccurred())
	n, err := strconv.ParseInt(string(v), 10, 64)
	Expect(err).NotTo(HaveOccurred())
	return n
}

func newConfig(out string, files ...string) *cmn.Config {
	config := cmn.DefaultConfig()
	config.Input.Files = files
	config.Keys = cmn.KeysConf{HashKey: "id", SortKey: "ts"}
	config.Routing.Parallelism = 4
	config.Output.Dir = out
	return config
}

func run(config *cmn.Config) (*shuffle.Manifest, *stats.Tracker) {
	tracker := stats.NewTracker()
	job, err := shuffle.NewJob(config, tracker)
	Expect(err).NotTo(HaveOccurred())
	m, err := job.Run(context.Background())
	Expect(err).NotTo(HaveOccurred())
	return m, tracker
}

var _ = Describe("Job", func() {
	var in, out string

	BeforeEach(func() {
		in = GinkgoT().TempDir()
		out = GinkgoT().TempDir()
	})

	It("should route every record by its hash key", func() {
		var (
			files []string
			total int
		)
		for s := range 3 {
			payloads := make([][]byte, 0, 50)
			for i := range 50 {
				payloads = append(payloads, sample(fmt.Sprintf("user-%d", (s*50+i)%70), int64(i)))
			}
			total += len(payloads)
			files = append(files, writeSplit(in, fmt.Sprintf("split-%d.tfrecord", s), payloads...))
		}
		config := newConfig(out, files...)
		m, tracker := run(config)

		Expect(m.Splits).To(HaveLen(3))
		Expect(m.Parallelism).To(Equal(4))
		Expect(m.MaxKeyGroups).To(Equal(route.DefaultKeyGroups(4)))
		Expect(m.TotalRows()).To(BeEquivalentTo(total))
		Expect(tracker.Get(stats.ReadCount)).To(BeEquivalentTo(total))
		Expect(tracker.Get(stats.RoutedCount)).To(BeEquivalentTo(total))

		router, err := route.New(route.Hashed, 4, 0)
		Expect(err).NotTo(HaveOccurred())
		parts := readTFParts(out, m)
		var n int
		for b, payloads := range parts {
			ch, err := strconv.Atoi(b)
			Expect(err).NotTo(HaveOccurred())
			for _, p := range payloads {
				want, err := router.Channel([]byte(idOf(p)))
				Expect(err).NotTo(HaveOccurred())
				Expect(ch).To(Equal(want))
				n++
			}
		}
		Expect(n).To(Equal(total))

		loaded, err := shuffle.LoadManifest(out)
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded.UUID).To(Equal(m.UUID))
		Expect(loaded.Channels).To(Equal(m.Channels))
		Expect(loaded.Parts).To(Equal(m.Parts))
	})

	It("should count and skip unreadable records", func() {
		noTS := example.NewBuilder().Strings("id", "x").Marshal()
		file := writeSplit(in, "s.tfrecord", sample("a", 1), noTS, []byte{0xff, 0xff}, sample("b", 2))
		m, tracker := run(newConfig(out, file))

		Expect(m.TotalRows()).To(BeEquivalentTo(2))
		Expect(m.Splits[0].Read).To(BeEquivalentTo(4))
		Expect(m.Splits[0].Emitted).To(BeEquivalentTo(2))
		Expect(m.Splits[0].Dropped).To(HaveLen(2))
		Expect(tracker.Get(stats.DropCount)).To(BeEquivalentTo(2))
	})

	It("should fail the job on a corrupt frame and leave no part files", func() {
		good := writeSplit(in, "a.tfrecord", sample("a", 1), sample("b", 2), sample("c", 3))
		file := writeSplit(in, "b.tfrecord", sample("d", 4), sample("e", 5))
		b, err := os.ReadFile(file)
		Expect(err).NotTo(HaveOccurred())
		b[len(b)-1] ^= 0xff
		Expect(os.WriteFile(file, b, 0o644)).To(Succeed())

		config := newConfig(out, good, file)
		config.Input.Workers = 1
		tracker := stats.NewTracker()
		job, err := shuffle.NewJob(config, tracker)
		Expect(err).NotTo(HaveOccurred())
		m, err := job.Run(context.Background())
		Expect(err).To(MatchError(tfrecord.ErrFrameCorrupt))
		Expect(m.Splits[0].Err).To(BeEmpty())
		Expect(m.Splits[1].Err).NotTo(BeEmpty())
		Expect(tracker.Get(stats.CorruptCount)).To(BeEquivalentTo(1))
		Expect(listFiles(out)).To(BeEmpty())
	})

	It("should roll part files", func() {
		payloads := make([][]byte, 25)
		for i := range payloads {
			payloads[i] = sample("same", int64(i))
		}
		config := newConfig(out, writeSplit(in, "s.tfrecord", payloads...))
		config.Routing.Parallelism = 1
		config.Output.RollRows = 10
		m, tracker := run(config)

		Expect(m.Parts).To(HaveLen(3))
		rows := []int64{m.Parts[0].Rows, m.Parts[1].Rows, m.Parts[2].Rows}
		sort.Slice(rows, func(i, j int) bool { return rows[i] > rows[j] })
		Expect(rows).To(Equal([]int64{10, 10, 5}))
		Expect(tracker.Get(stats.RollCount)).To(BeEquivalentTo(3))

		entries, err := os.ReadDir(filepath.Join(out, "0"))
		Expect(err).NotTo(HaveOccurred())
		for _, e := range entries {
			Expect(e.Name()).NotTo(HaveSuffix(".inprogress"))
		}
	})

	It("should drop duplicate samples", func() {
		file1 := writeSplit(in, "s1.tfrecord", sample("a", 1), sample("a", 1), sample("a", 2))
		file2 := writeSplit(in, "s2.tfrecord", sample("a", 1), sample("b", 1))
		config := newConfig(out, file1, file2)
		config.Output.Dedup = true
		m, tracker := run(config)

		Expect(m.TotalRows()).To(BeEquivalentTo(3))
		Expect(tracker.Get(stats.DupCount)).To(BeEquivalentTo(2))
		var dups int64
		for _, ci := range m.Channels {
			dups += ci.Dups
		}
		Expect(dups).To(BeEquivalentTo(2))
	})

	It("should emit ordered by sort key, then hash key", func() {
		payloads := [][]byte{sample("b", 3), sample("a", 3), sample("c", 1), sample("a", 10), sample("b", 2)}
		config := newConfig(out, writeSplit(in, "s.tfrecord", payloads...))
		config.Routing.Parallelism = 1
		config.Output.SortOutput = true
		m, _ := run(config)

		got := readTFParts(out, m)["0"]
		Expect(got).To(HaveLen(5))
		var keys []string
		for _, p := range got {
			keys = append(keys, fmt.Sprintf("%d/%s", tsOf(p), idOf(p)))
		}
		// sort keys compare as bytes
		Expect(keys).To(Equal([]string{"1/c", "10/a", "2/b", "3/a", "3/b"}))
	})

	It("should produce matching checksums for two parties", func() {
		ids := []string{"k1", "k2", "k3", "k4", "k5", "k6", "k7", "k8"}
		var left, right [][]byte
		for i, id := range ids {
			left = append(left, sample(id, int64(i)))
			right = append(right, sample(id, int64(100+i)))
		}
		// different split layout and record order on each side
		l1 := writeSplit(in, "l1.tfrecord", left[:5]...)
		l2 := writeSplit(in, "l2.tfrecord", left[5:]...)
		for i, j := 0, len(right)-1; i < j; i, j = i+1, j-1 {
			right[i], right[j] = right[j], right[i]
		}
		r1 := writeSplit(in, "r1.tfrecord", right...)

		outL, outR := filepath.Join(out, "left"), filepath.Join(out, "right")
		mL, _ := run(newConfig(outL, l1, l2))
		mR, _ := run(newConfig(outR, r1))

		Expect(mL.Channels).To(HaveLen(4))
		for ch := range mL.Channels {
			Expect(mL.Channels[ch].Rows).To(Equal(mR.Channels[ch].Rows))
			Expect(mL.Channels[ch].Sum).To(Equal(mR.Channels[ch].Sum))
		}
	})

	It("should route explicitly by bucket", func() {
		ids := []string{"u1", "u2", "u3", "u4", "u5", "u6"}
		payloads := make([][]byte, 0, len(ids))
		for i, id := range ids {
			payloads = append(payloads, sample(id, int64(i)))
		}
		config := newConfig(out, writeSplit(in, "s.tfrecord", payloads...))
		config.Routing.Strategy = cmn.RoutingExplicit
		config.Routing.BucketNum = 3
		config.Routing.FanOut = 2
		m, _ := run(config)
		Expect(m.Routing).To(Equal("explicit"))

		bs, err := route.NewBucketSelector(3, 2)
		Expect(err).NotTo(HaveOccurred())
		for b, got := range readTFParts(out, m) {
			for _, p := range got {
				Expect(strconv.Itoa(bs.Select([]byte(idOf(p))))).To(Equal(b))
			}
		}
	})

	It("should pass csv lines through under the common header", func() {
		f1 := writeFile(in, "a.csv", "id,ts,v\nu1,1,x\nu2,2,y\n")
		f2 := writeFile(in, "b.csv", "id,ts,v\nu1,3,z\nbroken\n")
		config := newConfig(out, f1, f2)
		config.Input.Format = cmn.FormatCSV
		config.Routing.Parallelism = 1
		m, tracker := run(config)

		Expect(m.TotalRows()).To(BeEquivalentTo(3))
		Expect(tracker.Get(stats.DropCount)).To(BeEquivalentTo(1))
		Expect(m.Parts).To(HaveLen(1))
		b, err := os.ReadFile(filepath.Join(out, m.Parts[0].Name))
		Expect(err).NotTo(HaveOccurred())
		lines := strings.Split(strings.TrimSuffix(string(b), "\n"), "\n")
		Expect(lines[0]).To(Equal("id,ts,v"))
		Expect(lines[1:]).To(ConsistOf("u1,1,x", "u2,2,y", "u1,3,z"))
	})

	It("should reject splits with different headers", func() {
		f1 := writeFile(in, "a.csv", "id,ts\nu1,1\n")
		f2 := writeFile(in, "b.csv", "ts,id\n2,u2\n")
		config := newConfig(out, f1, f2)
		config.Input.Format = cmn.FormatCSV
		config.Input.Workers = 1
		job, err := shuffle.NewJob(config, nil)
		Expect(err).NotTo(HaveOccurred())
		_, err = job.Run(context.Background())
		Expect(err).To(MatchError(ContainSubstring("header mismatch")))
	})

	It("should stop when canceled", func() {
		config := newConfig(out, writeSplit(in, "s.tfrecord", sample("a", 1)))
		job, err := shuffle.NewJob(config, nil)
		Expect(err).NotTo(HaveOccurred())
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = job.Run(ctx)
		Expect(err).To(MatchError(context.Canceled))
	})

	It("should reject bad configs", func() {
		_, err := shuffle.NewJob(newConfig(out), nil)
		Expect(err).To(HaveOccurred())

		config := newConfig(out, "x")
		config.Keys.SortKey = ""
		_, err = shuffle.NewJob(config, nil)
		Expect(err).To(MatchError(cmn.ErrInvalidConfig))
	})
})
