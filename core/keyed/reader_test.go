// Package keyed turns raw records into (hash key, sort key, raw record)
// triples, the unit every downstream join stage operates on.
/*
 * Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
 */
package keyed_test

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"github.com/NVIDIA/xjoin/cmn/cos"
	"github.com/NVIDIA/xjoin/core/csvrec"
	"github.com/NVIDIA/xjoin/core/example"
	"github.com/NVIDIA/xjoin/core/keyed"
	"github.com/NVIDIA/xjoin/core/tfrecord"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func tfstream(payloads ...[]byte) *bytes.Buffer {
	buf := &bytes.Buffer{}
	w := tfrecord.NewWriter(buf)
	for _, p := range payloads {
		Expect(w.WriteRecord(p)).To(Succeed())
	}
	return buf
}

func ex(id string, ts int64) []byte {
	return example.NewBuilder().Strings("id", id).Int64("ts", ts).Float("score", 0.5).Marshal()
}

func drain(r *keyed.Reader) (triples []*keyed.Triple, err error) {
	for {
		var t *keyed.Triple
		if t, err = r.Next(); err != nil {
			return
		}
		triples = append(triples, t)
	}
}

var _ = Describe("Reader", func() {
	Context("tf.Example records", func() {
		It("should extract both keys and keep the raw payload", func() {
			p1, p2 := ex("u1", 100), ex("u2", -7)
			src := keyed.NewTFRecordSource("s", tfstream(p1, p2), nil)
			r := keyed.NewReader(src, "id", "ts")

			triples, err := drain(r)
			Expect(err).To(Equal(io.EOF))
			Expect(triples).To(HaveLen(2))
			Expect(string(triples[0].Hash)).To(Equal("u1"))
			Expect(string(triples[0].Sort)).To(Equal("100"))
			Expect(triples[0].Raw).To(Equal(p1))
			Expect(string(triples[1].Sort)).To(Equal("-7"))
			Expect(r.Stats().Emitted).To(BeEquivalentTo(2))
		})

		It("should format float keys", func() {
			src := keyed.NewTFRecordSource("s", tfstream(ex("u1", 1)), nil)
			r := keyed.NewReader(src, "id", "score")
			t, err := r.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(string(t.Sort)).To(Equal("0.5"))
		})

		It("should drop records with missing fields or malformed payloads", func() {
			noTS := example.NewBuilder().Strings("id", "x").Marshal()
			garbage := []byte{0x0a, 0x7f, 0x01}
			src := keyed.NewTFRecordSource("s", tfstream(noTS, ex("a", 1), garbage, ex("b", 2)), nil)
			r := keyed.NewReader(src, "id", "ts")

			triples, err := drain(r)
			Expect(err).To(Equal(io.EOF))
			Expect(triples).To(HaveLen(2))
			Expect(string(triples[0].Hash)).To(Equal("a"))
			Expect(string(triples[1].Hash)).To(Equal("b"))

			stats := r.Stats()
			Expect(stats.Read).To(BeEquivalentTo(4))
			Expect(stats.Dropped[keyed.DropFieldNotFound]).To(BeEquivalentTo(1))
			Expect(stats.Dropped[keyed.DropPayloadMalformed]).To(BeEquivalentTo(1))
			Expect(stats.TotalDropped() + stats.Emitted).To(Equal(stats.Read))
		})

		It("should surface a corrupt frame as terminal", func() {
			stream := tfstream(ex("a", 1), ex("b", 2)).Bytes()
			stream[len(stream)-1] ^= 0x01
			r := keyed.NewReader(keyed.NewTFRecordSource("s", bytes.NewReader(stream), nil), "id", "ts")

			t, err := r.Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(string(t.Hash)).To(Equal("a"))
			_, err = r.Next()
			Expect(errors.Is(err, tfrecord.ErrFrameCorrupt)).To(BeTrue())
		})

		It("should surface a truncated stream as terminal", func() {
			stream := tfstream(ex("a", 1)).Bytes()
			r := keyed.NewReader(keyed.NewTFRecordSource("s", bytes.NewReader(stream[:len(stream)-2]), nil), "id", "ts")
			_, err := r.Next()
			Expect(errors.Is(err, tfrecord.ErrTruncated)).To(BeTrue())
		})
	})

	Context("delimited records", func() {
		It("should resolve columns from the header", func() {
			src := keyed.NewCSVSource("c", strings.NewReader("ts,x,id\n5,q,u1\n6,r,u2\n"), nil)
			r := keyed.NewReader(src, "id", "ts")

			triples, err := drain(r)
			Expect(err).To(Equal(io.EOF))
			Expect(triples).To(HaveLen(2))
			Expect(string(triples[1].Hash)).To(Equal("u2"))
			Expect(string(triples[1].Sort)).To(Equal("6"))
			Expect(string(triples[1].Raw)).To(Equal("6,r,u2"))
		})

		It("should drop short and invalid lines", func() {
			src := keyed.NewCSVSource("c", strings.NewReader("a,b,c\n1\n\xff,2,3\n1,2,3\n"), nil)
			r := keyed.NewReader(src, "c", "a")

			triples, err := drain(r)
			Expect(err).To(Equal(io.EOF))
			Expect(triples).To(HaveLen(1))
			Expect(string(triples[0].Hash)).To(Equal("3"))
			Expect(r.Stats().Dropped[keyed.DropRecordMalformed]).To(BeEquivalentTo(2))
		})

		It("should fail the stream when a key is not in the header", func() {
			src := keyed.NewCSVSource("c", strings.NewReader("a,b\n1,2\n"), nil)
			r := keyed.NewReader(src, "a", "zz")
			_, err := r.Next()
			Expect(errors.Is(err, cos.ErrFieldNotFound)).To(BeTrue())
			Expect(r.Stats().Read).To(BeZero())
		})

		It("should return EOF on an empty stream", func() {
			r := keyed.NewReader(keyed.NewCSVSource("c", strings.NewReader(""), nil), "a", "b")
			_, err := r.Next()
			Expect(err).To(Equal(io.EOF))
		})

		It("should honor a custom separator", func() {
			src, err := keyed.NewSource(keyed.FormatCSV, "c", strings.NewReader("a|b\nx,1|y\n"), &keyed.SourceArgs{Sep: '|'})
			Expect(err).NotTo(HaveOccurred())
			t, err := keyed.NewReader(src, "a", "b").Next()
			Expect(err).NotTo(HaveOccurred())
			Expect(string(t.Hash)).To(Equal("x,1"))
		})
	})

	It("should parse formats", func() {
		f, err := keyed.ParseFormat("CSV")
		Expect(err).NotTo(HaveOccurred())
		Expect(f).To(Equal(keyed.FormatCSV))
		_, err = keyed.ParseFormat("parquet")
		Expect(err).To(HaveOccurred())
	})

	It("should close the underlying stream", func() {
		rc := &closer{Reader: strings.NewReader("a,b\n")}
		r := keyed.NewReader(keyed.NewCSVSource("c", rc, &csvrec.ReaderArgs{}), "a", "b")
		Expect(r.Close()).To(Succeed())
		Expect(rc.closed).To(BeTrue())
	})
})

type closer struct {
	io.Reader
	closed bool
}

func (c *closer) Close() error { c.closed = true; return nil }
