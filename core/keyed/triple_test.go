// Package keyed turns raw records into (hash key, sort key, raw record)
// triples, the unit every downstream join stage operates on.
/*
 * Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
 */
package keyed_test

import (
	"bytes"
	"slices"

	"github.com/NVIDIA/xjoin/core/keyed"
	"github.com/tinylib/msgp/msgp"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Triple", func() {
	It("should build and split sample keys", func() {
		t := &keyed.Triple{Hash: []byte("a#b"), Sort: []byte("42")}
		Expect(string(t.SampleKey())).To(Equal("a#b#42"))
		hash, sort, ok := keyed.SplitSampleKey(t.SampleKey())
		Expect(ok).To(BeTrue())
		Expect(string(hash)).To(Equal("a#b"))
		Expect(string(sort)).To(Equal("42"))

		_, _, ok = keyed.SplitSampleKey([]byte("nosep"))
		Expect(ok).To(BeFalse())
	})

	It("should keep store keys distinct when keys contain the separator", func() {
		t1 := &keyed.Triple{Hash: []byte("a#b"), Sort: []byte("c")}
		t2 := &keyed.Triple{Hash: []byte("a"), Sort: []byte("b#c")}
		Expect(t1.SampleKey()).To(Equal(t2.SampleKey()))
		Expect(string(t1.StoreKey())).To(Equal("3:a#b#c"))
		Expect(string(t2.StoreKey())).To(Equal("1:a#b#c"))
	})

	It("should order by sort key, then hash key", func() {
		triples := []*keyed.Triple{
			{Hash: []byte("b"), Sort: []byte("2")},
			{Hash: []byte("c"), Sort: []byte("1")},
			{Hash: []byte("a"), Sort: []byte("2")},
		}
		slices.SortFunc(triples, keyed.Compare)
		Expect(string(triples[0].Hash)).To(Equal("c"))
		Expect(string(triples[1].Hash)).To(Equal("a"))
		Expect(string(triples[2].Hash)).To(Equal("b"))

		for i := 1; i < len(triples); i++ {
			Expect(keyed.CompareSampleKeys(triples[i-1].SampleKey(), triples[i].SampleKey())).To(Equal(-1))
		}
	})

	It("should encode with msgp", func() {
		in := &keyed.Triple{Hash: []byte("h"), Sort: []byte{}, Raw: bytes.Repeat([]byte{0xab}, 300)}

		b, err := in.MarshalMsg(nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(len(b)).To(BeNumerically("<=", in.Msgsize()))
		out := &keyed.Triple{}
		rest, err := out.UnmarshalMsg(b)
		Expect(err).NotTo(HaveOccurred())
		Expect(rest).To(BeEmpty())
		Expect(out.Raw).To(Equal(in.Raw))
		Expect(string(out.Hash)).To(Equal("h"))

		buf := &bytes.Buffer{}
		w := msgp.NewWriter(buf)
		Expect(in.EncodeMsg(w)).To(Succeed())
		Expect(in.EncodeMsg(w)).To(Succeed())
		Expect(w.Flush()).To(Succeed())
		r := msgp.NewReader(buf)
		for range 2 {
			out = &keyed.Triple{}
			Expect(out.DecodeMsg(r)).To(Succeed())
			Expect(out.Raw).To(Equal(in.Raw))
		}
	})

	It("should compare encoded triples", func() {
		x := &keyed.Triple{Hash: []byte("b"), Sort: []byte("1"), Raw: []byte("zzz")}
		y := &keyed.Triple{Hash: []byte("a"), Sort: []byte("2"), Raw: []byte("a")}
		bx, err := x.MarshalMsg(nil)
		Expect(err).NotTo(HaveOccurred())
		by, err := y.MarshalMsg(nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(keyed.CompareMsg(bx, by)).To(Equal(keyed.Compare(x, y)))
		Expect(keyed.CompareMsg(by, bx)).To(Equal(1))
		Expect(keyed.CompareMsg(bx, bx)).To(BeZero())
	})

	It("should reject a wrong tuple size", func() {
		b := msgp.AppendArrayHeader(nil, 2)
		b = msgp.AppendBytes(b, []byte("h"))
		b = msgp.AppendBytes(b, []byte("s"))
		_, err := (&keyed.Triple{}).UnmarshalMsg(b)
		Expect(err).To(HaveOccurred())
	})
})
