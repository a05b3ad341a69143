// Package csvrec_test: unit tests
/*
 * Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
 */
package csvrec_test

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/NVIDIA/xjoin/core/csvrec"
	"github.com/NVIDIA/xjoin/tools/tassert"
)

type closeCounter struct {
	io.Reader
	closed int
}

func (c *closeCounter) Close() error { c.closed++; return nil }

func TestHeaderAndRecords(t *testing.T) {
	r := csvrec.NewReader(strings.NewReader("a,b,c\n1,2,3\r\n4,5,6"), nil)
	hdr, err := r.Header()
	tassert.CheckFatal(t, err)
	tassert.Fatalf(t, hdr.Len() == 3, "expected 3 columns, got %v", hdr.Names())
	i, err := hdr.Index("b")
	tassert.CheckFatal(t, err)
	tassert.Errorf(t, i == 1, "b at %d", i)

	rec, err := r.Next()
	tassert.CheckFatal(t, err)
	tassert.Errorf(t, strings.Join(rec.Fields, "|") == "1|2|3", "fields %q", rec.Fields)
	tassert.Errorf(t, string(rec.Raw) == "1,2,3", "raw %q (CR must be stripped)", rec.Raw)
	tassert.Errorf(t, rec.Line == 2, "line %d", rec.Line)

	// last line without newline
	rec, err = r.Next()
	tassert.CheckFatal(t, err)
	tassert.Errorf(t, string(rec.Raw) == "4,5,6", "raw %q", rec.Raw)

	_, err = r.Next()
	tassert.Fatalf(t, err == io.EOF, "expected EOF, got %v", err)

	// header is read once and cached
	again, err := r.Header()
	tassert.CheckFatal(t, err)
	tassert.Errorf(t, again == hdr, "header re-read")
}

func TestTrailingEmptyFields(t *testing.T) {
	r := csvrec.NewReader(strings.NewReader("a,b,c\n1,2,\n,,\n"), nil)
	rec, err := r.Next()
	tassert.CheckFatal(t, err)
	tassert.Fatalf(t, len(rec.Fields) == 3, "fields %q", rec.Fields)
	v, err := rec.Field(2)
	tassert.CheckFatal(t, err)
	tassert.Errorf(t, v == "", "c = %q", v)

	rec, err = r.Next()
	tassert.CheckFatal(t, err)
	tassert.Errorf(t, len(rec.Fields) == 3, "fields %q", rec.Fields)
}

func TestNextReadsHeaderFirst(t *testing.T) {
	r := csvrec.NewReader(strings.NewReader("k\nx\n"), nil)
	rec, err := r.Next()
	tassert.CheckFatal(t, err)
	tassert.Errorf(t, string(rec.Raw) == "x", "got %q, header leaked into data", rec.Raw)
}

func TestMissingColumn(t *testing.T) {
	r := csvrec.NewReader(strings.NewReader("a,b\n"), nil)
	hdr, err := r.Header()
	tassert.CheckFatal(t, err)
	_, err = hdr.Index("zz")
	tassert.Fatalf(t, errors.Is(err, csvrec.ErrFieldNotFound), "expected ErrFieldNotFound, got %v", err)
}

func TestShortLine(t *testing.T) {
	r := csvrec.NewReader(strings.NewReader("a,b,c\n1\n7,8,9\n"), nil)
	rec, err := r.Next()
	tassert.CheckFatal(t, err)
	_, err = rec.Field(2)
	tassert.Fatalf(t, errors.Is(err, csvrec.ErrRecordMalformed), "expected ErrRecordMalformed, got %v", err)

	// the short line does not affect the next one
	rec, err = r.Next()
	tassert.CheckFatal(t, err)
	v, err := rec.Field(2)
	tassert.CheckFatal(t, err)
	tassert.Errorf(t, v == "9", "got %q", v)
}

func TestInvalidUTF8(t *testing.T) {
	r := csvrec.NewReader(strings.NewReader("a\n\xff\xfe\nok\n"), nil)
	_, err := r.Next()
	tassert.Fatalf(t, errors.Is(err, csvrec.ErrRecordMalformed), "expected ErrRecordMalformed, got %v", err)
	rec, err := r.Next()
	tassert.CheckFatal(t, err)
	tassert.Errorf(t, string(rec.Raw) == "ok", "got %q", rec.Raw)
}

func TestNoQuoting(t *testing.T) {
	r := csvrec.NewReader(strings.NewReader("a,b\n\"x,y\",z\n"), nil)
	rec, err := r.Next()
	tassert.CheckFatal(t, err)
	tassert.Errorf(t, len(rec.Fields) == 3, "separator inside quotes must split: %q", rec.Fields)
}

func TestSeparator(t *testing.T) {
	r := csvrec.NewReader(strings.NewReader("a\tb\n1,0\t2\n"), &csvrec.ReaderArgs{Sep: '\t'})
	rec, err := r.Next()
	tassert.CheckFatal(t, err)
	tassert.Errorf(t, len(rec.Fields) == 2 && rec.Fields[0] == "1,0", "fields %q", rec.Fields)
}

func TestEmptyStream(t *testing.T) {
	r := csvrec.NewReader(strings.NewReader(""), nil)
	_, err := r.Header()
	tassert.Errorf(t, err == io.EOF, "expected EOF, got %v", err)
	_, err = r.Next()
	tassert.Errorf(t, err == io.EOF, "expected EOF, got %v", err)
}

func TestLongLine(t *testing.T) {
	long := strings.Repeat("x", 10_000)
	r := csvrec.NewReader(strings.NewReader("a,b\n"+long+",1\nq,2\n"), &csvrec.ReaderArgs{BufSize: 16})
	rec, err := r.Next()
	tassert.CheckFatal(t, err)
	tassert.Fatalf(t, len(rec.Fields) == 2 && rec.Fields[0] == long, "long line mangled: %d fields", len(rec.Fields))
	rec, err = r.Next()
	tassert.CheckFatal(t, err)
	tassert.Errorf(t, string(rec.Raw) == "q,2", "got %q", rec.Raw)
}

func TestClose(t *testing.T) {
	src := &closeCounter{Reader: strings.NewReader("a\n1\n2\n")}
	r := csvrec.NewReader(src, nil)
	_, err := r.Next()
	tassert.CheckFatal(t, err)
	tassert.CheckFatal(t, r.Close())
	tassert.CheckFatal(t, r.Close())
	tassert.Errorf(t, src.closed == 1, "closed %d times", src.closed)
	_, err = r.Next()
	tassert.Errorf(t, errors.Is(err, csvrec.ErrClosed), "expected ErrClosed, got %v", err)
}
