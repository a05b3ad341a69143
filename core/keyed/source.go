/*
 * Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
 */
package keyed

import (
	"fmt"
	"io"
	"strings"

	"github.com/NVIDIA/xjoin/core/csvrec"
	"github.com/NVIDIA/xjoin/core/tfrecord"
)

// input formats
const (
	FormatTFRecord Format = iota
	FormatCSV
)

type (
	Format int

	// Record is one raw record as read from a Source.
	Record struct {
		Raw    []byte
		Fields []string // delimited records only
		Line   int64    // 1-based ordinal within the source
	}

	// Source yields raw records from a single stream. Both implementations
	// are single-owner and release the stream on Close.
	Source interface {
		Next() (*Record, error)
		Close() error
		Name() string
	}

	SourceArgs struct {
		BufSize       int
		MaxRecordSize int64 // tfrecord only
		SkipCRC       bool  // ditto
		Sep           byte  // csv only
	}

	TFRecordSource struct {
		r    *tfrecord.Reader
		name string
	}

	CSVSource struct {
		r    *csvrec.Reader
		name string
	}
)

// interface guard
var (
	_ Source = (*TFRecordSource)(nil)
	_ Source = (*CSVSource)(nil)
)

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "tfrecord":
		return FormatTFRecord, nil
	case "csv":
		return FormatCSV, nil
	}
	return 0, fmt.Errorf("unknown input format %q", s)
}

func (f Format) String() string {
	switch f {
	case FormatTFRecord:
		return "tfrecord"
	case FormatCSV:
		return "csv"
	}
	return fmt.Sprintf("format(%d)", int(f))
}

// NewSource opens a record source of the given format over r; `name`
// identifies the stream in logs and errors.
func NewSource(format Format, name string, r io.Reader, args *SourceArgs) (Source, error) {
	var a SourceArgs
	if args != nil {
		a = *args
	}
	switch format {
	case FormatTFRecord:
		return NewTFRecordSource(name, r, &tfrecord.ReaderArgs{
			BufSize:       a.BufSize,
			MaxRecordSize: a.MaxRecordSize,
			SkipCRC:       a.SkipCRC,
		}), nil
	case FormatCSV:
		return NewCSVSource(name, r, &csvrec.ReaderArgs{BufSize: a.BufSize, Sep: a.Sep}), nil
	}
	return nil, fmt.Errorf("%s: unsupported %s", name, format)
}

////////////////////
// TFRecordSource //
////////////////////

func NewTFRecordSource(name string, r io.Reader, args *tfrecord.ReaderArgs) *TFRecordSource {
	return &TFRecordSource{r: tfrecord.NewReader(r, args), name: name}
}

func (s *TFRecordSource) Name() string { return s.name }
func (s *TFRecordSource) Close() error { return s.r.Close() }

func (s *TFRecordSource) Next() (*Record, error) {
	payload, err := s.r.Read()
	if err != nil {
		return nil, err
	}
	return &Record{Raw: payload, Line: s.r.Count()}, nil
}

///////////////
// CSVSource //
///////////////

func NewCSVSource(name string, r io.Reader, args *csvrec.ReaderArgs) *CSVSource {
	return &CSVSource{r: csvrec.NewReader(r, args), name: name}
}

func (s *CSVSource) Name() string                    { return s.name }
func (s *CSVSource) Close() error                    { return s.r.Close() }
func (s *CSVSource) Header() (*csvrec.Header, error) { return s.r.Header() }

func (s *CSVSource) Next() (*Record, error) {
	rec, err := s.r.Next()
	if err != nil {
		return nil, err
	}
	return &Record{Raw: rec.Raw, Fields: rec.Fields, Line: rec.Line}, nil
}
