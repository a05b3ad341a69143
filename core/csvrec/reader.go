// Package csvrec reads delimited text records: one header line naming the
// columns, then one record per line.
//
// Format constraint: there is no quoting or escaping. A separator character
// inside a value is indistinguishable from a delimiter, and such a line
// splits into more fields than intended.
/*
 * Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
 */
package csvrec

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/NVIDIA/xjoin/cmn/cos"
)

const (
	DefaultSep     = ','
	DefaultBufSize = 4 * cos.KiB
)

var (
	ErrRecordMalformed = errors.New("record malformed")
	ErrFieldNotFound   = cos.ErrFieldNotFound
	ErrClosed          = errors.New("reader closed")
)

type (
	ReaderArgs struct {
		BufSize int
		Sep     byte // zero selects DefaultSep
	}

	// Record is one data line split into fields.
	Record struct {
		Fields []string
		Raw    []byte // the line without its terminator
		Line   int64  // 1-based line number in the stream (header is line 1)
	}

	// Reader is stateful over one stream: the header is read and indexed at
	// most once, on first use. Not safe for concurrent use.
	Reader struct {
		src    io.Reader
		br     *bufio.Reader
		hdr    *Header
		hdrErr error
		line   int64
		sep    string
	}
)

func NewReader(r io.Reader, args *ReaderArgs) *Reader {
	var a ReaderArgs
	if args != nil {
		a = *args
	}
	if a.BufSize <= 0 {
		a.BufSize = DefaultBufSize
	}
	if a.Sep == 0 {
		a.Sep = DefaultSep
	}
	return &Reader{
		src: r,
		br:  bufio.NewReaderSize(r, a.BufSize),
		sep: string(a.Sep),
	}
}

// Header returns the column index, reading the first line if not done yet.
// An empty stream yields io.EOF.
func (r *Reader) Header() (*Header, error) {
	if r.hdr != nil || r.hdrErr != nil {
		return r.hdr, r.hdrErr
	}
	if r.br == nil {
		return nil, ErrClosed
	}
	line, err := r.readLine()
	if err != nil {
		r.hdrErr = err
		return nil, err
	}
	if !utf8.Valid(line) {
		r.hdrErr = fmt.Errorf("%w: header is not valid UTF-8", ErrRecordMalformed)
		return nil, r.hdrErr
	}
	r.hdr = newHeader(strings.Split(string(line), r.sep))
	return r.hdr, nil
}

// Next returns the next data line. ErrRecordMalformed is per-record: the
// offending line has been consumed and the following call moves on.
func (r *Reader) Next() (*Record, error) {
	if _, err := r.Header(); err != nil {
		return nil, err
	}
	if r.br == nil {
		return nil, ErrClosed
	}
	line, err := r.readLine()
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(line) {
		return nil, fmt.Errorf("%w: line %d is not valid UTF-8", ErrRecordMalformed, r.line)
	}
	raw := bytes.Clone(line)
	// NOTE: trailing empty fields are kept ("1,2," has three fields, the last
	// one empty); Java String.split drops them, so a JVM producer would instead
	// reject such a line as too short for a third column
	return &Record{
		Fields: strings.Split(string(raw), r.sep),
		Raw:    raw,
		Line:   r.line,
	}, nil
}

// Close releases the underlying stream (if closable); a partially read
// line is discarded.
func (r *Reader) Close() (err error) {
	if r.br == nil {
		return nil
	}
	r.br = nil
	if c, ok := r.src.(io.Closer); ok {
		err = c.Close()
	}
	r.src = nil
	return err
}

// readLine returns the next line without "\n" or "\r\n"; the final line
// need not be newline-terminated. The returned slice is valid until the next read.
func (r *Reader) readLine() ([]byte, error) {
	line, err := r.br.ReadSlice('\n')
	if err == bufio.ErrBufferFull {
		// long line: fall back to accumulating
		var rest []byte
		buf := bytes.Clone(line)
		rest, err = r.br.ReadBytes('\n')
		line = append(buf, rest...)
	}
	if err != nil && (err != io.EOF || len(line) == 0) {
		return nil, err
	}
	r.line++
	line = bytes.TrimSuffix(line, []byte{'\n'})
	line = bytes.TrimSuffix(line, []byte{'\r'})
	return line, nil
}

// Field returns the i-th field of the record.
func (rec *Record) Field(i int) (string, error) {
	if i < 0 || i >= len(rec.Fields) {
		return "", fmt.Errorf("%w: line %d has %d field%s, need position %d",
			ErrRecordMalformed, rec.Line, len(rec.Fields), cos.Plural(len(rec.Fields)), i)
	}
	return rec.Fields[i], nil
}
