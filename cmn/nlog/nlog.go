// Package nlog - xjoin logger, provides buffering, timestamping, and flushing
/*
 * Copyright (c) 2023-2026, NVIDIA CORPORATION. All rights reserved.
 */
package nlog

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"
	"time"
)

const (
	nlogBufSize   = 64 * 1024
	nlogFlushSize = nlogBufSize / 2
	nlogFlushIval = 10 * time.Second
)

type severity int

const (
	sevInfo severity = iota
	sevWarn
	sevErr
)

var sevChar = [...]byte{'I', 'W', 'E'}

type nlog struct {
	out       io.Writer
	bw        *bufio.Writer
	title     string
	last      time.Time
	flushIval time.Duration
	line      []byte
	mw        sync.Mutex
}

var nl = newNlog(os.Stderr)

func newNlog(w io.Writer) *nlog {
	return &nlog{
		out:       w,
		bw:        bufio.NewWriterSize(w, nlogBufSize),
		flushIval: nlogFlushIval,
		last:      time.Now(),
		line:      make([]byte, 0, 256),
	}
}

// main function
func log(sev severity, depth int, format string, args ...any) {
	nl.mw.Lock()
	nl.line = nl.line[:0]
	nl.line = sprintf(nl.line, sev, depth+2, format, args...)
	if nl.title != "" {
		nl.bw.WriteString(nl.title)
		nl.bw.WriteByte('\n')
		nl.title = ""
	}
	nl.bw.Write(nl.line)

	// warnings and errors are never held back
	now := time.Now()
	if sev >= sevWarn || nl.bw.Buffered() >= nlogFlushSize || now.Sub(nl.last) > nl.flushIval {
		nl.bw.Flush()
		nl.last = now
	}
	nl.mw.Unlock()
}

func sprintf(b []byte, sev severity, depth int, format string, args ...any) []byte {
	_, fn, ln, ok := runtime.Caller(depth + 1)
	if !ok {
		fn, ln = "???", 1
	}
	b = append(b, sevChar[sev], ' ')
	b = time.Now().AppendFormat(b, "15:04:05.000000")
	b = append(b, ' ')
	b = append(b, filepath.Base(fn)...)
	b = append(b, ':')
	b = strconv.AppendInt(b, int64(ln), 10)
	b = append(b, ' ')
	if format == "" {
		b = fmt.Appendln(b, args...)
	} else {
		b = fmt.Appendf(b, format, args...)
		if l := len(b); l == 0 || b[l-1] != '\n' {
			b = append(b, '\n')
		}
	}
	return b
}

func (nlog *nlog) flush() {
	nlog.mw.Lock()
	nlog.bw.Flush()
	nlog.last = time.Now()
	nlog.mw.Unlock()
}

func (nlog *nlog) setOutput(w io.Writer) {
	nlog.mw.Lock()
	nlog.bw.Flush()
	nlog.out = w
	nlog.bw.Reset(w)
	nlog.mw.Unlock()
}

func (nlog *nlog) setTitle(s string) {
	nlog.mw.Lock()
	nlog.title = s
	nlog.mw.Unlock()
}

func (nlog *nlog) setFlushInterval(d time.Duration) {
	nlog.mw.Lock()
	nlog.flushIval = d
	nlog.mw.Unlock()
}
