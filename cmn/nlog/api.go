// Package nlog - xjoin logger, provides buffering, timestamping, and flushing
/*
 * Copyright (c) 2023-2026, NVIDIA CORPORATION. All rights reserved.
 */
package nlog

import (
	"io"
	"time"
)

func InfoDepth(depth int, args ...any)    { log(sevInfo, depth, "", args...) }
func Infoln(args ...any)                  { log(sevInfo, 0, "", args...) }
func Infof(format string, args ...any)    { log(sevInfo, 0, format, args...) }
func Warningln(args ...any)               { log(sevWarn, 0, "", args...) }
func Warningf(format string, args ...any) { log(sevWarn, 0, format, args...) }
func ErrorDepth(depth int, args ...any)   { log(sevErr, depth, "", args...) }
func Errorln(args ...any)                 { log(sevErr, 0, "", args...) }
func Errorf(format string, args ...any)   { log(sevErr, 0, format, args...) }

// SetOutput redirects all severities to w (default: os.Stderr);
// pending buffered lines are flushed to the previous writer first.
func SetOutput(w io.Writer) { nl.setOutput(w) }

// SetTitle sets the prefix written once, at the top of the next output.
func SetTitle(s string) { nl.setTitle(s) }

// SetFlushInterval bounds how long info lines may sit in the buffer.
func SetFlushInterval(d time.Duration) { nl.setFlushInterval(d) }

func Flush() { nl.flush() }
