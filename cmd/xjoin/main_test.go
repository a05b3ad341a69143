/*
 * Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
 */
package main

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/NVIDIA/xjoin/core/example"
	"github.com/NVIDIA/xjoin/core/tfrecord"
	"github.com/NVIDIA/xjoin/stats"
	"github.com/NVIDIA/xjoin/tools/tassert"
)

func TestMetricsHandler(t *testing.T) {
	tracker := stats.NewTracker()
	tracker.Add(stats.ReadCount, 7)

	srv := httptest.NewServer(metricsMux(tracker))
	defer srv.Close()
	resp, err := http.Get(srv.URL + "/metrics")
	tassert.CheckFatal(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	tassert.CheckFatal(t, err)
	tassert.Fatalf(t, resp.StatusCode == http.StatusOK, "status %d", resp.StatusCode)
	tassert.Errorf(t, strings.Contains(string(b), "xjoin_read_total 7"), "missing counter in:\n%s", b)
}

func TestRunLogsToFile(t *testing.T) {
	var (
		dir    = t.TempDir()
		split  = filepath.Join(dir, "in.tfrecord")
		logDir = filepath.Join(dir, "log")
	)
	fh, err := os.Create(split)
	tassert.CheckFatal(t, err)
	w := tfrecord.NewWriter(fh)
	for i := range 2 {
		payload := example.NewBuilder().Strings("id", fmt.Sprintf("u%d", i)).Int64("ts", int64(i)).Marshal()
		tassert.CheckFatal(t, w.WriteRecord(payload))
	}
	tassert.CheckFatal(t, fh.Close())

	flags.config = filepath.Join(dir, "job.json")
	defer func() { flags.config = "" }()
	conf := fmt.Sprintf(`{
		"input": {"files": [%q]},
		"keys": {"hash_key": "id", "sort_key": "ts"},
		"routing": {"parallelism": 2},
		"output": {"output_dir": %q},
		"log": {"dir": %q, "flush_time": "1h"}
	}`, split, filepath.Join(dir, "out"), logDir)
	tassert.CheckFatal(t, os.WriteFile(flags.config, []byte(conf), 0o644))

	tassert.CheckFatal(t, run())

	b, err := os.ReadFile(filepath.Join(logDir, logName))
	tassert.CheckFatal(t, err)
	log := string(b)
	tassert.Errorf(t, strings.Contains(log, "xjoin started"), "missing title in:\n%s", log)
	tassert.Errorf(t, strings.Contains(log, "routing:"), "missing routing line in:\n%s", log)
	tassert.Errorf(t, strings.Contains(log, "1 split, 2 rows"), "missing job summary in:\n%s", log)
}
