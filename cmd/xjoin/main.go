// Package main is the xjoin command: it ingests input splits per a config
// file and writes per-channel part files plus a manifest.
/*
 * Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
 */
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/NVIDIA/xjoin/cmn"
	"github.com/NVIDIA/xjoin/cmn/cos"
	"github.com/NVIDIA/xjoin/cmn/nlog"
	"github.com/NVIDIA/xjoin/ext/shuffle"
	"github.com/NVIDIA/xjoin/stats"

	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var flags struct {
	config  string
	metrics string
	show    string
	help    bool
}

const (
	logName = "xjoin.log"

	helpMsg = `Examples:
	xjoin -h                                     - show usage
	xjoin -config=job.yaml                       - run a job
	xjoin -config=job.json -metrics=:9090        - run a job, serve Prometheus metrics at :9090/metrics
	xjoin -show=/data/out                        - print the manifest of a completed job
`
)

func main() {
	newFlag := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	newFlag.StringVar(&flags.config, "config", "", "job configuration (JSON, or YAML by extension)")
	newFlag.StringVar(&flags.metrics, "metrics", "", "listen address for Prometheus metrics (optional)")
	newFlag.StringVar(&flags.show, "show", "", "output directory of a completed job")
	newFlag.BoolVar(&flags.help, "h", false, "print usage and exit")
	newFlag.Parse(os.Args[1:])

	if flags.help || len(os.Args[1:]) == 0 {
		fmt.Print(helpMsg)
		os.Exit(0)
	}
	var err error
	if flags.show != "" {
		err = show(flags.show)
	} else {
		err = run()
	}
	nlog.Flush()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func show(dir string) error {
	m, err := shuffle.LoadManifest(dir)
	if err != nil {
		return err
	}
	s, _ := jsoniter.MarshalIndent(m, "", " ")
	_, err = fmt.Println(string(s))
	return err
}

func run() error {
	config, err := cmn.LoadConfig(flags.config)
	if err != nil {
		return err
	}
	if config.Log.Dir != "" {
		closeLog, err := logToFile(config.Log.Dir)
		if err != nil {
			return err
		}
		defer closeLog()
	}
	nlog.SetFlushInterval(config.Log.FlushInterval())
	nlog.SetTitle(fmt.Sprintf("xjoin started %s, config %q", time.Now().Format(time.RFC3339), flags.config))
	cos.InitShortID(uint64(time.Now().UnixNano()))

	tracker := stats.NewTracker()
	if flags.metrics != "" {
		srv := &http.Server{
			Addr:              flags.metrics,
			Handler:           metricsMux(tracker),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				nlog.Errorln("metrics:", err)
			}
		}()
		defer srv.Close()
	}

	job, err := shuffle.NewJob(config, tracker)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	m, err := job.Run(ctx)
	if err != nil {
		return fmt.Errorf("job %s failed: %w", job.UUID(), err)
	}
	fmt.Printf("job %s: %d row%s in %d part%s, manifest %s\n", m.UUID, m.TotalRows(), cos.Plural(int(m.TotalRows())),
		len(m.Parts), cos.Plural(len(m.Parts)), filepath.Join(config.Output.Dir, shuffle.ManifestName))
	return nil
}

// logToFile redirects nlog into dir; the returned func flushes, restores
// stderr, and only then closes the file.
func logToFile(dir string) (func(), error) {
	if err := cos.CreateDir(dir); err != nil {
		return nil, err
	}
	fh, err := os.OpenFile(filepath.Join(dir, logName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	nlog.SetOutput(fh)
	return func() {
		nlog.Flush()
		nlog.SetOutput(os.Stderr)
		if err := fh.Close(); err != nil {
			fmt.Fprintln(os.Stderr, "log:", err)
		}
	}, nil
}

func metricsMux(tracker *stats.Tracker) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(tracker.Registry(), promhttp.HandlerOpts{}))
	return mux
}
