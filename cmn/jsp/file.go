// Package jsp (JSON persistence) provides utilities to store and load arbitrary
// JSON-encoded structures with optional checksumming and compression.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package jsp

import (
	"os"
	"path/filepath"

	"github.com/NVIDIA/xjoin/cmn/cos"
	"github.com/NVIDIA/xjoin/cmn/nlog"
)

//////////////////
// main methods //
//////////////////

func SaveMeta(fpath string, meta Opts) error { return Save(fpath, meta, meta.JspOpts()) }

// Save writes atomically: encode into a temp file in the same directory, then rename.
func Save(fpath string, v any, opts Options) (err error) {
	var (
		file *os.File
		tmp  = fpath + ".tmp." + cos.GenTie()
	)
	if err = cos.CreateDir(filepath.Dir(fpath)); err != nil {
		return
	}
	if file, err = cos.CreateFile(tmp); err != nil {
		return
	}
	defer func() {
		if err != nil {
			if errRm := os.Remove(tmp); errRm != nil && !os.IsNotExist(errRm) {
				nlog.Errorf("failed to remove %s: %v", tmp, errRm)
			}
		}
	}()
	if err = Encode(file, v, opts); err != nil {
		cos.Close(file)
		return
	}
	if err = file.Close(); err != nil {
		return
	}
	return os.Rename(tmp, fpath)
}

func LoadMeta(fpath string, meta Opts) error { return Load(fpath, meta, meta.JspOpts()) }

func Load(fpath string, v any, opts Options) error {
	file, err := os.Open(fpath)
	if err != nil {
		return err
	}
	defer cos.Close(file)
	err = Decode(file, v, opts, fpath)
	if IsErrBadCksum(err) {
		nlog.Errorf("%v: keeping %s for inspection", err, fpath)
	}
	return err
}
