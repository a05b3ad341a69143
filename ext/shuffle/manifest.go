/*
 * Copyright (c) 2026, NVIDIA CORPORATION. All rights reserved.
 */
package shuffle

import (
	"path/filepath"
	"time"

	"github.com/NVIDIA/xjoin/cmn/jsp"
)

const (
	ManifestName = "manifest.json"
	manifestVer  = 1
)

type (
	SplitInfo struct {
		Dropped map[string]int64 `json:"dropped,omitempty"`
		File    string           `json:"file"`
		Err     string           `json:"err,omitempty"`
		Read    int64            `json:"read"`
		Emitted int64            `json:"emitted"`
	}

	// Manifest summarizes a completed job; two parties compare their
	// per-channel checksums to verify they produced matching outputs.
	Manifest struct {
		Started      time.Time     `json:"started"`
		Finished     time.Time     `json:"finished"`
		UUID         string        `json:"uuid"`
		Format       string        `json:"format"`
		Routing      string        `json:"routing"`
		HashKey      string        `json:"hash_key"`
		SortKey      string        `json:"sort_key"`
		Splits       []SplitInfo   `json:"splits"`
		Channels     []ChannelInfo `json:"channels"`
		Parts        []PartInfo    `json:"parts"`
		Parallelism  int           `json:"parallelism"`
		MaxKeyGroups int           `json:"max_key_groups"`
		Dedup        bool          `json:"dedup"`
		SortOutput   bool          `json:"sort_output"`
	}
)

// interface guard
var _ jsp.Opts = (*Manifest)(nil)

func (*Manifest) JspOpts() jsp.Options { return jsp.CksumSign(manifestVer) }

func (m *Manifest) Save(dir string) error {
	return jsp.SaveMeta(filepath.Join(dir, ManifestName), m)
}

func LoadManifest(dir string) (*Manifest, error) {
	m := &Manifest{}
	if err := jsp.LoadMeta(filepath.Join(dir, ManifestName), m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manifest) TotalRows() (n int64) {
	for i := range m.Channels {
		n += m.Channels[i].Rows
	}
	return
}
