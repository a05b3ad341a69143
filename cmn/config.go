// Package cmn provides common low-level types and utilities for all xjoin projects
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package cmn

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/NVIDIA/xjoin/cmn/cos"
	"github.com/NVIDIA/xjoin/cmn/jsp"

	"gopkg.in/yaml.v3"
)

// input formats
const (
	FormatTFRecord = "tfrecord"
	FormatCSV      = "csv"
)

// routing strategies
const (
	RoutingHashed   = "hashed"
	RoutingExplicit = "explicit"
)

const (
	DefaultReadBufSize   = 64 * cos.KiB
	DefaultMaxRecordSize = 256 * cos.MiB
	DefaultRollRows      = 10240
	DefaultBucketNum     = 64
	DefaultFlushTime     = 10 * time.Second

	maxKeyGroupsLimit = 1 << 15
)

var ErrInvalidConfig = errors.New("invalid config")

type (
	Config struct {
		Input   InputConf   `json:"input" yaml:"input"`
		Keys    KeysConf    `json:"keys" yaml:"keys"`
		Routing RoutingConf `json:"routing" yaml:"routing"`
		Output  OutputConf  `json:"output" yaml:"output"`
		Log     LogConf     `json:"log" yaml:"log"`
	}

	InputConf struct {
		Format        string   `json:"format" yaml:"format"` // tfrecord | csv
		Files         []string `json:"files" yaml:"files"`   // one split per file
		Separator     string   `json:"separator" yaml:"separator"`
		ReadBufSize   int64    `json:"read_buffer_size" yaml:"read_buffer_size"`
		MaxRecordSize int64    `json:"max_record_size" yaml:"max_record_size"`
		Workers       int      `json:"workers" yaml:"workers"` // concurrent splits; zero: one per CPU
		CRCCheck      bool     `json:"crc_check" yaml:"crc_check"`
	}

	KeysConf struct {
		HashKey string `json:"hash_key" yaml:"hash_key"`
		SortKey string `json:"sort_key" yaml:"sort_key"`
	}

	RoutingConf struct {
		Strategy     string `json:"strategy" yaml:"strategy"` // hashed | explicit
		Parallelism  int    `json:"parallelism" yaml:"parallelism"`
		MaxKeyGroups int    `json:"max_key_groups" yaml:"max_key_groups"` // zero: derived from parallelism
		BucketNum    int    `json:"bucket_num" yaml:"bucket_num"`         // explicit routing only
		FanOut       int    `json:"fan_out" yaml:"fan_out"`               // ditto
	}

	OutputConf struct {
		Dir        string `json:"output_dir" yaml:"output_dir"`
		RollRows   int64  `json:"roll_rows" yaml:"roll_rows"`
		BucketIdx  int    `json:"bucket_idx" yaml:"bucket_idx"`
		ValueIdx   int    `json:"value_idx" yaml:"value_idx"`
		Dedup      bool   `json:"dedup" yaml:"dedup"`
		SortOutput bool   `json:"sort_output" yaml:"sort_output"`
	}

	LogConf struct {
		Dir       string `json:"dir" yaml:"dir"` // empty: stderr
		FlushTime string `json:"flush_time" yaml:"flush_time"`
	}
)

// DefaultConfig is the baseline every loaded config is decoded on top of.
func DefaultConfig() *Config {
	return &Config{
		Input: InputConf{
			Format:        FormatTFRecord,
			Separator:     ",",
			ReadBufSize:   DefaultReadBufSize,
			MaxRecordSize: DefaultMaxRecordSize,
			CRCCheck:      true,
		},
		Routing: RoutingConf{
			Strategy:    RoutingHashed,
			Parallelism: 1,
			BucketNum:   DefaultBucketNum,
			FanOut:      1,
		},
		Output: OutputConf{
			RollRows:  DefaultRollRows,
			BucketIdx: 0,
			ValueIdx:  1,
		},
		Log: LogConf{FlushTime: DefaultFlushTime.String()},
	}
}

// LoadConfig reads JSON (default) or YAML (by extension) and validates.
func LoadConfig(fpath string) (*Config, error) {
	config := DefaultConfig()
	switch strings.ToLower(filepath.Ext(fpath)) {
	case ".yaml", ".yml":
		b, err := os.ReadFile(fpath)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, config); err != nil {
			return nil, fmt.Errorf("failed to parse %q: %w", fpath, err)
		}
	default:
		if err := jsp.Load(fpath, config, jsp.Plain()); err != nil {
			return nil, fmt.Errorf("failed to load %q: %w", fpath, err)
		}
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) Validate() error {
	if err := c.Input.Validate(); err != nil {
		return err
	}
	if err := c.Keys.Validate(); err != nil {
		return err
	}
	if err := c.Routing.Validate(); err != nil {
		return err
	}
	if err := c.Output.Validate(); err != nil {
		return err
	}
	return c.Log.Validate()
}

func (c *InputConf) Validate() error {
	c.Format = strings.ToLower(c.Format)
	switch c.Format {
	case "":
		c.Format = FormatTFRecord
	case FormatTFRecord, FormatCSV:
	default:
		return fmt.Errorf("%w: input format %q (expecting %q or %q)", ErrInvalidConfig, c.Format, FormatTFRecord, FormatCSV)
	}
	for i := range c.Files {
		c.Files[i] = cos.ExpandPath(c.Files[i])
	}
	if c.Separator == "" {
		c.Separator = ","
	}
	if len(c.Separator) != 1 || c.Separator == "\n" || c.Separator == "\r" {
		return fmt.Errorf("%w: separator %q must be a single (non-newline) byte", ErrInvalidConfig, c.Separator)
	}
	if c.ReadBufSize < 0 || c.MaxRecordSize < 0 || c.Workers < 0 {
		return fmt.Errorf("%w: negative input sizes (%+v)", ErrInvalidConfig, *c)
	}
	if c.ReadBufSize == 0 {
		c.ReadBufSize = DefaultReadBufSize
	}
	if c.MaxRecordSize == 0 {
		c.MaxRecordSize = DefaultMaxRecordSize
	}
	return nil
}

func (c *KeysConf) Validate() error {
	if c.HashKey == "" || c.SortKey == "" {
		return fmt.Errorf("%w: both hash_key and sort_key must be set (%+v)", ErrInvalidConfig, *c)
	}
	return nil
}

func (c *RoutingConf) Validate() error {
	c.Strategy = strings.ToLower(c.Strategy)
	switch c.Strategy {
	case "":
		c.Strategy = RoutingHashed
	case RoutingHashed, RoutingExplicit:
	default:
		return fmt.Errorf("%w: routing %q (expecting %q or %q)", ErrInvalidConfig, c.Strategy, RoutingHashed, RoutingExplicit)
	}
	if c.Parallelism <= 0 {
		return fmt.Errorf("%w: parallelism %d must be positive", ErrInvalidConfig, c.Parallelism)
	}
	if c.MaxKeyGroups < 0 || c.MaxKeyGroups > maxKeyGroupsLimit {
		return fmt.Errorf("%w: max_key_groups %d not in [0, %d]", ErrInvalidConfig, c.MaxKeyGroups, maxKeyGroupsLimit)
	}
	if c.MaxKeyGroups != 0 && c.Parallelism > c.MaxKeyGroups {
		return fmt.Errorf("%w: parallelism %d exceeds max_key_groups %d", ErrInvalidConfig, c.Parallelism, c.MaxKeyGroups)
	}
	if c.FanOut == 0 {
		c.FanOut = 1
	}
	if c.BucketNum <= 0 || c.FanOut < 0 {
		return fmt.Errorf("%w: bucket_num %d, fan_out %d", ErrInvalidConfig, c.BucketNum, c.FanOut)
	}
	if c.Strategy == RoutingExplicit && c.BucketNum > c.Parallelism {
		return fmt.Errorf("%w: explicit routing: bucket_num %d exceeds parallelism %d", ErrInvalidConfig, c.BucketNum, c.Parallelism)
	}
	return nil
}

func (c *OutputConf) Validate() error {
	if c.Dir == "" {
		return fmt.Errorf("%w: output_dir is required", ErrInvalidConfig)
	}
	c.Dir = cos.ExpandPath(c.Dir)
	if c.RollRows == 0 {
		c.RollRows = DefaultRollRows
	}
	if c.RollRows < 0 {
		return fmt.Errorf("%w: roll_rows %d must be positive", ErrInvalidConfig, c.RollRows)
	}
	if c.BucketIdx < 0 || c.BucketIdx > 1 || c.ValueIdx < 0 || c.ValueIdx > 1 || c.BucketIdx == c.ValueIdx {
		return fmt.Errorf("%w: bucket_idx %d and value_idx %d must be distinct positions in a (bucket, value) row",
			ErrInvalidConfig, c.BucketIdx, c.ValueIdx)
	}
	return nil
}

func (c *LogConf) Validate() error {
	if c.Dir != "" {
		c.Dir = cos.ExpandPath(c.Dir)
	}
	if c.FlushTime == "" {
		c.FlushTime = DefaultFlushTime.String()
	}
	if _, err := time.ParseDuration(c.FlushTime); err != nil {
		return fmt.Errorf("%w: log flush_time %q: %v", ErrInvalidConfig, c.FlushTime, err)
	}
	return nil
}

func (c *LogConf) FlushInterval() time.Duration {
	d, err := time.ParseDuration(c.FlushTime)
	if err != nil {
		return DefaultFlushTime
	}
	return d
}

func (c *InputConf) Sep() byte { return c.Separator[0] }
