// Package dbdriver provides a local key-value store for job-scoped state,
// e.g. per-channel sample sets.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package dbdriver

import (
	"errors"
	"sync"

	"github.com/NVIDIA/xjoin/cmn/cos"

	jsoniter "github.com/json-iterator/go"
	"github.com/tidwall/buntdb"
)

// InMemory opens a non-persistent database.
const InMemory = ":memory:"

type BuntDriver struct {
	driver  *buntdb.DB
	indexes cos.StrSet
	mu      sync.RWMutex
}

// interface guard
var _ Driver = (*BuntDriver)(nil)

func NewBuntDB(path string) (*BuntDriver, error) {
	driver, err := buntdb.Open(path)
	if err != nil {
		return nil, err
	}
	if path != InMemory {
		var conf buntdb.Config
		if err := driver.ReadConfig(&conf); err != nil {
			driver.Close()
			return nil, err
		}
		conf.SyncPolicy = buntdb.EverySecond
		conf.AutoShrinkPercentage = 50
		if err := driver.SetConfig(conf); err != nil {
			driver.Close()
			return nil, err
		}
	}
	return &BuntDriver{driver: driver, indexes: cos.NewStrSet()}, nil
}

func buntToCommonErr(err error, collection, key string) error {
	if errors.Is(err, buntdb.ErrNotFound) {
		return NewErrNotFound(collection, key)
	}
	return err
}

func (bd *BuntDriver) Close() error { return bd.driver.Close() }

func (bd *BuntDriver) Set(collection, key string, object any) error {
	b, err := jsoniter.Marshal(object)
	if err != nil {
		return err
	}
	return bd.SetString(collection, key, cos.UnsafeS(b))
}

func (bd *BuntDriver) Get(collection, key string, object any) error {
	s, err := bd.GetString(collection, key)
	if err != nil {
		return err
	}
	return jsoniter.UnmarshalFromString(s, object)
}

func (bd *BuntDriver) SetString(collection, key, data string) error {
	name := makePath(collection, key)
	return bd.driver.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(name, data, nil)
		return err
	})
}

func (bd *BuntDriver) Insert(collection, key, data string) (inserted bool, err error) {
	name := makePath(collection, key)
	err = bd.driver.Update(func(tx *buntdb.Tx) error {
		_, err := tx.Get(name)
		if err == nil {
			return nil
		}
		if !errors.Is(err, buntdb.ErrNotFound) {
			return err
		}
		if _, _, err = tx.Set(name, data, nil); err == nil {
			inserted = true
		}
		return err
	})
	return inserted, err
}

func (bd *BuntDriver) GetString(collection, key string) (value string, err error) {
	name := makePath(collection, key)
	err = bd.driver.View(func(tx *buntdb.Tx) error {
		var err error
		value, err = tx.Get(name)
		return err
	})
	return value, buntToCommonErr(err, collection, key)
}

func (bd *BuntDriver) Delete(collection, key string) error {
	name := makePath(collection, key)
	err := bd.driver.Update(func(tx *buntdb.Tx) error {
		_, err := tx.Delete(name)
		return err
	})
	return buntToCommonErr(err, collection, key)
}

func (bd *BuntDriver) DeleteCollection(collection string) error {
	keys := make([]string, 0, 16)
	err := bd.driver.Update(func(tx *buntdb.Tx) error {
		err := tx.AscendKeys(makePath(collection, "*"), func(key, _ string) bool {
			keys = append(keys, key)
			return true
		})
		if err != nil {
			return err
		}
		for _, k := range keys {
			if _, err := tx.Delete(k); err != nil && !errors.Is(err, buntdb.ErrNotFound) {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	bd.mu.Lock()
	defer bd.mu.Unlock()
	if bd.indexes.Contains(collection) {
		delete(bd.indexes, collection)
		if err := bd.driver.DropIndex(collection); err != nil && !errors.Is(err, buntdb.ErrNotFound) {
			return err
		}
	}
	return nil
}

func (bd *BuntDriver) Count(collection string) (n int, err error) {
	err = bd.driver.View(func(tx *buntdb.Tx) error {
		return tx.AscendKeys(makePath(collection, "*"), func(string, string) bool {
			n++
			return true
		})
	})
	return n, err
}

func (bd *BuntDriver) CreateIndex(collection string, less func(a, b string) bool) error {
	bd.mu.Lock()
	defer bd.mu.Unlock()
	if bd.indexes.Contains(collection) {
		return nil
	}
	if err := bd.driver.CreateIndex(collection, makePath(collection, "*"), less); err != nil {
		return err
	}
	bd.indexes[collection] = struct{}{}
	return nil
}

func (bd *BuntDriver) Ascend(collection string, cb func(key, value string) bool) error {
	bd.mu.RLock()
	indexed := bd.indexes.Contains(collection)
	bd.mu.RUnlock()
	prefixLen := len(collection) + len(CollectionSepa)
	iter := func(key, value string) bool { return cb(key[prefixLen:], value) }
	return bd.driver.View(func(tx *buntdb.Tx) error {
		if indexed {
			return tx.Ascend(collection, iter)
		}
		return tx.AscendKeys(makePath(collection, "*"), iter)
	})
}
