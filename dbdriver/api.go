// Package dbdriver provides a local key-value store for job-scoped state,
// e.g. per-channel sample sets.
/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package dbdriver

import (
	"errors"
	"fmt"
	"strings"
)

// General info:
// ## Collection ##
//   The collection is virtual: it is a prefix of a key in the database,
//   separated by CollectionSepa.
// ## Order ##
//   Ascend iterates a collection in key order unless the collection has an
//   index, in which case the index comparator (over values) defines the order.
// ## Errors ##
//   A driver converts native "not found" errors to *ErrNotFound.

const CollectionSepa = "##"

type (
	Driver interface {
		// A driver should sync data with local drives on close
		Close() error
		// Write an object to database. Object is marshaled as JSON
		Set(collection, key string, object any) error
		// Read an object from database.
		Get(collection, key string, object any) error
		// Write an already marshaled object or simple string
		SetString(collection, key, data string) error
		// Write unless the key exists; reports whether it was written
		Insert(collection, key, data string) (bool, error)
		// Read a string or an object as JSON from database
		GetString(collection, key string) (string, error)
		// Delete a single object
		Delete(collection, key string) error
		// Delete all keys of the collection (and its index)
		DeleteCollection(collection string) error
		// Number of keys in the collection
		Count(collection string) (int, error)
		// Order a collection by values; `less` compares two values
		CreateIndex(collection string, less func(a, b string) bool) error
		// Visit keys (without the collection prefix) and values in order until cb returns false
		Ascend(collection string, cb func(key, value string) bool) error
	}

	ErrNotFound struct {
		collection string
		key        string
	}
)

func makePath(collection, key string) string { return collection + CollectionSepa + key }

// Extract collection and key names from full key path
func ParsePath(path string) (string, string) {
	pos := strings.Index(path, CollectionSepa)
	if pos < 0 {
		return path, ""
	}
	return path[:pos], path[pos+len(CollectionSepa):]
}

func NewErrNotFound(collection, key string) *ErrNotFound {
	return &ErrNotFound{collection: collection, key: key}
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s %q not found", e.collection, e.key)
}

func IsErrNotFound(err error) bool {
	var e *ErrNotFound
	return errors.As(err, &e)
}
