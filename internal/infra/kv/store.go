// Package kv provides a bbolt-backed implementation of notify.KV: a
// single bucket of opaque string key/value pairs, durable across restarts.
package kv

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

const (
	bucketName            = "notify_kv"
	dbOpenTimeout         = time.Second
	dbFileMode os.FileMode = 0o600
)

var bucketNameBytes = []byte(bucketName)

// Store is a durable key/value store backed by a single bbolt file. It
// satisfies notify.KV without importing that package, the same way the
// domain layer only ever depends on the KV interface it declares.
type Store struct {
	db *bbolt.DB
}

// Open opens (creating if necessary) the bbolt file at path and ensures
// the store's bucket exists.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return nil, fmt.Errorf("kv: ensure dir %q: %w", dir, err)
		}
	}

	db, err := bbolt.Open(path, dbFileMode, &bbolt.Options{Timeout: dbOpenTimeout})
	if err != nil {
		return nil, fmt.Errorf("kv: open db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, createErr := tx.CreateBucketIfNotExists(bucketNameBytes)
		return createErr
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("kv: create bucket: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying bbolt file.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Get returns the value stored at key, or ok=false if it has never been set.
func (s *Store) Get(key string) (string, bool, error) {
	var value string
	var ok bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketNameBytes)
		raw := b.Get([]byte(key))
		if raw == nil {
			return nil
		}
		ok = true
		value = string(raw)
		return nil
	})
	if err != nil {
		return "", false, fmt.Errorf("kv: get %q: %w", key, err)
	}
	return value, ok, nil
}

// Set durably writes value at key, replacing whatever was there before.
func (s *Store) Set(key, value string) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketNameBytes)
		return b.Put([]byte(key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("kv: set %q: %w", key, err)
	}
	return nil
}
