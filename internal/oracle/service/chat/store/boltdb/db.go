package boltdb

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/boltdb/bolt"
)

// Top-level buckets. threads holds one nested bucket per thread with messages keyed by
// sequence; thread_meta maps a thread id to its JSON ConversationMeta.
var (
	bucketThreads    = []byte("threads")
	bucketThreadMeta = []byte("thread_meta")
)

// lockTimeout bounds the wait for another process holding the file lock.
const lockTimeout = time.Second

// DB owns the bolt file backing the conversation store.
type DB struct {
	db *bolt.DB
}

// Open opens or creates the database at path, creating parent directories as needed.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create directory for %q: %w", path, err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: lockTimeout})
	if err != nil {
		return nil, fmt.Errorf("open bolt database %q: %w", path, err)
	}
	if err := db.Update(initBuckets); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &DB{db: db}, nil
}

func initBuckets(tx *bolt.Tx) error {
	for _, name := range [][]byte{bucketThreads, bucketThreadMeta} {
		if _, err := tx.CreateBucketIfNotExists(name); err != nil {
			return fmt.Errorf("create bucket %q: %w", name, err)
		}
	}
	return nil
}

// Close releases the file lock.
func (d *DB) Close() error {
	return d.db.Close()
}

// Bolt exposes the handle to the stores built on this file.
func (d *DB) Bolt() *bolt.DB {
	return d.db
}
