package kv

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	bolt "go.etcd.io/bbolt"
)

const boltSchemaVersion = 1

var (
	bucketPrefs    = []byte("preferences")
	bucketInternal = []byte("_meta")
)

// Bolt is a Provider backed by a bbolt file.
type Bolt struct {
	db *bolt.DB
}

var _ Provider = (*Bolt)(nil)

// OpenBolt opens (or creates) the bbolt database at path.
// Parent directories are created automatically.
func OpenBolt(path string) (*Bolt, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("kv: create db directory: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("kv: open bolt %s: %w", path, err)
	}
	b := &Bolt{db: db}
	if err := b.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("kv: migration: %w", err)
	}
	return b, nil
}

func (b *Bolt) migrate() error {
	return b.db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketPrefs, bucketInternal} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("creating bucket %s: %w", name, err)
			}
		}
		meta := tx.Bucket(bucketInternal)
		if meta.Get([]byte("schema_version")) == nil {
			return meta.Put([]byte("schema_version"), []byte(strconv.Itoa(boltSchemaVersion)))
		}
		return nil
	})
}

// Get implements Provider.
func (b *Bolt) Get(key string) (string, bool, error) {
	var (
		v     string
		found bool
	)
	err := b.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(bucketPrefs).Get([]byte(key))
		if raw != nil {
			v, found = string(raw), true
		}
		return nil
	})
	if err != nil {
		return "", false, fmt.Errorf("kv: get %s: %w", key, err)
	}
	return v, found, nil
}

// Set implements Provider. bbolt commits synchronously with fsync.
func (b *Bolt) Set(key, value string) error {
	err := b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketPrefs).Put([]byte(key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("kv: set %s: %w", key, err)
	}
	return nil
}

// Close closes the database.
func (b *Bolt) Close() error {
	return b.db.Close()
}
