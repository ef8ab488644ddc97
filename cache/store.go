// Package cache provides the TTL key-value layer audit and mockup results
// are persisted to. It is strictly a performance optimization: callers must
// treat every error as a cache miss.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"
)

// Store is the contract the pipeline depends on. Entries are immutable once
// written; expiry is enforced by the store, explicit removal by Invalidate.
type Store interface {
	// Get unmarshals the entry for key into v. The bool reports a hit;
	// an expired or absent key is a miss, not an error.
	Get(key string, v any) (bool, error)
	// Put stores v under key for ttl. A ttl <= 0 stores without expiry.
	Put(key string, v any, ttl time.Duration) error
	// Invalidate removes the entry regardless of remaining TTL.
	Invalidate(key string) error
	Close() error
}

// BadgerStore implements Store on a local badger database, relying on
// badger's per-entry TTL for expiry.
type BadgerStore struct {
	db  *badger.DB
	log *logrus.Entry
}

// badgerLogrusAdapter satisfies badger.Logger with a logrus entry.
type badgerLogrusAdapter struct {
	*logrus.Entry
}

func (l badgerLogrusAdapter) Warningf(f string, v ...interface{}) { l.Entry.Warnf(f, v...) }

// NewBadgerStore opens (or creates) the cache database under dataDir.
func NewBadgerStore(dataDir string, logger *logrus.Entry) (*BadgerStore, error) {
	dbPath := filepath.Join(dataDir, "audit_cache")
	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, fmt.Errorf("cannot create cache directory %s: %w", dbPath, err)
	}

	opts := badger.DefaultOptions(dbPath).
		WithLogger(badgerLogrusAdapter{logger.WithField("component", "badgerdb")}).
		WithNumVersionsToKeep(1)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database at %s: %w", dbPath, err)
	}

	logger.Infof("Cache database initialized at %s", dbPath)
	return &BadgerStore{db: db, log: logger}, nil
}

func (s *BadgerStore) Get(key string, v any) (bool, error) {
	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get %q: %w", key, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		// A corrupt entry is unrecoverable; drop it and report a miss.
		s.log.Warnf("Dropping undecodable cache entry %q: %v", key, err)
		_ = s.Invalidate(key)
		return false, nil
	}
	return true, nil
}

func (s *BadgerStore) Put(key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache marshal %q: %w", key, err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), raw)
		if ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("cache put %q: %w", key, err)
	}
	return nil
}

func (s *BadgerStore) Invalidate(key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("cache invalidate %q: %w", key, err)
	}
	return nil
}

// RunGC runs badger's value-log garbage collection until stop is closed.
func (s *BadgerStore) RunGC(stop <-chan struct{}, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if s.db.IsClosed() {
				return
			}
			for {
				if err := s.db.RunValueLogGC(0.5); err != nil {
					if !errors.Is(err, badger.ErrNoRewrite) {
						s.log.Errorf("Badger GC error: %v", err)
					}
					break
				}
			}
		case <-stop:
			return
		}
	}
}

func (s *BadgerStore) Close() error {
	if s.db == nil || s.db.IsClosed() {
		return nil
	}
	return s.db.Close()
}
