package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/samvad-hq/rss-feed-translator/internal/domain"
	"github.com/samvad-hq/rss-feed-translator/internal/logger"
)

// BoltStore keeps entries in a local bbolt file, one bucket per table, with
// the JSON-encoded record stored under its id.
type BoltStore struct {
	db     *bolt.DB
	bucket []byte
	log    logger.Logger
}

// OpenBolt opens (or creates) the bolt file at path.
func OpenBolt(path, table string, log logger.Logger) (*BoltStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("bolt path is empty")
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt %s: %w", path, err)
	}

	bucket := []byte(table)
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create bucket %s: %w", table, err)
	}

	return &BoltStore{db: db, bucket: bucket, log: logger.Ensure(log)}, nil
}

// Existing reports which ids are present in the bucket.
func (s *BoltStore) Existing(ctx context.Context, ids []string) (map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	found := make(map[string]string, len(ids))
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		for _, id := range ids {
			raw := b.Get([]byte(id))
			if raw == nil {
				continue
			}
			var rec domain.FeedEntry
			if err := json.Unmarshal(raw, &rec); err != nil {
				return fmt.Errorf("decode %s: %w", id, err)
			}
			found[id] = rec.CreatedAt
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("bolt lookup: %w", err)
	}
	return found, nil
}

// Write stores all translated entries in one transaction. Existing ids are
// overwritten.
func (s *BoltStore) Write(ctx context.Context, entries []domain.FeedEntry) error {
	if len(entries) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	ready, rejected := untranslated(entries)
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(s.bucket)
		for _, e := range ready {
			raw, err := json.Marshal(e)
			if err != nil {
				return fmt.Errorf("encode %s: %w", e.ID, err)
			}
			if err := b.Put([]byte(e.ID), raw); err != nil {
				return fmt.Errorf("put %s: %w", e.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		ids := make([]string, 0, len(entries))
		for _, e := range entries {
			ids = append(ids, e.ID)
		}
		return &domain.PersistenceError{FailedIDs: ids, Err: err}
	}

	s.log.InfoObj("bolt write complete", "store_batch_write", map[string]any{
		"bucket":  string(s.bucket),
		"written": len(ready),
		"failed":  len(rejected),
	})
	if len(rejected) > 0 {
		return &domain.PersistenceError{FailedIDs: rejected, Err: errors.New("entries without translation rejected")}
	}
	return nil
}

// Close releases the bolt file lock.
func (s *BoltStore) Close() error {
	return s.db.Close()
}
