package driven

import (
	"context"
	"errors"

	"go.etcd.io/bbolt"

	port "github.com/alorle/m3u8-editor/internal/port/driven"
	"github.com/alorle/m3u8-editor/internal/schedule"
)

const (
	guideBucket = "guide"
	snapshotKey = "snapshot"
)

// GuideBoltDBCache implements the GuideCache port using BoltDB.
type GuideBoltDBCache struct {
	db *bbolt.DB
}

// NewGuideBoltDBCache creates a new BoltDB-backed guide cache.
// It initializes the required bucket if it doesn't exist.
func NewGuideBoltDBCache(db *bbolt.DB) (*GuideBoltDBCache, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}

	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(guideBucket))
		return err
	})
	if err != nil {
		return nil, err
	}

	return &GuideBoltDBCache{db: db}, nil
}

// Get returns the cached snapshot.
func (c *GuideBoltDBCache) Get(ctx context.Context) (schedule.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return schedule.Snapshot{}, err
	}

	var data []byte
	err := c.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(guideBucket))
		if bucket == nil {
			return errors.New("guide bucket not found")
		}

		v := bucket.Get([]byte(snapshotKey))
		if v == nil {
			return port.ErrCacheMiss
		}

		// v is only valid inside the transaction
		data = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return schedule.Snapshot{}, err
	}

	return decodeSnapshot(data)
}

// Set stores s, replacing any previous snapshot.
func (c *GuideBoltDBCache) Set(ctx context.Context, s schedule.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := encodeSnapshot(s)
	if err != nil {
		return err
	}

	return c.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(guideBucket))
		if bucket == nil {
			return errors.New("guide bucket not found")
		}
		return bucket.Put([]byte(snapshotKey), data)
	})
}

// Delete removes the cached snapshot.
func (c *GuideBoltDBCache) Delete(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return c.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(guideBucket))
		if bucket == nil {
			return errors.New("guide bucket not found")
		}
		return bucket.Delete([]byte(snapshotKey))
	})
}
