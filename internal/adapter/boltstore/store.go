// Package boltstore is a single-file Record Store on BoltDB. Every write runs
// in a bolt update transaction, and bolt allows one writer at a time, so
// balance and total updates are serialized.
package boltstore

import (
	"context"
	"encoding/json"
	"time"

	bolt "github.com/boltdb/bolt"

	"communityfund/internal/domain"
)

var (
	bucketComplaints    = []byte("complaints")
	bucketContributions = []byte("contributions")
	bucketByKey         = []byte("contributions_by_key")
	bucketByContributor = []byte("contributions_by_contributor")
	bucketByComplaint   = []byte("contributions_by_complaint")
	bucketUserTotals    = []byte("user_totals")

	allBuckets = [][]byte{
		bucketComplaints,
		bucketContributions,
		bucketByKey,
		bucketByContributor,
		bucketByComplaint,
		bucketUserTotals,
	}
)

// DefaultPageSize bounds how many contributions one read transaction loads
// while a list sequence is being ranged over.
const DefaultPageSize = 256

// Store implements domain.RecordStore on a bolt database. A Store returned to
// a WithinTx callback is bound to that transaction.
type Store struct {
	db       *bolt.DB
	tx       *bolt.Tx
	pageSize int
}

// Open opens (or creates) the database file at path and ensures every bucket
// exists.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, pageSize: DefaultPageSize}, nil
}

// Close releases the database file lock.
func (s *Store) Close() error {
	return s.db.Close()
}

// WithinTx runs fn in one bolt update transaction. Nested calls join it.
func (s *Store) WithinTx(ctx context.Context, fn func(tx domain.RecordStore) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.tx != nil {
		return fn(s)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return fn(&Store{db: s.db, tx: tx, pageSize: s.pageSize})
	})
}

func (s *Store) update(ctx context.Context, fn func(*bolt.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.tx != nil {
		return fn(s.tx)
	}
	return s.db.Update(fn)
}

func (s *Store) view(ctx context.Context, fn func(*bolt.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.tx != nil {
		return fn(s.tx)
	}
	return s.db.View(fn)
}

func getJSON(b *bolt.Bucket, key []byte, v any) error {
	data := b.Get(key)
	if data == nil {
		return domain.ErrNotFound
	}
	return json.Unmarshal(data, v)
}

func putJSON(b *bolt.Bucket, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return b.Put(key, data)
}

var _ domain.RecordStore = (*Store)(nil)
