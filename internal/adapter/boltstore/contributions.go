package boltstore

import (
	"bytes"
	"context"
	"encoding/json"
	"iter"

	bolt "github.com/boltdb/bolt"

	"communityfund/internal/domain"
)

// Contribution ids are ULIDs, so key order in every contribution bucket is
// recording order.

func (s *Store) InsertContribution(ctx context.Context, c *domain.Contribution) (string, error) {
	err := s.update(ctx, func(tx *bolt.Tx) error {
		id := []byte(c.ID)
		if c.IdempotencyKey != nil {
			byKey := tx.Bucket(bucketByKey)
			if byKey.Get([]byte(*c.IdempotencyKey)) != nil {
				return domain.ErrDuplicateOperation
			}
			if err := byKey.Put([]byte(*c.IdempotencyKey), id); err != nil {
				return err
			}
		}
		b := tx.Bucket(bucketContributions)
		if b.Get(id) != nil {
			return domain.ErrConflict
		}
		if err := putJSON(b, id, c); err != nil {
			return err
		}
		if c.ContributorID != nil {
			if err := tx.Bucket(bucketByContributor).Put(indexKey(*c.ContributorID, c.ID), id); err != nil {
				return err
			}
		}
		return tx.Bucket(bucketByComplaint).Put(indexKey(c.ComplaintID, c.ID), id)
	})
	if err != nil {
		return "", err
	}
	return c.ID, nil
}

func (s *Store) FindContributionByKey(ctx context.Context, key string) (*domain.Contribution, error) {
	var c domain.Contribution
	err := s.view(ctx, func(tx *bolt.Tx) error {
		id := tx.Bucket(bucketByKey).Get([]byte(key))
		if id == nil {
			return domain.ErrNotFound
		}
		return getJSON(tx.Bucket(bucketContributions), id, &c)
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) ListContributions(ctx context.Context) iter.Seq2[domain.Contribution, error] {
	return s.stream(ctx, bucketContributions, nil)
}

func (s *Store) ListContributionsByContributor(ctx context.Context, userID string) iter.Seq2[domain.Contribution, error] {
	return s.stream(ctx, bucketByContributor, indexPrefix(userID))
}

func (s *Store) ListContributionsByComplaint(ctx context.Context, complaintID string) iter.Seq2[domain.Contribution, error] {
	return s.stream(ctx, bucketByComplaint, indexPrefix(complaintID))
}

// stream reads the bucket a page at a time. Outside WithinTx each page gets
// its own read transaction, closed before any element is yielded, so the
// consumer may write to the store while ranging.
func (s *Store) stream(ctx context.Context, bucket, prefix []byte) iter.Seq2[domain.Contribution, error] {
	return func(yield func(domain.Contribution, error) bool) {
		var after []byte
		for {
			var (
				page []domain.Contribution
				last []byte
			)
			err := s.view(ctx, func(tx *bolt.Tx) error {
				var err error
				page, last, err = readPage(tx, bucket, prefix, after, s.pageSize)
				return err
			})
			if err != nil {
				yield(domain.Contribution{}, err)
				return
			}
			for _, c := range page {
				if !yield(c, nil) {
					return
				}
			}
			if len(page) < s.pageSize {
				return
			}
			after = last
		}
	}
}

// readPage returns up to limit contributions whose keys carry prefix and sort
// after the given key. Index buckets hold contribution ids as values.
func readPage(tx *bolt.Tx, bucket, prefix, after []byte, limit int) ([]domain.Contribution, []byte, error) {
	primary := bytes.Equal(bucket, bucketContributions)
	records := tx.Bucket(bucketContributions)
	cur := tx.Bucket(bucket).Cursor()

	var k, v []byte
	switch {
	case after != nil:
		k, v = cur.Seek(after)
		if bytes.Equal(k, after) {
			k, v = cur.Next()
		}
	case len(prefix) > 0:
		k, v = cur.Seek(prefix)
	default:
		k, v = cur.First()
	}

	var (
		page []domain.Contribution
		last []byte
	)
	for ; k != nil && bytes.HasPrefix(k, prefix) && len(page) < limit; k, v = cur.Next() {
		data := v
		if !primary {
			data = records.Get(v)
			if data == nil {
				continue
			}
		}
		var c domain.Contribution
		if err := json.Unmarshal(data, &c); err != nil {
			return nil, nil, err
		}
		page = append(page, c)
		last = append(last[:0], k...)
	}
	return page, last, nil
}

func indexPrefix(owner string) []byte {
	return append([]byte(owner), 0)
}

func indexKey(owner, id string) []byte {
	return append(indexPrefix(owner), id...)
}
