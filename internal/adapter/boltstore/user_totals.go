package boltstore

import (
	"context"
	"encoding/json"
	"time"

	bolt "github.com/boltdb/bolt"

	"communityfund/internal/domain"
)

func (s *Store) GetUserTotal(ctx context.Context, userID string) (*domain.UserTotal, error) {
	var t domain.UserTotal
	err := s.view(ctx, func(tx *bolt.Tx) error {
		return getJSON(tx.Bucket(bucketUserTotals), []byte(userID), &t)
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) UpsertUserTotalIncrement(ctx context.Context, userID string, delta int64) (*domain.CreditOutcome, error) {
	var out domain.CreditOutcome
	err := s.update(ctx, func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketUserTotals)
		now := time.Now().UTC()
		var t domain.UserTotal
		if data := b.Get([]byte(userID)); data == nil {
			t = domain.UserTotal{UserID: userID, TotalContributed: delta, CreatedAt: now, UpdatedAt: now}
			out.Kind = domain.CreditCreated
		} else {
			if err := json.Unmarshal(data, &t); err != nil {
				return err
			}
			if err := t.Add(delta, now); err != nil {
				return err
			}
			out.Kind = domain.CreditIncremented
		}
		out.Total = t
		return putJSON(b, []byte(userID), &t)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Store) ListUserTotals(ctx context.Context) ([]domain.UserTotal, error) {
	var items []domain.UserTotal
	err := s.view(ctx, func(tx *bolt.Tx) error {
		return tx.Bucket(bucketUserTotals).ForEach(func(_, v []byte) error {
			var t domain.UserTotal
			if err := json.Unmarshal(v, &t); err != nil {
				return err
			}
			items = append(items, t)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// SwapUserTotal replaces the total inside one update transaction when the
// stored value still matches expected.
func (s *Store) SwapUserTotal(ctx context.Context, userID string, expected, total int64) (bool, error) {
	var swapped bool
	err := s.update(ctx, func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketUserTotals)
		now := time.Now().UTC()
		t := domain.UserTotal{UserID: userID, CreatedAt: now}
		if data := b.Get([]byte(userID)); data != nil {
			if err := json.Unmarshal(data, &t); err != nil {
				return err
			}
		}
		if t.TotalContributed != expected {
			return nil
		}
		t.TotalContributed = total
		t.UpdatedAt = now
		swapped = true
		return putJSON(b, []byte(userID), &t)
	})
	if err != nil {
		return false, err
	}
	return swapped, nil
}
