package boltstore

import (
	"cmp"
	"context"
	"encoding/json"
	"slices"
	"strings"
	"time"

	bolt "github.com/boltdb/bolt"

	"communityfund/internal/domain"
)

func (s *Store) CreateComplaint(ctx context.Context, c *domain.Complaint) error {
	return s.update(ctx, func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketComplaints)
		if b.Get([]byte(c.ID)) != nil {
			return domain.ErrConflict
		}
		now := time.Now().UTC()
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
		if c.UpdatedAt.IsZero() {
			c.UpdatedAt = now
		}
		return putJSON(b, []byte(c.ID), c)
	})
}

func (s *Store) GetComplaint(ctx context.Context, id string) (*domain.Complaint, error) {
	var c domain.Complaint
	err := s.view(ctx, func(tx *bolt.Tx) error {
		return getJSON(tx.Bucket(bucketComplaints), []byte(id), &c)
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) FindComplaintByTitle(ctx context.Context, title string) (*domain.Complaint, error) {
	var found *domain.Complaint
	err := s.view(ctx, func(tx *bolt.Tx) error {
		return tx.Bucket(bucketComplaints).ForEach(func(_, v []byte) error {
			if found != nil {
				return nil
			}
			var c domain.Complaint
			if err := json.Unmarshal(v, &c); err != nil {
				return err
			}
			if strings.EqualFold(c.Title, title) {
				found = &c
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, domain.ErrNotFound
	}
	return found, nil
}

func (s *Store) ListComplaints(ctx context.Context) ([]domain.Complaint, error) {
	items := []domain.Complaint{}
	err := s.view(ctx, func(tx *bolt.Tx) error {
		return tx.Bucket(bucketComplaints).ForEach(func(_, v []byte) error {
			var c domain.Complaint
			if err := json.Unmarshal(v, &c); err != nil {
				return err
			}
			items = append(items, c)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(items, func(a, b domain.Complaint) int {
		if n := a.CreatedAt.Compare(b.CreatedAt); n != 0 {
			return n
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return items, nil
}

func (s *Store) UpdateComplaintDetails(ctx context.Context, id string, details domain.ComplaintDetails) (*domain.Complaint, error) {
	var c domain.Complaint
	err := s.update(ctx, func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketComplaints)
		if err := getJSON(b, []byte(id), &c); err != nil {
			return err
		}
		c.ComplaintDetails = details
		c.UpdatedAt = time.Now().UTC()
		return putJSON(b, []byte(id), &c)
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Store) DeleteComplaint(ctx context.Context, id string) (bool, error) {
	existed := false
	err := s.update(ctx, func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketComplaints)
		if b.Get([]byte(id)) == nil {
			return nil
		}
		existed = true
		return b.Delete([]byte(id))
	})
	return existed, err
}

// AtomicAdjustComplaint reads, adjusts and writes the complaint inside one
// update transaction.
func (s *Store) AtomicAdjustComplaint(ctx context.Context, id string, fundDelta, remainingDelta int64) (*domain.FundingChange, error) {
	var change domain.FundingChange
	err := s.update(ctx, func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketComplaints)
		var c domain.Complaint
		if err := getJSON(b, []byte(id), &c); err != nil {
			return err
		}
		var err error
		change, err = c.Adjust(fundDelta, remainingDelta)
		if err != nil {
			return err
		}
		return putJSON(b, []byte(id), &c)
	})
	if err != nil {
		return nil, err
	}
	return &change, nil
}
