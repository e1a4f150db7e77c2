package repo

import (
	"context"
	"iter"

	"github.com/jackc/pgx/v5"

	"communityfund/internal/domain"
	"communityfund/internal/infra"
	"communityfund/internal/sqlinline"
)

// InsertContribution appends a contribution. A reused idempotency key is
// reported as domain.ErrDuplicateOperation.
func (s *Store) InsertContribution(ctx context.Context, c *domain.Contribution) (string, error) {
	row := s.sql.QueryRow(ctx, sqlinline.QInsertContribution,
		c.ID,
		c.ComplaintID,
		deref(c.ContributorID),
		c.Amount,
		c.Title,
		c.Category,
		deref(c.IdempotencyKey),
		c.RecordedAt,
	)
	var id string
	if err := row.Scan(&id); err != nil {
		if infra.IsUniqueViolation(err) {
			return "", domain.ErrDuplicateOperation
		}
		return "", err
	}
	return id, nil
}

// FindContributionByKey looks up a contribution by idempotency key.
func (s *Store) FindContributionByKey(ctx context.Context, key string) (*domain.Contribution, error) {
	c, err := scanContribution(s.sql.QueryRow(ctx, sqlinline.QSelectContributionByKey, key))
	if err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (s *Store) ListContributions(ctx context.Context) iter.Seq2[domain.Contribution, error] {
	return s.streamContributions(ctx, sqlinline.QListContributions)
}

func (s *Store) ListContributionsByContributor(ctx context.Context, userID string) iter.Seq2[domain.Contribution, error] {
	return s.streamContributions(ctx, sqlinline.QListContributionsByContributor, userID)
}

func (s *Store) ListContributionsByComplaint(ctx context.Context, complaintID string) iter.Seq2[domain.Contribution, error] {
	return s.streamContributions(ctx, sqlinline.QListContributionsByComplaint, complaintID)
}

// streamContributions runs the query each time the sequence is ranged over
// and yields rows as they are read.
func (s *Store) streamContributions(ctx context.Context, query string, args ...any) iter.Seq2[domain.Contribution, error] {
	return func(yield func(domain.Contribution, error) bool) {
		rows, err := s.sql.Query(ctx, query, args...)
		if err != nil {
			yield(domain.Contribution{}, err)
			return
		}
		defer rows.Close()

		for rows.Next() {
			c, err := scanContribution(rows)
			if err != nil {
				yield(domain.Contribution{}, err)
				return
			}
			if !yield(c, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(domain.Contribution{}, err)
		}
	}
}

func scanContribution(row pgx.Row) (domain.Contribution, error) {
	var c domain.Contribution
	err := row.Scan(
		&c.ID,
		&c.ComplaintID,
		&c.ContributorID,
		&c.Amount,
		&c.Title,
		&c.Category,
		&c.IdempotencyKey,
		&c.RecordedAt,
	)
	return c, err
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
