package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"communityfund/internal/domain"
	"communityfund/internal/infra"
	"communityfund/internal/sqlinline"
)

// CreateComplaint inserts a new complaint. A title already in use is reported
// as domain.ErrConflict.
func (s *Store) CreateComplaint(ctx context.Context, c *domain.Complaint) error {
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = now
	}
	_, err := s.sql.Exec(ctx, sqlinline.QInsertComplaint,
		c.ID,
		c.Title,
		c.Category,
		c.Location,
		c.Description,
		c.Image,
		c.AddedBy,
		string(c.Status),
		c.DateCreated,
		c.OriginalTarget,
		c.TargetRemaining,
		c.FundCollected,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if infra.IsUniqueViolation(err) {
		return domain.ErrConflict
	}
	return err
}

// GetComplaint fetches a complaint by id.
func (s *Store) GetComplaint(ctx context.Context, id string) (*domain.Complaint, error) {
	return scanComplaint(s.sql.QueryRow(ctx, sqlinline.QSelectComplaintByID, id))
}

// FindComplaintByTitle fetches a complaint by case-insensitive title.
func (s *Store) FindComplaintByTitle(ctx context.Context, title string) (*domain.Complaint, error) {
	return scanComplaint(s.sql.QueryRow(ctx, sqlinline.QSelectComplaintByTitle, title))
}

// ListComplaints returns all complaints, oldest first.
func (s *Store) ListComplaints(ctx context.Context) ([]domain.Complaint, error) {
	rows, err := s.sql.Query(ctx, sqlinline.QListComplaints)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []domain.Complaint{}
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateComplaintDetails rewrites the descriptive fields only.
func (s *Store) UpdateComplaintDetails(ctx context.Context, id string, d domain.ComplaintDetails) (*domain.Complaint, error) {
	row := s.sql.QueryRow(ctx, sqlinline.QUpdateComplaintDetails,
		id,
		d.Title,
		d.Category,
		d.Location,
		d.Description,
		d.Image,
		d.AddedBy,
		string(d.Status),
		d.DateCreated,
	)
	c, err := scanComplaint(row)
	if infra.IsUniqueViolation(err) {
		return nil, domain.ErrConflict
	}
	return c, err
}

// DeleteComplaint removes a complaint and reports whether it existed.
func (s *Store) DeleteComplaint(ctx context.Context, id string) (bool, error) {
	tag, err := s.sql.Exec(ctx, sqlinline.QDeleteComplaint, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// AtomicAdjustComplaint applies balance deltas in a single UPDATE.
func (s *Store) AtomicAdjustComplaint(ctx context.Context, id string, fundDelta, remainingDelta int64) (*domain.FundingChange, error) {
	row := s.sql.QueryRow(ctx, sqlinline.QAdjustComplaint, id, fundDelta, remainingDelta)
	var (
		c    domain.Complaint
		prev int64
	)
	if err := row.Scan(append(complaintDest(&c), &prev)...); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		if infra.IsNumericOverflow(err) {
			return nil, fmt.Errorf("%w: collected funds out of range", domain.ErrInvalidAmount)
		}
		return nil, err
	}
	return &domain.FundingChange{Complaint: c, PreviousRemaining: prev}, nil
}

func complaintDest(c *domain.Complaint) []any {
	return []any{
		&c.ID,
		&c.Title,
		&c.Category,
		&c.Location,
		&c.Description,
		&c.Image,
		&c.AddedBy,
		(*string)(&c.Status),
		&c.DateCreated,
		&c.OriginalTarget,
		&c.TargetRemaining,
		&c.FundCollected,
		&c.CreatedAt,
		&c.UpdatedAt,
	}
}

func scanComplaint(row pgx.Row) (*domain.Complaint, error) {
	var c domain.Complaint
	if err := row.Scan(complaintDest(&c)...); err != nil {
		if infra.IsNoRows(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}
