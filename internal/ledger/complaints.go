package ledger

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"communityfund/internal/domain"
)

// Complaints manages complaint records. Funding fields are only ever changed
// by the Coordinator.
type Complaints struct {
	repo   domain.ComplaintRepository
	logger zerolog.Logger
}

func NewComplaints(repo domain.ComplaintRepository, logger zerolog.Logger) *Complaints {
	return &Complaints{repo: repo, logger: logger}
}

// Create registers a complaint with the given funding target. Titles are
// unique, case-insensitively.
func (s *Complaints) Create(ctx context.Context, details domain.ComplaintDetails, target int64) (*domain.Complaint, error) {
	details = trimDetails(details)
	complaint, err := domain.NewComplaint(details, target)
	if err != nil {
		return nil, err
	}
	if err := s.ensureTitleFree(ctx, details.Title, ""); err != nil {
		return nil, err
	}
	if err := s.repo.CreateComplaint(ctx, complaint); err != nil {
		return nil, domain.StorageFault(err)
	}
	s.logger.Info().
		Str("complaint_id", complaint.ID).
		Int64("target", target).
		Msg("complaint created")
	return complaint, nil
}

func (s *Complaints) Get(ctx context.Context, id string) (*domain.Complaint, error) {
	if !domain.ValidComplaintID(id) {
		return nil, domain.ErrInvalidComplaintID
	}
	complaint, err := s.repo.GetComplaint(ctx, id)
	if err != nil {
		return nil, domain.StorageFault(err)
	}
	return complaint, nil
}

func (s *Complaints) List(ctx context.Context) ([]domain.Complaint, error) {
	items, err := s.repo.ListComplaints(ctx)
	if err != nil {
		return nil, domain.StorageFault(err)
	}
	return items, nil
}

// Update rewrites the descriptive fields of a complaint.
func (s *Complaints) Update(ctx context.Context, id string, details domain.ComplaintDetails) (*domain.Complaint, error) {
	if !domain.ValidComplaintID(id) {
		return nil, domain.ErrInvalidComplaintID
	}
	details = trimDetails(details)
	if details.Status == "" {
		details.Status = domain.ComplaintStatusOpen
	}
	if err := details.Validate(); err != nil {
		return nil, err
	}
	if err := s.ensureTitleFree(ctx, details.Title, id); err != nil {
		return nil, err
	}
	complaint, err := s.repo.UpdateComplaintDetails(ctx, id, details)
	if err != nil {
		return nil, domain.StorageFault(err)
	}
	return complaint, nil
}

// Delete removes a complaint. Its contributions stay in the ledger.
func (s *Complaints) Delete(ctx context.Context, id string) error {
	if !domain.ValidComplaintID(id) {
		return domain.ErrInvalidComplaintID
	}
	ok, err := s.repo.DeleteComplaint(ctx, id)
	if err != nil {
		return domain.StorageFault(err)
	}
	if !ok {
		return domain.ErrNotFound
	}
	s.logger.Info().Str("complaint_id", id).Msg("complaint deleted")
	return nil
}

func (s *Complaints) ensureTitleFree(ctx context.Context, title, self string) error {
	existing, err := s.repo.FindComplaintByTitle(ctx, title)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil
	case err != nil:
		return domain.StorageFault(err)
	case existing.ID == self:
		return nil
	}
	return domain.ErrConflict
}

func trimDetails(d domain.ComplaintDetails) domain.ComplaintDetails {
	d.Title = strings.TrimSpace(d.Title)
	d.Category = strings.TrimSpace(d.Category)
	d.Location = strings.TrimSpace(d.Location)
	d.Description = strings.TrimSpace(d.Description)
	d.Image = strings.TrimSpace(d.Image)
	d.AddedBy = strings.TrimSpace(d.AddedBy)
	return d
}
