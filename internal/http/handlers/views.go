package handlers

import (
	"time"

	"communityfund/internal/domain"
	"communityfund/internal/ledger"
)

type complaintView struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Category        string    `json:"category"`
	Location        string    `json:"location"`
	Description     string    `json:"description"`
	Image           string    `json:"image,omitempty"`
	AddedBy         string    `json:"added_by,omitempty"`
	Status          string    `json:"status"`
	Date            time.Time `json:"date"`
	Amount          string    `json:"amount"`
	TargetRemaining string    `json:"target_remaining"`
	FundCollected   string    `json:"fund_collected"`
	FullyFunded     bool      `json:"fully_funded"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func newComplaintView(c domain.Complaint) complaintView {
	return complaintView{
		ID:              c.ID,
		Title:           c.Title,
		Category:        c.Category,
		Location:        c.Location,
		Description:     c.Description,
		Image:           c.Image,
		AddedBy:         c.AddedBy,
		Status:          string(c.Status),
		Date:            c.DateCreated,
		Amount:          formatMinor(c.OriginalTarget),
		TargetRemaining: formatMinor(c.TargetRemaining),
		FundCollected:   formatMinor(c.FundCollected),
		FullyFunded:     c.FullyFunded(),
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

type contributionView struct {
	ID             string    `json:"id"`
	ComplaintID    string    `json:"complaint_id"`
	ContributorID  *string   `json:"contributor_id"`
	Amount         string    `json:"amount"`
	Title          string    `json:"title"`
	Category       string    `json:"category"`
	IdempotencyKey *string   `json:"idempotency_key,omitempty"`
	RecordedAt     time.Time `json:"recorded_at"`
}

func newContributionView(c domain.Contribution) contributionView {
	return contributionView{
		ID:             c.ID,
		ComplaintID:    c.ComplaintID,
		ContributorID:  c.ContributorID,
		Amount:         formatMinor(c.Amount),
		Title:          c.Title,
		Category:       c.Category,
		IdempotencyKey: c.IdempotencyKey,
		RecordedAt:     c.RecordedAt,
	}
}

type userTotalView struct {
	UserID           string    `json:"user_id"`
	TotalContributed string    `json:"total_contributed"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func newUserTotalView(t domain.UserTotal) userTotalView {
	return userTotalView{
		UserID:           t.UserID,
		TotalContributed: formatMinor(t.TotalContributed),
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}
}

type creditView struct {
	Kind  string        `json:"kind"`
	Total userTotalView `json:"total"`
}

type outcomeView struct {
	ComplaintID     string           `json:"complaint_id"`
	FundCollected   string           `json:"fund_collected"`
	TargetRemaining string           `json:"target_remaining"`
	Contribution    contributionView `json:"contribution"`
	Credit          *creditView      `json:"credit,omitempty"`
	Replayed        bool             `json:"replayed"`
	Stage           string           `json:"stage"`
}

func newOutcomeView(out *ledger.Outcome) outcomeView {
	v := outcomeView{
		ComplaintID:     out.ComplaintID,
		FundCollected:   formatMinor(out.FundCollected),
		TargetRemaining: formatMinor(out.TargetRemaining),
		Contribution:    newContributionView(out.Contribution),
		Replayed:        out.Replayed,
		Stage:           out.Stage.String(),
	}
	if out.Credit != nil {
		v.Credit = &creditView{Kind: string(out.Credit.Kind), Total: newUserTotalView(out.Credit.Total)}
	}
	return v
}
