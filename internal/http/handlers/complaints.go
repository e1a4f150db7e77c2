package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"communityfund/internal/domain"
)

type complaintRequest struct {
	Title       string           `json:"title"`
	Category    string           `json:"category"`
	Location    string           `json:"location"`
	Description string           `json:"description"`
	Image       string           `json:"image"`
	AddedBy     string           `json:"added_by"`
	Status      string           `json:"status"`
	Date        string           `json:"date"`
	Amount      *decimal.Decimal `json:"amount"`
}

func (req complaintRequest) details() (domain.ComplaintDetails, error) {
	d := domain.ComplaintDetails{
		Title:       req.Title,
		Category:    req.Category,
		Location:    req.Location,
		Description: req.Description,
		Image:       req.Image,
		AddedBy:     req.AddedBy,
		Status:      domain.ComplaintStatus(strings.ToLower(strings.TrimSpace(req.Status))),
	}
	switch d.Status {
	case "", domain.ComplaintStatusOpen, domain.ComplaintStatusResolved:
	default:
		return d, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, req.Status)
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return d, err
	}
	d.DateCreated = date
	return d, nil
}

var dateLayouts = []string{time.RFC3339, "2006-01-02"}

func parseDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, fmt.Errorf("%w: date is required", domain.ErrInvalidInput)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: date %q is not RFC 3339 or YYYY-MM-DD", domain.ErrInvalidInput, v)
}

func (a *App) ComplaintsList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := a.storeCtx(r)
	defer cancel()
	items, err := a.Complaints.List(ctx)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	views := make([]complaintView, 0, len(items))
	for _, c := range items {
		views = append(views, newComplaintView(c))
	}
	a.json(w, http.StatusOK, map[string]any{"items": views})
}

func (a *App) ComplaintsGet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := a.storeCtx(r)
	defer cancel()
	c, err := a.Complaints.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, newComplaintView(*c))
}

func (a *App) ComplaintsCreate(w http.ResponseWriter, r *http.Request) {
	var req complaintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, r, http.StatusBadRequest, domain.KindInvalidInput, msgInvalidPayload)
		return
	}
	d, err := req.details()
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if req.Amount == nil {
		a.fail(w, r, fmt.Errorf("%w: amount is required", domain.ErrInvalidInput))
		return
	}
	target, err := toMinor(*req.Amount)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	ctx, cancel := a.storeCtx(r)
	defer cancel()
	c, err := a.Complaints.Create(ctx, d, target)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.ok(w, r, http.StatusCreated, msgComplaintCreated, newComplaintView(*c))
}

// ComplaintsUpdate rewrites the descriptive fields. Funding fields in the
// body are ignored.
func (a *App) ComplaintsUpdate(w http.ResponseWriter, r *http.Request) {
	var req complaintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, r, http.StatusBadRequest, domain.KindInvalidInput, msgInvalidPayload)
		return
	}
	d, err := req.details()
	if err != nil {
		a.fail(w, r, err)
		return
	}

	ctx, cancel := a.storeCtx(r)
	defer cancel()
	c, err := a.Complaints.Update(ctx, chi.URLParam(r, "id"), d)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.ok(w, r, http.StatusOK, msgComplaintUpdated, newComplaintView(*c))
}

func (a *App) ComplaintsDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := a.storeCtx(r)
	defer cancel()
	if err := a.Complaints.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		a.fail(w, r, err)
		return
	}
	a.ok(w, r, http.StatusOK, msgComplaintDeleted, nil)
}
