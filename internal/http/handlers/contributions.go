package handlers

import (
	"encoding/json"
	"errors"
	"iter"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"communityfund/internal/domain"
	"communityfund/internal/ledger"
)

type contributeRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	ContributorID *string         `json:"contributor_id"`
}

// Contribute applies one contribution to the complaint in the path. The
// optional Idempotency-Key header makes retries safe.
func (a *App) Contribute(w http.ResponseWriter, r *http.Request) {
	var req contributeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, r, http.StatusBadRequest, domain.KindInvalidInput, msgInvalidPayload)
		return
	}
	amount, err := toMinor(req.Amount)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	ctx, cancel := a.storeCtx(r)
	defer cancel()
	out, err := a.Coordinator.Contribute(ctx, ledger.ContributeRequest{
		ComplaintID:    chi.URLParam(r, "id"),
		ContributorID:  req.ContributorID,
		Amount:         amount,
		IdempotencyKey: strings.TrimSpace(r.Header.Get("Idempotency-Key")),
	})
	switch {
	case errors.Is(err, domain.ErrPartialCredit):
		a.log(r).Warn().Err(err).Str("contribution_id", out.Contribution.ID).Msg("partial credit")
		a.json(w, http.StatusOK, envelope{
			Success: true,
			Status:  string(domain.KindPartialCredit),
			Message: localize(r, msgContributionPartial),
			Data:    newOutcomeView(out),
		})
	case err != nil:
		a.fail(w, r, err)
	case out.Replayed:
		a.json(w, http.StatusOK, envelope{
			Success: true,
			Status:  "replayed",
			Message: localize(r, msgContributionReplay),
			Data:    newOutcomeView(out),
		})
	default:
		a.json(w, http.StatusOK, envelope{
			Success: true,
			Status:  "done",
			Message: localize(r, msgContributionAdded),
			Data:    newOutcomeView(out),
		})
	}
}

func (a *App) ContributionsList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := a.storeCtx(r)
	defer cancel()
	a.streamContributions(w, r, a.Coordinator.Ledger().ListAll(ctx), "")
}

// ContributionsByUser lists a contributor's history and answers 404 when
// there is none.
func (a *App) ContributionsByUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := a.storeCtx(r)
	defer cancel()
	userID := strings.TrimSpace(chi.URLParam(r, "userId"))
	a.streamContributions(w, r, a.Coordinator.Ledger().ListByContributor(ctx, userID), msgNoContributions)
}

func (a *App) ContributionsByComplaint(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := a.storeCtx(r)
	defer cancel()
	c, err := a.Coordinator.Complaint(ctx, chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.streamContributions(w, r, a.Coordinator.Ledger().ListByComplaint(ctx, c.ID), "")
}

func (a *App) UserTotal(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := a.storeCtx(r)
	defer cancel()
	total, err := a.Coordinator.Totals().Get(ctx, chi.URLParam(r, "userId"))
	if errors.Is(err, domain.ErrNotFound) {
		a.error(w, r, http.StatusNotFound, domain.KindNotFound, msgNoUserTotal)
		return
	}
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, newUserTotalView(*total))
}

// streamContributions writes {"items":[...]} one element at a time. Errors
// before the first element get a normal error response; later ones truncate
// the body. A non-empty emptyKey turns an empty result into a 404.
func (a *App) streamContributions(w http.ResponseWriter, r *http.Request, seq iter.Seq2[domain.Contribution, error], emptyKey string) {
	next, stop := iter.Pull2(seq)
	defer stop()

	item, err, ok := next()
	if ok && err != nil {
		a.fail(w, r, err)
		return
	}
	if !ok && emptyKey != "" {
		a.error(w, r, http.StatusNotFound, domain.KindNotFound, emptyKey)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	enc := json.NewEncoder(w)
	_, _ = w.Write([]byte(`{"items":[`))
	for n := 0; ok; n++ {
		if err != nil {
			a.log(r).Error().Err(err).Int("written", n).Msg("contribution stream aborted")
			return
		}
		if n > 0 {
			_, _ = w.Write([]byte(","))
		}
		if err := enc.Encode(newContributionView(item)); err != nil {
			return
		}
		item, err, ok = next()
	}
	_, _ = w.Write([]byte("]}\n"))
}
