package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"communityfund/internal/domain"
	"communityfund/internal/ledger"
)

// App holds the dependencies shared by every handler.
type App struct {
	Coordinator *ledger.Coordinator
	Complaints  *ledger.Complaints
	Logger      zerolog.Logger
	// Timeout bounds the store work of one request. Zero disables it.
	Timeout time.Duration
}

func NewApp(coord *ledger.Coordinator, complaints *ledger.Complaints, logger zerolog.Logger, timeout time.Duration) *App {
	return &App{Coordinator: coord, Complaints: complaints, Logger: logger, Timeout: timeout}
}

type errorBody struct {
	Kind    domain.Kind `json:"kind"`
	Message string      `json:"message"`
}

type envelope struct {
	Success bool       `json:"success"`
	Message string     `json:"message,omitempty"`
	Status  string     `json:"status,omitempty"`
	Data    any        `json:"data,omitempty"`
	Error   *errorBody `json:"error,omitempty"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) ok(w http.ResponseWriter, r *http.Request, code int, key string, data any) {
	a.json(w, code, envelope{Success: true, Message: localize(r, key), Data: data})
}

func (a *App) error(w http.ResponseWriter, r *http.Request, code int, kind domain.Kind, key string) {
	a.json(w, code, envelope{Error: &errorBody{Kind: kind, Message: localize(r, key)}})
}

// fail reports err to the client by its kind. Storage details are logged,
// never returned.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	kind := domain.KindOf(err)
	code, key := statusOf(kind, err)
	if code >= http.StatusInternalServerError {
		a.log(r).Error().Err(err).Str("kind", string(kind)).Msg("request failed")
	}
	a.error(w, r, code, kind, key)
}

func statusOf(kind domain.Kind, err error) (int, string) {
	switch kind {
	case domain.KindInvalidAmount:
		return http.StatusBadRequest, msgInvalidAmount
	case domain.KindInvalidComplaintID:
		return http.StatusBadRequest, msgInvalidComplaintID
	case domain.KindInvalidInput:
		return http.StatusBadRequest, msgInvalidInput
	case domain.KindNotFound:
		return http.StatusNotFound, msgNotFound
	case domain.KindConflict:
		if errors.Is(err, domain.ErrDuplicateOperation) {
			return http.StatusConflict, msgDuplicateOperation
		}
		return http.StatusConflict, msgConflict
	case domain.KindComplaintFunded:
		return http.StatusConflict, msgComplaintFunded
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, msgStorage
	}
	return http.StatusInternalServerError, msgStorage
}

// storeCtx derives the context for the store calls of one request.
func (a *App) storeCtx(r *http.Request) (context.Context, context.CancelFunc) {
	if a.Timeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), a.Timeout)
}

// log returns the request logger installed by the logging middleware, or the
// app logger outside of it.
func (a *App) log(r *http.Request) *zerolog.Logger {
	if l := zerolog.Ctx(r.Context()); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &a.Logger
}
