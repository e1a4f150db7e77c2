package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"communityfund/internal/http/handlers"
	"communityfund/internal/middleware"
)

// Options carries the cross-cutting settings of the router.
type Options struct {
	Logger         zerolog.Logger
	AllowedOrigins []string
	DefaultLocale  string
	CountryLookup  middleware.CountryLookup
	RateLimit      int
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		middleware.Logger(opts.Logger),
		chimw.Recoverer,
		middleware.CORS(opts.AllowedOrigins),
		middleware.I18N(opts.DefaultLocale, opts.CountryLookup),
	)

	r.Get("/", app.Root)
	r.Get("/v1/healthz", app.Health)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(opts.RateLimit, time.Minute))

		r.Route("/complaints", func(r chi.Router) {
			r.Get("/", app.ComplaintsList)
			r.Post("/", app.ComplaintsCreate)
			r.Patch("/contribute/{id}", app.Contribute)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", app.ComplaintsGet)
				r.Put("/", app.ComplaintsUpdate)
				r.Delete("/", app.ComplaintsDelete)
				r.Get("/contributions", app.ContributionsByComplaint)
				r.Post("/contributions", app.Contribute)
			})
		})

		r.Route("/contributions", func(r chi.Router) {
			r.Get("/", app.ContributionsList)
			r.Get("/{userId}", app.ContributionsByUser)
		})
		// Older clients use the singular path.
		r.Get("/contribution/{userId}", app.ContributionsByUser)

		r.Get("/users/{userId}/total", app.UserTotal)
	})

	return r
}
