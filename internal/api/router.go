package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "github.com/cropcareai/cropcare/internal/api/middleware"
	"github.com/cropcareai/cropcare/internal/api/response"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	RateLimit *mw.RateLimit

	HealthHandler       http.HandlerFunc
	PredictHandler      http.HandlerFunc
	PastResultsHandler  http.HandlerFunc
	ClearHistoryHandler http.HandlerFunc
	DebugCountsHandler  http.HandlerFunc
	RegisterHandler     http.HandlerFunc
	LoginHandler        http.HandlerFunc

	// UploadsDir, when set, is served read-only at /uploads/ so past results
	// can display their original images.
	UploadsDir string
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	r.Get("/api/v1/health", orNotImplemented(deps.HealthHandler))

	r.Post("/api/register", orNotImplemented(deps.RegisterHandler))
	r.Post("/api/login", orNotImplemented(deps.LoginHandler))

	// Prediction is rate limited; history reads are cheap and are not.
	r.Group(func(r chi.Router) {
		if deps.RateLimit != nil {
			r.Use(deps.RateLimit.Limit)
		}
		r.Post("/predict", orNotImplemented(deps.PredictHandler))
	})

	r.Get("/api/past-results", orNotImplemented(deps.PastResultsHandler))
	r.Delete("/api/clear-history", orNotImplemented(deps.ClearHistoryHandler))
	r.Get("/api/debug-counts", orNotImplemented(deps.DebugCountsHandler))

	if deps.UploadsDir != "" {
		fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(deps.UploadsDir)))
		r.Get("/uploads/*", fs.ServeHTTP)
	}

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
