// internal/app/features/trips/routes.go
package trips

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter mounted at /trips. Join-request routes are
// mounted separately under /trips/{tripID}/join-requests.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{tripID}", h.Get)
	return r
}
