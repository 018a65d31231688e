// internal/app/features/joinrequests/routes.go
package joinrequests

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter mounted at /trips/{tripID}/join-requests.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Post("/{requestID}/respond", h.Respond)
	return r
}
