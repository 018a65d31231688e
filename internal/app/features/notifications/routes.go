// internal/app/features/notifications/routes.go
package notifications

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter mounted at /notifications.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/{username}", h.List)
	r.Get("/{username}/count", h.Count)
	r.Delete("/{username}/{requestID}", h.Dismiss)
	return r
}
