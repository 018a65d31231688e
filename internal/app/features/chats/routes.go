// internal/app/features/chats/routes.go
package chats

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter mounted at /chats.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/user/{username}", h.ForUser)
	r.Get("/{tripID}", h.Get)
	r.Post("/{tripID}/messages", h.PostMessage)
	return r
}
