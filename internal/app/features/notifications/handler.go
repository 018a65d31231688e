// internal/app/features/notifications/handler.go
package notifications

import (
	"net/http"

	uierrors "github.com/dalemusser/voyager/internal/app/features/errors"
	notifsvc "github.com/dalemusser/voyager/internal/app/services/notifications"
	"github.com/dalemusser/voyager/internal/app/system/inputval"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves a user's notification feed.
type Handler struct {
	Feed *notifsvc.Projector
	Log  *zap.Logger
}

// NewHandler constructs a notifications Handler.
func NewHandler(feed *notifsvc.Projector, logger *zap.Logger) *Handler {
	return &Handler{Feed: feed, Log: logger}
}

type listResponse struct {
	Notifications []notifsvc.Notification `json:"notifications"`
}

type countResponse struct {
	Count int64 `json:"count"`
}

// List handles GET /notifications/{username}.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	username, err := inputval.Username(chi.URLParam(r, "username"))
	if err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}
	feed, err := h.Feed.List(r.Context(), username)
	if err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, listResponse{Notifications: feed})
}

// Count handles GET /notifications/{username}/count.
func (h *Handler) Count(w http.ResponseWriter, r *http.Request) {
	username, err := inputval.Username(chi.URLParam(r, "username"))
	if err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}
	n, err := h.Feed.Count(r.Context(), username)
	if err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, countResponse{Count: n})
}

// Dismiss handles DELETE /notifications/{username}/{requestID}.
// Only resolved requests the user made can be dismissed; the underlying
// join request is deleted.
func (h *Handler) Dismiss(w http.ResponseWriter, r *http.Request) {
	username, err := inputval.Username(chi.URLParam(r, "username"))
	if err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}
	requestID, err := inputval.ObjectID(chi.URLParam(r, "requestID"), "join request")
	if err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}
	if err := h.Feed.Dismiss(r.Context(), username, requestID); err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
