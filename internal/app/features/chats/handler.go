// internal/app/features/chats/handler.go
package chats

import (
	"net/http"

	uierrors "github.com/dalemusser/voyager/internal/app/features/errors"
	"github.com/dalemusser/voyager/internal/app/services/groupchats"
	"github.com/dalemusser/voyager/internal/app/system/apperr"
	"github.com/dalemusser/voyager/internal/app/system/inputval"
	"github.com/dalemusser/voyager/internal/app/system/ratelimit"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves group chats.
type Handler struct {
	Chats   *groupchats.Sync
	Limiter *ratelimit.Limiter
	Log     *zap.Logger
}

// NewHandler constructs a chats Handler. limiter may be nil.
func NewHandler(chats *groupchats.Sync, limiter *ratelimit.Limiter, logger *zap.Logger) *Handler {
	return &Handler{Chats: chats, Limiter: limiter, Log: logger}
}

type userChatsResponse struct {
	Chats []groupchats.ChatSummary `json:"chats"`
}

type postInput struct {
	Username string `json:"username" validate:"omitempty,username"`
	Content  string `json:"content" validate:"required,max=2000"`
}

// Get handles GET /chats/{tripID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	tripID, err := inputval.ObjectID(chi.URLParam(r, "tripID"), "trip")
	if err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}
	chat, err := h.Chats.Get(r.Context(), tripID)
	if err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, chat)
}

// ForUser handles GET /chats/user/{username}.
func (h *Handler) ForUser(w http.ResponseWriter, r *http.Request) {
	username, err := inputval.Username(chi.URLParam(r, "username"))
	if err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}
	list, err := h.Chats.GetForUser(r.Context(), username)
	if err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, userChatsResponse{Chats: list})
}

// PostMessage handles POST /chats/{tripID}/messages.
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	tripID, err := inputval.ObjectID(chi.URLParam(r, "tripID"), "trip")
	if err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}
	var in postInput
	if err := inputval.DecodeJSON(r, &in); err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}
	sender, err := inputval.Caller(r, in.Username)
	if err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}
	if !h.Limiter.Allow("chat:" + sender) {
		uierrors.Write(w, r, h.Log, apperr.RateLimited("too many messages, try again later"))
		return
	}

	msg, err := h.Chats.AppendMessage(r.Context(), tripID, sender, in.Content)
	if err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}
	uierrors.WriteJSON(w, http.StatusCreated, msg)
}
