// internal/app/features/joinrequests/create.go
package joinrequests

import (
	"net/http"

	uierrors "github.com/dalemusser/voyager/internal/app/features/errors"
	"github.com/dalemusser/voyager/internal/app/system/apperr"
	"github.com/dalemusser/voyager/internal/app/system/inputval"
	"github.com/go-chi/chi/v5"
)

type createInput struct {
	Username string `json:"username" validate:"omitempty,username"`
	Message  string `json:"message" validate:"max=500"`
}

type createResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Create handles POST /trips/{tripID}/join-requests.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	tripID, err := inputval.ObjectID(chi.URLParam(r, "tripID"), "trip")
	if err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}

	var in createInput
	if err := inputval.DecodeJSON(r, &in); err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}
	requester, err := inputval.Caller(r, in.Username)
	if err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}

	if !h.Limiter.Allow("join:"+requester) {
		uierrors.Write(w, r, h.Log, apperr.RateLimited("too many join requests, try again later"))
		return
	}

	req, err := h.Workflow.Create(r.Context(), tripID, requester, in.Message)
	if err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}

	uierrors.WriteJSON(w, http.StatusCreated, createResponse{
		ID:     req.ID.Hex(),
		Status: string(req.Status),
	})
}
