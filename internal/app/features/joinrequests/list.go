// internal/app/features/joinrequests/list.go
package joinrequests

import (
	"net/http"

	uierrors "github.com/dalemusser/voyager/internal/app/features/errors"
	"github.com/dalemusser/voyager/internal/app/system/inputval"
	"github.com/dalemusser/voyager/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

type listResponse struct {
	Requests []models.JoinRequest `json:"requests"`
}

// List handles GET /trips/{tripID}/join-requests?username=.
// Only the trip creator sees the list.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	tripID, err := inputval.ObjectID(chi.URLParam(r, "tripID"), "trip")
	if err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}
	caller, err := inputval.Caller(r, "")
	if err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}

	reqs, err := h.Workflow.List(r.Context(), tripID, caller)
	if err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}

	uierrors.WriteJSON(w, http.StatusOK, listResponse{Requests: reqs})
}
