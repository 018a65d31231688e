// internal/app/features/joinrequests/respond.go
package joinrequests

import (
	"net/http"

	uierrors "github.com/dalemusser/voyager/internal/app/features/errors"
	"github.com/dalemusser/voyager/internal/app/system/inputval"
	"github.com/dalemusser/voyager/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

type respondInput struct {
	Action   string `json:"action" validate:"required"`
	Username string `json:"username" validate:"omitempty,username"`
}

type respondResponse struct {
	Request    models.JoinRequest `json:"request"`
	ChatSynced bool               `json:"chat_synced"`
}

// Respond handles POST /trips/{tripID}/join-requests/{requestID}/respond.
//
// The action is checked by the workflow so an unknown value reports
// INVALID_OPERATION rather than a validation error. chat_synced is false when
// the approval stood but the group chat could not be updated; the chat
// catches up on its next read.
func (h *Handler) Respond(w http.ResponseWriter, r *http.Request) {
	tripID, err := inputval.ObjectID(chi.URLParam(r, "tripID"), "trip")
	if err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}
	requestID, err := inputval.ObjectID(chi.URLParam(r, "requestID"), "join request")
	if err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}

	var in respondInput
	if err := inputval.DecodeJSON(r, &in); err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}
	responder, err := inputval.Caller(r, in.Username)
	if err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}

	out, err := h.Workflow.Respond(r.Context(), tripID, requestID, in.Action, responder)
	if err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}

	uierrors.WriteJSON(w, http.StatusOK, respondResponse{Request: out.Request, ChatSynced: out.ChatSynced})
}
