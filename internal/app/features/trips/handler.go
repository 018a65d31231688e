// internal/app/features/trips/handler.go
package trips

import (
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/voyager/internal/app/features/errors"
	joinsvc "github.com/dalemusser/voyager/internal/app/services/joinrequests"
	tripstore "github.com/dalemusser/voyager/internal/app/store/trips"
	"github.com/dalemusser/voyager/internal/app/system/apperr"
	"github.com/dalemusser/voyager/internal/app/system/htmlsanitize"
	"github.com/dalemusser/voyager/internal/app/system/inputval"
	"github.com/dalemusser/voyager/internal/app/system/timeouts"
	"github.com/dalemusser/voyager/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the minimal trip surface join requests hang off.
type Handler struct {
	Store    *tripstore.Store
	Workflow *joinsvc.Workflow
	Log      *zap.Logger
}

// NewHandler constructs a trips Handler.
func NewHandler(store *tripstore.Store, wf *joinsvc.Workflow, logger *zap.Logger) *Handler {
	return &Handler{Store: store, Workflow: wf, Log: logger}
}

type createInput struct {
	Username string `json:"username" validate:"omitempty,username"`
	Title    string `json:"title" validate:"required,max=200"`
	Route    string `json:"route" validate:"max=500"`
	Type     string `json:"type" validate:"required,oneof=solo group"`
}

type listResponse struct {
	Trips []models.Trip `json:"trips"`
}

// Create handles POST /trips.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in createInput
	if err := inputval.DecodeJSON(r, &in); err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}
	creator, err := inputval.Caller(r, in.Username)
	if err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "create trip")
	defer cancel()

	trip, err := h.Store.Create(ctx, models.Trip{
		Title:           htmlsanitize.PlainText(in.Title),
		Route:           htmlsanitize.PlainText(in.Route),
		Type:            models.TripType(in.Type),
		CreatorUsername: creator,
	})
	if err != nil {
		if errors.Is(err, tripstore.ErrMissingTitle) || errors.Is(err, tripstore.ErrBadType) {
			uierrors.Write(w, r, h.Log, apperr.Validation(err.Error()))
			return
		}
		uierrors.Write(w, r, h.Log, apperr.Internal(err))
		return
	}

	h.Log.Info("trip created",
		zap.String("trip_id", trip.ID.Hex()),
		zap.String("creator", creator),
		zap.String("type", string(trip.Type)))
	uierrors.WriteJSON(w, http.StatusCreated, trip)
}

// Get handles GET /trips/{tripID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	tripID, err := inputval.ObjectID(chi.URLParam(r, "tripID"), "trip")
	if err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get trip")
	defer cancel()

	trip, err := h.Store.GetByID(ctx, tripID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			uierrors.Write(w, r, h.Log, apperr.NotFound("trip not found"))
			return
		}
		uierrors.Write(w, r, h.Log, apperr.Internal(err))
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, trip)
}

// List handles GET /trips?creator=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	creator, err := inputval.Username(r.URL.Query().Get("creator"))
	if err != nil {
		uierrors.Write(w, r, h.Log, apperr.Validation("creator is required"))
		return
	}
	trips, err := h.Workflow.TripsCreatedBy(r.Context(), creator)
	if err != nil {
		uierrors.Write(w, r, h.Log, err)
		return
	}
	uierrors.WriteJSON(w, http.StatusOK, listResponse{Trips: trips})
}
