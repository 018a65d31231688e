// internal/app/features/auditlog/list.go
package auditlog

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	uierrors "github.com/dalemusser/voyager/internal/app/features/errors"
	"github.com/dalemusser/voyager/internal/app/store/audit"
	"github.com/dalemusser/voyager/internal/app/system/apperr"
	"github.com/dalemusser/voyager/internal/app/system/inputval"
	"github.com/dalemusser/voyager/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// ServeList handles GET /trips/{tripID}/activity?username=.
//
// Optional filters: category, event_type, start_date and end_date
// (YYYY-MM-DD, end date inclusive), page (1-based).
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
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

	q := r.URL.Query()
	category := strings.TrimSpace(q.Get("category"))
	eventType := strings.TrimSpace(q.Get("event_type"))
	startDate := strings.TrimSpace(q.Get("start_date"))
	endDate := strings.TrimSpace(q.Get("end_date"))

	if category != "" && category != audit.CategoryTrips && category != audit.CategoryChats {
		uierrors.Write(w, r, h.Log, apperr.Validation("unknown category "+strconv.Quote(category)))
		return
	}
	if eventType != "" && !validEventType(category, eventType) {
		uierrors.Write(w, r, h.Log, apperr.Validation("unknown event_type "+strconv.Quote(eventType)))
		return
	}

	page := 1
	if p, err := strconv.Atoi(q.Get("page")); err == nil && p > 0 {
		page = p
	}

	filter := audit.QueryFilter{
		TripID:    &tripID,
		Category:  category,
		EventType: eventType,
		Limit:     pageSize,
		Offset:    int64((page - 1) * pageSize),
	}
	if startDate != "" {
		t, err := time.Parse("2006-01-02", startDate)
		if err != nil {
			uierrors.Write(w, r, h.Log, apperr.Validation("start_date must be YYYY-MM-DD"))
			return
		}
		filter.StartTime = &t
	}
	if endDate != "" {
		t, err := time.Parse("2006-01-02", endDate)
		if err != nil {
			uierrors.Write(w, r, h.Log, apperr.Validation("end_date must be YYYY-MM-DD"))
			return
		}
		endOfDay := t.Add(24*time.Hour - time.Nanosecond)
		filter.EndTime = &endOfDay
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "trip activity list")
	defer cancel()

	trip, err := h.Trips.GetByID(ctx, tripID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			uierrors.Write(w, r, h.Log, apperr.NotFound("trip not found"))
			return
		}
		uierrors.Write(w, r, h.Log, apperr.Internal(err))
		return
	}
	if trip.CreatorUsername != caller {
		uierrors.Write(w, r, h.Log, apperr.Forbidden("only the trip creator can view its activity"))
		return
	}

	events, err := h.Audit.Query(ctx, filter)
	if err != nil {
		h.Log.Error("failed to query audit events", zap.String("trip_id", tripID.Hex()), zap.Error(err))
		uierrors.Write(w, r, h.Log, apperr.Internal(err))
		return
	}
	total, err := h.Audit.CountByFilter(ctx, filter)
	if err != nil {
		h.Log.Error("failed to count audit events", zap.String("trip_id", tripID.Hex()), zap.Error(err))
		uierrors.Write(w, r, h.Log, apperr.Internal(err))
		return
	}

	items := make([]listItem, 0, len(events))
	for _, e := range events {
		item := listItem{
			ID:            e.ID.Hex(),
			Timestamp:     e.Timestamp,
			Category:      e.Category,
			EventType:     e.EventType,
			Actor:         e.Actor,
			Subject:       e.Subject,
			Success:       e.Success,
			FailureReason: e.FailureReason,
			Details:       e.Details,
		}
		if e.RequestID != nil {
			item.RequestID = e.RequestID.Hex()
		}
		items = append(items, item)
	}

	totalPages := int((total + pageSize - 1) / pageSize)
	if totalPages < 1 {
		totalPages = 1
	}

	uierrors.WriteJSON(w, http.StatusOK, listData{
		Items:      items,
		Category:   category,
		EventType:  eventType,
		StartDate:  startDate,
		EndDate:    endDate,
		Page:       page,
		TotalPages: totalPages,
		Total:      total,
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
	})
}
