// internal/app/services/notifications/projector.go
package notifications

import (
	"context"
	"errors"
	"sort"
	"time"

	joinrequeststore "github.com/dalemusser/voyager/internal/app/store/joinrequests"
	"github.com/dalemusser/voyager/internal/app/system/apperr"
	"github.com/dalemusser/voyager/internal/app/system/auditlog"
	"github.com/dalemusser/voyager/internal/app/system/metrics"
	"github.com/dalemusser/voyager/internal/app/system/notifycache"
	"github.com/dalemusser/voyager/internal/app/system/timeouts"
	"github.com/dalemusser/voyager/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Kind tells the feed renderer what happened.
type Kind string

const (
	KindJoinRequest     Kind = "JOIN_REQUEST"
	KindRequestApproved Kind = "REQUEST_APPROVED"
	KindRequestRejected Kind = "REQUEST_REJECTED"
)

// unknownTripTitle stands in for a trip that has been deleted.
const unknownTripTitle = "a trip"

// Notification is one feed entry. It is computed from a join request on
// every read and never stored.
type Notification struct {
	ID        string               `json:"id"`
	Kind      Kind                 `json:"type"`
	RequestID primitive.ObjectID   `json:"request_id"`
	TripID    primitive.ObjectID   `json:"trip_id"`
	TripTitle string               `json:"trip_title"`
	TripRoute string               `json:"trip_route"`
	Username  string               `json:"username"` // the other party
	Message   string               `json:"message"`
	Status    models.RequestStatus `json:"status"`
	Timestamp time.Time            `json:"timestamp"`
}

// TripBatch resolves many trips in one call. Missing trips are absent from
// the result.
type TripBatch interface {
	GetMany(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Trip, error)
}

// Projector builds the per-user notification feed.
type Projector struct {
	requests *joinrequeststore.Store
	trips    TripBatch
	cache    *notifycache.Cache
	audit    *auditlog.Logger
	metrics  *metrics.Metrics
	log      *zap.Logger
}

// New builds a Projector. cache, audit and m may be nil.
func New(requests *joinrequeststore.Store, trips TripBatch, cache *notifycache.Cache, audit *auditlog.Logger, m *metrics.Metrics, log *zap.Logger) *Projector {
	if log == nil {
		log = zap.NewNop()
	}
	return &Projector{requests: requests, trips: trips, cache: cache, audit: audit, metrics: m, log: log}
}

// List returns username's feed: pending requests on trips they created and
// their own resolved requests, newest first.
func (p *Projector) List(ctx context.Context, username string) ([]Notification, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Medium(), p.log, "list notifications")
	defer cancel()

	incoming, err := p.requests.PendingForCreator(ctx, username)
	if err != nil {
		p.log.Error("incoming scan failed", zap.String("username", username), zap.Error(err))
		return nil, apperr.Internal(err)
	}
	outgoing, err := p.requests.ResolvedForRequester(ctx, username)
	if err != nil {
		p.log.Error("outgoing scan failed", zap.String("username", username), zap.Error(err))
		return nil, apperr.Internal(err)
	}

	seen := map[primitive.ObjectID]bool{}
	var ids []primitive.ObjectID
	for _, group := range [][]models.JoinRequest{incoming, outgoing} {
		for _, r := range group {
			if !seen[r.TripID] {
				seen[r.TripID] = true
				ids = append(ids, r.TripID)
			}
		}
	}
	trips, err := p.trips.GetMany(ctx, ids)
	if err != nil {
		p.log.Error("trip batch lookup failed", zap.String("username", username), zap.Error(err))
		return nil, apperr.Internal(err)
	}

	feed := make([]Notification, 0, len(incoming)+len(outgoing))
	for _, r := range incoming {
		feed = append(feed, incomingEntry(r, trips[r.TripID]))
	}
	for _, r := range outgoing {
		feed = append(feed, outgoingEntry(r, trips[r.TripID]))
	}
	SortFeed(feed)
	return feed, nil
}

func incomingEntry(r models.JoinRequest, trip models.Trip) Notification {
	title, route := tripLabel(trip)
	return Notification{
		ID:        r.ID.Hex(),
		Kind:      KindJoinRequest,
		RequestID: r.ID,
		TripID:    r.TripID,
		TripTitle: title,
		TripRoute: route,
		Username:  r.RequesterUsername,
		Message:   r.Message,
		Status:    r.Status,
		Timestamp: r.CreatedAt,
	}
}

func outgoingEntry(r models.JoinRequest, trip models.Trip) Notification {
	title, route := tripLabel(trip)
	kind := KindRequestRejected
	if r.Status == models.RequestApproved {
		kind = KindRequestApproved
	}
	ts := r.CreatedAt
	if r.RespondedAt != nil {
		ts = *r.RespondedAt
	}
	return Notification{
		ID:        r.ID.Hex(),
		Kind:      kind,
		RequestID: r.ID,
		TripID:    r.TripID,
		TripTitle: title,
		TripRoute: route,
		Username:  r.TripCreatorUsername,
		Message:   ResolutionMessage(trip, r.Status),
		Status:    r.Status,
		Timestamp: ts,
	}
}

func tripLabel(trip models.Trip) (title, route string) {
	if trip.ID.IsZero() {
		return unknownTripTitle, ""
	}
	return trip.Title, trip.Route
}

// ResolutionMessage is the sentence shown to a requester once their request
// has been answered.
func ResolutionMessage(trip models.Trip, status models.RequestStatus) string {
	subject := unknownTripTitle
	if !trip.ID.IsZero() && trip.Title != "" {
		subject = `"` + trip.Title + `"`
	}
	verb := "rejected"
	if status == models.RequestApproved {
		verb = "approved"
	}
	return "Your request to join " + subject + " was " + verb
}

// SortFeed orders by timestamp descending, then request id descending.
func SortFeed(feed []Notification) {
	sort.SliceStable(feed, func(i, j int) bool {
		if !feed[i].Timestamp.Equal(feed[j].Timestamp) {
			return feed[i].Timestamp.After(feed[j].Timestamp)
		}
		return feed[i].ID > feed[j].ID
	})
}

// Count returns len(List(username)) without loading the records.
func (p *Projector) Count(ctx context.Context, username string) (int64, error) {
	n, gen, ok := p.cache.Get(ctx, username)
	if ok {
		return n, nil
	}

	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), p.log, "count notifications")
	defer cancel()

	in, err := p.requests.CountPendingForCreator(ctx, username)
	if err != nil {
		p.log.Error("incoming count failed", zap.String("username", username), zap.Error(err))
		return 0, apperr.Internal(err)
	}
	out, err := p.requests.CountResolvedForRequester(ctx, username)
	if err != nil {
		p.log.Error("outgoing count failed", zap.String("username", username), zap.Error(err))
		return 0, apperr.Internal(err)
	}

	n = in + out
	p.cache.Set(ctx, username, gen, n)
	return n, nil
}

// Dismiss permanently deletes one of username's resolved requests so it
// leaves their feed. Pending requests cannot be dismissed.
func (p *Projector) Dismiss(ctx context.Context, username string, requestID primitive.ObjectID) error {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), p.log, "dismiss notification")
	defer cancel()

	req, err := p.requests.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperr.NotFound("notification not found")
		}
		p.log.Error("load join request failed", zap.String("request_id", requestID.Hex()), zap.Error(err))
		return apperr.Internal(err)
	}
	if req.RequesterUsername != username {
		return apperr.NotFound("notification not found")
	}
	if req.Status == models.RequestPending {
		return apperr.InvalidOperation("pending requests cannot be dismissed")
	}

	deleted, err := p.requests.DeleteResolved(ctx, requestID, username)
	if err != nil {
		p.log.Error("dismiss notification failed", zap.String("request_id", requestID.Hex()), zap.Error(err))
		return apperr.Internal(err)
	}
	if !deleted {
		// Dismissed concurrently.
		return apperr.NotFound("notification not found")
	}

	p.metrics.NotificationDismissed()
	p.audit.JoinRequestDismissed(ctx, req)
	p.cache.Invalidate(ctx, username)
	return nil
}
