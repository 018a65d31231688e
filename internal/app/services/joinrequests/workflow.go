// internal/app/services/joinrequests/workflow.go
package joinrequests

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	joinrequeststore "github.com/dalemusser/voyager/internal/app/store/joinrequests"
	"github.com/dalemusser/voyager/internal/app/system/apperr"
	"github.com/dalemusser/voyager/internal/app/system/auditlog"
	"github.com/dalemusser/voyager/internal/app/system/htmlsanitize"
	"github.com/dalemusser/voyager/internal/app/system/metrics"
	"github.com/dalemusser/voyager/internal/app/system/notifycache"
	"github.com/dalemusser/voyager/internal/app/system/timeouts"
	"github.com/dalemusser/voyager/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// MaxMessageRunes caps the free-text note attached to a join request.
// Longer notes are rejected, not truncated.
const MaxMessageRunes = 500

// Action is a creator's response to a pending request.
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

// ParseAction accepts "approve" or "reject" in any case.
func ParseAction(s string) (Action, bool) {
	switch Action(strings.ToLower(strings.TrimSpace(s))) {
	case ActionApprove:
		return ActionApprove, true
	case ActionReject:
		return ActionReject, true
	}
	return "", false
}

// TripLookup is the trip collaborator the workflow reads from.
type TripLookup interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Trip, error)
	ListByCreator(ctx context.Context, username string) ([]models.Trip, error)
}

// ChatSync receives approvals.
type ChatSync interface {
	OnApproval(ctx context.Context, tripID primitive.ObjectID, creator, newParticipant string) (models.GroupChat, error)
}

// Deps holds the Workflow collaborators. Audit, Metrics and Cache may be nil.
type Deps struct {
	Trips    TripLookup
	Requests *joinrequeststore.Store
	Chats    ChatSync
	Audit    *auditlog.Logger
	Metrics  *metrics.Metrics
	Cache    *notifycache.Cache
	Log      *zap.Logger
}

// Workflow owns the join request state machine.
type Workflow struct {
	trips    TripLookup
	requests *joinrequeststore.Store
	chats    ChatSync
	audit    *auditlog.Logger
	metrics  *metrics.Metrics
	cache    *notifycache.Cache
	log      *zap.Logger
}

func New(d Deps) *Workflow {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Workflow{
		trips:    d.Trips,
		requests: d.Requests,
		chats:    d.Chats,
		audit:    d.Audit,
		metrics:  d.Metrics,
		cache:    d.Cache,
		log:      log,
	}
}

// Outcome is the result of Respond. ChatSynced is false when an approval
// went through but the chat membership update did not; the next read of the
// chat repairs it.
type Outcome struct {
	Request    models.JoinRequest
	ChatSynced bool
}

func (w *Workflow) loadTrip(ctx context.Context, tripID primitive.ObjectID) (models.Trip, error) {
	trip, err := w.trips.GetByID(ctx, tripID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Trip{}, apperr.NotFound("trip not found")
		}
		w.log.Error("trip lookup failed", zap.String("trip_id", tripID.Hex()), zap.Error(err))
		return models.Trip{}, apperr.Internal(err)
	}
	return trip, nil
}

// Create files a pending request from requester to join tripID.
func (w *Workflow) Create(ctx context.Context, tripID primitive.ObjectID, requester, message string) (models.JoinRequest, error) {
	message = htmlsanitize.PlainText(message)
	if utf8.RuneCountInString(message) > MaxMessageRunes {
		return models.JoinRequest{}, apperr.Validation(fmt.Sprintf("message must be at most %d characters", MaxMessageRunes))
	}

	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Medium(), w.log, "create join request")
	defer cancel()

	trip, err := w.loadTrip(ctx, tripID)
	if err != nil {
		return models.JoinRequest{}, err
	}
	if !trip.IsGroup() {
		return models.JoinRequest{}, apperr.InvalidOperation("only group trips accept join requests")
	}
	if requester == trip.CreatorUsername {
		return models.JoinRequest{}, apperr.InvalidOperation("you cannot request to join your own trip")
	}

	pending, err := w.requests.HasPending(ctx, tripID, requester)
	if err != nil {
		w.log.Error("pending check failed", zap.String("trip_id", tripID.Hex()), zap.Error(err))
		return models.JoinRequest{}, apperr.Internal(err)
	}
	if pending {
		w.metrics.JoinRequest(metrics.OutcomeConflict)
		return models.JoinRequest{}, apperr.Conflict("you already have a pending request for this trip")
	}

	req, err := w.requests.Create(ctx, models.JoinRequest{
		TripID:              trip.ID,
		TripCreatorUsername: trip.CreatorUsername,
		RequesterUsername:   requester,
		Message:             message,
	})
	if err != nil {
		if errors.Is(err, joinrequeststore.ErrDuplicatePending) {
			w.metrics.JoinRequest(metrics.OutcomeConflict)
			return models.JoinRequest{}, apperr.Conflict("you already have a pending request for this trip")
		}
		w.log.Error("create join request failed", zap.String("trip_id", tripID.Hex()), zap.Error(err))
		return models.JoinRequest{}, apperr.Internal(err)
	}

	w.metrics.JoinRequest(metrics.OutcomeCreated)
	w.audit.JoinRequestCreated(ctx, req)
	w.cache.Invalidate(ctx, trip.CreatorUsername)
	w.log.Debug("join request created",
		zap.String("trip_id", tripID.Hex()),
		zap.String("request_id", req.ID.Hex()),
		zap.String("requester", requester))
	return req, nil
}

// List returns every request on tripID. Only the trip creator may list.
func (w *Workflow) List(ctx context.Context, tripID primitive.ObjectID, caller string) ([]models.JoinRequest, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Medium(), w.log, "list join requests")
	defer cancel()

	trip, err := w.loadTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}
	if caller != trip.CreatorUsername {
		return nil, apperr.Forbidden("only the trip creator can view join requests")
	}

	reqs, err := w.requests.ListByTrip(ctx, tripID)
	if err != nil {
		w.log.Error("list join requests failed", zap.String("trip_id", tripID.Hex()), zap.Error(err))
		return nil, apperr.Internal(err)
	}
	return reqs, nil
}

// Respond approves or rejects a pending request. Approval adds the requester
// to the trip's group chat; a failure there is reported in the outcome but
// never undoes the approval.
func (w *Workflow) Respond(ctx context.Context, tripID, requestID primitive.ObjectID, action, responder string) (Outcome, error) {
	act, ok := ParseAction(action)
	if !ok {
		return Outcome{}, apperr.InvalidOperation(`action must be "approve" or "reject"`)
	}

	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Long(), w.log, "respond to join request")
	defer cancel()

	trip, err := w.loadTrip(ctx, tripID)
	if err != nil {
		return Outcome{}, err
	}
	if responder != trip.CreatorUsername {
		return Outcome{}, apperr.Forbidden("only the trip creator can respond to join requests")
	}

	to := models.RequestRejected
	if act == ActionApprove {
		to = models.RequestApproved
	}

	req, err := w.requests.Transition(ctx, tripID, requestID, to, responder)
	switch {
	case err == nil:
	case errors.Is(err, mongo.ErrNoDocuments):
		return Outcome{}, apperr.NotFound("join request not found")
	case errors.Is(err, joinrequeststore.ErrNotPending):
		w.metrics.JoinRequest(metrics.OutcomeConflict)
		return Outcome{}, apperr.Conflict("join request has already been responded to")
	default:
		w.log.Error("join request transition failed",
			zap.String("trip_id", tripID.Hex()),
			zap.String("request_id", requestID.Hex()),
			zap.Error(err))
		return Outcome{}, apperr.Internal(err)
	}

	w.audit.JoinRequestResolved(ctx, req)
	w.cache.Invalidate(ctx, req.TripCreatorUsername, req.RequesterUsername)

	if to == models.RequestRejected {
		w.metrics.JoinRequest(metrics.OutcomeRejected)
		return Outcome{Request: req, ChatSynced: true}, nil
	}

	w.metrics.JoinRequest(metrics.OutcomeApproved)
	out := Outcome{Request: req, ChatSynced: true}
	if _, err := w.chats.OnApproval(ctx, tripID, trip.CreatorUsername, req.RequesterUsername); err != nil {
		out.ChatSynced = false
		w.metrics.ChatSyncFailure()
		w.audit.ChatSyncFailed(ctx, req, err)
		w.log.Warn("approval recorded but chat sync failed; will reconcile on next chat read",
			zap.String("trip_id", tripID.Hex()),
			zap.String("request_id", req.ID.Hex()),
			zap.String("requester", req.RequesterUsername),
			zap.Error(err))
	}
	return out, nil
}

// TripsCreatedBy lists the trips username created. It backs the creator's
// trip list so incoming requests can be browsed per trip.
func (w *Workflow) TripsCreatedBy(ctx context.Context, username string) ([]models.Trip, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Medium(), w.log, "list trips by creator")
	defer cancel()

	trips, err := w.trips.ListByCreator(ctx, username)
	if err != nil {
		w.log.Error("list trips by creator failed", zap.String("username", username), zap.Error(err))
		return nil, apperr.Internal(err)
	}
	return trips, nil
}
