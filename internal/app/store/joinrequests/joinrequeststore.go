// internal/app/store/joinrequests/joinrequeststore.go
package joinrequeststore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/voyager/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrDuplicatePending is returned by Create when the requester already has
	// a pending request for the trip.
	ErrDuplicatePending = errors.New("a pending join request already exists for this trip")
	// ErrNotPending is returned by Transition when the request exists on the
	// trip but has already been resolved.
	ErrNotPending = errors.New("join request is no longer pending")

	errBadTarget = errors.New("transition target must be approved or rejected")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("join_requests")}
}

// Create inserts a new pending request. ID, status and created_at are
// assigned here.
func (s *Store) Create(ctx context.Context, req models.JoinRequest) (models.JoinRequest, error) {
	if req.ID.IsZero() {
		req.ID = primitive.NewObjectID()
	}
	req.Status = models.RequestPending
	req.CreatedAt = time.Now().UTC()
	req.ResponderUsername = ""
	req.RespondedAt = nil

	if _, err := s.c.InsertOne(ctx, req); err != nil {
		if wafflemongo.IsDup(err) {
			return models.JoinRequest{}, ErrDuplicatePending
		}
		return models.JoinRequest{}, err
	}
	return req, nil
}

// GetByID returns the request or mongo.ErrNoDocuments.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.JoinRequest, error) {
	var r models.JoinRequest
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&r); err != nil {
		return models.JoinRequest{}, err
	}
	return r, nil
}

// HasPending reports whether requester has a pending request on tripID.
func (s *Store) HasPending(ctx context.Context, tripID primitive.ObjectID, requester string) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{
		"trip_id":            tripID,
		"requester_username": requester,
		"status":             models.RequestPending,
	}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Transition moves a pending request on tripID to a terminal status in a
// single conditional update. When nothing matched it re-reads the request:
// mongo.ErrNoDocuments means it does not exist on this trip, ErrNotPending
// means someone else resolved it first.
func (s *Store) Transition(ctx context.Context, tripID, id primitive.ObjectID, to models.RequestStatus, responder string) (models.JoinRequest, error) {
	if !to.Terminal() {
		return models.JoinRequest{}, errBadTarget
	}

	now := time.Now().UTC()
	filter := bson.M{"_id": id, "trip_id": tripID, "status": models.RequestPending}
	update := bson.M{"$set": bson.M{
		"status":             to,
		"responder_username": responder,
		"responded_at":       now,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var out models.JoinRequest
	err := s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&out)
	if err == nil {
		return out, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return models.JoinRequest{}, err
	}

	var cur models.JoinRequest
	if err := s.c.FindOne(ctx, bson.M{"_id": id, "trip_id": tripID}).Decode(&cur); err != nil {
		return models.JoinRequest{}, err
	}
	return cur, ErrNotPending
}

var byCreatedAsc = bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}

func (s *Store) find(ctx context.Context, filter bson.M, sort bson.D) ([]models.JoinRequest, error) {
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.JoinRequest{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByTrip returns every request on a trip in any status, oldest first.
func (s *Store) ListByTrip(ctx context.Context, tripID primitive.ObjectID) ([]models.JoinRequest, error) {
	return s.find(ctx, bson.M{"trip_id": tripID}, byCreatedAsc)
}

// ListApproved returns the approved requests on a trip, oldest first.
func (s *Store) ListApproved(ctx context.Context, tripID primitive.ObjectID) ([]models.JoinRequest, error) {
	return s.find(ctx, bson.M{"trip_id": tripID, "status": models.RequestApproved}, byCreatedAsc)
}

func incomingFilter(creator string) bson.M {
	return bson.M{"trip_creator_username": creator, "status": models.RequestPending}
}

func outgoingFilter(requester string) bson.M {
	return bson.M{
		"requester_username": requester,
		"status":             bson.M{"$in": []models.RequestStatus{models.RequestApproved, models.RequestRejected}},
	}
}

// PendingForCreator returns pending requests on trips created by username.
func (s *Store) PendingForCreator(ctx context.Context, username string) ([]models.JoinRequest, error) {
	return s.find(ctx, incomingFilter(username), byCreatedAsc)
}

// ResolvedForRequester returns username's own approved or rejected requests.
func (s *Store) ResolvedForRequester(ctx context.Context, username string) ([]models.JoinRequest, error) {
	return s.find(ctx, outgoingFilter(username), byCreatedAsc)
}

// CountPendingForCreator counts what PendingForCreator would return.
func (s *Store) CountPendingForCreator(ctx context.Context, username string) (int64, error) {
	return s.c.CountDocuments(ctx, incomingFilter(username))
}

// CountResolvedForRequester counts what ResolvedForRequester would return.
func (s *Store) CountResolvedForRequester(ctx context.Context, username string) (int64, error) {
	return s.c.CountDocuments(ctx, outgoingFilter(username))
}

// DeleteResolved removes a resolved request owned by requester. It reports
// whether a document was deleted; pending requests are never matched.
func (s *Store) DeleteResolved(ctx context.Context, id primitive.ObjectID, requester string) (bool, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{
		"_id":                id,
		"requester_username": requester,
		"status":             bson.M{"$ne": models.RequestPending},
	})
	if err != nil {
		return false, err
	}
	return res.DeletedCount == 1, nil
}
