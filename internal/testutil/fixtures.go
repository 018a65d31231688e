package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/voyager/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateTrip inserts a trip of the given type owned by creator.
func (f *Fixtures) CreateTrip(ctx context.Context, title string, typ models.TripType, creator string) models.Trip {
	f.t.Helper()

	now := time.Now().UTC()
	trip := models.Trip{
		ID:              primitive.NewObjectID(),
		Title:           title,
		TitleCI:         text.Fold(title),
		Route:           "Lisbon → Porto",
		Type:            typ,
		CreatorUsername: creator,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if _, err := f.db.Collection("trips").InsertOne(ctx, trip); err != nil {
		f.t.Fatalf("failed to create test trip: %v", err)
	}
	return trip
}

// CreateGroupTrip inserts a group trip owned by creator.
func (f *Fixtures) CreateGroupTrip(ctx context.Context, title, creator string) models.Trip {
	f.t.Helper()
	return f.CreateTrip(ctx, title, models.TripGroup, creator)
}

// CreateSoloTrip inserts a solo trip owned by creator.
func (f *Fixtures) CreateSoloTrip(ctx context.Context, title, creator string) models.Trip {
	f.t.Helper()
	return f.CreateTrip(ctx, title, models.TripSolo, creator)
}

// CreateJoinRequest inserts a join request directly, bypassing the workflow.
// For non-pending statuses respondedAt is set to createdAt plus one minute
// and the trip creator is recorded as responder.
func (f *Fixtures) CreateJoinRequest(ctx context.Context, trip models.Trip, requester string, status models.RequestStatus, createdAt time.Time) models.JoinRequest {
	f.t.Helper()

	req := models.JoinRequest{
		ID:                  primitive.NewObjectID(),
		TripID:              trip.ID,
		TripCreatorUsername: trip.CreatorUsername,
		RequesterUsername:   requester,
		Status:              status,
		CreatedAt:           createdAt.UTC(),
	}
	if status.Terminal() {
		at := createdAt.Add(time.Minute).UTC()
		req.RespondedAt = &at
		req.ResponderUsername = trip.CreatorUsername
	}

	if _, err := f.db.Collection("join_requests").InsertOne(ctx, req); err != nil {
		f.t.Fatalf("failed to create test join request: %v", err)
	}
	return req
}

// CreateGroupChat inserts a chat for trip with the given participants.
func (f *Fixtures) CreateGroupChat(ctx context.Context, trip models.Trip, participants ...string) models.GroupChat {
	f.t.Helper()

	now := time.Now().UTC()
	chat := models.GroupChat{
		ID:              primitive.NewObjectID(),
		TripID:          trip.ID,
		CreatorUsername: trip.CreatorUsername,
		Participants:    participants,
		Messages:        []models.ChatMessage{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if _, err := f.db.Collection("group_chats").InsertOne(ctx, chat); err != nil {
		f.t.Fatalf("failed to create test group chat: %v", err)
	}
	return chat
}
