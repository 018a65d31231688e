// internal/app/store/trips/tripstore.go
package tripstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/voyager/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrBadType      = errors.New(`trip type must be "solo" or "group"`)
	ErrMissingTitle = errors.New("trip title is required")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("trips")}
}

// Create inserts a trip and returns it with its assigned ID and timestamps.
func (s *Store) Create(ctx context.Context, t models.Trip) (models.Trip, error) {
	t.Title = strings.TrimSpace(t.Title)
	if t.Title == "" {
		return models.Trip{}, ErrMissingTitle
	}
	if t.Type != models.TripSolo && t.Type != models.TripGroup {
		return models.Trip{}, ErrBadType
	}

	now := time.Now().UTC()
	if t.ID.IsZero() {
		t.ID = primitive.NewObjectID()
	}
	t.TitleCI = text.Fold(t.Title)
	t.CreatedAt = now
	t.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, t); err != nil {
		return models.Trip{}, err
	}
	return t, nil
}

// GetByID returns the trip or mongo.ErrNoDocuments.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Trip, error) {
	var t models.Trip
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		return models.Trip{}, err
	}
	return t, nil
}

// ListByCreator returns the trips a user created, newest first.
func (s *Store) ListByCreator(ctx context.Context, username string) ([]models.Trip, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"creator_username": username}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Trip{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetMany loads the trips for ids in one query. Missing ids are absent from
// the returned map.
func (s *Store) GetMany(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Trip, error) {
	out := make(map[primitive.ObjectID]models.Trip, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var t models.Trip
		if err := cur.Decode(&t); err != nil {
			return nil, err
		}
		out[t.ID] = t
	}
	return out, cur.Err()
}
