// internal/app/store/groupchats/groupchatstore.go
package groupchatstore

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

// ErrNotParticipant is returned by AppendMessage when no chat for the trip
// lists the sender as a participant.
var ErrNotParticipant = errors.New("sender is not a participant of this chat")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("group_chats")}
}

// AddParticipants creates the chat for tripID if it does not exist and adds
// every username to its participant set. Re-adding an existing participant
// is a no-op, so the call is idempotent.
//
// Two first approvals racing on the same trip both try to insert; the unique
// trip_id index rejects one, which then retries as a plain update.
func (s *Store) AddParticipants(ctx context.Context, tripID primitive.ObjectID, creator string, usernames ...string) (models.GroupChat, error) {
	now := time.Now().UTC()
	filter := bson.M{"trip_id": tripID}
	update := bson.M{
		"$setOnInsert": bson.M{
			"_id":              primitive.NewObjectID(),
			"creator_username": creator,
			"messages":         bson.A{},
			"created_at":       now,
		},
		"$addToSet": bson.M{"participants": bson.M{"$each": usernames}},
		"$set":      bson.M{"updated_at": now},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var chat models.GroupChat
	err := s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&chat)
	if err != nil && wafflemongo.IsDup(err) {
		opts.SetUpsert(false)
		err = s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&chat)
	}
	if err != nil {
		return models.GroupChat{}, err
	}
	return chat, nil
}

// AppendMessage pushes msg onto the trip's chat. The write only matches when
// msg.Sender is currently a participant; otherwise ErrNotParticipant.
func (s *Store) AppendMessage(ctx context.Context, tripID primitive.ObjectID, msg models.ChatMessage) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"trip_id": tripID, "participants": msg.Sender},
		bson.M{
			"$push": bson.M{"messages": msg},
			"$set":  bson.M{"updated_at": msg.Timestamp},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotParticipant
	}
	return nil
}

// GetByTrip returns the chat for tripID or mongo.ErrNoDocuments.
func (s *Store) GetByTrip(ctx context.Context, tripID primitive.ObjectID) (models.GroupChat, error) {
	var chat models.GroupChat
	if err := s.c.FindOne(ctx, bson.M{"trip_id": tripID}).Decode(&chat); err != nil {
		return models.GroupChat{}, err
	}
	return chat, nil
}

// Summary is a chat without its message history.
type Summary struct {
	ID              primitive.ObjectID  `bson:"_id"`
	TripID          primitive.ObjectID  `bson:"trip_id"`
	CreatorUsername string              `bson:"creator_username"`
	Participants    []string            `bson:"participants"`
	MessageCount    int                 `bson:"message_count"`
	LastMessage     *models.ChatMessage `bson:"last_message,omitempty"`
	CreatedAt       time.Time           `bson:"created_at"`
	UpdatedAt       time.Time           `bson:"updated_at"`
}

// SummariesForUser returns every chat that lists username as a participant,
// with its message count and last message computed server-side.
func (s *Store) SummariesForUser(ctx context.Context, username string) ([]Summary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"participants": username}}},
		{{Key: "$project", Value: bson.M{
			"trip_id":          1,
			"creator_username": 1,
			"participants":     1,
			"created_at":       1,
			"updated_at":       1,
			"message_count":    bson.M{"$size": bson.M{"$ifNull": bson.A{"$messages", bson.A{}}}},
			"last_message":     bson.M{"$arrayElemAt": bson.A{"$messages", -1}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "updated_at", Value: -1}, {Key: "_id", Value: -1}}}},
	}

	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []Summary{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
