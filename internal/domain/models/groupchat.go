// internal/domain/models/groupchat.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GroupChat is the shared conversation for a group trip.
// Exactly one document exists per trip_id, created on the first approval.
// Participants only grow; Messages are append-only.
type GroupChat struct {
	ID              primitive.ObjectID `bson:"_id" json:"id"`
	TripID          primitive.ObjectID `bson:"trip_id" json:"trip_id"`
	CreatorUsername string             `bson:"creator_username" json:"creator_username"`
	Participants    []string           `bson:"participants" json:"participants"`
	Messages        []ChatMessage      `bson:"messages" json:"messages"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// ChatMessage is a single entry in a group chat.
type ChatMessage struct {
	ID        string    `bson:"id" json:"id"`
	Sender    string    `bson:"sender" json:"sender"`
	Content   string    `bson:"content" json:"content"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

// HasParticipant reports whether username is a current member.
func (c GroupChat) HasParticipant(username string) bool {
	for _, p := range c.Participants {
		if p == username {
			return true
		}
	}
	return false
}
