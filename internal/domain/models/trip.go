// internal/domain/models/trip.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TripType distinguishes trips that accept join requests from those that do not.
type TripType string

const (
	TripSolo  TripType = "solo"
	TripGroup TripType = "group"
)

// Trip is a proposed journey owned by its creator.
//
// NOTE:
//   - CreatorUsername never changes after creation.
//   - Participants is only meaningful for group trips. The creator is an
//     implicit member and may or may not appear in the slice.
type Trip struct {
	ID              primitive.ObjectID `bson:"_id" json:"id"`
	Title           string             `bson:"title" json:"title"`
	TitleCI         string             `bson:"title_ci" json:"-"`
	Route           string             `bson:"route" json:"route"`
	Type            TripType           `bson:"type" json:"type"`
	CreatorUsername string             `bson:"creator_username" json:"creator_username"`
	Participants    []string           `bson:"participants,omitempty" json:"participants,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsGroup reports whether the trip accepts join requests.
func (t Trip) IsGroup() bool {
	return t.Type == TripGroup
}
