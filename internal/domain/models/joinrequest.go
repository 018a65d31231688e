// internal/domain/models/joinrequest.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RequestStatus is the lifecycle state of a join request.
// Pending is the only non-terminal state.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// Terminal reports whether no further transition is allowed.
func (s RequestStatus) Terminal() bool {
	return s == RequestApproved || s == RequestRejected
}

// JoinRequest is a proposal by one user to join another user's group trip.
//
// TripCreatorUsername is snapshotted from the trip when the request is
// created and is never re-derived from the trip afterwards.
type JoinRequest struct {
	ID                  primitive.ObjectID `bson:"_id" json:"id"`
	TripID              primitive.ObjectID `bson:"trip_id" json:"trip_id"`
	TripCreatorUsername string             `bson:"trip_creator_username" json:"trip_creator_username"`
	RequesterUsername   string             `bson:"requester_username" json:"requester_username"`
	Message             string             `bson:"message" json:"message"`
	Status              RequestStatus      `bson:"status" json:"status"`
	CreatedAt           time.Time          `bson:"created_at" json:"created_at"`

	// Set only once the request leaves pending.
	ResponderUsername string     `bson:"responder_username,omitempty" json:"responder_username,omitempty"`
	RespondedAt       *time.Time `bson:"responded_at,omitempty" json:"responded_at,omitempty"`
}
