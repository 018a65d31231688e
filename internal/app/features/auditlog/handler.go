// internal/app/features/auditlog/handler.go
package auditlog

import (
	"context"

	"github.com/dalemusser/voyager/internal/app/store/audit"
	"github.com/dalemusser/voyager/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// TripLookup resolves the trip whose activity is being read.
type TripLookup interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Trip, error)
}

// Handler serves a trip's activity log to its creator.
type Handler struct {
	Audit *audit.Store
	Trips TripLookup
	Log   *zap.Logger
}

// NewHandler constructs an activity log handler.
func NewHandler(store *audit.Store, trips TripLookup, logger *zap.Logger) *Handler {
	return &Handler{
		Audit: store,
		Trips: trips,
		Log:   logger,
	}
}
