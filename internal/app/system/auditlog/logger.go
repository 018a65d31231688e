// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"

	"github.com/dalemusser/voyager/internal/app/store/audit"
	"github.com/dalemusser/voyager/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Setting values for each Config field.
const (
	All = "all" // MongoDB + zap
	DB  = "db"  // MongoDB only
	Log = "log" // zap only
	Off = "off" // disabled
)

// ValidSetting reports whether s is one of all, db, log, off.
func ValidSetting(s string) bool {
	switch s {
	case All, DB, Log, Off:
		return true
	}
	return false
}

// Config holds audit logging configuration.
type Config struct {
	// Trips controls logging for join request lifecycle events.
	Trips string
	// Chats controls logging for group chat events (sync failures, posted messages).
	Chats string
}

// Logger provides convenience methods for logging audit events.
// It logs to MongoDB (via audit.Store) and/or structured logs (via zap).
type Logger struct {
	store  *audit.Store
	zapLog *zap.Logger
	config Config
}

// New creates a new audit Logger.
func New(store *audit.Store, zapLog *zap.Logger, config Config) *Logger {
	return &Logger{
		store:  store,
		zapLog: zapLog,
		config: config,
	}
}

// logToZap logs the event to zap with consistent structure.
func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("actor", event.Actor),
	}

	if event.Subject != "" {
		fields = append(fields, zap.String("subject", event.Subject))
	}
	if event.TripID != nil {
		fields = append(fields, zap.String("trip_id", event.TripID.Hex()))
	}
	if event.RequestID != nil {
		fields = append(fields, zap.String("request_id", event.RequestID.Hex()))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// If the logger is nil, this is a no-op (allows tests to use nil audit logger).
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil {
		return
	}

	var setting string
	switch event.Category {
	case audit.CategoryTrips:
		setting = l.config.Trips
	case audit.CategoryChats:
		setting = l.config.Chats
	default:
		setting = All
	}
	if setting == "" {
		setting = All
	}

	if setting == Off {
		return
	}

	if setting == All || setting == Log {
		l.logToZap(event)
	}

	if setting == All || setting == DB {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

// --- Join request events ---

// JoinRequestCreated logs a new pending join request.
func (l *Logger) JoinRequestCreated(ctx context.Context, req models.JoinRequest) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryTrips,
		EventType: audit.EventJoinRequestCreated,
		TripID:    &req.TripID,
		RequestID: &req.ID,
		Actor:     req.RequesterUsername,
		Subject:   req.TripCreatorUsername,
		Success:   true,
	})
}

// JoinRequestResolved logs an approval or rejection.
func (l *Logger) JoinRequestResolved(ctx context.Context, req models.JoinRequest) {
	eventType := audit.EventJoinRequestRejected
	if req.Status == models.RequestApproved {
		eventType = audit.EventJoinRequestApproved
	}
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryTrips,
		EventType: eventType,
		TripID:    &req.TripID,
		RequestID: &req.ID,
		Actor:     req.ResponderUsername,
		Subject:   req.RequesterUsername,
		Success:   true,
	})
}

// JoinRequestDismissed logs the requester removing a resolved request from their feed.
func (l *Logger) JoinRequestDismissed(ctx context.Context, req models.JoinRequest) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryTrips,
		EventType: audit.EventJoinRequestDismissed,
		TripID:    &req.TripID,
		RequestID: &req.ID,
		Actor:     req.RequesterUsername,
		Success:   true,
		Details: map[string]string{
			"status": string(req.Status),
		},
	})
}

// --- Chat events ---

// ChatSyncFailed logs an approval whose chat membership could not be applied.
func (l *Logger) ChatSyncFailed(ctx context.Context, req models.JoinRequest, cause error) {
	reason := "unknown"
	if cause != nil {
		reason = cause.Error()
	}
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryChats,
		EventType:     audit.EventChatSyncFailed,
		TripID:        &req.TripID,
		RequestID:     &req.ID,
		Actor:         req.ResponderUsername,
		Subject:       req.RequesterUsername,
		Success:       false,
		FailureReason: reason,
	})
}

// ChatMessagePosted logs a message appended to a trip's group chat.
func (l *Logger) ChatMessagePosted(ctx context.Context, tripID primitive.ObjectID, msg models.ChatMessage) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryChats,
		EventType: audit.EventChatMessagePosted,
		TripID:    &tripID,
		Actor:     msg.Sender,
		Success:   true,
		Details: map[string]string{
			"message_id": msg.ID,
		},
	})
}
