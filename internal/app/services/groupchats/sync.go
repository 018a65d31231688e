// internal/app/services/groupchats/sync.go
package groupchats

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"
	"unicode/utf8"

	groupchatstore "github.com/dalemusser/voyager/internal/app/store/groupchats"
	"github.com/dalemusser/voyager/internal/app/system/apperr"
	"github.com/dalemusser/voyager/internal/app/system/auditlog"
	"github.com/dalemusser/voyager/internal/app/system/htmlsanitize"
	"github.com/dalemusser/voyager/internal/app/system/metrics"
	"github.com/dalemusser/voyager/internal/app/system/timeouts"
	"github.com/dalemusser/voyager/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// MaxContentRunes caps a chat message after sanitizing. Longer messages are
// rejected, not truncated.
const MaxContentRunes = 2000

// ApprovalSource lists the approved join requests for a trip. It is the
// record chat membership is reconciled against.
type ApprovalSource interface {
	ListApproved(ctx context.Context, tripID primitive.ObjectID) ([]models.JoinRequest, error)
}

// Sync owns group chat membership and messages.
type Sync struct {
	chats     *groupchatstore.Store
	approvals ApprovalSource
	audit     *auditlog.Logger
	metrics   *metrics.Metrics
	log       *zap.Logger
}

// New builds a Sync. audit and m may be nil.
func New(chats *groupchatstore.Store, approvals ApprovalSource, audit *auditlog.Logger, m *metrics.Metrics, log *zap.Logger) *Sync {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sync{chats: chats, approvals: approvals, audit: audit, metrics: m, log: log}
}

// ChatSummary is one entry of a user's chat list.
type ChatSummary struct {
	ID              primitive.ObjectID  `json:"id"`
	TripID          primitive.ObjectID  `json:"trip_id"`
	CreatorUsername string              `json:"creator_username"`
	Participants    []string            `json:"participants"`
	MessageCount    int                 `json:"message_count"`
	LastMessage     *models.ChatMessage `json:"last_message"`
	LastActivity    time.Time           `json:"last_activity"`
}

// OnApproval creates the trip's chat with {creator, newParticipant} or adds
// newParticipant to the existing one. Calling it again with the same
// participant changes nothing.
func (s *Sync) OnApproval(ctx context.Context, tripID primitive.ObjectID, creator, newParticipant string) (models.GroupChat, error) {
	members := []string{creator}
	if newParticipant != "" && newParticipant != creator {
		members = append(members, newParticipant)
	}

	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), s.log, "chat add participants")
	defer cancel()

	chat, err := s.chats.AddParticipants(ctx, tripID, creator, members...)
	if err != nil {
		s.log.Error("chat membership update failed",
			zap.String("trip_id", tripID.Hex()),
			zap.String("participant", newParticipant),
			zap.Error(err))
		return models.GroupChat{}, apperr.Internal(err)
	}
	return chat, nil
}

// Get returns the trip's chat after applying any approval whose membership
// update was lost. NOT_FOUND when the trip has no chat and no approvals.
func (s *Sync) Get(ctx context.Context, tripID primitive.ObjectID) (models.GroupChat, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Medium(), s.log, "get group chat")
	defer cancel()

	chat, err := s.chats.GetByTrip(ctx, tripID)
	found := err == nil
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		s.log.Error("load group chat failed", zap.String("trip_id", tripID.Hex()), zap.Error(err))
		return models.GroupChat{}, apperr.Internal(err)
	}

	approved, err := s.approvals.ListApproved(ctx, tripID)
	if err != nil {
		s.log.Error("list approved requests failed", zap.String("trip_id", tripID.Hex()), zap.Error(err))
		return models.GroupChat{}, apperr.Internal(err)
	}

	var creator string
	var missing []string
	for _, r := range approved {
		creator = r.TripCreatorUsername
		if !found || !chat.HasParticipant(r.RequesterUsername) {
			missing = append(missing, r.RequesterUsername)
		}
	}

	if len(missing) == 0 {
		if !found {
			return models.GroupChat{}, apperr.NotFound("group chat not found")
		}
		return chat, nil
	}

	if found {
		creator = chat.CreatorUsername
	}
	s.log.Info("reconciling group chat membership",
		zap.String("trip_id", tripID.Hex()),
		zap.Strings("missing", missing))

	members := append([]string{creator}, missing...)
	reconciled, err := s.chats.AddParticipants(ctx, tripID, creator, members...)
	if err != nil {
		if found {
			s.log.Warn("chat reconcile failed; serving stale membership",
				zap.String("trip_id", tripID.Hex()), zap.Error(err))
			return chat, nil
		}
		s.log.Error("chat reconcile failed", zap.String("trip_id", tripID.Hex()), zap.Error(err))
		return models.GroupChat{}, apperr.Internal(err)
	}
	return reconciled, nil
}

// AppendMessage stores a message from sender. The sender must be a current
// participant at the moment of the write.
func (s *Sync) AppendMessage(ctx context.Context, tripID primitive.ObjectID, sender, content string) (models.ChatMessage, error) {
	content = htmlsanitize.PlainText(content)
	if utf8.RuneCountInString(content) > MaxContentRunes {
		return models.ChatMessage{}, apperr.Validation(fmt.Sprintf("content must be at most %d characters", MaxContentRunes))
	}

	chat, err := s.Get(ctx, tripID)
	if err != nil {
		return models.ChatMessage{}, err
	}
	if !chat.HasParticipant(sender) {
		return models.ChatMessage{}, apperr.Forbidden("you are not a participant in this chat")
	}
	if content == "" {
		return models.ChatMessage{}, apperr.InvalidOperation("message content is required")
	}

	msg := models.ChatMessage{
		ID:        uuid.NewString(),
		Sender:    sender,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}

	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Short(), s.log, "append chat message")
	defer cancel()

	if err := s.chats.AppendMessage(ctx, tripID, msg); err != nil {
		if errors.Is(err, groupchatstore.ErrNotParticipant) {
			return models.ChatMessage{}, apperr.Forbidden("you are not a participant in this chat")
		}
		s.log.Error("append chat message failed", zap.String("trip_id", tripID.Hex()), zap.Error(err))
		return models.ChatMessage{}, apperr.Internal(err)
	}

	s.metrics.ChatMessage()
	s.audit.ChatMessagePosted(ctx, tripID, msg)
	return msg, nil
}

// GetForUser lists the chats username belongs to, most recently active first.
func (s *Sync) GetForUser(ctx context.Context, username string) ([]ChatSummary, error) {
	ctx, cancel := timeouts.WithTimeout(ctx, timeouts.Medium(), s.log, "list user chats")
	defer cancel()

	rows, err := s.chats.SummariesForUser(ctx, username)
	if err != nil {
		s.log.Error("list user chats failed", zap.String("username", username), zap.Error(err))
		return nil, apperr.Internal(err)
	}

	out := make([]ChatSummary, 0, len(rows))
	for _, r := range rows {
		last := r.CreatedAt
		if r.UpdatedAt.After(last) {
			last = r.UpdatedAt
		}
		if r.LastMessage != nil && r.LastMessage.Timestamp.After(last) {
			last = r.LastMessage.Timestamp
		}
		out = append(out, ChatSummary{
			ID:              r.ID,
			TripID:          r.TripID,
			CreatorUsername: r.CreatorUsername,
			Participants:    r.Participants,
			MessageCount:    r.MessageCount,
			LastMessage:     r.LastMessage,
			LastActivity:    last,
		})
	}
	sortByActivity(out)
	return out, nil
}

func sortByActivity(s []ChatSummary) {
	sort.SliceStable(s, func(i, j int) bool {
		if !s[i].LastActivity.Equal(s[j].LastActivity) {
			return s[i].LastActivity.After(s[j].LastActivity)
		}
		return s[i].ID.Hex() > s[j].ID.Hex()
	})
}
