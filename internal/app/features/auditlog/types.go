// internal/app/features/auditlog/types.go
package auditlog

import (
	"time"

	"github.com/dalemusser/voyager/internal/app/store/audit"
)

const pageSize = 50

// listItem is one audit event as returned to the client.
type listItem struct {
	ID            string            `json:"id"`
	Timestamp     time.Time         `json:"timestamp"`
	Category      string            `json:"category"`
	EventType     string            `json:"event_type"`
	Actor         string            `json:"actor"`
	Subject       string            `json:"subject,omitempty"`
	RequestID     string            `json:"request_id,omitempty"`
	Success       bool              `json:"success"`
	FailureReason string            `json:"failure_reason,omitempty"`
	Details       map[string]string `json:"details,omitempty"`
}

// listData is the response body for the activity log.
type listData struct {
	Items []listItem `json:"items"`

	// Filters echoed back
	Category  string `json:"category,omitempty"`
	EventType string `json:"event_type,omitempty"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`

	// Pagination
	Page       int   `json:"page"`
	TotalPages int   `json:"total_pages"`
	Total      int64 `json:"total"`
	HasPrev    bool  `json:"has_prev"`
	HasNext    bool  `json:"has_next"`
}

// eventTypesForCategory returns the event types for a given category.
// If category is empty, returns all event types.
func eventTypesForCategory(category string) []string {
	tripEvents := []string{
		audit.EventJoinRequestCreated,
		audit.EventJoinRequestApproved,
		audit.EventJoinRequestRejected,
		audit.EventJoinRequestDismissed,
	}
	chatEvents := []string{
		audit.EventChatSyncFailed,
		audit.EventChatMessagePosted,
	}

	switch category {
	case audit.CategoryTrips:
		return tripEvents
	case audit.CategoryChats:
		return chatEvents
	case "":
		all := make([]string, 0, len(tripEvents)+len(chatEvents))
		all = append(all, tripEvents...)
		all = append(all, chatEvents...)
		return all
	default:
		return nil
	}
}

func validEventType(category, eventType string) bool {
	for _, e := range eventTypesForCategory(category) {
		if e == eventType {
			return true
		}
	}
	return false
}
