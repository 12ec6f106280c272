package entities

import (
	"time"

	"github.com/google/uuid"
)

// BusinessEventType is the kind of change a BusinessEvent describes
type BusinessEventType string

const (
	BusinessEventCreated       BusinessEventType = "created"
	BusinessEventUpdated       BusinessEventType = "updated"
	BusinessEventHoursUpdated  BusinessEventType = "hours_updated"
	BusinessEventRatingUpdated BusinessEventType = "rating_updated"
	BusinessEventDisabled      BusinessEventType = "disabled"
)

// BusinessEvent is published whenever a listing changes so that caches and
// the search index can catch up.
type BusinessEvent struct {
	ID            string                 `json:"id"`
	BusinessID    string                 `json:"business_id"`
	EventType     BusinessEventType      `json:"event_type"`
	Timestamp     time.Time              `json:"timestamp"`
	ChangedFields map[string]interface{} `json:"changed_fields,omitempty"`
}

// NewBusinessEvent creates a new business event
func NewBusinessEvent(businessID string, eventType BusinessEventType, changedFields map[string]interface{}) *BusinessEvent {
	return &BusinessEvent{
		ID:            uuid.NewString(),
		BusinessID:    businessID,
		EventType:     eventType,
		Timestamp:     time.Now().UTC(),
		ChangedFields: changedFields,
	}
}
