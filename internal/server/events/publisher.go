// Package events publishes account lifecycle notifications. Delivery is
// best-effort: the services log a failed publish and move on, the account
// record stays the source of truth.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/withgossing/bank-app/internal/server/models"
)

type EventType string

const (
	EventTypeAccountCreated     EventType = "ACCOUNT_CREATED"
	EventTypeAccountUpdated     EventType = "ACCOUNT_UPDATED"
	EventTypeAccountDeactivated EventType = "ACCOUNT_DEACTIVATED"
)

// Routing keys on the user exchange, one per event type.
const (
	RoutingKeyCreated     = "user.created"
	RoutingKeyUpdated     = "user.updated"
	RoutingKeyDeactivated = "user.deleted"
)

// Event is the outbound notification payload.
type Event struct {
	ID        string    `json:"id"`
	EventType EventType `json:"eventType"`
	AccountID string    `json:"accountId"`
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEvent builds an Event for the given user.
func NewEvent(eventType EventType, user *models.User) Event {
	return Event{
		ID:        uuid.NewString(),
		EventType: eventType,
		AccountID: user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Timestamp: time.Now().UTC(),
	}
}

// RoutingKey maps the event type to its routing key on the user exchange.
func (e Event) RoutingKey() string {
	switch e.EventType {
	case EventTypeAccountUpdated:
		return RoutingKeyUpdated
	case EventTypeAccountDeactivated:
		return RoutingKeyDeactivated
	default:
		return RoutingKeyCreated
	}
}

// Publisher is the narrow sink the services depend on.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NoopPublisher drops every event. Used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, event Event) error { return nil }
