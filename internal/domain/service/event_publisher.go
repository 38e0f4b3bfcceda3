package service

import (
	"context"
	"time"
)

// Identity event types
const (
	EventIdentityRegistered     = "identity.registered"
	EventIdentityProfileUpdated = "identity.profile_updated"
)

// IdentityEvent describes a change to an identity for downstream consumers
type IdentityEvent struct {
	RequestID  string    `json:"request_id,omitempty"` // For distributed tracing
	EventID    string    `json:"event_id"`
	Type       string    `json:"type"`
	IdentityID string    `json:"identity_id"`
	Role       string    `json:"role"`
	Fields     []string  `json:"fields,omitempty"` // Changed fields for profile updates
	OccurredAt time.Time `json:"occurred_at"`
}

// EventPublisher defines the interface for publishing events to a message queue
type EventPublisher interface {
	// PublishIdentityEvent publishes an identity event
	PublishIdentityEvent(ctx context.Context, event *IdentityEvent) error

	// Close releases any resources held by the publisher
	Close() error
}
