package storage

import (
	"context"

	"github.com/suprebose/wallet-platform/pkg/models"
)

// EventFilter narrows a log read. Zero-valued fields match everything.
type EventFilter struct {
	UserID     string
	ActionType models.ActionType
}

// EventStore is the append-only action log. Appends must preserve
// insertion order per user: the ordering-dependent analytics
// (regularity, improvement) fold over that sequence.
type EventStore interface {
	// AppendEvent durably appends one event. The store assigns the ID
	// when the event carries none.
	AppendEvent(ctx context.Context, ev *models.Event) error

	// QueryEvents returns events matching the filter in chronological
	// order.
	QueryEvents(ctx context.Context, filter EventFilter) ([]models.Event, error)
}
