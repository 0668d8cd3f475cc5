package storage

import (
	"context"

	"github.com/suprebose/wallet-platform/pkg/models"
)

// GroupStore manages the shared ROSCA group catalog.
type GroupStore interface {
	// GetGroup retrieves a catalog entry by ID.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroups retrieves the full catalog.
	ListGroups(ctx context.Context) ([]models.Group, error)

	// PutGroup creates or replaces a catalog entry (seeding and admin
	// use).
	PutGroup(ctx context.Context, g *models.Group) error

	// AdjustMemberCount changes a group's member count by delta as one
	// atomic check-then-increment. A positive delta is rejected with
	// ErrGroupFull when the group is at capacity. When expected >= 0 the
	// update additionally requires the stored count to equal expected,
	// returning ErrStale otherwise; this serializes concurrent joins.
	AdjustMemberCount(ctx context.Context, groupID string, delta int, expected int) (*models.Group, error)
}
