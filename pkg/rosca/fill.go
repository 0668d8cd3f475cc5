package rosca

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"

	"github.com/suprebose/wallet-platform/pkg/storage"
)

// FillSimulator drifts group member counts upward over time so the
// catalog feels live to participants. Randomness is injected so
// simulations replay deterministically.
type FillSimulator struct {
	groups storage.GroupStore
	rnd    *rand.Rand
	logger *slog.Logger
}

// NewFillSimulator creates a simulator over the given catalog.
func NewFillSimulator(groups storage.GroupStore, rnd *rand.Rand, logger *slog.Logger) *FillSimulator {
	return &FillSimulator{groups: groups, rnd: rnd, logger: logger}
}

// Step gives every open group a 30% chance of gaining one simulated
// member. Lost races with real joins are skipped, never retried.
func (f *FillSimulator) Step(ctx context.Context) error {
	groups, err := f.groups.ListGroups(ctx)
	if err != nil {
		return err
	}
	for _, g := range groups {
		if !g.Open() || f.rnd.Float64() <= 0.7 {
			continue
		}
		_, err := f.groups.AdjustMemberCount(ctx, g.ID, 1, g.CurrentMemberCount)
		if errors.Is(err, storage.ErrStale) || errors.Is(err, storage.ErrGroupFull) {
			continue
		}
		if err != nil {
			return err
		}
		f.logger.Debug("simulated member joined", slog.String("group_id", g.ID))
	}
	return nil
}
