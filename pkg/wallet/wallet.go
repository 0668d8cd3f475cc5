// Package wallet covers the wallet-level operations that are not part
// of a specific product flow: the one-time research token claim, bank
// linking and engagement tracking.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/suprebose/wallet-platform/pkg/models"
	"github.com/suprebose/wallet-platform/pkg/scheduler"
	"github.com/suprebose/wallet-platform/pkg/storage"
)

// ErrRateLimited is returned when token claims arrive faster than the
// service-wide limit allows.
var ErrRateLimited = errors.New("rate limit exceeded")

// Service implements the wallet operations on top of the storage layer.
type Service struct {
	users        storage.UserStore
	events       storage.EventStore
	clock        scheduler.Clock
	logger       *slog.Logger
	claimLimiter *rate.Limiter
}

// New creates a wallet Service.
func New(users storage.UserStore, events storage.EventStore, clock scheduler.Clock, logger *slog.Logger) *Service {
	return &Service{
		users:        users,
		events:       events,
		clock:        clock,
		logger:       logger,
		claimLimiter: rate.NewLimiter(rate.Every(time.Second), 25),
	}
}

// Register creates a fresh ledger record for a participant.
func (s *Service) Register(ctx context.Context, id, name, email string) (*models.User, error) {
	if id == "" {
		id = uuid.New().String()
	}
	user, err := s.users.CreateUser(ctx, models.NewUser(id, name, email, s.clock.Now()))
	if err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	return user, nil
}

// GetUser retrieves a ledger record.
func (s *Service) GetUser(ctx context.Context, userID string) (*models.User, error) {
	return s.users.GetUser(ctx, userID)
}

// ClaimToken grants the one-time research token of 100,000. A repeat
// claim returns storage.ErrAlreadyClaimed and leaves the balance
// untouched.
func (s *Service) ClaimToken(ctx context.Context, userID string) (*models.User, error) {
	if !s.claimLimiter.Allow() {
		return nil, ErrRateLimited
	}

	user, err := s.users.ClaimToken(ctx, userID, models.TokenGrantAmount)
	if err != nil {
		return nil, err
	}

	ev := models.NewEvent(user, &models.TokenClaimMeta{Claimed: true, Amount: models.TokenGrantAmount}, s.clock.Now())
	if err := s.events.AppendEvent(ctx, ev); err != nil {
		return nil, fmt.Errorf("failed to record token claim: %w", err)
	}

	s.logger.Info("research token claimed", slog.String("user_id", userID), slog.Int64("amount", models.TokenGrantAmount))
	return user, nil
}

// LinkBank marks the user's bank account as linked and records the
// event the inclusion analytics key on.
func (s *Service) LinkBank(ctx context.Context, userID, bankName string) (*models.User, error) {
	user, err := s.users.ApplyWalletDelta(ctx, userID, 0, &storage.HoldingsUpdate{LinkBank: true})
	if err != nil {
		return nil, err
	}

	ev := models.NewEvent(user, &models.BankLinkedMeta{BankName: bankName}, s.clock.Now())
	if err := s.events.AppendEvent(ctx, ev); err != nil {
		return nil, fmt.Errorf("failed to record bank link: %w", err)
	}
	return user, nil
}

// TrackScreenView records a navigation event for the engagement score.
func (s *Service) TrackScreenView(ctx context.Context, userID, screenName string, timeSpentSeconds int) error {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	ev := models.NewEvent(user, &models.ScreenViewMeta{ScreenName: screenName, TimeSpentSeconds: timeSpentSeconds}, s.clock.Now())
	return s.events.AppendEvent(ctx, ev)
}

// TrackFeatureClick records a feature interaction event.
func (s *Service) TrackFeatureClick(ctx context.Context, userID, featureName string) error {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	ev := models.NewEvent(user, &models.FeatureClickMeta{FeatureName: featureName}, s.clock.Now())
	return s.events.AppendEvent(ctx, ev)
}
