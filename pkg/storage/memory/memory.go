// Package memory provides an in-memory Storage implementation for
// tests and local development. It honors the same conditional-update
// semantics as the DynamoDB store.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/suprebose/wallet-platform/pkg/models"
	"github.com/suprebose/wallet-platform/pkg/storage"
)

// Store keeps all records in process memory behind one mutex.
type Store struct {
	mu     sync.Mutex
	users  map[string]*models.User
	groups map[string]*models.Group
	events []models.Event
	seq    int
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		users:  map[string]*models.User{},
		groups: map[string]*models.Group{},
	}
}

// Make sure we conform to the interface
var _ storage.Storage = (*Store)(nil)

func copyUser(u *models.User) *models.User {
	out := *u
	out.JoinedGroups = make(map[string]models.JoinedGroup, len(u.JoinedGroups))
	for k, v := range u.JoinedGroups {
		out.JoinedGroups[k] = v
	}
	out.Loans = make(map[string]models.Loan, len(u.Loans))
	for k, v := range u.Loans {
		out.Loans[k] = v
	}
	out.TargetSavings = make(map[string]models.TargetSavingsGoal, len(u.TargetSavings))
	for k, v := range u.TargetSavings {
		out.TargetSavings[k] = v
	}
	out.FixedSavings = append([]models.FixedSavingsPosition(nil), u.FixedSavings...)
	out.Investments = append([]models.InvestmentPosition(nil), u.Investments...)
	out.GroupRequests = append([]string(nil), u.GroupRequests...)
	return &out
}

// GetUser retrieves a user's ledger record.
func (s *Store) GetUser(ctx context.Context, userID string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", userID, storage.ErrNotFound)
	}
	return copyUser(u), nil
}

// CreateUser creates a new ledger record.
func (s *Store) CreateUser(ctx context.Context, u *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; ok {
		return nil, fmt.Errorf("user %s already exists", u.ID)
	}
	s.users[u.ID] = copyUser(u)
	return copyUser(u), nil
}

// ListUsers retrieves all ledger records.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, *copyUser(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ClaimToken grants the one-time research token.
func (s *Store) ClaimToken(ctx context.Context, userID string, amount int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", userID, storage.ErrNotFound)
	}
	if u.HasClaimedToken {
		return nil, storage.ErrAlreadyClaimed
	}
	u.HasClaimedToken = true
	u.WalletBalance += amount
	return copyUser(u), nil
}

// ApplyWalletDelta adjusts the balance and holdings as one unit.
func (s *Store) ApplyWalletDelta(ctx context.Context, userID string, delta int64, update *storage.HoldingsUpdate) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", userID, storage.ErrNotFound)
	}
	if u.WalletBalance+delta < 0 {
		return nil, storage.ErrInsufficientFunds
	}
	if update != nil && update.Membership != nil {
		stored, exists := u.JoinedGroups[update.Membership.GroupID]
		if update.ExpectContributions != nil {
			if !exists || stored.ContributionsMade != *update.ExpectContributions {
				return nil, storage.ErrStale
			}
		}
		if update.ExpectPayoutPending && exists && stored.PayoutReceived {
			return nil, storage.ErrStale
		}
	}
	u.WalletBalance += delta
	if update != nil {
		if update.Membership != nil {
			u.JoinedGroups[update.Membership.GroupID] = *update.Membership
		}
		for _, l := range update.Loans {
			u.Loans[l.ID] = l
		}
		if update.TargetGoal != nil {
			u.TargetSavings[update.TargetGoal.ID] = *update.TargetGoal
		}
		if update.FixedSavings != nil {
			u.FixedSavings = append(u.FixedSavings, *update.FixedSavings)
		}
		if update.Investment != nil {
			u.Investments = append(u.Investments, *update.Investment)
		}
		if update.LinkBank {
			u.BankLinked = true
		}
	}
	return copyUser(u), nil
}

// GetGroup retrieves a catalog entry.
func (s *Store) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[groupID]
	if !ok {
		return nil, fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	out := *g
	return &out, nil
}

// ListGroups retrieves the full catalog.
func (s *Store) ListGroups(ctx context.Context) ([]models.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Group, 0, len(s.groups))
	for _, g := range s.groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// PutGroup creates or replaces a catalog entry.
func (s *Store) PutGroup(ctx context.Context, g *models.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *g
	s.groups[g.ID] = &stored
	return nil
}

// AdjustMemberCount changes the member count as one atomic
// check-then-increment.
func (s *Store) AdjustMemberCount(ctx context.Context, groupID string, delta int, expected int) (*models.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[groupID]
	if !ok {
		return nil, fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	if expected >= 0 && g.CurrentMemberCount != expected {
		return nil, storage.ErrStale
	}
	if delta > 0 && g.CurrentMemberCount+delta > g.MemberCapacity {
		return nil, storage.ErrGroupFull
	}
	if g.CurrentMemberCount+delta < 0 {
		return nil, storage.ErrStale
	}
	g.CurrentMemberCount += delta
	out := *g
	return &out, nil
}

// AppendEvent appends to the action log.
func (s *Store) AppendEvent(ctx context.Context, ev *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ev.ID == "" {
		ev.ID = uuid.New().String()
	}
	s.seq++
	s.events = append(s.events, *ev)
	return nil
}

// QueryEvents returns matching events in insertion order.
func (s *Store) QueryEvents(ctx context.Context, filter storage.EventFilter) ([]models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Event
	for _, ev := range s.events {
		if filter.UserID != "" && ev.UserID != filter.UserID {
			continue
		}
		if filter.ActionType != "" && ev.ActionType != filter.ActionType {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}
