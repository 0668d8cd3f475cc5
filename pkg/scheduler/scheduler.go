package scheduler

import (
	"context"
	"time"
)

// Clock abstracts time so the lifecycle engine runs on logical time in
// tests and simulations.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// DeductionTick asks for one membership to be evaluated for its next
// periodic contribution (and, when due, its payout).
type DeductionTick struct {
	UserID  string    `json:"user_id"`
	GroupID string    `json:"group_id"`
	DueAt   time.Time `json:"due_at"`
}

// Scheduler defines the interface for a component that schedules a
// membership's next period evaluation.
type Scheduler interface {
	// ScheduleDeduction enqueues a tick for asynchronous processing at
	// or after its due time.
	ScheduleDeduction(ctx context.Context, tick *DeductionTick) error
}

// Noop is a Scheduler that does nothing, for tests and local runs where
// period evaluation is driven explicitly.
type Noop struct{}

// ScheduleDeduction does nothing.
func (Noop) ScheduleDeduction(ctx context.Context, tick *DeductionTick) error {
	return nil
}
