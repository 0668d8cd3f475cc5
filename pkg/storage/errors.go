package storage

import "errors"

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrInsufficientFunds is returned when a wallet balance is below a
// required debit. Recoverable: callers route it to the loan-prompt flow.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrGroupFull is returned when a join would exceed a group's member
// capacity.
var ErrGroupFull = errors.New("group is full")

// ErrAlreadyClaimed is returned when a user re-attempts the one-time
// token claim.
var ErrAlreadyClaimed = errors.New("research token already claimed")

// ErrStale is returned when an optimistic precondition (expected member
// count, expected contribution count, payout still pending) no longer
// holds. Callers re-read and decide whether the work is already done.
var ErrStale = errors.New("stale record state")
