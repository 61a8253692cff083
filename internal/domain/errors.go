package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrRateLimited     = errors.New("rate limited")
	ErrInvalidCommand  = errors.New("command not valid in current auction status")
	ErrInvalidBid      = errors.New("invalid bid")
	ErrNoActiveBid     = errors.New("no active bid")
	ErrRosterExhausted = errors.New("roster exhausted")
	ErrUnknownTeam     = errors.New("unknown team")
)

// BidReason is the machine-readable reason a bid or decline was rejected.
// Callers surface it to the bidder; the engine only guarantees the code.
type BidReason string

const (
	BidReasonAlreadyLeading     BidReason = "already_leading"
	BidReasonAlreadyDeclined    BidReason = "already_declined"
	BidReasonInsufficientBudget BidReason = "insufficient_budget"
	BidReasonUnknownTeam        BidReason = "unknown_team"
)

// BidError is an ErrInvalidBid carrying the rejection reason for one team.
type BidError struct {
	Team   TeamID
	Reason BidReason
}

func (e *BidError) Error() string {
	return fmt.Sprintf("invalid bid by %s: %s", e.Team, e.Reason)
}

// Unwrap lets errors.Is(err, ErrInvalidBid) match every bid rejection.
func (e *BidError) Unwrap() error {
	return ErrInvalidBid
}
