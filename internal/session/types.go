package session

import (
	"errors"

	"github.com/procurebot/negotiator/internal/belief"
	"github.com/procurebot/negotiator/internal/counter"
	"github.com/procurebot/negotiator/internal/offer"
	"github.com/procurebot/negotiator/internal/policy"
	"github.com/procurebot/negotiator/internal/utility"
)

// #region errors

var (
	// ErrProtocolViolation covers calls on terminal sessions and
	// offers submitted out of turn order. Session state is unchanged.
	ErrProtocolViolation = errors.New("protocol violation")
	// ErrMalformedOffer covers non-positive price/quantity and unknown
	// quality grades, rejected before any state mutation.
	ErrMalformedOffer = errors.New("malformed offer")
	// ErrBudgetViolation flags a generated buyer offer above the hard
	// budget. An implementation defect, never a runtime condition.
	ErrBudgetViolation = errors.New("budget violation")
	// ErrSessionNotFound is returned for unknown session IDs.
	ErrSessionNotFound = errors.New("session not found")
)

// #endregion errors

// #region config

// Config bundles the per-stage configs the way one negotiation uses
// them. MaxRounds is the default round budget for new sessions.
type Config struct {
	MaxRounds int

	Belief  belief.Config
	Utility utility.Config
	Counter counter.Config
	Policy  policy.Config
}

// DefaultConfig returns defaults for every stage (10-round budget).
func DefaultConfig() Config {
	return Config{
		MaxRounds: 10,
		Belief:    belief.DefaultConfig(),
		Utility:   utility.DefaultConfig(),
		Counter:   counter.DefaultConfig(),
		Policy:    policy.DefaultConfig(),
	}
}

// #endregion config

// #region warning

// WarningInconsistentOpponent marks a counterpart price increase
// round-over-round. Non-fatal: the negotiation continues.
const WarningInconsistentOpponent = "inconsistent_opponent_behavior"

// Warning is a non-fatal condition recorded on the session.
type Warning struct {
	Round  int    `json:"round"`
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}

// #endregion warning

// #region snapshot

// Snapshot is a read-only view of one session, safe to retain.
type Snapshot struct {
	ID          string
	State       policy.State
	Round       int
	MaxRounds   int
	Constraint  offer.BudgetConstraint
	Personality offer.PersonalityProfile
	Log         []offer.Offer
	Belief      belief.Belief
	Warnings    []Warning
	// Accepted is the deal offer when State is StateAccepted.
	Accepted *offer.Offer
}

// #endregion snapshot
