package policy

import "github.com/procurebot/negotiator/internal/offer"

// #region state

// State is the session lifecycle state. All states other than
// StateNegotiating are terminal.
type State string

const (
	StateNegotiating State = "negotiating"
	StateAccepted    State = "accepted"
	StateWalkedAway  State = "walked_away"
	StateTimedOut    State = "timed_out"
)

// Terminal reports whether no further offers can be processed.
func (s State) Terminal() bool {
	return s == StateAccepted || s == StateWalkedAway || s == StateTimedOut
}

// #endregion state

// #region action

// ActionType enumerates the buyer's per-turn choices.
type ActionType string

const (
	ActionAccept   ActionType = "accept"
	ActionCounter  ActionType = "counter"
	ActionWalkAway ActionType = "walk_away"
)

// Action is the buyer's response to one counterpart offer. Offer is
// set only for ActionCounter, and for ActionAccept it echoes the
// accepted counterpart offer.
type Action struct {
	Type  ActionType
	Offer *offer.Offer
}

// #endregion action

// #region decision

// Decision bundles the chosen action, the resulting session state,
// and a human-readable reason for the outcome log.
type Decision struct {
	State  State
	Action Action
	Reason string
}

// #endregion decision

// #region config

// Config holds the policy thresholds.
type Config struct {
	// WalkAwayBase is the utility threshold below which walking away
	// is considered, scaled down by the personality's risk tolerance.
	WalkAwayBase float64
}

// DefaultConfig returns the covered defaults.
func DefaultConfig() Config {
	return Config{WalkAwayBase: 0.30}
}

// #endregion config
