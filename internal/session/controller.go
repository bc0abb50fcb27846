// Package session owns negotiation lifecycles. The Controller is the
// sole entry point external collaborators call: it enforces round
// limits and turn order, drives one full turn per counterpart offer,
// and keeps independent sessions fully isolated.
package session

import (
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/procurebot/negotiator/internal/belief"
	"github.com/procurebot/negotiator/internal/counter"
	"github.com/procurebot/negotiator/internal/memlog"
	"github.com/procurebot/negotiator/internal/offer"
	"github.com/procurebot/negotiator/internal/policy"
	"github.com/procurebot/negotiator/internal/utility"
)

// #region negotiation

// negotiation is the private per-session state. A session is processed
// strictly single-threaded: one full turn completes before the call
// returns, and there is no suspension inside a turn.
type negotiation struct {
	id          string
	maxRounds   int
	constraint  offer.BudgetConstraint
	personality offer.PersonalityProfile

	log      *memlog.Log
	model    *belief.Model
	state    policy.State
	round    int
	warnings []Warning
	accepted *offer.Offer
}

// #endregion negotiation

// #region controller

// Controller manages independent sessions. The mutex guards only the
// registry; per-session turn processing is synchronous by contract.
type Controller struct {
	mu       sync.Mutex
	cfg      Config
	pol      *policy.Policy
	sessions map[string]*negotiation
}

// NewController validates the config and wires the decision pipeline.
func NewController(cfg Config) (*Controller, error) {
	if cfg.MaxRounds <= 0 {
		return nil, fmt.Errorf("max rounds must be positive, got %d", cfg.MaxRounds)
	}
	gen := counter.NewGenerator(cfg.Counter)
	return &Controller{
		cfg:      cfg,
		pol:      policy.New(cfg.Policy, gen),
		sessions: make(map[string]*negotiation),
	}, nil
}

// #endregion controller

// #region start

// Start creates a new session and returns its ID. maxRounds <= 0
// falls back to the controller default.
func (c *Controller) Start(constraint offer.BudgetConstraint, personality offer.PersonalityProfile, maxRounds int) (string, error) {
	if err := constraint.Validate(); err != nil {
		return "", fmt.Errorf("constraint: %w", err)
	}
	if err := personality.Validate(); err != nil {
		return "", fmt.Errorf("personality: %w", err)
	}
	if maxRounds <= 0 {
		maxRounds = c.cfg.MaxRounds
	}

	n := &negotiation{
		id:          uuid.New().String(),
		maxRounds:   maxRounds,
		constraint:  constraint,
		personality: personality,
		log:         memlog.New(),
		model:       belief.NewModel(maxRounds, c.cfg.Belief),
		state:       policy.StateNegotiating,
	}

	c.mu.Lock()
	c.sessions[n.id] = n
	c.mu.Unlock()

	log.Printf("[SESSION] %s start: budget=%s target=%s rounds=%d",
		n.id, constraint.MaxTotalPrice, constraint.TargetPrice, maxRounds)
	return n.id, nil
}

// #endregion start

// #region submit

// SubmitCounterpartOffer drives exactly one full turn: append the
// counterpart offer, update the belief, evaluate, decide, record the
// buyer's action, and advance the round. A rejected offer mutates
// nothing.
func (c *Controller) SubmitCounterpartOffer(id string, o offer.Offer) (policy.Action, error) {
	n, err := c.lookup(id)
	if err != nil {
		return policy.Action{}, err
	}

	if n.state.Terminal() {
		return policy.Action{}, fmt.Errorf("%w: session %s is %s", ErrProtocolViolation, id, n.state)
	}
	if err := o.Validate(); err != nil {
		return policy.Action{}, fmt.Errorf("%w: %v", ErrMalformedOffer, err)
	}
	if o.Proposer != offer.PartySeller {
		return policy.Action{}, fmt.Errorf("%w: expected a counterpart offer, got proposer %q", ErrProtocolViolation, o.Proposer)
	}
	if o.Round != n.round {
		return policy.Action{}, fmt.Errorf("%w: offer for round %d, session at round %d", ErrProtocolViolation, o.Round, n.round)
	}

	// Work on a cloned model so a failed turn leaves no partial state.
	model := n.model.Clone()
	obs := model.Observe(o.Round, o.Price)

	var lastOwn decimal.Decimal
	if last, ok := n.log.Last(offer.PartyBuyer); ok {
		lastOwn = last.Price
	}

	score := utility.Score(o, n.constraint, n.personality, n.maxRounds, c.cfg.Utility)

	dec := c.pol.Decide(policy.TurnInput{
		Round:       n.round,
		MaxRounds:   n.maxRounds,
		SellerOffer: o,
		Constraint:  n.constraint,
		Personality: n.personality,
		Belief:      obs.Belief,
		Utility:     score,
		LastOwn:     lastOwn,
	})

	// Budget invariant: no buyer offer may ever exceed the hard
	// budget. The generator clamps, so tripping this is a defect.
	if dec.Action.Type == policy.ActionCounter &&
		dec.Action.Offer.Price.GreaterThan(n.constraint.MaxTotalPrice) {
		log.Printf("[SESSION] %s defect: generated offer %s exceeds budget %s",
			n.id, dec.Action.Offer.Price, n.constraint.MaxTotalPrice)
		return policy.Action{}, fmt.Errorf("%w: generated offer %s exceeds budget %s",
			ErrBudgetViolation, dec.Action.Offer.Price, n.constraint.MaxTotalPrice)
	}

	// Commit the turn.
	n.model = model
	n.log.Append(o)
	if obs.Inconsistent {
		w := Warning{
			Round:  o.Round,
			Kind:   WarningInconsistentOpponent,
			Detail: fmt.Sprintf("counterpart price rose to %s", o.Price),
		}
		n.warnings = append(n.warnings, w)
		log.Printf("[BELIEF] %s round %d: %s, confidence now %.3f",
			n.id, o.Round, w.Kind, obs.Belief.Confidence)
	}
	if dec.Action.Type == policy.ActionCounter {
		n.log.Append(*dec.Action.Offer)
	}
	if dec.State == policy.StateAccepted {
		n.accepted = dec.Action.Offer
	}
	n.state = dec.State
	n.round++

	// Round budget exhausted with no deal.
	if n.state == policy.StateNegotiating && n.round >= n.maxRounds {
		n.state = policy.StateTimedOut
		log.Printf("[SESSION] %s timed out after %d rounds", n.id, n.round)
	}

	log.Printf("[POLICY] %s round %d: utility=%.3f action=%s state=%s (%s)",
		n.id, o.Round, score, dec.Action.Type, n.state, dec.Reason)
	return dec.Action, nil
}

// #endregion submit

// #region snapshot

// Snapshot returns a read-only view of the session.
func (c *Controller) Snapshot(id string) (Snapshot, error) {
	n, err := c.lookup(id)
	if err != nil {
		return Snapshot{}, err
	}

	warnings := make([]Warning, len(n.warnings))
	copy(warnings, n.warnings)

	return Snapshot{
		ID:          n.id,
		State:       n.state,
		Round:       n.round,
		MaxRounds:   n.maxRounds,
		Constraint:  n.constraint,
		Personality: n.personality,
		Log:         n.log.Entries(),
		Belief:      n.model.Belief(),
		Warnings:    warnings,
		Accepted:    n.accepted,
	}, nil
}

// #endregion snapshot

// #region cancel

// Cancel forces the session into walked-away at a round boundary.
// Cancelling a terminal session is a protocol violation.
func (c *Controller) Cancel(id string) error {
	n, err := c.lookup(id)
	if err != nil {
		return err
	}
	if n.state.Terminal() {
		return fmt.Errorf("%w: session %s is %s", ErrProtocolViolation, id, n.state)
	}
	n.state = policy.StateWalkedAway
	log.Printf("[SESSION] %s cancelled at round %d", n.id, n.round)
	return nil
}

// #endregion cancel

// #region helpers

func (c *Controller) lookup(id string) (*negotiation, error) {
	c.mu.Lock()
	n, ok := c.sessions[id]
	c.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return n, nil
}

// #endregion helpers
