// Package policy is the per-turn decision state machine: given the
// latest counterpart offer and the current belief, it emits exactly
// one of accept, counter, or walk away.
package policy

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/procurebot/negotiator/internal/belief"
	"github.com/procurebot/negotiator/internal/counter"
	"github.com/procurebot/negotiator/internal/offer"
)

// #region input

// TurnInput is everything one Decide call may look at. The policy
// itself holds no session state.
type TurnInput struct {
	Round     int
	MaxRounds int

	SellerOffer offer.Offer
	Constraint  offer.BudgetConstraint
	Personality offer.PersonalityProfile
	Belief      belief.Belief

	// Utility is the evaluator's score for SellerOffer.
	Utility float64
	// LastOwn is the buyer's previous offer price, zero when opening.
	LastOwn decimal.Decimal
}

// #endregion input

// #region policy

// Policy applies the decision rules in fixed order.
type Policy struct {
	cfg Config
	gen *counter.Generator
}

// New creates a policy backed by the given counter-offer generator.
func New(cfg Config, gen *counter.Generator) *Policy {
	return &Policy{cfg: cfg, gen: gen}
}

// Decide runs the rules in order:
//
//  1. deadline reached        → timed out, walk away
//  2. offer meets the target  → accepted (a tie at exactly the target
//     price accepts rather than squeezing further)
//  3. utility below the walk-away threshold while the projected
//     reservation price cannot reach the budget in the remaining
//     rounds → walked away
//  4. otherwise               → counter
func (p *Policy) Decide(in TurnInput) Decision {
	// 1. Deadline.
	if in.Round >= in.MaxRounds {
		return Decision{
			State:  StateTimedOut,
			Action: Action{Type: ActionWalkAway},
			Reason: fmt.Sprintf("round %d reached the %d-round budget", in.Round, in.MaxRounds),
		}
	}

	// 2. Acceptable offer.
	if p.meetsConstraint(in) {
		accepted := in.SellerOffer
		return Decision{
			State:  StateAccepted,
			Action: Action{Type: ActionAccept, Offer: &accepted},
			Reason: fmt.Sprintf("counterpart price %s within target %s", in.SellerOffer.Price, in.Constraint.TargetPrice),
		}
	}

	// 3. Hopeless position. Requires a defined belief: with no
	// information the buyer keeps negotiating.
	threshold := p.cfg.WalkAwayBase * (1 - in.Personality.RiskTolerance)
	if in.Utility < threshold && in.Belief.Defined &&
		in.Belief.ReservationPrice.GreaterThan(in.Constraint.MaxTotalPrice) {
		return Decision{
			State:  StateWalkedAway,
			Action: Action{Type: ActionWalkAway},
			Reason: fmt.Sprintf("utility %.3f below %.3f and projected reservation %s above budget %s",
				in.Utility, threshold, in.Belief.ReservationPrice, in.Constraint.MaxTotalPrice),
		}
	}

	// 4. Counter.
	next := p.gen.Next(counter.Input{
		Round:       in.Round,
		MaxRounds:   in.MaxRounds,
		Constraint:  in.Constraint,
		Personality: in.Personality,
		Belief:      in.Belief,
		LastOwn:     in.LastOwn,
		SellerOffer: in.SellerOffer,
	})
	return Decision{
		State:  StateNegotiating,
		Action: Action{Type: ActionCounter, Offer: &next},
		Reason: fmt.Sprintf("countering %s with %s", in.SellerOffer.Price, next.Price),
	}
}

// meetsConstraint implements rule 2: price at or below target with
// satisfying quantity and quality.
func (p *Policy) meetsConstraint(in TurnInput) bool {
	if in.SellerOffer.Price.GreaterThan(in.Constraint.TargetPrice) {
		return false
	}
	if !in.Constraint.QuantityInRange(in.SellerOffer.Quantity) {
		return false
	}
	return in.SellerOffer.Grade.AtLeast(in.Constraint.QualityFloor)
}

// #endregion policy
