// Package counter generates the buyer's next proposal from a
// time-dependent concession curve, shifted toward the opponent's
// estimated reservation price when confidence is high.
package counter

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/procurebot/negotiator/internal/belief"
	"github.com/procurebot/negotiator/internal/offer"
)

// #region config

// Config holds the concession-curve parameters.
type Config struct {
	// AnchorFraction is the opening offer as a fraction of the target
	// price, before the aggressiveness adjustment.
	AnchorFraction float64
	// MinIncrementPct forces each successive offer up by at least this
	// fraction of the previous one, so the buyer keeps moving.
	MinIncrementPct float64
	// MinIncrement is an optional absolute floor on the step size.
	MinIncrement decimal.Decimal
}

// DefaultConfig returns the covered defaults.
func DefaultConfig() Config {
	return Config{
		AnchorFraction:  0.70,
		MinIncrementPct: 0.05,
		MinIncrement:    decimal.Zero,
	}
}

// #endregion config

// #region input

// Input carries everything the generator needs for one counter-offer.
type Input struct {
	Round     int
	MaxRounds int

	Constraint  offer.BudgetConstraint
	Personality offer.PersonalityProfile
	Belief      belief.Belief

	// LastOwn is the buyer's previous offer price, zero when opening.
	LastOwn decimal.Decimal
	// SellerOffer is the counterpart offer being countered.
	SellerOffer offer.Offer
}

// #endregion input

// #region generator

// Generator produces buyer counter-offers. Stateless: successive-offer
// monotonicity comes from the LastOwn floor, not hidden state.
type Generator struct {
	cfg Config
}

// NewGenerator creates a generator with the given curve parameters.
func NewGenerator(cfg Config) *Generator {
	return &Generator{cfg: cfg}
}

// Next computes the buyer's counter to in.SellerOffer.
//
// The price starts at an aggressive anchor and moves toward the target
// as round/maxRounds increases; patience flattens the early part of
// the curve. When the opponent belief is defined and not frozen, the
// curve blends toward the estimated reservation price with weight
// equal to the belief confidence. The result is clamped so buyer
// offers never exceed the target price (and therefore never the hard
// budget), never exceed the counterpart's own ask, and never walk
// backward from the previous buyer offer.
func (g *Generator) Next(in Input) offer.Offer {
	target := in.Constraint.TargetPrice

	anchorFrac := g.cfg.AnchorFraction - 0.1*in.Personality.Aggressiveness
	if anchorFrac < 0.1 {
		anchorFrac = 0.1
	}
	anchor := target.Mul(decimal.NewFromFloat(anchorFrac))

	t := float64(in.Round+1) / float64(in.MaxRounds)
	if t > 1 {
		t = 1
	}
	exponent := 0.5 + 2*in.Personality.Patience
	progress := math.Pow(t, exponent)

	price := anchor.Add(target.Sub(anchor).Mul(decimal.NewFromFloat(progress)))

	if in.Belief.Defined && !in.Belief.Frozen && in.Belief.Confidence > 0 {
		reservation := clampDec(in.Belief.ReservationPrice, anchor, target)
		conf := decimal.NewFromFloat(in.Belief.Confidence)
		price = price.Mul(decimal.NewFromInt(1).Sub(conf)).Add(reservation.Mul(conf))
	}

	if in.LastOwn.IsPositive() {
		step := in.LastOwn.Mul(decimal.NewFromFloat(g.cfg.MinIncrementPct))
		if step.LessThan(g.cfg.MinIncrement) {
			step = g.cfg.MinIncrement
		}
		floor := in.LastOwn.Add(step)
		if price.LessThan(floor) {
			price = floor
		}
	}

	ceiling := decimal.Min(target, in.SellerOffer.Price, in.Constraint.MaxTotalPrice)
	if price.GreaterThan(ceiling) {
		price = ceiling
	}
	// The cap can only undercut LastOwn when the seller has already
	// met the buyer's price, which the policy accepts before reaching
	// here; keep the monotonic floor anyway.
	if in.LastOwn.IsPositive() && price.LessThan(in.LastOwn) {
		price = in.LastOwn
	}

	qty := in.SellerOffer.Quantity
	if qty < in.Constraint.MinQuantity {
		qty = in.Constraint.MinQuantity
	}
	if qty > in.Constraint.MaxQuantity {
		qty = in.Constraint.MaxQuantity
	}

	return offer.Offer{
		Price:    price.Round(2),
		Quantity: qty,
		Grade:    in.Constraint.QualityFloor,
		Round:    in.Round,
		Proposer: offer.PartyBuyer,
	}
}

// #endregion generator

// #region helpers

func clampDec(v, lo, hi decimal.Decimal) decimal.Decimal {
	if v.LessThan(lo) {
		return lo
	}
	if v.GreaterThan(hi) {
		return hi
	}
	return v
}

// #endregion helpers
