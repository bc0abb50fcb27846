// Package utility scores candidate offers against the buyer's budget
// and preferences. Score is a pure function: identical inputs always
// yield identical output, and nothing here holds state.
package utility

import (
	"github.com/procurebot/negotiator/internal/offer"
)

// #region config

// Config holds the term weights of the utility function. Weights are
// normalized by their sum, so the score stays in [0,1].
type Config struct {
	SavingsWeight float64
	FitWeight     float64
	DecayWeight   float64
}

// DefaultConfig returns the covered default weighting: price savings
// dominant, then quality/quantity fit, then deadline decay.
func DefaultConfig() Config {
	return Config{
		SavingsWeight: 0.60,
		FitWeight:     0.25,
		DecayWeight:   0.15,
	}
}

// #endregion config

// #region score

// Score rates an offer in [0,1] for the buyer. Three normalized
// terms: price savings relative to the hard budget, quality/quantity
// match, and a round-decay penalty as the deadline approaches.
func Score(o offer.Offer, c offer.BudgetConstraint, p offer.PersonalityProfile, maxRounds int, cfg Config) float64 {
	savings := savingsTerm(o, c)
	fit := fitTerm(o, c)
	decay := decayTerm(o.Round, maxRounds, p)

	total := cfg.SavingsWeight + cfg.FitWeight + cfg.DecayWeight
	if total <= 0 {
		return 0
	}

	score := (cfg.SavingsWeight*savings + cfg.FitWeight*fit + cfg.DecayWeight*(1-decay)) / total
	return clamp01(score)
}

// savingsTerm is (max_total_price - price) / max_total_price, clamped.
func savingsTerm(o offer.Offer, c offer.BudgetConstraint) float64 {
	if !c.MaxTotalPrice.IsPositive() {
		return 0
	}
	s, _ := c.MaxTotalPrice.Sub(o.Price).Div(c.MaxTotalPrice).Float64()
	return clamp01(s)
}

// fitTerm is the grade multiplier times the quantity fit, zeroed on
// sub-floor quality.
func fitTerm(o offer.Offer, c offer.BudgetConstraint) float64 {
	if !o.Grade.AtLeast(c.QualityFloor) {
		return 0
	}
	return o.Grade.Multiplier() * quantityFit(o, c)
}

// quantityFit is 1 inside the constraint range with a linear penalty
// for deviation outside it.
func quantityFit(o offer.Offer, c offer.BudgetConstraint) float64 {
	if c.QuantityInRange(o.Quantity) {
		return 1
	}
	var dist, ref int
	if o.Quantity < c.MinQuantity {
		dist, ref = c.MinQuantity-o.Quantity, c.MinQuantity
	} else {
		dist, ref = o.Quantity-c.MaxQuantity, c.MaxQuantity
	}
	if ref <= 0 {
		return 0
	}
	return clamp01(1 - float64(dist)/float64(ref))
}

// decayTerm grows toward 1 as round approaches maxRounds; patient
// personalities feel less deadline pressure.
func decayTerm(round, maxRounds int, p offer.PersonalityProfile) float64 {
	if maxRounds <= 0 {
		return 1
	}
	progress := float64(round) / float64(maxRounds)
	return clamp01(progress * (1 - p.Patience/2))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// #endregion score
