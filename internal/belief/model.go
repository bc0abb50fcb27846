// Package belief maintains the buyer's incremental estimate of the
// counterpart's reservation price and concession rate, derived only
// from the observed sequence of counterpart prices.
package belief

import (
	"github.com/shopspring/decimal"
)

// #region model

// Model accumulates counterpart price observations for one session.
type Model struct {
	cfg       Config
	maxRounds int
	obs       []Observation
	belief    Belief
}

// NewModel creates an empty model projecting out to maxRounds.
func NewModel(maxRounds int, cfg Config) *Model {
	return &Model{cfg: cfg, maxRounds: maxRounds}
}

// Belief returns the current belief snapshot.
func (m *Model) Belief() Belief {
	return m.belief
}

// Observations returns a copy of the observed price sequence.
func (m *Model) Observations() []Observation {
	out := make([]Observation, len(m.obs))
	copy(out, m.obs)
	return out
}

// Clone returns an independent copy of the model. The session
// controller observes on a clone first so a failed turn leaves the
// original model untouched.
func (m *Model) Clone() *Model {
	c := &Model{cfg: m.cfg, maxRounds: m.maxRounds, belief: m.belief}
	c.obs = make([]Observation, len(m.obs))
	copy(c.obs, m.obs)
	return c
}

// #endregion model

// #region observe

// Observe folds one counterpart price into the model.
//
// A strictly lower price than the previous observation is consistent:
// confidence moves toward 1 by ConfidenceGain of the remaining
// headroom and the estimate is re-extrapolated. A higher price is
// inconsistent: confidence is cut, the current estimate freezes, and
// extrapolation resumes only after the next strictly lower price. An
// unchanged price refines nothing.
func (m *Model) Observe(round int, price decimal.Decimal) ObserveResult {
	res := ObserveResult{}

	if len(m.obs) > 0 {
		prev := m.obs[len(m.obs)-1]
		switch price.Cmp(prev.Price) {
		case -1:
			m.belief.Confidence += m.cfg.ConfidenceGain * (1 - m.belief.Confidence)
			m.belief.Frozen = false
		case 1:
			m.belief.Confidence *= m.cfg.InconsistencyCut
			m.belief.Frozen = true
			res.Inconsistent = true
		}
	}

	m.obs = append(m.obs, Observation{Round: round, Price: price})

	if len(m.obs) >= 2 && !m.belief.Frozen {
		m.extrapolate()
	}

	res.Belief = m.belief
	return res
}

// extrapolate recomputes the concession rate and reservation estimate
// from the full observed sequence.
func (m *Model) extrapolate() {
	first := m.obs[0]
	last := m.obs[len(m.obs)-1]
	span := last.Round - first.Round
	if span <= 0 {
		return
	}

	// Average per-round delta across the whole window.
	rate := last.Price.Sub(first.Price).Div(decimal.NewFromInt(int64(span)))

	remaining := m.maxRounds - last.Round
	projected := last.Price.Add(rate.Mul(decimal.NewFromInt(int64(remaining))))

	// Clamp to the plausible domain range [0, opening offer].
	if projected.IsNegative() {
		projected = decimal.Zero
	}
	if projected.GreaterThan(first.Price) {
		projected = first.Price
	}

	m.belief.ConcessionRate = rate
	m.belief.ReservationPrice = projected
	m.belief.Defined = true
}

// #endregion observe
