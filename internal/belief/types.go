package belief

import "github.com/shopspring/decimal"

// #region belief

// Belief is the current estimate of the counterpart's reservation
// price and concession behavior. Defined is false until at least two
// observations have arrived; the decision policy must then treat the
// belief as "no information".
type Belief struct {
	ReservationPrice decimal.Decimal
	ConcessionRate   decimal.Decimal // expected negative: price drop per round
	Confidence       float64         // [0,1]
	Defined          bool
	Frozen           bool // set after an inconsistent observation, cleared on recovery
}

// #endregion belief

// #region observation

// Observation is one counterpart price seen at a given round.
type Observation struct {
	Round int
	Price decimal.Decimal
}

// ObserveResult reports what a single observation did to the model.
type ObserveResult struct {
	Inconsistent bool // counterpart price rose round-over-round
	Belief       Belief
}

// #endregion observation

// #region config

// Config holds the confidence dynamics of the opponent model.
type Config struct {
	ConfidenceGain   float64 // fraction of the remaining headroom gained per consistent observation
	InconsistencyCut float64 // confidence multiplier applied on a price increase
}

// DefaultConfig returns the covered defaults.
func DefaultConfig() Config {
	return Config{
		ConfidenceGain:   0.25,
		InconsistencyCut: 0.5,
	}
}

// #endregion config
