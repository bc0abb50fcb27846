package offer

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// #region budget-constraint

// BudgetConstraint is the buyer's hard budget and soft preferences.
// Fixed for a session's lifetime.
type BudgetConstraint struct {
	MaxTotalPrice decimal.Decimal `json:"max_total_price"`
	TargetPrice   decimal.Decimal `json:"target_price"`
	MinQuantity   int             `json:"min_quantity"`
	MaxQuantity   int             `json:"max_quantity"`
	QualityFloor  QualityGrade    `json:"quality_floor"`
}

// Validate checks internal consistency at construction time.
func (c BudgetConstraint) Validate() error {
	if !c.MaxTotalPrice.IsPositive() {
		return fmt.Errorf("non-positive max total price %s", c.MaxTotalPrice)
	}
	if !c.TargetPrice.IsPositive() {
		return fmt.Errorf("non-positive target price %s", c.TargetPrice)
	}
	if c.TargetPrice.GreaterThan(c.MaxTotalPrice) {
		return fmt.Errorf("target price %s exceeds max total price %s", c.TargetPrice, c.MaxTotalPrice)
	}
	if c.MinQuantity <= 0 {
		return fmt.Errorf("non-positive min quantity %d", c.MinQuantity)
	}
	if c.MaxQuantity < c.MinQuantity {
		return fmt.Errorf("max quantity %d below min quantity %d", c.MaxQuantity, c.MinQuantity)
	}
	if !c.QualityFloor.Valid() {
		return fmt.Errorf("unknown quality floor %q", c.QualityFloor)
	}
	return nil
}

// QuantityInRange reports whether q satisfies the constraint bounds.
func (c BudgetConstraint) QuantityInRange(q int) bool {
	return q >= c.MinQuantity && q <= c.MaxQuantity
}

// #endregion budget-constraint

// #region personality

// PersonalityProfile holds the named, bounded traits that shape the
// concession curve and walk-away thresholds. All fields are in [0,1].
type PersonalityProfile struct {
	RiskTolerance  float64 `json:"risk_tolerance"`
	Patience       float64 `json:"patience"`
	Aggressiveness float64 `json:"aggressiveness"`
}

// Validate checks that every trait is within [0,1].
func (p PersonalityProfile) Validate() error {
	for _, t := range []struct {
		name string
		v    float64
	}{
		{"risk_tolerance", p.RiskTolerance},
		{"patience", p.Patience},
		{"aggressiveness", p.Aggressiveness},
	} {
		if t.v < 0 || t.v > 1 {
			return fmt.Errorf("%s %.3f outside [0,1]", t.name, t.v)
		}
	}
	return nil
}

// #endregion personality

// #region presets

// Profiles is the set of built-in personality presets.
var Profiles = map[string]PersonalityProfile{
	"analytical": {
		RiskTolerance:  0.5,
		Patience:       0.5,
		Aggressiveness: 0.5,
	},
	"aggressive": {
		RiskTolerance:  0.7,
		Patience:       0.2,
		Aggressiveness: 0.9,
	},
	"diplomatic": {
		RiskTolerance:  0.6,
		Patience:       0.7,
		Aggressiveness: 0.3,
	},
	"cautious": {
		RiskTolerance:  0.2,
		Patience:       0.8,
		Aggressiveness: 0.2,
	},
}

// ProfileByName looks up a preset, falling back to "analytical".
func ProfileByName(name string) PersonalityProfile {
	if p, ok := Profiles[name]; ok {
		return p
	}
	return Profiles["analytical"]
}

// #endregion presets
