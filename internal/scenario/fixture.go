package scenario

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"

	"github.com/procurebot/negotiator/internal/offer"
	"github.com/procurebot/negotiator/internal/policy"
	"github.com/procurebot/negotiator/internal/seller"
	"github.com/procurebot/negotiator/internal/session"
)

// #region fixture-types

// Fixture is the JSON description of one runnable scenario.
type Fixture struct {
	Description string                   `json:"description"`
	Product     Product                  `json:"product"`
	Constraint  offer.BudgetConstraint   `json:"constraint"`
	Personality offer.PersonalityProfile `json:"personality"`
	MaxRounds   int                      `json:"max_rounds"`
	Seller      FixtureSeller            `json:"seller"`
	Expected    Expected                 `json:"expected"`
}

// FixtureSeller selects and parameterizes the counterpart simulator.
type FixtureSeller struct {
	// Kind is "standard", "tough", "friendly", or "scripted".
	Kind        string            `json:"kind"`
	Floor       decimal.Decimal   `json:"floor,omitempty"`
	Script      []decimal.Decimal `json:"script,omitempty"`
	AcceptAbove decimal.Decimal   `json:"accept_above,omitempty"`
}

// Expected is the asserted outcome of a fixture run.
type Expected struct {
	State policy.State `json:"state"`
	// MaxFinalPrice bounds the deal price when State is accepted.
	MaxFinalPrice decimal.Decimal `json:"max_final_price,omitempty"`
	// MaxRounds bounds the number of rounds used.
	MaxRounds int `json:"max_rounds,omitempty"`
}

// #endregion fixture-types

// #region loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// Simulator builds the counterpart simulator the fixture describes.
func (f *Fixture) Simulator() (seller.Simulator, error) {
	if f.Seller.Kind == "scripted" {
		if len(f.Seller.Script) == 0 {
			return nil, fmt.Errorf("scripted seller needs a non-empty script")
		}
		return &seller.Scripted{Prices: f.Seller.Script, AcceptAbove: f.Seller.AcceptAbove}, nil
	}
	return seller.New(f.Seller.Kind, f.Seller.Floor)
}

// #endregion loader

// #region run-fixture

// RunFixture executes a fixture on a fresh controller and checks both
// the session invariants and the fixture's expected outcome.
func RunFixture(f *Fixture) (Result, error) {
	sim, err := f.Simulator()
	if err != nil {
		return Result{}, err
	}

	cfg := session.DefaultConfig()
	if f.MaxRounds > 0 {
		cfg.MaxRounds = f.MaxRounds
	}
	ctrl, err := session.NewController(cfg)
	if err != nil {
		return Result{}, err
	}

	res, err := Run(ctrl, f.Product, f.Constraint, f.Personality, sim, cfg.MaxRounds)
	if err != nil {
		return Result{}, err
	}

	if chk := Verify(res.Snapshot); !chk.Passed {
		return res, fmt.Errorf("%s: %s", f.Description, chk.Reason)
	}
	if err := f.CheckExpected(res); err != nil {
		return res, err
	}
	return res, nil
}

// CheckExpected compares a result against the fixture's expectations.
func (f *Fixture) CheckExpected(res Result) error {
	if f.Expected.State != "" && res.State != f.Expected.State {
		return fmt.Errorf("%s: expected state %s, got %s", f.Description, f.Expected.State, res.State)
	}
	if f.Expected.MaxRounds > 0 && res.Rounds > f.Expected.MaxRounds {
		return fmt.Errorf("%s: used %d rounds, expected at most %d", f.Description, res.Rounds, f.Expected.MaxRounds)
	}
	if res.DealMade && f.Expected.MaxFinalPrice.IsPositive() &&
		res.FinalPrice.GreaterThan(f.Expected.MaxFinalPrice) {
		return fmt.Errorf("%s: final price %s above expected max %s", f.Description, res.FinalPrice, f.Expected.MaxFinalPrice)
	}
	return nil
}

// #endregion run-fixture
