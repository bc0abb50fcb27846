// Package seller provides counterpart simulators for the scenario
// harness and CLIs. The decision core never imports this package: the
// counterpart is an opaque black box to it.
package seller

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// #region simulator

// Quote is a simulator's response to a buyer offer. When Accept is
// set, Price echoes the buyer's offer (the deal price).
type Quote struct {
	Price  decimal.Decimal
	Accept bool
}

// Simulator is a hidden seller: an opening ask plus a response rule.
type Simulator interface {
	// Opening returns the seller's first ask for a good with the given
	// market price.
	Opening(marketPrice decimal.Decimal) decimal.Decimal
	// Respond reacts to a buyer offer at the given round.
	Respond(buyerOffer decimal.Decimal, round int) Quote
}

// #endregion simulator

// #region standard

// Standard opens at 1.5x market and accepts 10% over its hidden floor.
type Standard struct {
	floor decimal.Decimal
}

// NewStandard creates a standard seller with the given hidden floor.
func NewStandard(floor decimal.Decimal) *Standard {
	return &Standard{floor: floor}
}

func (s *Standard) Opening(marketPrice decimal.Decimal) decimal.Decimal {
	return marketPrice.Mul(decimal.NewFromFloat(1.5)).Round(2)
}

func (s *Standard) Respond(buyerOffer decimal.Decimal, round int) Quote {
	if buyerOffer.GreaterThanOrEqual(s.floor.Mul(decimal.NewFromFloat(1.10))) {
		return Quote{Price: buyerOffer, Accept: true}
	}
	step := decimal.NewFromFloat(1.15)
	if round >= 8 {
		step = decimal.NewFromFloat(1.05)
	}
	return Quote{Price: decimal.Max(s.floor, buyerOffer.Mul(step)).Round(2)}
}

// #endregion standard

// #region tough

// Tough opens at 1.7x market, needs a 12% margin, and concedes slowly.
type Tough struct {
	floor decimal.Decimal
}

// NewTough creates a tough seller with the given hidden floor.
func NewTough(floor decimal.Decimal) *Tough {
	return &Tough{floor: floor}
}

func (s *Tough) Opening(marketPrice decimal.Decimal) decimal.Decimal {
	return marketPrice.Mul(decimal.NewFromFloat(1.7)).Round(2)
}

func (s *Tough) Respond(buyerOffer decimal.Decimal, round int) Quote {
	if buyerOffer.GreaterThanOrEqual(s.floor.Mul(decimal.NewFromFloat(1.12))) {
		return Quote{Price: buyerOffer, Accept: true}
	}
	step := decimal.NewFromFloat(1.12)
	if round >= 7 {
		step = decimal.NewFromFloat(1.06)
	}
	return Quote{Price: decimal.Max(s.floor, buyerOffer.Mul(step)).Round(2)}
}

// #endregion tough

// #region friendly

// Friendly opens at 1.35x market and converges fast (8% margin).
type Friendly struct {
	floor decimal.Decimal
}

// NewFriendly creates a friendly seller with the given hidden floor.
func NewFriendly(floor decimal.Decimal) *Friendly {
	return &Friendly{floor: floor}
}

func (s *Friendly) Opening(marketPrice decimal.Decimal) decimal.Decimal {
	return marketPrice.Mul(decimal.NewFromFloat(1.35)).Round(2)
}

func (s *Friendly) Respond(buyerOffer decimal.Decimal, round int) Quote {
	if buyerOffer.GreaterThanOrEqual(s.floor.Mul(decimal.NewFromFloat(1.08))) {
		return Quote{Price: buyerOffer, Accept: true}
	}
	step := decimal.NewFromFloat(1.10)
	if round >= 6 {
		step = decimal.NewFromFloat(1.04)
	}
	return Quote{Price: decimal.Max(s.floor, buyerOffer.Mul(step)).Round(2)}
}

// #endregion friendly

// #region scripted

// Scripted plays a fixed price sequence, for deterministic tests and
// fixtures. The last price repeats once the script runs out. When
// AcceptAbove is positive, any buyer offer at or above it is accepted.
type Scripted struct {
	Prices      []decimal.Decimal
	AcceptAbove decimal.Decimal

	next int
}

func (s *Scripted) Opening(decimal.Decimal) decimal.Decimal {
	s.next = 1
	return s.Prices[0]
}

func (s *Scripted) Respond(buyerOffer decimal.Decimal, round int) Quote {
	if s.AcceptAbove.IsPositive() && buyerOffer.GreaterThanOrEqual(s.AcceptAbove) {
		return Quote{Price: buyerOffer, Accept: true}
	}
	i := s.next
	if i >= len(s.Prices) {
		i = len(s.Prices) - 1
	}
	s.next++
	return Quote{Price: s.Prices[i]}
}

// #endregion scripted

// #region factory

// New builds a named simulator kind ("standard", "tough", "friendly")
// with the given hidden floor.
func New(kind string, floor decimal.Decimal) (Simulator, error) {
	switch kind {
	case "standard":
		return NewStandard(floor), nil
	case "tough":
		return NewTough(floor), nil
	case "friendly":
		return NewFriendly(floor), nil
	}
	return nil, fmt.Errorf("unknown seller kind %q", kind)
}

// #endregion factory
