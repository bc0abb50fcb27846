// Package scenario runs complete negotiations against simulated
// sellers and re-checks the session invariants afterward. It is the
// evaluation collaborator around the decision core, not part of it.
package scenario

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/procurebot/negotiator/internal/offer"
	"github.com/procurebot/negotiator/internal/policy"
	"github.com/procurebot/negotiator/internal/seller"
	"github.com/procurebot/negotiator/internal/session"
)

// #region result

// Result captures the outcome of one scenario run.
type Result struct {
	SessionID string
	State     policy.State
	Rounds    int
	DealMade  bool

	// FinalPrice is the accepted price; zero when no deal was struck.
	FinalPrice     decimal.Decimal
	Savings        decimal.Decimal // budget - final price
	SavingsPct     float64
	BelowMarketPct float64

	Warnings int
	Snapshot session.Snapshot
}

// #endregion result

// #region run

// Run drives one full negotiation: the seller opens, then seller offer
// and buyer action alternate until a terminal state. When the seller
// accepts the buyer's counter, its next quote echoes that price, which
// the core then accepts under its target rule.
func Run(ctrl *session.Controller, prod Product, constraint offer.BudgetConstraint,
	personality offer.PersonalityProfile, sim seller.Simulator, maxRounds int) (Result, error) {

	id, err := ctrl.Start(constraint, personality, maxRounds)
	if err != nil {
		return Result{}, fmt.Errorf("start session: %w", err)
	}

	price := sim.Opening(prod.MarketPrice)
	for round := 0; ; round++ {
		o := offer.Offer{
			Price:    price,
			Quantity: prod.Quantity,
			Grade:    prod.Grade,
			Round:    round,
			Proposer: offer.PartySeller,
		}
		act, err := ctrl.SubmitCounterpartOffer(id, o)
		if err != nil {
			return Result{}, fmt.Errorf("round %d: %w", round, err)
		}
		if act.Type != policy.ActionCounter {
			break
		}

		snap, err := ctrl.Snapshot(id)
		if err != nil {
			return Result{}, err
		}
		if snap.State.Terminal() {
			break
		}

		price = sim.Respond(act.Offer.Price, round).Price
	}

	snap, err := ctrl.Snapshot(id)
	if err != nil {
		return Result{}, err
	}
	return buildResult(snap, prod, constraint), nil
}

func buildResult(snap session.Snapshot, prod Product, constraint offer.BudgetConstraint) Result {
	r := Result{
		SessionID: snap.ID,
		State:     snap.State,
		Rounds:    snap.Round,
		Warnings:  len(snap.Warnings),
		Snapshot:  snap,
	}
	if snap.State == policy.StateAccepted && snap.Accepted != nil {
		r.DealMade = true
		r.FinalPrice = snap.Accepted.Price
		r.Savings = constraint.MaxTotalPrice.Sub(r.FinalPrice)
		r.SavingsPct = pct(r.Savings, constraint.MaxTotalPrice)
		r.BelowMarketPct = pct(prod.MarketPrice.Sub(r.FinalPrice), prod.MarketPrice)
	}
	return r
}

func pct(part, whole decimal.Decimal) float64 {
	if !whole.IsPositive() {
		return 0
	}
	f, _ := part.Div(whole).Mul(decimal.NewFromInt(100)).Float64()
	return f
}

// #endregion run

// #region summary

// Summary aggregates a suite of scenario results.
type Summary struct {
	Scenarios    int
	Deals        int
	TimedOut     int
	WalkedAway   int
	TotalSavings decimal.Decimal
}

// Summarize computes aggregate stats across results.
func Summarize(results []Result) Summary {
	s := Summary{Scenarios: len(results)}
	for _, r := range results {
		switch r.State {
		case policy.StateAccepted:
			s.Deals++
			s.TotalSavings = s.TotalSavings.Add(r.Savings)
		case policy.StateTimedOut:
			s.TimedOut++
		case policy.StateWalkedAway:
			s.WalkedAway++
		}
	}
	return s
}

// #endregion summary
