package session

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/procurebot/negotiator/internal/offer"
	"github.com/procurebot/negotiator/internal/policy"
)

func newController(t *testing.T) *Controller {
	t.Helper()
	c, err := NewController(DefaultConfig())
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	return c
}

func startSession(t *testing.T, c *Controller, constraint offer.BudgetConstraint, personality offer.PersonalityProfile) string {
	t.Helper()
	id, err := c.Start(constraint, personality, 10)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	return id
}

func sellerOffer(price decimal.Decimal, qty int, round int) offer.Offer {
	return offer.Offer{
		Price:    price,
		Quantity: qty,
		Grade:    offer.GradeA,
		Round:    round,
		Proposer: offer.PartySeller,
	}
}

func dec(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

// #region conceding-counterpart

// A counterpart conceding 5 per round from 80 while the buyer holds a
// target of 45: once the buyer's climbing counters cross the seller's
// hidden acceptance bar at 35, the seller echoes the buyer price and
// the deal closes well under target.
func TestConcedingCounterpartReachesDeal(t *testing.T) {
	c := newController(t)
	constraint := offer.BudgetConstraint{
		MaxTotalPrice: dec(60),
		TargetPrice:   dec(45),
		MinQuantity:   10,
		MaxQuantity:   10,
		QualityFloor:  offer.GradeA,
	}
	id := startSession(t, c, constraint, offer.ProfileByName("analytical"))

	acceptAbove := dec(35)
	ask := dec(80)
	for round := 0; round < 10; round++ {
		act, err := c.SubmitCounterpartOffer(id, sellerOffer(ask, 10, round))
		if err != nil {
			t.Fatalf("round %d: %v", round, err)
		}
		if act.Type != policy.ActionCounter {
			break
		}
		if act.Offer.Price.GreaterThanOrEqual(acceptAbove) {
			ask = act.Offer.Price // seller takes the buyer's price
		} else {
			ask = ask.Sub(dec(5))
		}
	}

	snap, err := c.Snapshot(id)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.State != policy.StateAccepted {
		t.Fatalf("state = %s, want accepted", snap.State)
	}
	if snap.Round > 6 {
		t.Errorf("deal took %d rounds, want at most 6", snap.Round)
	}
	if snap.Accepted == nil {
		t.Fatal("accepted snapshot has no deal offer")
	}
	if snap.Accepted.Price.GreaterThan(constraint.TargetPrice) {
		t.Errorf("deal price %s above target %s", snap.Accepted.Price, constraint.TargetPrice)
	}
	if snap.Accepted.Price.LessThan(acceptAbove) {
		t.Errorf("deal price %s below the seller's acceptance bar", snap.Accepted.Price)
	}

	// Buyer offers climbed monotonically and stayed within budget.
	var lastBuyer decimal.Decimal
	for _, o := range snap.Log {
		if o.Proposer != offer.PartyBuyer {
			continue
		}
		if o.Price.GreaterThan(constraint.MaxTotalPrice) {
			t.Errorf("buyer offer %s above budget", o.Price)
		}
		if lastBuyer.IsPositive() && o.Price.LessThan(lastBuyer) {
			t.Errorf("buyer offers walked back: %s after %s", o.Price, lastBuyer)
		}
		lastBuyer = o.Price
	}
}

// #endregion conceding-counterpart

// #region stubborn-counterpart

// A counterpart that drops once and then holds at 70 against a 45
// target: no agreement is possible and the session times out at the
// round budget without ever accepting.
func TestStubbornCounterpartTimesOut(t *testing.T) {
	c := newController(t)
	constraint := offer.BudgetConstraint{
		MaxTotalPrice: dec(60),
		TargetPrice:   dec(45),
		MinQuantity:   10,
		MaxQuantity:   10,
		QualityFloor:  offer.GradeA,
	}
	id := startSession(t, c, constraint, offer.ProfileByName("analytical"))

	for round := 0; round < 10; round++ {
		ask := dec(70)
		if round == 0 {
			ask = dec(80)
		}
		act, err := c.SubmitCounterpartOffer(id, sellerOffer(ask, 10, round))
		if err != nil {
			t.Fatalf("round %d: %v", round, err)
		}
		if act.Type == policy.ActionAccept {
			t.Fatalf("round %d: accepted an offer above budget", round)
		}
	}

	snap, err := c.Snapshot(id)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.State != policy.StateTimedOut {
		t.Errorf("state = %s, want timed_out", snap.State)
	}
	if snap.Round != 10 {
		t.Errorf("round = %d, want 10", snap.Round)
	}
	if snap.Accepted != nil {
		t.Error("timed-out session carries a deal offer")
	}

	// The exhausted session rejects further offers.
	_, err = c.SubmitCounterpartOffer(id, sellerOffer(dec(40), 10, 10))
	if !errors.Is(err, ErrProtocolViolation) {
		t.Errorf("post-deadline submit error = %v, want protocol violation", err)
	}
}

// #endregion stubborn-counterpart

// #region erratic-counterpart

// A price increase mid-stream is flagged as a warning, cuts model
// confidence, and freezes the estimate, but the negotiation keeps
// going and recovers on the next concession.
func TestErraticCounterpartFlaggedAndSurvived(t *testing.T) {
	c := newController(t)
	constraint := offer.BudgetConstraint{
		MaxTotalPrice: dec(120),
		TargetPrice:   dec(50),
		MinQuantity:   10,
		MaxQuantity:   10,
		QualityFloor:  offer.GradeA,
	}
	id := startSession(t, c, constraint, offer.ProfileByName("analytical"))

	prices := []float64{100, 90, 80, 85, 80}
	var confBefore float64
	for round, p := range prices {
		if round == 3 {
			snap, _ := c.Snapshot(id)
			confBefore = snap.Belief.Confidence
		}
		if _, err := c.SubmitCounterpartOffer(id, sellerOffer(dec(p), 10, round)); err != nil {
			t.Fatalf("round %d: %v", round, err)
		}
		if round == 3 {
			snap, _ := c.Snapshot(id)
			if snap.Belief.Confidence >= confBefore {
				t.Errorf("confidence did not strictly decrease: %.4f -> %.4f",
					confBefore, snap.Belief.Confidence)
			}
			if !snap.Belief.Frozen {
				t.Error("belief not frozen after the price increase")
			}
		}
	}

	snap, err := c.Snapshot(id)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.State != policy.StateNegotiating {
		t.Errorf("state = %s, want still negotiating", snap.State)
	}
	if len(snap.Warnings) != 1 {
		t.Fatalf("warnings = %d, want 1", len(snap.Warnings))
	}
	w := snap.Warnings[0]
	if w.Kind != WarningInconsistentOpponent {
		t.Errorf("warning kind = %q", w.Kind)
	}
	if w.Round != 3 {
		t.Errorf("warning round = %d, want 3", w.Round)
	}
	if snap.Belief.Frozen {
		t.Error("belief still frozen after the follow-up concession")
	}
}

// #endregion erratic-counterpart

// #region malformed

// Malformed offers are rejected atomically: no log entry, no belief
// update, no round advance.
func TestMalformedOfferRejectedAtomically(t *testing.T) {
	c := newController(t)
	constraint := offer.BudgetConstraint{
		MaxTotalPrice: dec(60),
		TargetPrice:   dec(45),
		MinQuantity:   10,
		MaxQuantity:   10,
		QualityFloor:  offer.GradeA,
	}
	id := startSession(t, c, constraint, offer.ProfileByName("analytical"))

	tests := []struct {
		name   string
		mutate func(*offer.Offer)
	}{
		{"negative price", func(o *offer.Offer) { o.Price = dec(-5) }},
		{"zero price", func(o *offer.Offer) { o.Price = decimal.Zero }},
		{"zero quantity", func(o *offer.Offer) { o.Quantity = 0 }},
		{"unknown grade", func(o *offer.Offer) { o.Grade = "Supreme" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := sellerOffer(dec(80), 10, 0)
			tt.mutate(&o)

			_, err := c.SubmitCounterpartOffer(id, o)
			if !errors.Is(err, ErrMalformedOffer) {
				t.Fatalf("error = %v, want malformed offer", err)
			}

			snap, err := c.Snapshot(id)
			if err != nil {
				t.Fatalf("Snapshot: %v", err)
			}
			if snap.Round != 0 || len(snap.Log) != 0 {
				t.Errorf("rejected offer mutated the session: round=%d log=%d", snap.Round, len(snap.Log))
			}
			if snap.Belief.Defined {
				t.Error("rejected offer updated the belief")
			}
		})
	}

	// The session still works after the rejections.
	if _, err := c.SubmitCounterpartOffer(id, sellerOffer(dec(80), 10, 0)); err != nil {
		t.Fatalf("valid offer after rejections: %v", err)
	}
}

// #endregion malformed

// #region protocol

func TestProtocolViolations(t *testing.T) {
	c := newController(t)
	constraint := offer.BudgetConstraint{
		MaxTotalPrice: dec(60),
		TargetPrice:   dec(45),
		MinQuantity:   10,
		MaxQuantity:   10,
		QualityFloor:  offer.GradeA,
	}
	id := startSession(t, c, constraint, offer.ProfileByName("analytical"))

	t.Run("wrong round", func(t *testing.T) {
		_, err := c.SubmitCounterpartOffer(id, sellerOffer(dec(80), 10, 3))
		if !errors.Is(err, ErrProtocolViolation) {
			t.Errorf("error = %v, want protocol violation", err)
		}
	})

	t.Run("wrong proposer", func(t *testing.T) {
		o := sellerOffer(dec(80), 10, 0)
		o.Proposer = offer.PartyBuyer
		_, err := c.SubmitCounterpartOffer(id, o)
		if !errors.Is(err, ErrProtocolViolation) {
			t.Errorf("error = %v, want protocol violation", err)
		}
	})

	t.Run("unknown session", func(t *testing.T) {
		_, err := c.SubmitCounterpartOffer("no-such-id", sellerOffer(dec(80), 10, 0))
		if !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("error = %v, want session not found", err)
		}
		if _, err := c.Snapshot("no-such-id"); !errors.Is(err, ErrSessionNotFound) {
			t.Errorf("Snapshot error = %v, want session not found", err)
		}
	})
}

func TestCancel(t *testing.T) {
	c := newController(t)
	constraint := offer.BudgetConstraint{
		MaxTotalPrice: dec(60),
		TargetPrice:   dec(45),
		MinQuantity:   10,
		MaxQuantity:   10,
		QualityFloor:  offer.GradeA,
	}
	id := startSession(t, c, constraint, offer.ProfileByName("analytical"))

	if err := c.Cancel(id); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	snap, err := c.Snapshot(id)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.State != policy.StateWalkedAway {
		t.Errorf("state = %s, want walked_away", snap.State)
	}

	if err := c.Cancel(id); !errors.Is(err, ErrProtocolViolation) {
		t.Errorf("second Cancel error = %v, want protocol violation", err)
	}
	if _, err := c.SubmitCounterpartOffer(id, sellerOffer(dec(40), 10, 0)); !errors.Is(err, ErrProtocolViolation) {
		t.Errorf("submit after cancel error = %v, want protocol violation", err)
	}
}

// #endregion protocol

// #region walk-away

// A risk-averse buyer facing out-of-range quantities and a counterpart
// whose projected reservation sits above the budget gives up early.
func TestWalkAwayFromHopelessCounterpart(t *testing.T) {
	c := newController(t)
	constraint := offer.BudgetConstraint{
		MaxTotalPrice: dec(60),
		TargetPrice:   dec(45),
		MinQuantity:   10,
		MaxQuantity:   20,
		QualityFloor:  offer.GradeB,
	}
	personality := offer.PersonalityProfile{RiskTolerance: 0, Patience: 0.5, Aggressiveness: 0.5}
	id := startSession(t, c, constraint, personality)

	// Barely conceding, way above budget, oversized lots.
	act, err := c.SubmitCounterpartOffer(id, sellerOffer(dec(90), 30, 0))
	if err != nil {
		t.Fatalf("round 0: %v", err)
	}
	if act.Type != policy.ActionCounter {
		t.Fatalf("round 0 action = %s, want counter with no belief yet", act.Type)
	}

	act, err = c.SubmitCounterpartOffer(id, sellerOffer(dec(89), 30, 1))
	if err != nil {
		t.Fatalf("round 1: %v", err)
	}
	if act.Type != policy.ActionWalkAway {
		t.Fatalf("round 1 action = %s, want walk_away", act.Type)
	}

	snap, err := c.Snapshot(id)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.State != policy.StateWalkedAway {
		t.Errorf("state = %s, want walked_away", snap.State)
	}
}

// #endregion walk-away

// #region isolation

func TestSessionsAreIsolated(t *testing.T) {
	c := newController(t)
	constraint := offer.BudgetConstraint{
		MaxTotalPrice: dec(60),
		TargetPrice:   dec(45),
		MinQuantity:   10,
		MaxQuantity:   10,
		QualityFloor:  offer.GradeA,
	}
	a := startSession(t, c, constraint, offer.ProfileByName("analytical"))
	b := startSession(t, c, constraint, offer.ProfileByName("cautious"))

	if _, err := c.SubmitCounterpartOffer(a, sellerOffer(dec(80), 10, 0)); err != nil {
		t.Fatalf("session a: %v", err)
	}

	snapB, err := c.Snapshot(b)
	if err != nil {
		t.Fatalf("Snapshot b: %v", err)
	}
	if snapB.Round != 0 || len(snapB.Log) != 0 {
		t.Error("activity in one session leaked into another")
	}
}

func TestStartValidatesInputs(t *testing.T) {
	c := newController(t)

	bad := offer.BudgetConstraint{
		MaxTotalPrice: dec(60),
		TargetPrice:   dec(90), // above budget
		MinQuantity:   10,
		MaxQuantity:   10,
		QualityFloor:  offer.GradeA,
	}
	if _, err := c.Start(bad, offer.ProfileByName("analytical"), 10); err == nil {
		t.Error("Start accepted a target above the budget")
	}

	good := offer.BudgetConstraint{
		MaxTotalPrice: dec(60),
		TargetPrice:   dec(45),
		MinQuantity:   10,
		MaxQuantity:   10,
		QualityFloor:  offer.GradeA,
	}
	if _, err := c.Start(good, offer.PersonalityProfile{RiskTolerance: 2}, 10); err == nil {
		t.Error("Start accepted an out-of-range personality")
	}
}

// #endregion isolation
