package scenario

import (
	"fmt"

	"github.com/procurebot/negotiator/internal/offer"
	"github.com/procurebot/negotiator/internal/policy"
	"github.com/procurebot/negotiator/internal/session"
)

// #region check-types

// Check captures a single invariant verification.
type Check struct {
	Name string
	Pass bool
}

// CheckResult is the output of verifying a finished session.
type CheckResult struct {
	Passed bool
	Checks []Check
	Reason string
}

// #endregion check-types

// #region verify

// Verify re-checks the session invariants on a snapshot:
// round bounds, buyer prices within budget, buyer offers
// non-decreasing, seller offers non-increasing outside flagged rounds,
// and the accepted price within target and the seller's last ask.
func Verify(snap session.Snapshot) CheckResult {
	var checks []Check
	var failReasons []string

	add := func(name string, pass bool, detail string) {
		checks = append(checks, Check{Name: name, Pass: pass})
		if !pass {
			failReasons = append(failReasons, detail)
		}
	}

	add("round_bounds",
		snap.Round >= 0 && snap.Round <= snap.MaxRounds,
		fmt.Sprintf("round %d outside [0,%d]", snap.Round, snap.MaxRounds))

	buyerWithinBudget := true
	for _, o := range snap.Log {
		if o.Proposer == offer.PartyBuyer && o.Price.GreaterThan(snap.Constraint.MaxTotalPrice) {
			buyerWithinBudget = false
			break
		}
	}
	add("buyer_within_budget", buyerWithinBudget, "buyer offer above max total price")

	buyers := byParty(snap.Log, offer.PartyBuyer)
	monotone := true
	for i := 1; i < len(buyers); i++ {
		if buyers[i].Price.LessThan(buyers[i-1].Price) {
			monotone = false
			break
		}
	}
	add("buyer_non_decreasing", monotone, "buyer offers walked backward")

	flagged := make(map[int]bool)
	for _, w := range snap.Warnings {
		if w.Kind == session.WarningInconsistentOpponent {
			flagged[w.Round] = true
		}
	}
	sellers := byParty(snap.Log, offer.PartySeller)
	sellerOK := true
	for i := 1; i < len(sellers); i++ {
		if flagged[sellers[i].Round] {
			continue
		}
		if sellers[i].Price.GreaterThan(sellers[i-1].Price) {
			sellerOK = false
			break
		}
	}
	add("seller_non_increasing", sellerOK, "unflagged seller price increase")

	if snap.State == policy.StateAccepted {
		acceptedOK := snap.Accepted != nil &&
			!snap.Accepted.Price.GreaterThan(snap.Constraint.TargetPrice)
		if acceptedOK && len(sellers) > 0 {
			acceptedOK = !snap.Accepted.Price.GreaterThan(sellers[len(sellers)-1].Price)
		}
		add("accepted_price", acceptedOK, "accepted price above target or last ask")
	}

	res := CheckResult{Passed: len(failReasons) == 0, Checks: checks, Reason: "all checks passed"}
	if !res.Passed {
		res.Reason = fmt.Sprintf("verify failed: %s", failReasons[0])
		if len(failReasons) > 1 {
			res.Reason = fmt.Sprintf("verify failed: %d checks: %s", len(failReasons), failReasons[0])
		}
	}
	return res
}

func byParty(log []offer.Offer, p offer.Party) []offer.Offer {
	var out []offer.Offer
	for _, o := range log {
		if o.Proposer == p {
			out = append(out, o)
		}
	}
	return out
}

// #endregion verify
