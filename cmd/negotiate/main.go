package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/procurebot/negotiator/internal/offer"
	"github.com/procurebot/negotiator/internal/outcomes"
	"github.com/procurebot/negotiator/internal/policy"
	"github.com/procurebot/negotiator/internal/scenario"
	"github.com/procurebot/negotiator/internal/seller"
	"github.com/procurebot/negotiator/internal/session"
)

// #region main

func main() {
	_ = godotenv.Load(".env")

	currency := envOr("CURRENCY", "₹")
	cfg := session.DefaultConfig()
	if v := envOr("MAX_ROUNDS", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			log.Fatalf("bad MAX_ROUNDS %q: %v", v, err)
		}
		cfg.MaxRounds = n
	}
	if v := envOr("ANCHOR_FRACTION", ""); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			log.Fatalf("bad ANCHOR_FRACTION %q: %v", v, err)
		}
		cfg.Counter.AnchorFraction = f
	}
	if v := envOr("WALKAWAY_BASE", ""); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			log.Fatalf("bad WALKAWAY_BASE %q: %v", v, err)
		}
		cfg.Policy.WalkAwayBase = f
	}

	prod := productFromEnv()
	constraint := constraintFromEnv(prod)
	personality := offer.ProfileByName(envOr("PERSONALITY", "analytical"))

	ctrl, err := session.NewController(cfg)
	if err != nil {
		log.Fatalf("controller: %v", err)
	}

	var sim seller.Simulator
	if kind := envOr("SELLER", ""); kind != "" {
		sim, err = seller.New(kind, prod.MarketPrice.Mul(decimal.NewFromFloat(0.85)).Round(2))
		if err != nil {
			log.Fatalf("seller: %v", err)
		}
	}

	id, err := ctrl.Start(constraint, personality, cfg.MaxRounds)
	if err != nil {
		log.Fatalf("start session: %v", err)
	}

	fmt.Printf("Procurement negotiation ready.\n")
	fmt.Printf("  Product: %s x%d grade %s | Market: %s\n",
		prod.Name, prod.Quantity, prod.Grade, scenario.FormatMoney(prod.MarketPrice, currency))
	fmt.Printf("  Budget: %s | Target: %s | Rounds: %d\n",
		scenario.FormatMoney(constraint.MaxTotalPrice, currency),
		scenario.FormatMoney(constraint.TargetPrice, currency), cfg.MaxRounds)
	if sim != nil {
		fmt.Println("Press Enter to advance a round ('quit' to exit):")
	} else {
		fmt.Println("You are the seller. Type your asking price each round ('quit' to exit):")
	}

	snap := runLoop(ctrl, id, prod, sim, currency)

	printOutcome(snap, constraint, currency)
	recordOutcome(snap, constraint)
}

// #endregion main

// #region loop

func runLoop(ctrl *session.Controller, id string, prod scenario.Product,
	sim seller.Simulator, currency string) session.Snapshot {

	scanner := bufio.NewScanner(os.Stdin)
	var simPrice decimal.Decimal
	if sim != nil {
		simPrice = sim.Opening(prod.MarketPrice)
	}

	for round := 0; ; round++ {
		var ask decimal.Decimal
		if sim != nil {
			fmt.Printf("[round %d] seller asks %s ", round, scenario.FormatMoney(simPrice, currency))
			if !scanner.Scan() || strings.TrimSpace(scanner.Text()) == "quit" {
				break
			}
			ask = simPrice
		} else {
			fmt.Printf("[round %d] ask> ", round)
			if !scanner.Scan() {
				break
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				round--
				continue
			}
			if line == "quit" || line == "exit" {
				break
			}
			p, err := decimal.NewFromString(line)
			if err != nil {
				log.Printf("not a price: %q", line)
				round--
				continue
			}
			ask = p
		}

		act, err := ctrl.SubmitCounterpartOffer(id, offer.Offer{
			Price:    ask,
			Quantity: prod.Quantity,
			Grade:    prod.Grade,
			Round:    round,
			Proposer: offer.PartySeller,
		})
		if err != nil {
			log.Printf("rejected: %v", err)
			round--
			continue
		}

		switch act.Type {
		case policy.ActionAccept:
			fmt.Printf("  -> ACCEPT at %s\n", scenario.FormatMoney(act.Offer.Price, currency))
		case policy.ActionCounter:
			fmt.Printf("  -> counter %s\n", scenario.FormatMoney(act.Offer.Price, currency))
		case policy.ActionWalkAway:
			fmt.Println("  -> walk away")
		}

		snap, err := ctrl.Snapshot(id)
		if err != nil {
			log.Fatalf("snapshot: %v", err)
		}
		if snap.State.Terminal() {
			return snap
		}
		if sim != nil {
			simPrice = sim.Respond(act.Offer.Price, round).Price
		}
	}

	snap, err := ctrl.Snapshot(id)
	if err != nil {
		log.Fatalf("snapshot: %v", err)
	}
	return snap
}

// #endregion loop

// #region outcome

func printOutcome(snap session.Snapshot, constraint offer.BudgetConstraint, currency string) {
	fmt.Printf("\nSession %s finished: %s after %d round(s)\n", snap.ID, snap.State, snap.Round)
	if snap.Accepted != nil {
		savings := constraint.MaxTotalPrice.Sub(snap.Accepted.Price)
		fmt.Printf("Deal at %s (saved %s under budget)\n",
			scenario.FormatMoney(snap.Accepted.Price, currency),
			scenario.FormatMoney(savings, currency))
	}
	for _, w := range snap.Warnings {
		fmt.Printf("Warning round %d: %s (%s)\n", w.Round, w.Kind, w.Detail)
	}
}

func recordOutcome(snap session.Snapshot, constraint offer.BudgetConstraint) {
	dbPath := envOr("OUTCOME_DB", "")
	if dbPath == "" {
		return
	}
	store, err := outcomes.NewStore(dbPath)
	if err != nil {
		log.Printf("outcome db: %v", err)
		return
	}
	defer store.Close()

	rec := outcomes.SessionRecord{
		SessionID: snap.ID,
		Scenario:  "interactive",
		Seller:    envOr("SELLER", "human"),
		State:     string(snap.State),
		Rounds:    snap.Round,
		Budget:    constraint.MaxTotalPrice,
		Target:    constraint.TargetPrice,
		Warnings:  len(snap.Warnings),
	}
	if snap.Accepted != nil {
		rec.FinalPrice = snap.Accepted.Price
		rec.Savings = constraint.MaxTotalPrice.Sub(snap.Accepted.Price)
	}
	if err := store.RecordSession(rec, snap.Log); err != nil {
		log.Printf("record outcome: %v", err)
	}
}

// #endregion outcome

// #region env

func productFromEnv() scenario.Product {
	prod := scenario.BuiltinProducts()[0]
	if v := envOr("MARKET_PRICE", ""); v != "" {
		p, err := decimal.NewFromString(v)
		if err != nil {
			log.Fatalf("bad MARKET_PRICE %q: %v", v, err)
		}
		prod.MarketPrice = p
	}
	if v := envOr("QUANTITY", ""); v != "" {
		q, err := strconv.Atoi(v)
		if err != nil {
			log.Fatalf("bad QUANTITY %q: %v", v, err)
		}
		prod.Quantity = q
	}
	if v := envOr("GRADE", ""); v != "" {
		prod.Grade = offer.QualityGrade(v)
	}
	return prod
}

func constraintFromEnv(prod scenario.Product) offer.BudgetConstraint {
	budget := prod.MarketPrice.Mul(decimal.NewFromFloat(1.1)).Round(2)
	if v := envOr("BUDGET", ""); v != "" {
		p, err := decimal.NewFromString(v)
		if err != nil {
			log.Fatalf("bad BUDGET %q: %v", v, err)
		}
		budget = p
	}
	target := decimal.Min(budget, prod.MarketPrice.Mul(decimal.NewFromFloat(0.9)).Round(2))
	if v := envOr("TARGET", ""); v != "" {
		p, err := decimal.NewFromString(v)
		if err != nil {
			log.Fatalf("bad TARGET %q: %v", v, err)
		}
		target = p
	}
	return offer.BudgetConstraint{
		MaxTotalPrice: budget,
		TargetPrice:   target,
		MinQuantity:   prod.Quantity,
		MaxQuantity:   prod.Quantity,
		QualityFloor:  prod.Grade,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion env
