package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/procurebot/negotiator/internal/outcomes"
	"github.com/procurebot/negotiator/internal/scenario"
)

// #region main

func main() {
	_ = godotenv.Load(".env")

	fixtureDir := flag.String("fixtures", "", "directory of fixture JSON files (default: built-in suite)")
	dbPath := flag.String("db", envOr("OUTCOME_DB", ""), "record outcomes to this SQLite database")
	currency := flag.String("currency", envOr("CURRENCY", "₹"), "currency symbol for output")
	flag.Parse()

	fixtures, err := loadFixtures(*fixtureDir)
	if err != nil {
		log.Fatalf("load fixtures: %v", err)
	}

	var store *outcomes.Store
	if *dbPath != "" {
		store, err = outcomes.NewStore(*dbPath)
		if err != nil {
			log.Fatalf("open outcome db: %v", err)
		}
		defer store.Close()
	}

	fmt.Printf("Running %d scenario(s)\n\n", len(fixtures))

	var results []scenario.Result
	failed := 0
	for i := range fixtures {
		f := &fixtures[i]
		res, err := scenario.RunFixture(f)
		if err != nil {
			failed++
			fmt.Printf("FAIL  %s: %v\n", f.Description, err)
		} else if res.DealMade {
			fmt.Printf("DEAL  %-40s %s in %d round(s), saved %s (%.1f%% under budget, %.1f%% below market)\n",
				f.Description,
				scenario.FormatMoney(res.FinalPrice, *currency), res.Rounds,
				scenario.FormatMoney(res.Savings, *currency), res.SavingsPct, res.BelowMarketPct)
		} else {
			fmt.Printf("NONE  %-40s %s after %d round(s)\n", f.Description, res.State, res.Rounds)
		}
		results = append(results, res)

		if store != nil && res.SessionID != "" {
			if err := record(store, f, res); err != nil {
				log.Printf("record %s: %v", f.Description, err)
			}
		}
	}

	s := scenario.Summarize(results)
	fmt.Printf("\nScenarios: %d | Deals: %d | Timed out: %d | Walked away: %d\n",
		s.Scenarios, s.Deals, s.TimedOut, s.WalkedAway)
	fmt.Printf("Total savings: %s\n", scenario.FormatMoney(s.TotalSavings, *currency))

	if failed > 0 {
		os.Exit(1)
	}
}

// #endregion main

// #region fixtures

func loadFixtures(dir string) ([]scenario.Fixture, error) {
	if dir == "" {
		return scenario.BuiltinFixtures(), nil
	}

	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no fixture files in %s", dir)
	}

	var fixtures []scenario.Fixture
	for _, p := range paths {
		f, err := scenario.LoadFixture(p)
		if err != nil {
			return nil, err
		}
		fixtures = append(fixtures, *f)
	}
	return fixtures, nil
}

// #endregion fixtures

// #region record

func record(store *outcomes.Store, f *scenario.Fixture, res scenario.Result) error {
	rec := outcomes.SessionRecord{
		SessionID:  res.SessionID,
		Scenario:   f.Description,
		Seller:     f.Seller.Kind,
		State:      string(res.State),
		Rounds:     res.Rounds,
		Budget:     f.Constraint.MaxTotalPrice,
		Target:     f.Constraint.TargetPrice,
		FinalPrice: res.FinalPrice,
		Savings:    res.Savings,
		Warnings:   res.Warnings,
	}
	return store.RecordSession(rec, res.Snapshot.Log)
}

// #endregion record

// #region helpers

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
