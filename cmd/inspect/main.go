package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/procurebot/negotiator/internal/outcomes"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to outcomes database")
	last := flag.Int("last", 20, "show N most recent sessions")
	sessionID := flag.String("session", "", "show single session detail")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/outcomes.db [--last N] [--session id] [--json]")
		os.Exit(2)
	}

	store, err := outcomes.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if *sessionID != "" {
		err = runDetailMode(store, *sessionID, *jsonOut)
	} else {
		err = runListMode(store, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

type listRow struct {
	SessionID  string `json:"session_id"`
	Scenario   string `json:"scenario,omitempty"`
	Seller     string `json:"seller,omitempty"`
	State      string `json:"state"`
	Rounds     int    `json:"rounds"`
	Budget     string `json:"budget"`
	Target     string `json:"target"`
	FinalPrice string `json:"final_price,omitempty"`
	Savings    string `json:"savings,omitempty"`
	Warnings   int    `json:"warnings"`
	CreatedAt  string `json:"created_at"`
}

func runListMode(store *outcomes.Store, last int, jsonOut bool) error {
	records, err := store.ListSessions(last)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(os.Stderr, "no sessions found")
		return nil
	}

	rows := make([]listRow, len(records))
	for i, rec := range records {
		rows[i] = toRow(rec)
	}

	if jsonOut {
		return printJSON(rows)
	}

	fmt.Printf("%-10s  %-30s  %-10s  %-11s  %6s  %12s  %8s  %s\n",
		"Session", "Scenario", "Seller", "State", "Rounds", "Final", "Warnings", "Time")
	for _, r := range rows {
		final := "—"
		if r.FinalPrice != "" {
			final = r.FinalPrice
		}
		fmt.Printf("%-10s  %-30s  %-10s  %-11s  %6d  %12s  %8d  %s\n",
			shortID(r.SessionID), truncate(r.Scenario, 30), r.Seller, r.State,
			r.Rounds, final, r.Warnings, r.CreatedAt)
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

type detailOutput struct {
	listRow
	Turns []turnRow `json:"turns"`
}

type turnRow struct {
	Round    int    `json:"round"`
	Proposer string `json:"proposer"`
	Price    string `json:"price"`
	Quantity int    `json:"quantity"`
	Grade    string `json:"grade"`
}

func runDetailMode(store *outcomes.Store, sessionID string, jsonOut bool) error {
	rec, err := store.GetSession(sessionID)
	if err != nil {
		return err
	}
	turns, err := store.SessionTurns(sessionID)
	if err != nil {
		return err
	}

	out := detailOutput{listRow: toRow(rec)}
	for _, t := range turns {
		out.Turns = append(out.Turns, turnRow{
			Round:    t.Round,
			Proposer: t.Proposer,
			Price:    t.Price.String(),
			Quantity: t.Quantity,
			Grade:    t.Grade,
		})
	}

	if jsonOut {
		return printJSON(out)
	}

	fmt.Printf("Session:  %s\n", out.SessionID)
	fmt.Printf("Scenario: %s\n", out.Scenario)
	fmt.Printf("Seller:   %s\n", out.Seller)
	fmt.Printf("State:    %s\n", out.State)
	fmt.Printf("Rounds:   %d\n", out.Rounds)
	fmt.Printf("Budget:   %s | Target: %s\n", out.Budget, out.Target)
	if out.FinalPrice != "" {
		fmt.Printf("Deal:     %s (saved %s)\n", out.FinalPrice, out.Savings)
	}
	fmt.Printf("Warnings: %d\n", out.Warnings)
	fmt.Printf("Created:  %s\n", out.CreatedAt)

	fmt.Printf("\nOffer history:\n")
	fmt.Printf("  %5s  %-6s  %12s  %8s  %s\n", "Round", "Party", "Price", "Qty", "Grade")
	for _, t := range out.Turns {
		fmt.Printf("  %5d  %-6s  %12s  %8d  %s\n", t.Round, t.Proposer, t.Price, t.Quantity, t.Grade)
	}
	return nil
}

// #endregion detail-mode

// #region output

func toRow(rec outcomes.SessionRecord) listRow {
	r := listRow{
		SessionID: rec.SessionID,
		Scenario:  rec.Scenario,
		Seller:    rec.Seller,
		State:     rec.State,
		Rounds:    rec.Rounds,
		Budget:    rec.Budget.String(),
		Target:    rec.Target.String(),
		Warnings:  rec.Warnings,
		CreatedAt: rec.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if !rec.FinalPrice.IsZero() {
		r.FinalPrice = rec.FinalPrice.String()
		r.Savings = rec.Savings.String()
	}
	return r
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n-1] + "…"
	}
	return s
}

// #endregion output
