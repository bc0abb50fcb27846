// Package outcomes persists finished negotiation results for the
// harness CLIs. The decision core never touches this store; it exists
// on the reporting side, outside a session's lifetime.
package outcomes

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"github.com/procurebot/negotiator/internal/offer"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS negotiation_sessions (
	session_id   TEXT PRIMARY KEY,
	scenario     TEXT,
	seller       TEXT,
	state        TEXT NOT NULL,
	rounds       INTEGER NOT NULL,
	budget       TEXT NOT NULL,
	target       TEXT NOT NULL,
	final_price  TEXT,
	savings      TEXT,
	warnings     INTEGER NOT NULL DEFAULT 0,
	created_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS turn_log (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id   TEXT NOT NULL,
	round        INTEGER NOT NULL,
	proposer     TEXT NOT NULL,
	price        TEXT NOT NULL,
	quantity     INTEGER NOT NULL,
	grade        TEXT NOT NULL,
	FOREIGN KEY (session_id) REFERENCES negotiation_sessions(session_id)
);

CREATE INDEX IF NOT EXISTS idx_turn_log_session
ON turn_log(session_id, round);
`

// #endregion schema

// #region records

// SessionRecord is one row in negotiation_sessions.
type SessionRecord struct {
	SessionID  string
	Scenario   string
	Seller     string
	State      string
	Rounds     int
	Budget     decimal.Decimal
	Target     decimal.Decimal
	FinalPrice decimal.Decimal // zero when no deal
	Savings    decimal.Decimal
	Warnings   int
	CreatedAt  time.Time
}

// TurnRecord is one row in turn_log.
type TurnRecord struct {
	Round    int
	Proposer string
	Price    decimal.Decimal
	Quantity int
	Grade    string
}

// #endregion records

// #region store

// Store persists negotiation outcomes in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB.
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion store

// #region record

// RecordSession writes one session row and its full offer history
// atomically.
func (s *Store) RecordSession(rec SessionRecord, history []offer.Offer) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	// A deal can close at exactly the budget, so savings of zero is a
	// real value; only a missing final price means "no deal".
	var finalPrice, savings any
	if !rec.FinalPrice.IsZero() {
		finalPrice = rec.FinalPrice.String()
		savings = rec.Savings.String()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO negotiation_sessions
		 (session_id, scenario, seller, state, rounds, budget, target, final_price, savings, warnings, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.SessionID,
		nullIfEmpty(rec.Scenario),
		nullIfEmpty(rec.Seller),
		rec.State,
		rec.Rounds,
		rec.Budget.String(),
		rec.Target.String(),
		finalPrice,
		savings,
		rec.Warnings,
		rec.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	for _, o := range history {
		_, err = tx.Exec(
			`INSERT INTO turn_log (session_id, round, proposer, price, quantity, grade)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			rec.SessionID, o.Round, string(o.Proposer), o.Price.String(), o.Quantity, string(o.Grade),
		)
		if err != nil {
			return fmt.Errorf("insert turn: %w", err)
		}
	}

	return tx.Commit()
}

// #endregion record

// #region queries

// ListSessions returns the most recent session rows.
func (s *Store) ListSessions(limit int) ([]SessionRecord, error) {
	rows, err := s.db.Query(
		`SELECT session_id, scenario, seller, state, rounds, budget, target, final_price, savings, warnings, created_at
		 FROM negotiation_sessions ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var records []SessionRecord
	for rows.Next() {
		rec, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// GetSession retrieves one session row by ID.
func (s *Store) GetSession(id string) (SessionRecord, error) {
	row := s.db.QueryRow(
		`SELECT session_id, scenario, seller, state, rounds, budget, target, final_price, savings, warnings, created_at
		 FROM negotiation_sessions WHERE session_id = ?`, id,
	)
	rec, err := scanSession(row)
	if err != nil {
		return SessionRecord{}, fmt.Errorf("get session %s: %w", id, err)
	}
	return rec, nil
}

// SessionTurns returns the offer history for one session in order.
func (s *Store) SessionTurns(id string) ([]TurnRecord, error) {
	rows, err := s.db.Query(
		`SELECT round, proposer, price, quantity, grade
		 FROM turn_log WHERE session_id = ? ORDER BY id ASC`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("session turns: %w", err)
	}
	defer rows.Close()

	var turns []TurnRecord
	for rows.Next() {
		var t TurnRecord
		var priceStr string
		if err := rows.Scan(&t.Round, &t.Proposer, &priceStr, &t.Quantity, &t.Grade); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		t.Price, err = decimal.NewFromString(priceStr)
		if err != nil {
			return nil, fmt.Errorf("parse price %q: %w", priceStr, err)
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

// #endregion queries

// #region helpers

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(r rowScanner) (SessionRecord, error) {
	var rec SessionRecord
	var scenario, sellerKind, finalPrice, savings sql.NullString
	var budgetStr, targetStr, createdStr string

	err := r.Scan(&rec.SessionID, &scenario, &sellerKind, &rec.State, &rec.Rounds,
		&budgetStr, &targetStr, &finalPrice, &savings, &rec.Warnings, &createdStr)
	if err != nil {
		return SessionRecord{}, fmt.Errorf("scan session: %w", err)
	}

	rec.Scenario = scenario.String
	rec.Seller = sellerKind.String
	if rec.Budget, err = decimal.NewFromString(budgetStr); err != nil {
		return SessionRecord{}, fmt.Errorf("parse budget %q: %w", budgetStr, err)
	}
	if rec.Target, err = decimal.NewFromString(targetStr); err != nil {
		return SessionRecord{}, fmt.Errorf("parse target %q: %w", targetStr, err)
	}
	if finalPrice.Valid {
		if rec.FinalPrice, err = decimal.NewFromString(finalPrice.String); err != nil {
			return SessionRecord{}, fmt.Errorf("parse final price %q: %w", finalPrice.String, err)
		}
	}
	if savings.Valid {
		if rec.Savings, err = decimal.NewFromString(savings.String); err != nil {
			return SessionRecord{}, fmt.Errorf("parse savings %q: %w", savings.String, err)
		}
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	return rec, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
