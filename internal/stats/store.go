// Package stats keeps per-participant blackjack results in SQLite.
package stats

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/lox/blackjackbot/internal/game"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// PlayerStats aggregates every settled round a participant played.
type PlayerStats struct {
	Participant string     `json:"participant"`
	Games       int        `json:"games"`
	Wins        int        `json:"wins"`
	Losses      int        `json:"losses"`
	Pushes      int        `json:"pushes"`
	Blackjacks  int        `json:"blackjacks"`
	Busts       int        `json:"busts"`
	LastPlayed  *time.Time `json:"lastPlayed,omitempty"`
}

// Store records settled outcomes.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and ensures the schema.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("empty stats database path")
	}
	if path != MemoryPath {
		if parent := filepath.Dir(path); parent != "" && parent != "." {
			if err := os.MkdirAll(parent, 0o755); err != nil {
				return nil, fmt.Errorf("creating stats directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening stats database: %w", err)
	}
	// One connection keeps an in-memory database alive and serializes writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pragmas := []string{
		`PRAGMA busy_timeout = 5000;`,
		`PRAGMA journal_mode = WAL;`,
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("configuring stats database: %w", err)
		}
	}
	if err := ensureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating stats schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RecordOutcomes stores one row per participant of a settled round.
// Recording the same round twice is a no-op.
func (s *Store) RecordOutcomes(ctx context.Context, res game.Result) error {
	if res.State != game.Settled {
		return fmt.Errorf("round %s is %s, not settled", res.RoundID, res.State)
	}
	if len(res.Outcomes) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO outcomes (
    round_id, chat_key, participant, result, score, dealer_score,
    blackjack, bust, shoe_exhausted, lang, settled_at_ms
)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (round_id, participant) DO NOTHING
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	settledAt := res.Timestamp.UTC().UnixMilli()
	for _, o := range res.Outcomes {
		if _, err := stmt.ExecContext(ctx,
			res.RoundID, res.Key, o.Participant, o.Result.String(), o.Score, o.DealerScore,
			boolInt(o.Blackjack), boolInt(o.Bust), boolInt(res.ShoeExhausted), res.Lang, settledAt,
		); err != nil {
			return fmt.Errorf("recording outcome for %s: %w", o.Participant, err)
		}
	}
	return tx.Commit()
}

// PlayerStats returns the totals for participant; zero totals if they never
// finished a round.
func (s *Store) PlayerStats(ctx context.Context, participant string) (PlayerStats, error) {
	st := PlayerStats{Participant: participant}

	var last sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
SELECT
    COUNT(*),
    COALESCE(SUM(result = 'win'), 0),
    COALESCE(SUM(result = 'lose'), 0),
    COALESCE(SUM(result = 'push'), 0),
    COALESCE(SUM(blackjack), 0),
    COALESCE(SUM(bust), 0),
    MAX(settled_at_ms)
FROM outcomes
WHERE participant = ?
`, participant).Scan(&st.Games, &st.Wins, &st.Losses, &st.Pushes, &st.Blackjacks, &st.Busts, &last)
	if err != nil {
		return PlayerStats{}, fmt.Errorf("loading stats for %s: %w", participant, err)
	}
	if last.Valid {
		t := time.UnixMilli(last.Int64).UTC()
		st.LastPlayed = &t
	}
	return st, nil
}

func ensureSchema(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`
CREATE TABLE IF NOT EXISTS outcomes (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    round_id TEXT NOT NULL,
    chat_key TEXT NOT NULL,
    participant TEXT NOT NULL,
    result TEXT NOT NULL,
    score INTEGER NOT NULL,
    dealer_score INTEGER NOT NULL,
    blackjack INTEGER NOT NULL DEFAULT 0,
    bust INTEGER NOT NULL DEFAULT 0,
    shoe_exhausted INTEGER NOT NULL DEFAULT 0,
    lang TEXT NOT NULL DEFAULT '',
    settled_at_ms INTEGER NOT NULL,
    UNIQUE (round_id, participant)
)`,
		`CREATE INDEX IF NOT EXISTS idx_outcomes_participant ON outcomes(participant, settled_at_ms)`,
		`CREATE INDEX IF NOT EXISTS idx_outcomes_chat ON outcomes(chat_key, settled_at_ms)`,
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
