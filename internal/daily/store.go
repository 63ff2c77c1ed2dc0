// internal/daily/store.go
//
// SQLite-backed record of completed daily puzzles and the per-day leaderboard.
// One result per (player, date, difficulty); later inserts are ignored.

package daily

import (
	"context"
	"database/sql"
)

// Result is one player's completed daily puzzle.
type Result struct {
	UserID     string `json:"userId"`
	Date       string `json:"date"`
	Difficulty string `json:"difficulty"`
	LevelID    string `json:"levelId"`
	HintsUsed  int    `json:"hintsUsed"`
	ElapsedMs  int    `json:"elapsedMs"`
}

// Store wraps the daily_results table.
type Store struct{ db *sql.DB }

// NewStore binds a Store to an open database.
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// AlreadyPlayed reports whether userID has completed the daily puzzle.
func (s *Store) AlreadyPlayed(ctx context.Context, userID, date, difficulty string) (bool, error) {
	var cnt int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM daily_results WHERE user_id=? AND date=? AND difficulty=?`,
		userID, date, difficulty,
	).Scan(&cnt)
	return cnt > 0, err
}

// InsertResult records a result; duplicates are ignored.
func (s *Store) InsertResult(ctx context.Context, r Result) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO daily_results(user_id, date, difficulty, level_id, hints_used, elapsed_ms)
		 VALUES(?,?,?,?,?,?)`,
		r.UserID, r.Date, r.Difficulty, r.LevelID, r.HintsUsed, r.ElapsedMs,
	)
	return err
}

// LBRow is one leaderboard entry.
type LBRow struct {
	UserID    string `json:"userId"`
	HintsUsed int    `json:"hintsUsed"`
	ElapsedMs int    `json:"elapsedMs"`
}

// Leaderboard returns the top results for a date and difficulty, fewest hints
// first, then fastest. Default limit is 20.
func (s *Store) Leaderboard(ctx context.Context, date, difficulty string, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, hints_used, elapsed_ms
		 FROM daily_results
		 WHERE date=? AND difficulty=?
		 ORDER BY hints_used ASC, elapsed_ms ASC, created_at ASC
		 LIMIT ?`, date, difficulty, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]LBRow, 0, limit)
	for rows.Next() {
		var r LBRow
		if err := rows.Scan(&r.UserID, &r.HintsUsed, &r.ElapsedMs); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
