package daily

import (
	"context"
	"database/sql"
	"fmt"
)

// Result is one player's finished daily game.
type Result struct {
	UserID    string `json:"userId"`
	Date      string `json:"date"`
	Attempts  int    `json:"attempts"`
	Won       bool   `json:"won"`
	ElapsedMs int    `json:"elapsedMs"`
}

// Store persists daily results in the daily_results table.
type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// AlreadyPlayed reports whether userID has a result for date.
func (s *Store) AlreadyPlayed(ctx context.Context, userID, date string) (bool, error) {
	var cnt int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM daily_results WHERE user_id=? AND date=?",
		userID, date,
	).Scan(&cnt)
	if err != nil {
		return false, fmt.Errorf("query daily_results: %w", err)
	}
	return cnt > 0, nil
}

// InsertResult records r; a second result for the same user and date is ignored.
func (s *Store) InsertResult(ctx context.Context, r Result) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO daily_results(user_id, date, attempts, won, elapsed_ms)
		 VALUES(?,?,?,?,?)`, r.UserID, r.Date, r.Attempts, r.Won, r.ElapsedMs,
	)
	if err != nil {
		return fmt.Errorf("insert daily result: %w", err)
	}
	return nil
}

// LBRow is one daily leaderboard entry. Player is the username, or
// GuestName for players who are not signed in; stored player keys are
// never rendered.
type LBRow struct {
	Player    string `json:"player"`
	Attempts  int    `json:"attempts"`
	ElapsedMs int    `json:"elapsedMs"`
}

// GuestName labels anonymous winners on the leaderboard.
const GuestName = "guest"

// Leaderboard returns the winners for date, fewest attempts first.
func (s *Store) Leaderboard(ctx context.Context, date string, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT COALESCE(u.username, ?), d.attempts, d.elapsed_ms
		 FROM daily_results d LEFT JOIN users u ON u.id = d.user_id
		 WHERE d.date=? AND d.won=1
		 ORDER BY d.attempts ASC, d.elapsed_ms ASC, d.created_at ASC
		 LIMIT ?`, GuestName, date, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()
	out := make([]LBRow, 0, limit)
	for rows.Next() {
		var r LBRow
		if err := rows.Scan(&r.Player, &r.Attempts, &r.ElapsedMs); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
