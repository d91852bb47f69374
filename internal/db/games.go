package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/robalobadob/numguess/internal/game"
)

// Owner identifies who played a game: a signed-in user or an anonymous cookie.
type Owner struct {
	UserID string
	AnonID string
}

func (o Owner) clause() (string, any) {
	if o.UserID != "" {
		return `user_id=?`, o.UserID
	}
	return `anonymous_id=?`, o.AnonID
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// GameRow is a persisted game as listed in history. Secret is only set for
// finished games.
type GameRow struct {
	ID          string          `json:"id"`
	Difficulty  game.Difficulty `json:"difficulty"`
	Min         int             `json:"min"`
	Max         int             `json:"max"`
	MaxAttempts int             `json:"maxAttempts"`
	Attempts    int             `json:"attempts"`
	Status      game.Status     `json:"status"`
	Secret      *int            `json:"secret,omitempty"`
	StartedAt   string          `json:"startedAt"`
	FinishedAt  string          `json:"finishedAt,omitempty"`
}

// InsertGame records a newly started session. The secret is not stored
// until the game finishes.
func InsertGame(ctx context.Context, db *sql.DB, s *game.Session, o Owner) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO games (id, user_id, anonymous_id, difficulty, range_min, range_max, max_attempts, attempts, status, started_at)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		s.ID, nullable(o.UserID), nullable(o.AnonID), string(s.Difficulty), s.Min, s.Max,
		s.MaxAttempts, s.Attempts, string(s.Status), s.StartedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert game %s: %w", s.ID, err)
	}
	return nil
}

// RecordAttempt stores the running attempt count of an in-progress game.
func RecordAttempt(ctx context.Context, db *sql.DB, s *game.Session, o Owner) error {
	clause, arg := o.clause()
	_, err := db.ExecContext(ctx, `UPDATE games SET attempts=? WHERE id=? AND `+clause, s.Attempts, s.ID, arg)
	if err != nil {
		return fmt.Errorf("update attempts %s: %w", s.ID, err)
	}
	return nil
}

// FinishGame stores the final state of s and, for signed-in owners, bumps
// their stats in the same transaction.
func FinishGame(ctx context.Context, db *sql.DB, s *game.Session, o Owner) error {
	if !s.Terminal() {
		return fmt.Errorf("finish game %s: %w", s.ID, game.ErrIllegalState)
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	clause, arg := o.clause()
	res, err := tx.ExecContext(ctx,
		`UPDATE games SET attempts=?, status=?, secret=?, finished_at=? WHERE id=? AND status='in_progress' AND `+clause,
		s.Attempts, string(s.Status), s.Secret, s.FinishedAt.Format(time.RFC3339), s.ID, arg)
	if err != nil {
		return fmt.Errorf("finish game %s: %w", s.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finish game %s: %w", s.ID, ErrNotFound)
	}
	if o.UserID != "" {
		if err := bumpStats(ctx, tx, o.UserID, s.Status == game.StatusWon); err != nil {
			return fmt.Errorf("bump stats %s: %w", o.UserID, err)
		}
	}
	return tx.Commit()
}

// ListGames returns the owner's most recent games, newest first.
func ListGames(ctx context.Context, db *sql.DB, o Owner, limit int) ([]GameRow, error) {
	if limit <= 0 {
		limit = 50
	}
	clause, arg := o.clause()
	rows, err := db.QueryContext(ctx, `
		SELECT id, difficulty, range_min, range_max, max_attempts, attempts, status, secret,
		       started_at, COALESCE(finished_at,'')
		FROM games WHERE `+clause+` ORDER BY started_at DESC, rowid DESC LIMIT ?`, arg, limit)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	out := []GameRow{}
	for rows.Next() {
		var (
			r      GameRow
			secret sql.NullInt64
		)
		if err := rows.Scan(&r.ID, &r.Difficulty, &r.Min, &r.Max, &r.MaxAttempts, &r.Attempts,
			&r.Status, &secret, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, err
		}
		if secret.Valid {
			v := int(secret.Int64)
			r.Secret = &v
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ClaimAnonGames transfers anonymous games to a user account after auth.
func ClaimAnonGames(ctx context.Context, db *sql.DB, anonID, userID string) (int64, error) {
	if anonID == "" || userID == "" {
		return 0, nil
	}
	res, err := db.ExecContext(ctx, `UPDATE games SET user_id=?, anonymous_id=NULL WHERE anonymous_id=?`, userID, anonID)
	if err != nil {
		return 0, fmt.Errorf("claim anon games: %w", err)
	}
	return res.RowsAffected()
}

// LBRow is one leaderboard entry.
type LBRow struct {
	Username string `json:"username"`
	Attempts int    `json:"attempts"`
	Min      int    `json:"min"`
	Max      int    `json:"max"`
	GameID   string `json:"gameId"`
}

// Leaderboard returns signed-in players' wins for a difficulty, fewest
// attempts first, breaking ties by wider range.
func Leaderboard(ctx context.Context, db *sql.DB, d game.Difficulty, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.QueryContext(ctx, `
		SELECT u.username, g.attempts, g.range_min, g.range_max, g.id
		FROM games g JOIN users u ON u.id = g.user_id
		WHERE g.difficulty=? AND g.status='won'
		ORDER BY g.attempts ASC, (g.range_max - g.range_min) DESC, g.finished_at ASC
		LIMIT ?`, string(d), limit)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	defer rows.Close()

	out := make([]LBRow, 0, limit)
	for rows.Next() {
		var r LBRow
		if err := rows.Scan(&r.Username, &r.Attempts, &r.Min, &r.Max, &r.GameID); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
