// Package daily derives the once-per-day challenge game.
//
// Every player gets the same secret on a given UTC date; it is chosen by
// HMAC(salt, YYYY-MM-DD) so it cannot be predicted without the salt.
package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"

	"github.com/robalobadob/numguess/internal/game"
)

// Fixed settings of the daily game.
const (
	Min        = 1
	Max        = 100
	Difficulty = game.Medium
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Source is a game.Source whose draw depends only on the date and salt.
type Source struct {
	Date time.Time
	Salt string
}

// IntN returns HMAC(salt, DateKey(date)) mod n.
func (s Source) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	h := hmac.New(sha256.New, []byte(s.Salt))
	h.Write([]byte(DateKey(s.Date)))
	sum := h.Sum(nil)
	// first 8 bytes are plenty for an even spread over small ranges
	v := binary.BigEndian.Uint64(sum[:8])
	return int(v % uint64(n))
}

// New starts the daily game for date.
func New(date time.Time, salt string) (*game.Session, error) {
	return game.NewWithSource(Min, Max, Difficulty, Source{Date: date, Salt: salt})
}
