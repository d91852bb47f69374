// internal/game/engine.go
//
// Core game engine for a single number-guessing session.
// Responsibilities:
//   - Create new sessions from a (possibly reversed) range and a difficulty.
//   - Apply guesses: count the attempt, compare, emit a directional hint.
//   - Track state transitions: in_progress → won/lost.
//
// Notes:
//   - Sessions are plain values owned by the caller; the engine holds no
//     process-wide state apart from the default random source.
//   - Finished sessions reject guesses with ErrIllegalState.
package game

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
)

// globalSource draws from the auto-seeded math/rand/v2 generator.
type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// DefaultSource is used by New and Replay.
var DefaultSource Source = globalSource{}

// ParseDifficulty maps a case-insensitive name onto a Difficulty.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("%w: difficulty %q", ErrInvalidInput, s)
	}
	return d, nil
}

// New starts a session with a secret drawn from DefaultSource.
func New(lo, hi int, d Difficulty) (*Session, error) {
	return NewWithSource(lo, hi, d, DefaultSource)
}

// NewWithSource starts a session whose secret is drawn from src.
//
// Bounds are order-independent. A single-value range is legal; a range
// whose width does not fit in an int is rejected with ErrInvalidRange.
func NewWithSource(lo, hi int, d Difficulty, src Source) (*Session, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("%w: difficulty %q", ErrInvalidInput, d)
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	n, ok := width(lo, hi)
	if !ok {
		return nil, fmt.Errorf("%w: [%d, %d]", ErrInvalidRange, lo, hi)
	}
	if src == nil {
		src = DefaultSource
	}
	return &Session{
		ID:          uuid.NewString(),
		Min:         lo,
		Max:         hi,
		Difficulty:  d,
		MaxAttempts: d.MaxAttempts(),
		Status:      StatusInProgress,
		Secret:      lo + src.IntN(n),
		StartedAt:   time.Now().UTC(),
	}, nil
}

// Replay starts a fresh session with the same bounds and difficulty.
func (s *Session) Replay() (*Session, error) {
	return s.ReplayWithSource(DefaultSource)
}

// ReplayWithSource is Replay with an explicit random source.
func (s *Session) ReplayWithSource(src Source) (*Session, error) {
	return NewWithSource(s.Min, s.Max, s.Difficulty, src)
}

// Guess evaluates v against the secret.
//
// The attempt is counted before comparing. A wrong guess that uses up the
// last allowed attempt ends the game as lost and reveals the secret.
func (s *Session) Guess(v int) (Outcome, error) {
	if s.Status != StatusInProgress {
		return Outcome{}, ErrIllegalState
	}
	s.Attempts++

	switch {
	case v == s.Secret:
		s.Status = StatusWon
		s.LastHint = HintNone
	case v < s.Secret:
		s.LastHint = HintTooLow
	default:
		s.LastHint = HintTooHigh
	}

	if s.Status == StatusInProgress && s.MaxAttempts > 0 && s.Attempts >= s.MaxAttempts {
		s.Status = StatusLost
	}

	out := Outcome{
		Status:      s.Status,
		Hint:        s.LastHint,
		Attempts:    s.Attempts,
		MaxAttempts: s.MaxAttempts,
	}
	if s.Status.Terminal() {
		s.FinishedAt = time.Now().UTC()
		secret := s.Secret
		out.Secret = &secret
	}
	return out, nil
}

// Contains reports whether v lies within the session bounds.
func (s *Session) Contains(v int) bool { return v >= s.Min && v <= s.Max }

// Terminal reports whether the session has finished.
func (s *Session) Terminal() bool { return s.Status.Terminal() }

// View renders the session for display. The secret is only included once
// the game has ended.
func (s *Session) View() View {
	v := View{
		ID:          s.ID,
		Min:         s.Min,
		Max:         s.Max,
		Difficulty:  s.Difficulty,
		MaxAttempts: s.MaxAttempts,
		Unlimited:   s.MaxAttempts == 0,
		Attempts:    s.Attempts,
		Status:      s.Status,
		LastHint:    s.LastHint,
	}
	if s.Terminal() {
		secret := s.Secret
		v.Secret = &secret
	}
	return v
}

// width returns the number of integers in [lo, hi] (lo <= hi), or false
// when that count overflows an int.
func width(lo, hi int) (int, bool) {
	if lo < 0 && hi > math.MaxInt+lo {
		return 0, false
	}
	d := hi - lo
	if d == math.MaxInt {
		return 0, false
	}
	return d + 1, true
}
