// internal/game/types.go
//
// Core type definitions for the number-guessing engine.
// Defines:
//   - Difficulty: attempt-cap selector (easy/medium/hard).
//   - Status:     session lifecycle state (in_progress/won/lost).
//   - Hint:       directional feedback for a wrong guess.
//   - Session:    state for a single in-progress or finished game.
//   - Outcome:    result of evaluating one guess.

package game

import (
	"errors"
	"time"
)

var (
	// ErrInvalidRange is returned when the bounds cannot form an integer interval.
	ErrInvalidRange = errors.New("invalid range")
	// ErrInvalidInput is returned for values outside a closed enum (e.g. difficulty).
	ErrInvalidInput = errors.New("invalid input")
	// ErrIllegalState is returned when a guess is made on a finished session.
	ErrIllegalState = errors.New("game finished")
)

// Difficulty controls the attempt cap of a session.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// Difficulties lists every accepted difficulty in display order.
var Difficulties = []Difficulty{Easy, Medium, Hard}

// MaxAttempts returns the attempt cap for d; 0 means unlimited.
func (d Difficulty) MaxAttempts() int {
	switch d {
	case Medium:
		return 15
	case Hard:
		return 7
	default:
		return 0
	}
}

// Valid reports whether d is one of the known difficulties.
func (d Difficulty) Valid() bool {
	switch d {
	case Easy, Medium, Hard:
		return true
	}
	return false
}

// Status is the lifecycle state of a session.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusWon        Status = "won"
	StatusLost       Status = "lost"
)

// Terminal reports whether no further guesses are accepted in this state.
func (s Status) Terminal() bool { return s == StatusWon || s == StatusLost }

// Hint is the directional feedback for a wrong guess.
type Hint string

const (
	HintNone    Hint = ""
	HintTooLow  Hint = "too_low"  // guess higher
	HintTooHigh Hint = "too_high" // guess lower
)

// Source produces uniform integers in [0, n). *math/rand/v2.Rand satisfies it.
type Source interface {
	IntN(n int) int
}

// Session holds the state of a single game.
//
// Secret is exported so stores can persist it; hosts must render sessions
// through View, which hides it until the game ends.
type Session struct {
	ID          string     `json:"id"`
	Min         int        `json:"min"`
	Max         int        `json:"max"`
	Difficulty  Difficulty `json:"difficulty"`
	MaxAttempts int        `json:"maxAttempts"` // 0 = unlimited
	Attempts    int        `json:"attempts"`
	Status      Status     `json:"status"`
	LastHint    Hint       `json:"lastHint,omitempty"`
	Secret      int        `json:"secret"`
	StartedAt   time.Time  `json:"startedAt"`
	FinishedAt  time.Time  `json:"finishedAt,omitzero"`
}

// Outcome describes the effect of one guess.
type Outcome struct {
	Status      Status `json:"status"`
	Hint        Hint   `json:"hint,omitempty"`
	Attempts    int    `json:"attempts"`
	MaxAttempts int    `json:"maxAttempts"`
	Secret      *int   `json:"secret,omitempty"` // set only when this guess ended the game
}

// View is what a host may show the player.
type View struct {
	ID          string     `json:"gameId"`
	Min         int        `json:"min"`
	Max         int        `json:"max"`
	Difficulty  Difficulty `json:"difficulty"`
	MaxAttempts int        `json:"maxAttempts"`
	Unlimited   bool       `json:"unlimited"`
	Attempts    int        `json:"attempts"`
	Status      Status     `json:"status"`
	LastHint    Hint       `json:"lastHint,omitempty"`
	Secret      *int       `json:"secret,omitempty"`
}
