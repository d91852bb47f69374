// internal/httpserver/routes_game.go
//
// HTTP routes for regular games.
//   - POST /game/new     → configure a new session (range + difficulty)
//   - POST /game/guess   → evaluate one guess
//   - POST /game/replay  → new session with the settings of an earlier one
//   - GET  /game/{id}    → current view of a session
//   - GET  /leaderboard  → best wins for a difficulty
//
// The engine only sees typed integers: request decoding, range checks and
// difficulty parsing happen here.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog/hlog"

	"github.com/robalobadob/numguess/internal/db"
	"github.com/robalobadob/numguess/internal/game"
	"github.com/robalobadob/numguess/internal/metrics"
	"github.com/robalobadob/numguess/internal/store"
)

// Defaults for an unconfigured new game.
const (
	defaultMin        = 1
	defaultMax        = 100
	defaultDifficulty = game.Easy
)

func (s *Server) mountGame(r chi.Router) {
	r.Post("/game/new", s.handleNewGame)
	r.With(s.guessLimiter()).Post("/game/guess", s.handleGuess)
	r.Post("/game/replay", s.handleReplay)
	r.Get("/game/{id}", s.handleGetGame)
	r.Get("/leaderboard", s.handleLeaderboard)
}

// guessLimiter caps guesses per client IP per minute.
func (s *Server) guessLimiter() func(http.Handler) http.Handler {
	return httprate.Limit(
		s.cfg.GuessRateLimit,
		time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate_limit_exceeded")
		}),
	)
}

// ------------------------------- /game/new ---------------------------------

type newGameReq struct {
	Min        *int   `json:"min"`
	Max        *int   `json:"max"`
	Difficulty string `json:"difficulty"`
}

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_input")
		return
	}
	lo, hi := defaultMin, defaultMax
	if req.Min != nil {
		lo = *req.Min
	}
	if req.Max != nil {
		hi = *req.Max
	}
	d := defaultDifficulty
	if req.Difficulty != "" {
		var err error
		if d, err = game.ParseDifficulty(req.Difficulty); err != nil {
			writeGameError(w, err)
			return
		}
	}

	g, err := game.NewWithSource(lo, hi, d, s.newSource())
	if err != nil {
		writeGameError(w, err)
		return
	}
	if !s.startGame(w, r, g, "normal") {
		return
	}
	writeJSON(w, http.StatusCreated, g.View())
}

// startGame stores a fresh session and records its history row.
func (s *Server) startGame(w http.ResponseWriter, r *http.Request, g *game.Session, mode string) bool {
	logger := hlog.FromRequest(r)
	if err := s.store.Save(r.Context(), g); err != nil {
		logger.Error().Err(err).Str("gameId", g.ID).Msg("save game")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return false
	}
	if err := db.InsertGame(r.Context(), s.db, g, s.owner(w, r)); err != nil {
		logger.Warn().Err(err).Str("gameId", g.ID).Msg("insert game row")
	}
	metrics.GameStarted(g.Difficulty, mode)
	logger.Debug().
		Str("gameId", g.ID).
		Int("min", g.Min).
		Int("max", g.Max).
		Str("difficulty", string(g.Difficulty)).
		Str("mode", mode).
		Msg("game started")
	return true
}

// ------------------------------ /game/guess --------------------------------

type guessReq struct {
	GameID string `json:"gameId"`
	Guess  *int   `json:"guess"`
}

type guessRes struct {
	game.Outcome
	Game game.View `json:"game"`
}

func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := decodeBody(w, r, &req); err != nil || req.GameID == "" || req.Guess == nil {
		writeError(w, http.StatusBadRequest, "invalid_input")
		return
	}

	unlock, ok := s.lockGame(w, r, req.GameID)
	if !ok {
		return
	}
	defer unlock()

	g, err := s.loadGame(r.Context(), req.GameID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			metrics.GuessRejected("not_found")
		}
		s.writeLoadError(w, r, err)
		return
	}
	out, ok := s.applyGuess(w, r, g, *req.Guess)
	if !ok {
		return
	}

	owner := s.owner(w, r)
	logger := hlog.FromRequest(r)
	if g.Terminal() {
		if err := db.FinishGame(r.Context(), s.db, g, owner); err != nil {
			logger.Warn().Err(err).Str("gameId", g.ID).Msg("finish game row")
		}
	} else if err := db.RecordAttempt(r.Context(), s.db, g, owner); err != nil {
		logger.Warn().Err(err).Str("gameId", g.ID).Msg("update attempts")
	}

	writeJSON(w, http.StatusOK, guessRes{Outcome: out, Game: g.View()})
}

// applyGuess validates v against g, evaluates it and saves g. On failure it
// writes the error response and returns false.
func (s *Server) applyGuess(w http.ResponseWriter, r *http.Request, g *game.Session, v int) (game.Outcome, bool) {
	if !g.Terminal() && !g.Contains(v) {
		metrics.GuessRejected("out_of_range")
		writeError(w, http.StatusBadRequest, "out_of_range")
		return game.Outcome{}, false
	}
	out, err := g.Guess(v)
	if err != nil {
		if errors.Is(err, game.ErrIllegalState) {
			metrics.GuessRejected("finished")
		}
		writeGameError(w, err)
		return game.Outcome{}, false
	}
	if err := s.store.Save(r.Context(), g); err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("gameId", g.ID).Msg("save game")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return game.Outcome{}, false
	}
	metrics.GuessEvaluated(g.Difficulty, out)
	return out, true
}

// ------------------------------ /game/replay -------------------------------

type replayReq struct {
	GameID string `json:"gameId"`
}

func (s *Server) handleReplay(w http.ResponseWriter, r *http.Request) {
	var req replayReq
	if err := decodeBody(w, r, &req); err != nil || req.GameID == "" {
		writeError(w, http.StatusBadRequest, "invalid_input")
		return
	}
	prev, err := s.loadGame(r.Context(), req.GameID)
	if err != nil {
		s.writeLoadError(w, r, err)
		return
	}
	g, err := prev.ReplayWithSource(s.newSource())
	if err != nil {
		writeGameError(w, err)
		return
	}
	if !s.startGame(w, r, g, "replay") {
		return
	}
	// A finished game is only needed for history from here on.
	if prev.Terminal() {
		if err := s.store.Delete(r.Context(), prev.ID); err != nil {
			hlog.FromRequest(r).Warn().Err(err).Str("gameId", prev.ID).Msg("drop replayed game")
		}
	}
	writeJSON(w, http.StatusCreated, g.View())
}

// ------------------------------- /game/{id} --------------------------------

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	g, err := s.loadGame(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeLoadError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, g.View())
}

// ------------------------------ /leaderboard -------------------------------

type leaderboardRes struct {
	Difficulty game.Difficulty `json:"difficulty"`
	Top        []db.LBRow      `json:"top"`
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	d := game.Medium
	if q := r.URL.Query().Get("difficulty"); q != "" {
		var err error
		if d, err = game.ParseDifficulty(q); err != nil {
			writeGameError(w, err)
			return
		}
	}
	limit := 20
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n <= 0 || n > 100 {
			writeError(w, http.StatusBadRequest, "invalid_input")
			return
		}
		limit = n
	}
	rows, err := db.Leaderboard(r.Context(), s.db, d, limit)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("leaderboard")
		writeError(w, http.StatusInternalServerError, "db_error")
		return
	}
	writeJSON(w, http.StatusOK, leaderboardRes{Difficulty: d, Top: rows})
}

// --------------------------------- helpers ---------------------------------

// loadGame fetches a regular game from the live store. Daily sessions are
// reachable only through the /daily routes.
func (s *Server) loadGame(ctx context.Context, id string) (*game.Session, error) {
	if isDailyID(id) {
		return nil, store.ErrNotFound
	}
	return s.store.Get(ctx, id)
}

// lockGame serialises work on one game until the request context ends.
// On failure it writes the error response and returns false.
func (s *Server) lockGame(w http.ResponseWriter, r *http.Request, id string) (func(), bool) {
	unlock, err := s.locks.Lock(r.Context(), id)
	if err != nil {
		hlog.FromRequest(r).Warn().Err(err).Str("gameId", id).Msg("game lock not acquired")
		writeError(w, http.StatusServiceUnavailable, "busy")
		return nil, false
	}
	return unlock, true
}

// decodeBody decodes a JSON request body. An empty body decodes to the zero value.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// writeGameError maps engine errors onto HTTP statuses.
func writeGameError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrInvalidRange):
		writeError(w, http.StatusBadRequest, "invalid_range")
	case errors.Is(err, game.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "invalid_input")
	case errors.Is(err, game.ErrIllegalState):
		writeError(w, http.StatusConflict, "game_finished")
	default:
		writeError(w, http.StatusInternalServerError, "internal")
	}
}

func (s *Server) writeLoadError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	hlog.FromRequest(r).Error().Err(err).Msg("load game")
	writeError(w, http.StatusInternalServerError, "load_failed")
}
