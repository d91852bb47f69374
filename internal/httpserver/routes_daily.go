// internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily Challenge" mode.
// Exposes three endpoints under /daily:
//   - POST /daily/new         → start (or resume) today's game
//   - POST /daily/guess       → submit a guess for today's game
//   - GET  /daily/leaderboard → top winners for today (or a given date)
//
// Each player can finish the daily game once per UTC date (enforced by DB).
// Live daily sessions live in the shared session store under an ID derived
// from player + date, so any server instance can resume them.

package httpserver

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/robalobadob/numguess/internal/daily"
	"github.com/robalobadob/numguess/internal/game"
	"github.com/robalobadob/numguess/internal/metrics"
	"github.com/robalobadob/numguess/internal/store"
)

// dailyServer wraps dependencies for /daily endpoints.
type dailyServer struct {
	srv   *Server
	store *daily.Store
	salt  string
}

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	dd := &dailyServer{
		srv:   s,
		store: daily.NewStore(s.db),
		salt:  s.cfg.DailySalt,
	}
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", dd.handleNew)
		r.With(s.guessLimiter()).Post("/guess", dd.handleGuess)
		r.Get("/leaderboard", dd.handleLeaderboard)
	})
}

// dailyIDPrefix marks live-store IDs of daily sessions.
const dailyIDPrefix = "daily-"

func isDailyID(id string) bool { return strings.HasPrefix(id, dailyIDPrefix) }

// sessionID derives the stable, unguessable daily game ID for a player.
func (d *dailyServer) sessionID(playerID, date string) string {
	h := hmac.New(sha256.New, []byte(d.salt))
	h.Write([]byte("daily|" + date + "|" + playerID))
	return dailyIDPrefix + hex.EncodeToString(h.Sum(nil)[:16])
}

// -----------------------------------------------------------------------------
// /daily/new

type dailyNewRes struct {
	Date   string     `json:"date"`
	Played bool       `json:"played"`
	Game   *game.View `json:"game,omitempty"`
}

// handleNew creates or resumes today's session.
//   - If the player already has a DB result for today → Played=true.
//   - Otherwise return the live session, creating it on first call.
func (d *dailyServer) handleNew(w http.ResponseWriter, r *http.Request) {
	pid := d.srv.playerID(w, r)
	now := d.srv.now()
	date := daily.DateKey(now)

	if played, err := d.store.AlreadyPlayed(r.Context(), pid, date); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("daily already-played check")
	} else if played {
		writeJSON(w, http.StatusOK, dailyNewRes{Date: date, Played: true})
		return
	}

	id := d.sessionID(pid, date)
	unlock, ok := d.srv.lockGame(w, r, id)
	if !ok {
		return
	}
	defer unlock()

	sess, err := d.srv.store.Get(r.Context(), id)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotFound):
		if sess, err = daily.New(now, d.salt); err != nil {
			writeGameError(w, err)
			return
		}
		sess.ID = id
		sess.StartedAt = now.UTC()
		if err := d.srv.store.Save(r.Context(), sess); err != nil {
			hlog.FromRequest(r).Error().Err(err).Msg("save daily game")
			writeError(w, http.StatusInternalServerError, "save_failed")
			return
		}
		metrics.GameStarted(sess.Difficulty, "daily")
	default:
		d.srv.writeLoadError(w, r, err)
		return
	}

	v := sess.View()
	writeJSON(w, http.StatusOK, dailyNewRes{Date: date, Played: sess.Terminal(), Game: &v})
}

// -----------------------------------------------------------------------------
// /daily/guess

type dailyGuessReq struct {
	Guess *int `json:"guess"`
}

// handleGuess applies a guess to today's session and persists the result
// once the game ends.
func (d *dailyServer) handleGuess(w http.ResponseWriter, r *http.Request) {
	var p dailyGuessReq
	if err := decodeBody(w, r, &p); err != nil || p.Guess == nil {
		writeError(w, http.StatusBadRequest, "invalid_input")
		return
	}

	pid := d.srv.playerID(w, r)
	now := d.srv.now()
	date := daily.DateKey(now)
	id := d.sessionID(pid, date)

	unlock, ok := d.srv.lockGame(w, r, id)
	if !ok {
		return
	}
	defer unlock()

	sess, err := d.srv.store.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusConflict, "no_session")
		return
	}
	if err != nil {
		d.srv.writeLoadError(w, r, err)
		return
	}

	out, ok := d.srv.applyGuess(w, r, sess, *p.Guess)
	if !ok {
		return
	}
	if sess.Terminal() {
		res := daily.Result{
			UserID:    pid,
			Date:      date,
			Attempts:  sess.Attempts,
			Won:       sess.Status == game.StatusWon,
			ElapsedMs: int(now.Sub(sess.StartedAt).Milliseconds()),
		}
		if err := d.store.InsertResult(r.Context(), res); err != nil {
			hlog.FromRequest(r).Warn().Err(err).Msg("insert daily result")
		}
	}
	writeJSON(w, http.StatusOK, guessRes{Outcome: out, Game: sess.View()})
}

// -----------------------------------------------------------------------------
// /daily/leaderboard

type lbRes struct {
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

// handleLeaderboard returns the leaderboard for the given date (default today).
func (d *dailyServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(d.srv.now())
	}
	rows, err := d.store.Leaderboard(r.Context(), date, 20)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("daily leaderboard")
		writeError(w, http.StatusInternalServerError, "server_error")
		return
	}
	writeJSON(w, http.StatusOK, lbRes{Date: date, Top: rows})
}
