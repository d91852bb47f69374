package httpserver

import (
	"math"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/numguess/internal/game"
)

type guessBody struct {
	Status      game.Status `json:"status"`
	Hint        game.Hint   `json:"hint"`
	Attempts    int         `json:"attempts"`
	MaxAttempts int         `json:"maxAttempts"`
	Secret      *int        `json:"secret"`
	Game        game.View   `json:"game"`
	Error       string      `json:"error"`
}

func guess(c *client, id string, v int) (int, guessBody) {
	c.t.Helper()
	return call[guessBody](c, http.MethodPost, "/game/guess", map[string]any{"gameId": id, "guess": v})
}

func TestGame_GuessUntilWon(t *testing.T) {
	ts := startTestServer(t, newTestServer(t, nil, withSecretOffset(41)))
	c := newClient(t, ts)

	code, g := call[game.View](c, http.MethodPost, "/game/new", map[string]any{"min": 1, "max": 100, "difficulty": "medium"})
	require.Equal(t, http.StatusCreated, code)
	assert.NotEmpty(t, g.ID)
	assert.Equal(t, game.Medium, g.Difficulty)
	assert.Equal(t, 15, g.MaxAttempts)
	assert.False(t, g.Unlimited)
	assert.Equal(t, game.StatusInProgress, g.Status)
	assert.Nil(t, g.Secret)

	code, res := guess(c, g.ID, 50)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, game.StatusInProgress, res.Status)
	assert.Equal(t, game.HintTooHigh, res.Hint)
	assert.Equal(t, 1, res.Attempts)
	assert.Nil(t, res.Secret)
	assert.Nil(t, res.Game.Secret)

	code, res = guess(c, g.ID, 42)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, game.StatusWon, res.Status)
	assert.Equal(t, 2, res.Attempts)
	require.NotNil(t, res.Secret)
	assert.Equal(t, 42, *res.Secret)
	require.NotNil(t, res.Game.Secret)

	code, res = guess(c, g.ID, 42)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "game_finished", res.Error)

	_, view := call[game.View](c, http.MethodGet, "/game/"+g.ID, nil)
	assert.Equal(t, 2, view.Attempts)
	assert.Equal(t, game.StatusWon, view.Status)
}

func TestGame_HardLostAfterSevenMisses(t *testing.T) {
	ts := startTestServer(t, newTestServer(t, nil, withSecretOffset(49)))
	c := newClient(t, ts)

	_, g := call[game.View](c, http.MethodPost, "/game/new", map[string]any{"difficulty": "hard"})
	require.Equal(t, 7, g.MaxAttempts)

	var res guessBody
	for i := 1; i <= 7; i++ {
		code, r := guess(c, g.ID, 1)
		require.Equal(t, http.StatusOK, code)
		res = r
		if i < 7 {
			assert.Equal(t, game.StatusInProgress, r.Status)
			assert.Nil(t, r.Secret)
		}
	}
	assert.Equal(t, game.StatusLost, res.Status)
	assert.Equal(t, 7, res.Attempts)
	require.NotNil(t, res.Secret)
	assert.Equal(t, 50, *res.Secret)

	code, _ := guess(c, g.ID, 50)
	assert.Equal(t, http.StatusConflict, code)
}

func TestGame_EasyIsUnlimited(t *testing.T) {
	ts := startTestServer(t, newTestServer(t, nil, withSecretOffset(99)))
	c := newClient(t, ts)

	_, g := call[game.View](c, http.MethodPost, "/game/new", nil)
	assert.Equal(t, game.Easy, g.Difficulty)
	assert.Equal(t, 0, g.MaxAttempts)
	assert.True(t, g.Unlimited)
	assert.Equal(t, 1, g.Min)
	assert.Equal(t, 100, g.Max)

	for i := 0; i < 30; i++ {
		_, r := guess(c, g.ID, 1)
		require.Equal(t, game.StatusInProgress, r.Status)
		require.Equal(t, game.HintTooLow, r.Hint)
	}
}

func TestGame_SwappedBounds(t *testing.T) {
	ts := startTestServer(t, newTestServer(t, nil, withSecretOffset(0)))
	c := newClient(t, ts)

	code, g := call[game.View](c, http.MethodPost, "/game/new", map[string]any{"min": 10, "max": 1})
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, 1, g.Min)
	assert.Equal(t, 10, g.Max)

	_, r := guess(c, g.ID, 1)
	assert.Equal(t, game.StatusWon, r.Status)
}

func TestGame_RejectsBadInput(t *testing.T) {
	ts := startTestServer(t, newTestServer(t, nil))
	c := newClient(t, ts)

	tests := []struct {
		name string
		body any
		code int
		err  string
	}{
		{"unknown difficulty", map[string]any{"difficulty": "nightmare"}, http.StatusBadRequest, "invalid_input"},
		{"range overflows", map[string]any{"min": math.MinInt, "max": math.MaxInt}, http.StatusBadRequest, "invalid_range"},
		{"unknown field", map[string]any{"size": 3}, http.StatusBadRequest, "invalid_input"},
		{"not a number", map[string]any{"min": "one"}, http.StatusBadRequest, "invalid_input"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := call[errBody](c, http.MethodPost, "/game/new", tt.body)
			assert.Equal(t, tt.code, code)
			assert.Equal(t, tt.err, body.Error)
		})
	}
}

func TestGame_OutOfRangeConsumesNoAttempt(t *testing.T) {
	ts := startTestServer(t, newTestServer(t, nil, withSecretOffset(4)))
	c := newClient(t, ts)

	_, g := call[game.View](c, http.MethodPost, "/game/new", map[string]any{"min": 1, "max": 10, "difficulty": "hard"})

	for _, v := range []int{0, 11, -5} {
		code, r := guess(c, g.ID, v)
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "out_of_range", r.Error)
	}
	_, view := call[game.View](c, http.MethodGet, "/game/"+g.ID, nil)
	assert.Equal(t, 0, view.Attempts)
	assert.Equal(t, game.StatusInProgress, view.Status)
}

func TestGame_GuessValidation(t *testing.T) {
	ts := startTestServer(t, newTestServer(t, nil))
	c := newClient(t, ts)

	code, body := call[errBody](c, http.MethodPost, "/game/guess", map[string]any{"gameId": "x"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid_input", body.Error)

	code, body = call[errBody](c, http.MethodPost, "/game/guess", map[string]any{"gameId": "missing", "guess": 3})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "not_found", body.Error)

	code, _ = call[errBody](c, http.MethodGet, "/game/missing", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestGame_Replay(t *testing.T) {
	ts := startTestServer(t, newTestServer(t, nil, withSecretOffset(2)))
	c := newClient(t, ts)

	_, g := call[game.View](c, http.MethodPost, "/game/new", map[string]any{"min": 5, "max": 9, "difficulty": "hard"})
	_, r := guess(c, g.ID, 7)
	require.Equal(t, game.StatusWon, r.Status)

	code, next := call[game.View](c, http.MethodPost, "/game/replay", map[string]any{"gameId": g.ID})
	require.Equal(t, http.StatusCreated, code)
	assert.NotEqual(t, g.ID, next.ID)
	assert.Equal(t, 5, next.Min)
	assert.Equal(t, 9, next.Max)
	assert.Equal(t, game.Hard, next.Difficulty)
	assert.Equal(t, 0, next.Attempts)
	assert.Equal(t, game.StatusInProgress, next.Status)
	assert.Nil(t, next.Secret)

	code, _ = call[errBody](c, http.MethodGet, "/game/"+g.ID, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = call[errBody](c, http.MethodPost, "/game/replay", map[string]any{"gameId": "missing"})
	assert.Equal(t, http.StatusNotFound, code)
}

func TestGame_ConcurrentGuessesAllCount(t *testing.T) {
	ts := startTestServer(t, newTestServer(t, nil, withSecretOffset(99)))
	c := newClient(t, ts)
	_, g := call[game.View](c, http.MethodPost, "/game/new", nil)

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			code, _ := guess(c, g.ID, 1)
			assert.Equal(t, http.StatusOK, code)
		}()
	}
	wg.Wait()

	_, view := call[game.View](c, http.MethodGet, "/game/"+g.ID, nil)
	assert.Equal(t, n, view.Attempts)
}

func TestLeaderboard(t *testing.T) {
	ts := startTestServer(t, newTestServer(t, nil, withSecretOffset(49)))

	play := func(name string, misses int) {
		c := newClient(t, ts)
		code, _ := call[map[string]any](c, http.MethodPost, "/auth/signup", credentials{Username: name, Password: "password123"})
		require.Equal(t, http.StatusCreated, code)
		_, g := call[game.View](c, http.MethodPost, "/game/new", map[string]any{"difficulty": "medium"})
		for i := 0; i < misses; i++ {
			guess(c, g.ID, 1)
		}
		_, r := guess(c, g.ID, 50)
		require.Equal(t, game.StatusWon, r.Status)
	}
	play("slow", 4)
	play("quick", 0)
	play("middle", 2)

	c := newClient(t, ts)
	code, lb := call[leaderboardRes](c, http.MethodGet, "/leaderboard?difficulty=medium", nil)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, lb.Top, 3)
	assert.Equal(t, "quick", lb.Top[0].Username)
	assert.Equal(t, 1, lb.Top[0].Attempts)
	assert.Equal(t, "middle", lb.Top[1].Username)
	assert.Equal(t, "slow", lb.Top[2].Username)

	_, lb = call[leaderboardRes](c, http.MethodGet, "/leaderboard?difficulty=hard", nil)
	assert.Empty(t, lb.Top)

	code, _ = call[errBody](c, http.MethodGet, "/leaderboard?limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	code, _ = call[errBody](c, http.MethodGet, "/leaderboard?difficulty=extreme", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}
