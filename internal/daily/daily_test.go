package daily

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/numguess/internal/db"
	"github.com/robalobadob/numguess/internal/game"
)

func TestDateKey_UTC(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*3600)
	ts := time.Date(2026, 3, 2, 5, 0, 0, 0, loc) // 2026-03-01 19:00 UTC
	assert.Equal(t, "2026-03-01", DateKey(ts))
}

func TestNew_DeterministicPerDate(t *testing.T) {
	day := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	a, err := New(day, "salt")
	require.NoError(t, err)
	b, err := New(day.Add(10*time.Hour), "salt")
	require.NoError(t, err)

	assert.Equal(t, a.Secret, b.Secret)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, Min, a.Min)
	assert.Equal(t, Max, a.Max)
	assert.Equal(t, game.Medium, a.Difficulty)
	assert.Equal(t, 15, a.MaxAttempts)
}

func TestSource_InRangeAndVaries(t *testing.T) {
	seen := map[int]bool{}
	day := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 60; i++ {
		v := Source{Date: day.AddDate(0, 0, i), Salt: "s"}.IntN(100)
		require.GreaterOrEqual(t, v, 0)
		require.Less(t, v, 100)
		seen[v] = true
	}
	assert.Greater(t, len(seen), 1)
	assert.Zero(t, Source{}.IntN(0))
}

func TestSource_SaltChangesSecret(t *testing.T) {
	day := time.Date(2026, 5, 5, 0, 0, 0, 0, time.UTC)
	differs := false
	for _, salt := range []string{"a", "b", "c", "d", "e"} {
		if (Source{Date: day, Salt: salt}).IntN(1<<30) != (Source{Date: day, Salt: "z"}).IntN(1<<30) {
			differs = true
		}
	}
	assert.True(t, differs)
}

func TestStore_ResultsAndLeaderboard(t *testing.T) {
	ctx := context.Background()
	conn, err := db.Open(filepath.Join(t.TempDir(), "daily.db"))
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, db.Migrate(conn))

	frank, err := db.CreateUser(ctx, conn, "frank", "password123")
	require.NoError(t, err)
	guest := "anon:5b0c7d7e-cookie-value"

	st := NewStore(conn)
	played, err := st.AlreadyPlayed(ctx, frank.ID, "2026-10-19")
	require.NoError(t, err)
	assert.False(t, played)

	require.NoError(t, st.InsertResult(ctx, Result{UserID: frank.ID, Date: "2026-10-19", Attempts: 5, Won: true, ElapsedMs: 900}))
	require.NoError(t, st.InsertResult(ctx, Result{UserID: guest, Date: "2026-10-19", Attempts: 3, Won: true, ElapsedMs: 4000}))
	require.NoError(t, st.InsertResult(ctx, Result{UserID: "u3", Date: "2026-10-19", Attempts: 15, Won: false, ElapsedMs: 100}))
	// duplicate is ignored
	require.NoError(t, st.InsertResult(ctx, Result{UserID: frank.ID, Date: "2026-10-19", Attempts: 1, Won: true}))

	played, err = st.AlreadyPlayed(ctx, frank.ID, "2026-10-19")
	require.NoError(t, err)
	assert.True(t, played)

	top, err := st.Leaderboard(ctx, "2026-10-19", 0)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, GuestName, top[0].Player)
	assert.Equal(t, 3, top[0].Attempts)
	assert.Equal(t, "frank", top[1].Player)
	assert.Equal(t, 5, top[1].Attempts)
	for _, row := range top {
		assert.NotContains(t, row.Player, "cookie-value")
		assert.NotEqual(t, frank.ID, row.Player)
	}
}
