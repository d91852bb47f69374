package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/numguess/internal/game"
)

type fixed int

func (f fixed) IntN(int) int { return int(f) }

func newSession(t *testing.T) *game.Session {
	t.Helper()
	s, err := game.NewWithSource(1, 10, game.Hard, fixed(6)) // secret 7
	require.NoError(t, err)
	return s
}

// setupMiniRedis creates a RedisStore backed by a miniredis server.
func setupMiniRedis(t *testing.T, ttl time.Duration) (*miniredis.Miniredis, *RedisStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, newRedisStore(client, ttl, zerolog.Nop())
}

// exerciseStore runs the behaviour every Store must share.
func exerciseStore(t *testing.T, st Store) {
	ctx := context.Background()

	_, err := st.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	s := newSession(t)
	require.NoError(t, st.Save(ctx, s))

	_, err = s.Guess(2)
	require.NoError(t, err)

	got, err := st.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Zero(t, got.Attempts, "store must hold a copy, not the caller's pointer")
	assert.Equal(t, 7, got.Secret)
	assert.Equal(t, game.StatusInProgress, got.Status)

	require.NoError(t, st.Save(ctx, s))
	got, err = st.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Attempts)
	assert.Equal(t, game.HintTooLow, got.LastHint)

	// mutating the returned copy does not leak back
	_, err = got.Guess(7)
	require.NoError(t, err)
	again, err := st.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, game.StatusInProgress, again.Status)

	require.NoError(t, st.Delete(ctx, s.ID))
	_, err = st.Get(ctx, s.ID)
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, st.Delete(ctx, s.ID))
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore(0))
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewMemoryStore(time.Minute).(*memory)
	m.now = func() time.Time { return now }

	old := newSession(t)
	require.NoError(t, m.Save(ctx, old))

	now = now.Add(2 * time.Minute)
	_, err := m.Get(ctx, old.ID)
	require.ErrorIs(t, err, ErrNotFound)

	fresh := newSession(t)
	require.NoError(t, m.Save(ctx, fresh))
	m.mu.RLock()
	_, stillThere := m.sessions[old.ID]
	m.mu.RUnlock()
	assert.False(t, stillThere, "expired entry should be swept on save")
}

func TestRedisStore(t *testing.T) {
	_, st := setupMiniRedis(t, time.Hour)
	exerciseStore(t, st)
}

func TestRedisStore_TTL(t *testing.T) {
	ctx := context.Background()
	mr, st := setupMiniRedis(t, time.Minute)

	s := newSession(t)
	require.NoError(t, st.Save(ctx, s))
	assert.Equal(t, time.Minute, mr.TTL(keyPrefix+s.ID))

	mr.FastForward(2 * time.Minute)
	_, err := st.Get(ctx, s.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_CorruptEntryDropped(t *testing.T) {
	mr, st := setupMiniRedis(t, 0)
	require.NoError(t, mr.Set(keyPrefix+"bad", "{not json"))

	_, err := st.Get(context.Background(), "bad")
	require.ErrorIs(t, err, ErrNotFound)
	assert.False(t, mr.Exists(keyPrefix+"bad"))
}

func TestNewRedisStore_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisStore(RedisConfig{Addr: addr}, zerolog.Nop())
	assert.Error(t, err)
}
