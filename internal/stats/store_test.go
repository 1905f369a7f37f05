package stats

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/blackjackbot/internal/game"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	store, err := Open(MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func settled(round string, at time.Time, outcomes ...game.Outcome) game.Result {
	return game.Result{
		Key:       "chat",
		RoundID:   round,
		State:     game.Settled,
		Lang:      "en",
		Outcomes:  outcomes,
		Timestamp: at,
	}
}

func TestRecordAndAggregate(t *testing.T) {
	store := openMemory(t)
	ctx := t.Context()
	t0 := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	require.NoError(t, store.RecordOutcomes(ctx, settled("r1", t0,
		game.Outcome{Participant: "alice", Result: game.Win, Score: 21, DealerScore: 19, Blackjack: true},
		game.Outcome{Participant: "bob", Result: game.Lose, Score: 24, DealerScore: 19, Bust: true},
	)))
	require.NoError(t, store.RecordOutcomes(ctx, settled("r2", t0.Add(time.Minute),
		game.Outcome{Participant: "alice", Result: game.Push, Score: 18, DealerScore: 18},
	)))

	alice, err := store.PlayerStats(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, alice.Games)
	assert.Equal(t, 1, alice.Wins)
	assert.Equal(t, 1, alice.Pushes)
	assert.Equal(t, 0, alice.Losses)
	assert.Equal(t, 1, alice.Blackjacks)
	require.NotNil(t, alice.LastPlayed)
	assert.True(t, t0.Add(time.Minute).Equal(*alice.LastPlayed))

	bob, err := store.PlayerStats(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, 1, bob.Games)
	assert.Equal(t, 1, bob.Losses)
	assert.Equal(t, 1, bob.Busts)
}

func TestRecordIsIdempotent(t *testing.T) {
	store := openMemory(t)
	ctx := t.Context()
	res := settled("r1", time.Now(), game.Outcome{Participant: "alice", Result: game.Win})

	require.NoError(t, store.RecordOutcomes(ctx, res))
	require.NoError(t, store.RecordOutcomes(ctx, res))

	st, err := store.PlayerStats(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, st.Games)
}

func TestRecordRejectsUnsettled(t *testing.T) {
	store := openMemory(t)
	res := settled("r1", time.Now(), game.Outcome{Participant: "alice"})
	res.State = game.InProgress

	assert.Error(t, store.RecordOutcomes(t.Context(), res))
}

func TestUnknownPlayerHasZeroStats(t *testing.T) {
	store := openMemory(t)

	st, err := store.PlayerStats(t.Context(), "nobody")
	require.NoError(t, err)
	assert.Equal(t, PlayerStats{Participant: "nobody"}, st)
}

func TestOpenFileDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "stats.db")
	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.RecordOutcomes(t.Context(), settled("r1", time.Now(),
		game.Outcome{Participant: "alice", Result: game.Win})))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	st, err := reopened.PlayerStats(t.Context(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, st.Wins)

	_, err = Open("  ")
	assert.Error(t, err)
}
