package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestStore creates a fresh journal in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}
}

func TestOpen_Pragmas(t *testing.T) {
	s := createTestStore(t)

	for name, want := range map[string]string{
		"journal_mode": "wal",
		"foreign_keys": "1",
		"busy_timeout": "5000",
		"user_version": "2",
	} {
		got, err := s.pragma(name)
		require.NoError(t, err)
		assert.Equal(t, want, got, name)
	}
}

func TestOpen_Memory(t *testing.T) {
	s, err := Open(Memory)
	require.NoError(t, err)
	defer s.Close()

	mode, err := s.pragma("journal_mode")
	require.NoError(t, err)
	assert.Equal(t, "memory", mode)

	ctx := context.Background()
	require.NoError(t, s.WriteGame(ctx, Game{ID: "g", StartedSeq: 1}))
	games, err := s.ListGames(ctx)
	require.NoError(t, err)
	assert.Len(t, games, 1, "the single connection keeps the in-memory journal alive")
}

func TestOpen_UpgradesOldJournal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.db")
	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.db.Exec("DROP INDEX idx_rolls_game_seq; PRAGMA user_version = 1")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	version, err := s.pragma("user_version")
	require.NoError(t, err)
	assert.Equal(t, "2", version)

	var n int
	require.NoError(t, s.db.QueryRow(
		"SELECT count(*) FROM sqlite_master WHERE type = 'index' AND name = 'idx_rolls_game_seq'",
	).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestOpen_RejectsNewerJournal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "future.db")
	s, err := Open(path)
	require.NoError(t, err)
	_, err = s.db.Exec("PRAGMA user_version = 99")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = Open(path)
	assert.ErrorContains(t, err, "journal version 99 is newer")
}

func TestWriteRead_GameRoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteGame(ctx, Game{ID: "g-2", Player: "Bea", StartedSeq: 40}))
	require.NoError(t, s.WriteGame(ctx, Game{ID: "g-1", Player: "Jose\u0301", StartedSeq: 3}))
	require.NoError(t, s.WriteGame(ctx, Game{ID: "g-1", Player: "ignored", StartedSeq: 99}))

	games, err := s.ListGames(ctx)
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.Equal(t, "g-1", games[0].ID)
	assert.Equal(t, "Jos\u00e9", games[0].Player, "player stored NFC-normalized")
	assert.Equal(t, int64(3), games[0].StartedSeq)

	g, err := s.ReadGame(ctx, "g-2")
	require.NoError(t, err)
	assert.Equal(t, "Bea", g.Player)

	_, err = s.ReadGame(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListGames_EmptyIsNotNil(t *testing.T) {
	s := createTestStore(t)
	games, err := s.ListGames(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, games)
	assert.Empty(t, games)
}

func TestWriteRoll_OrderAndIdempotency(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.WriteGame(ctx, Game{ID: "g", StartedSeq: 1}))

	require.NoError(t, s.WriteRoll(ctx, Roll{GameID: "g", Frame: 1, Roll: 0, Pins: 4, Mark: "4", Seq: 30}))
	require.NoError(t, s.WriteRoll(ctx, Roll{GameID: "g", Frame: 0, Roll: 0, Pins: 10, Mark: "X", Seq: 10}))
	require.NoError(t, s.WriteRoll(ctx, Roll{GameID: "g", Frame: 0, Roll: 0, Pins: 3, Mark: "3", Seq: 11}))

	rolls, err := s.ReadRolls(ctx, "g")
	require.NoError(t, err)
	require.Len(t, rolls, 2)
	assert.Equal(t, Roll{GameID: "g", Frame: 0, Roll: 0, Pins: 10, Mark: "X", Seq: 10}, rolls[0])
	assert.Equal(t, 1, rolls[1].Frame)
}

func TestWriteRoll_RequiresGame(t *testing.T) {
	s := createTestStore(t)
	err := s.WriteRoll(context.Background(), Roll{GameID: "nope", Pins: 1, Mark: "1"})
	assert.Error(t, err)
}

func TestWriteRoll_RejectsOutOfRange(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.WriteGame(ctx, Game{ID: "g"}))
	assert.Error(t, s.WriteRoll(ctx, Roll{GameID: "g", Frame: 10, Pins: 1, Mark: "1"}))
	assert.Error(t, s.WriteRoll(ctx, Roll{GameID: "g", Pins: 11, Mark: "X"}))
}

func TestWriteEvent_OrderedBySeqThenInsertion(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteEvent(ctx, Event{GameID: "g", Seq: 9, Kind: "game_over"}))
	require.NoError(t, s.WriteEvent(ctx, Event{GameID: "g", Seq: 2, Kind: "mode_changed", Detail: "scoring"}))
	require.NoError(t, s.WriteEvent(ctx, Event{GameID: "g", Seq: 2, Kind: "game_started"}))
	require.NoError(t, s.WriteEvent(ctx, Event{GameID: "other", Seq: 1, Kind: "rerack"}))

	events, err := s.ReadEvents(ctx, "g")
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, []string{"mode_changed", "game_started", "game_over"},
		[]string{events[0].Kind, events[1].Kind, events[2].Kind})
	assert.Equal(t, "scoring", events[0].Detail)
}

func TestWriteResult_FirstWins(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.WriteGame(ctx, Game{ID: "g"}))

	_, err := s.ReadResult(ctx, "g")
	assert.ErrorIs(t, err, ErrNotFound)

	first := Result{GameID: "g", Seq: 500, Total: 300, Board: []byte(`{"total":300}`), Digest: "abc", RollsDigest: "def"}
	require.NoError(t, s.WriteResult(ctx, first))
	require.NoError(t, s.WriteResult(ctx, Result{GameID: "g", Seq: 501, Total: 0, Board: []byte(`{}`), Digest: "x", RollsDigest: "y"}))

	got, err := s.ReadResult(ctx, "g")
	require.NoError(t, err)
	assert.Equal(t, first, got)
}
