package cli

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/tenpin/internal/engine"
	"github.com/roach88/tenpin/internal/harness"
	"github.com/roach88/tenpin/internal/store"
)

// playedJournal journals a finished perfect game as game-1 and a game
// still in progress as open-1.
func playedJournal(t *testing.T) string {
	t.Helper()
	db := filepath.Join(t.TempDir(), "lane.db")
	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()

	for name, ids := range map[string]engine.IDGenerator{
		"perfect_game":      engine.NewFixedGenerator("game-1"),
		"spare_then_strike": engine.NewFixedGenerator("open-1"),
	} {
		scenario, err := harness.LoadScenario(filepath.Join(scenariosDir, name+".yaml"))
		require.NoError(t, err)
		_, err = harness.Run(scenario, harness.WithStore(st), harness.WithIDs(ids))
		require.NoError(t, err)
	}
	return db
}

// writeStrikes journals twelve strikes for id without a result.
func writeStrikes(t *testing.T, st *store.Store, id string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, st.WriteGame(ctx, store.Game{ID: id, StartedSeq: 100}))
	seq := int64(100)
	for frame := 0; frame < 10; frame++ {
		rolls := 1
		if frame == 9 {
			rolls = 3
		}
		for roll := 0; roll < rolls; roll++ {
			seq++
			require.NoError(t, st.WriteRoll(ctx, store.Roll{GameID: id, Frame: frame, Roll: roll, Pins: 10, Mark: "X", Seq: seq}))
		}
	}
}
