package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tenpin/internal/store"
)

func TestSimulate_Text(t *testing.T) {
	out, _, err := execute(t, "simulate", filepath.Join(scenariosDir, "spare_then_strike.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "✓ spare_then_strike (scoring)")
	assert.Contains(t, out, "Total: 20")
	assert.NotContains(t, out, "=== Trace ===")
}

func TestSimulate_VerbosePrintsTrace(t *testing.T) {
	out, _, err := execute(t, "simulate", filepath.Join(scenariosDir, "discarded_throw.yaml"), "-v")
	require.NoError(t, err)
	assert.Contains(t, out, "=== Trace ===")
	assert.Contains(t, out, "roll_discarded frame=1 roll=2")
	assert.Contains(t, out, "respot_ball_only")
}

func TestSimulate_JSON(t *testing.T) {
	out, _, err := execute(t, "simulate", filepath.Join(scenariosDir, "perfect_game.yaml"), "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Scenario string `json:"scenario"`
			Pass     bool   `json:"pass"`
			Mode     string `json:"mode"`
			Board    struct {
				Total    int  `json:"total"`
				GameOver bool `json:"game_over"`
			} `json:"board"`
			Trace []map[string]any `json:"trace"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "perfect_game", resp.Data.Scenario)
	assert.True(t, resp.Data.Pass)
	assert.Equal(t, "scoring", resp.Data.Mode)
	assert.Equal(t, 300, resp.Data.Board.Total)
	assert.True(t, resp.Data.Board.GameOver)
	assert.NotEmpty(t, resp.Data.Trace)
}

func TestSimulate_JournalsToDatabase(t *testing.T) {
	db := filepath.Join(t.TempDir(), "lane.db")
	_, _, err := execute(t, "simulate", filepath.Join(scenariosDir, "perfect_game.yaml"), "--db", db)
	require.NoError(t, err)

	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()

	res, err := st.ReadResult(context.Background(), "game-1")
	require.NoError(t, err)
	assert.Equal(t, 300, res.Total)
}

func TestSimulate_UUIDGameIDs(t *testing.T) {
	db := filepath.Join(t.TempDir(), "lane.db")
	_, _, err := execute(t, "simulate", filepath.Join(scenariosDir, "spare_then_strike.yaml"), "--db", db, "--uuid")
	require.NoError(t, err)

	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()

	games, err := st.ListGames(context.Background())
	require.NoError(t, err)
	require.Len(t, games, 1)
	id, err := uuid.Parse(games[0].ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
}

func TestSimulate_FailingScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wrong.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: wrong
description: expects a spare that is only a nine
flow:
  - rolls: [4, 5]
assertions:
  - type: board
    expect: { total: 10 }
`), 0o644))

	out, _, err := execute(t, "simulate", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ wrong")
	assert.Contains(t, out, "total = 10")
}

func TestSimulate_ConfigOverridesTuning(t *testing.T) {
	dir := t.TempDir()
	tuning := filepath.Join(dir, "fast.yaml")
	require.NoError(t, os.WriteFile(tuning, []byte("settle_seconds: 1\n"), 0o644))
	path := filepath.Join(dir, "strike.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: strike
description: one strike with a short settle
flow:
  - rolls: [10]
assertions:
  - type: trace_contains
    kind: roll_recorded
    detail: X
`), 0o644))

	out, _, err := execute(t, "simulate", path, "--config", tuning, "-v")
	require.NoError(t, err)
	// release, lane, deck, gutter, then ten resting ticks
	assert.Contains(t, out, "[14] event   roll_recorded frame=1 roll=1 X")
}

func TestSimulate_Errors(t *testing.T) {
	_, _, err := execute(t, "simulate", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.ErrorContains(t, err, "failed to load scenario")

	path := filepath.Join(t.TempDir(), "overflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: overflow
description: asks for more pins than stand
flow:
  - rolls: [6, 5]
assertions:
  - type: trace_count
    kind: rerack
`), 0o644))
	out, _, err := execute(t, "simulate", path, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, CodeScenario, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "roll of 5 with only 4 pins standing")
}
