package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tenpin/internal/scoring"
)

func TestScore_PerfectGame(t *testing.T) {
	out, _, err := execute(t, "score", "X", "X", "X", "X", "X", "X", "X", "X", "X", "X", "X", "X")
	require.NoError(t, err)
	assert.Contains(t, out, "|X X X|")
	assert.Contains(t, out, "|  300|")
	assert.Contains(t, out, "Total: 300 (final)")
}

func TestScore_PackedNotation(t *testing.T) {
	out, _, err := execute(t, "score", "X7/9-X-88/-6XXX81")
	require.NoError(t, err)
	assert.Contains(t, out, "Total: 167 (final)")
}

func TestScore_PartialGame(t *testing.T) {
	out, _, err := execute(t, "score", "7", "3", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "|7 /  |X    |")
	assert.Contains(t, out, "Total: 20 (in progress)")
}

func TestScore_JSON(t *testing.T) {
	out, _, err := execute(t, "score", "10", "7", "3", "9", "0", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string             `json:"status"`
		Data   scoring.Scoreboard `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 48, resp.Data.Total)
	assert.Equal(t, []string{"X"}, resp.Data.Frames[0].Rolls)
	assert.Equal(t, []string{"7", "/"}, resp.Data.Frames[1].Rolls)
	require.NotNil(t, resp.Data.Frames[2].Total)
	assert.Equal(t, 48, *resp.Data.Frames[2].Total)
	assert.False(t, resp.Data.GameOver)
}

func TestScore_InvalidRolls(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"spare on fresh rack", []string{"/"}, "spare"},
		{"too many pins", []string{"7", "5"}, "more pins than are standing"},
		{"not a roll", []string{"Y"}, `invalid roll "Y"`},
		{"after game over", []string{"9", "0", "9", "0", "9", "0", "9", "0", "9", "0", "9", "0", "9", "0", "9", "0", "9", "0", "9", "0", "1"}, "game is over"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := execute(t, append([]string{"score"}, tt.args...)...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, out, "Error [E_BAD_INPUT]")
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestScore_RequiresRolls(t *testing.T) {
	_, _, err := execute(t, "score")
	assert.ErrorContains(t, err, "requires at least 1 arg")
}
