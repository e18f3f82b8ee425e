package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goldenDir = "../harness/testdata/golden"

func copyScenario(t *testing.T, dir, name string) {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(scenariosDir, name+".yaml"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".yaml"), data, 0o644))
}

func TestTestCommand_HarnessScenarios(t *testing.T) {
	out, _, err := execute(t, "test", scenariosDir, "--golden", goldenDir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ perfect_game")
	assert.Contains(t, out, "✓ spare_then_strike")
	assert.Contains(t, out, "Test Summary: 6 passed, 0 failed, 6 total")
	assert.Contains(t, out, "✓ All scenarios passed")
}

func TestTestCommand_JSONReportsGoldenStatus(t *testing.T) {
	out, _, err := execute(t, "test", scenariosDir, "--golden", goldenDir, "--filter", "*_*", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	golden := map[string]string{}
	for _, s := range resp.Data.Scenarios {
		golden[s.Name] = s.Golden
	}
	assert.Equal(t, "match", golden["spare_then_strike"])
	assert.Equal(t, "match", golden["freeplay_rerack"])
	assert.Equal(t, "missing", golden["perfect_game"])
}

func TestTestCommand_UpdateThenMatch(t *testing.T) {
	dir := t.TempDir()
	copyScenario(t, dir, "spare_then_strike")

	out, _, err := execute(t, "test", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ spare_then_strike (golden updated)")

	written, err := os.ReadFile(filepath.Join(dir, "golden", "spare_then_strike.golden"))
	require.NoError(t, err)
	expected, err := os.ReadFile(filepath.Join(goldenDir, "spare_then_strike.golden"))
	require.NoError(t, err)
	assert.Equal(t, string(expected), string(written))

	_, _, err = execute(t, "test", dir)
	require.NoError(t, err)
}

func TestTestCommand_GoldenMismatch(t *testing.T) {
	dir := t.TempDir()
	copyScenario(t, dir, "spare_then_strike")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "golden"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "golden", "spare_then_strike.golden"), []byte(`{}`), 0o644))

	out, _, err := execute(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ spare_then_strike")
	assert.Contains(t, out, "does not match golden file")
	assert.Contains(t, out, "Test Summary: 0 passed, 1 failed, 1 total")
}

func TestTestCommand_FailuresInJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("name: broken\n"), 0o644))

	out, _, err := execute(t, "test", dir, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
		Error  *CLIError  `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, CodeTestFailed, resp.Error.Code)
	require.Len(t, resp.Data.Scenarios, 1)
	assert.Equal(t, "broken.yaml", resp.Data.Scenarios[0].Name)
	assert.Contains(t, resp.Data.Scenarios[0].Errors[0], "failed to load scenario")
}

func TestTestCommand_EmptyAndMissingDirs(t *testing.T) {
	out, _, err := execute(t, "test", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found")

	_, _, err = execute(t, "test", filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.ErrorContains(t, err, "scenarios directory not found")
}

func TestFindScenarioFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"strike.yaml", "spare.yml", "notes.txt", "golden/strike.yaml", "tenth/bonus.yaml"} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, nil, 0o644))
	}

	files, err := findScenarioFiles(dir, "")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "spare.yml"),
		filepath.Join(dir, "strike.yaml"),
		filepath.Join(dir, "tenth", "bonus.yaml"),
	}, files)

	files, err = findScenarioFiles(dir, "s*")
	require.NoError(t, err)
	assert.Len(t, files, 2)

	_, err = findScenarioFiles(dir, "[")
	assert.ErrorContains(t, err, "invalid filter pattern")
}

func TestGoldenFilePath(t *testing.T) {
	assert.Equal(t, filepath.Join("lane", "golden", "perfect_game.golden"), goldenFilePath(filepath.Join("lane", "golden"), "perfect_game"))
}
