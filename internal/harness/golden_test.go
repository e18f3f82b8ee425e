package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// First run with -update to create golden files:
//
//	go test ./internal/harness -run TestRunWithGolden -update
func TestRunWithGolden(t *testing.T) {
	for _, name := range []string{"spare_then_strike", "freeplay_rerack"} {
		t.Run(name, func(t *testing.T) {
			scenario, err := LoadScenario("testdata/scenarios/" + name + ".yaml")
			require.NoError(t, err)

			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass)
		})
	}
}

func TestSnapshot_Deterministic(t *testing.T) {
	scenario, err := LoadScenario("testdata/scenarios/discarded_throw.yaml")
	require.NoError(t, err)

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	a, err := Snapshot{ScenarioName: scenario.Name, Result: first}.Marshal()
	require.NoError(t, err)
	b, err := Snapshot{ScenarioName: scenario.Name, Result: second}.Marshal()
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestSnapshot_OmitsFrameOutsideRolls(t *testing.T) {
	result := NewResult()
	result.Mode = "freeplay"
	result.Trace = append(result.Trace,
		TraceEntry{Seq: 3, Type: TraceCommand, Kind: "full_rack"},
		TraceEntry{Seq: 4, Type: TraceEvent, Kind: "roll_discarded", Frame: 0, Roll: 1},
	)

	data, err := Snapshot{ScenarioName: "s", Result: result}.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), `{"kind":"full_rack","seq":3,"type":"command"}`)
	assert.Contains(t, string(data), `{"frame":0,"kind":"roll_discarded","roll":1,"seq":4,"type":"event"}`)
}
