package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/tenpin/internal/canonical"
)

// Snapshot captures the final board and the full trace of a scenario run.
// It is serialized as canonical JSON for deterministic comparison.
type Snapshot struct {
	ScenarioName string
	Result       *Result
}

// Marshal returns the snapshot's canonical JSON.
func (s Snapshot) Marshal() ([]byte, error) {
	trace := make([]any, len(s.Result.Trace))
	for i, e := range s.Result.Trace {
		m := map[string]any{
			"seq":  e.Seq,
			"type": e.Type,
			"kind": e.Kind,
		}
		if e.Kind == "roll_recorded" || e.Kind == "roll_discarded" {
			m["frame"] = e.Frame
			m["roll"] = e.Roll
		}
		if e.Detail != "" {
			m["detail"] = e.Detail
		}
		trace[i] = m
	}

	return canonical.Marshal(map[string]any{
		"scenario_name": s.ScenarioName,
		"mode":          s.Result.Mode,
		"board":         s.Result.Board.Fields(),
		"trace":         trace,
	})
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns an error if the scenario cannot run. A snapshot mismatch fails t.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	return result, AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an existing result against its golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := Snapshot{ScenarioName: scenarioName, Result: result}.Marshal()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
