package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenariosDir = "../harness/testdata/scenarios"

// execute runs the full command tree, including flag validation.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "tenpin", cmd.Use)
	assert.Contains(t, cmd.Long, "bowling")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"score", "simulate", "test", "replay", "trace", "config"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)
	assert.Equal(t, "false", verbose.DefValue)

	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)

	cfg := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, cfg)
	assert.Equal(t, "", cfg.DefValue)
}

func TestRequiredFlags(t *testing.T) {
	cmd := NewRootCommand()

	replay, _, err := cmd.Find([]string{"replay"})
	require.NoError(t, err)
	assert.NotNil(t, replay.Flags().Lookup("game"))

	trace, _, err := cmd.Find([]string{"trace"})
	require.NoError(t, err)
	assert.NotNil(t, trace.Flags().Lookup("kind"))

	_, _, err = execute(t, "trace", "--db", "lane.db")
	assert.ErrorContains(t, err, `required flag(s) "game" not set`)

	_, _, err = execute(t, "replay")
	assert.ErrorContains(t, err, `required flag(s) "db" not set`)
}

func TestInvalidFormat(t *testing.T) {
	_, _, err := execute(t, "score", "X", "--format", "yaml")
	assert.ErrorContains(t, err, `invalid format "yaml"`)
}

func TestVerboseLogsToStderr(t *testing.T) {
	stdout, stderr, err := execute(t, "score", "9", "-v", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, stderr, "scored rolls")
	assert.NotContains(t, stdout, "scored rolls")
}

func TestLoggerDefaultsToDiscard(t *testing.T) {
	opts := &RootOptions{}
	assert.NotNil(t, opts.Logger())
}
