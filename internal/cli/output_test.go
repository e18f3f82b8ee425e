package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Success(map[string]int{"total": 300}, nil))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, map[string]any{"total": float64(300)}, resp.Data)
	assert.Nil(t, resp.Error)
}

func TestOutputFormatter_TextSuccessUsesRenderer(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, formatter.Success(42, func(w io.Writer) { fmt.Fprintln(w, "Total: 42") }))
	assert.Equal(t, "Total: 42\n", buf.String())

	buf.Reset()
	require.NoError(t, formatter.Success("plain", nil))
	assert.Equal(t, "plain\n", buf.String())
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.Error(CodeBadInput, "invalid roll", map[string]string{"token": "Y"}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeBadInput, resp.Error.Code)
	assert.Equal(t, "invalid roll", resp.Error.Message)
	assert.NotNil(t, resp.Error.Details)
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, formatter.Error(CodeTuning, "tilt out of range", "tilt_degrees"))
	assert.Equal(t, "Error [E_TUNING]: tilt out of range\n", buf.String())

	buf.Reset()
	formatter.Verbose = true
	require.NoError(t, formatter.Error(CodeTuning, "tilt out of range", "tilt_degrees"))
	assert.Contains(t, buf.String(), "Details: tilt_degrees")
}

func TestOutputFormatter_Failure(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	err := formatter.Failure(CodeTestFailed, "1 scenario(s) failed", map[string]int{"failed": 1}, nil)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.NotNil(t, resp.Data)
	assert.Equal(t, CodeTestFailed, resp.Error.Code)

	buf.Reset()
	formatter.Format = "text"
	err = formatter.Failure(CodeTestFailed, "boom", nil, func(w io.Writer) { fmt.Fprint(w, "summary") })
	assert.EqualError(t, err, "boom")
	assert.Equal(t, "summary", buf.String())
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	out := &bytes.Buffer{}
	diag := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: out, ErrWriter: diag}

	formatter.VerboseLog("opened %s", "lane.db")
	assert.Empty(t, diag.String())

	formatter.Verbose = true
	formatter.VerboseLog("opened %s", "lane.db")
	assert.Equal(t, "opened lane.db\n", diag.String())
	assert.Empty(t, out.String())
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad")))

	wrapped := fmt.Errorf("outer: %w", WrapExitError(ExitCommandError, "open", errors.New("denied")))
	assert.Equal(t, ExitCommandError, GetExitCode(wrapped))
	assert.EqualError(t, wrapped, "outer: open: denied")
}
