package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/kledger/internal/testutil"
)

// runCLI executes the root command with args and returns stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _, err := runCLIWithStderr(t, args...)
	return out, err
}

// runCLIWithStderr is runCLI that also returns what the command wrote to stderr.
func runCLIWithStderr(t *testing.T, args ...string) (string, string, error) {
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

// mustRunCLI is runCLI that fails the test on error.
func mustRunCLI(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runCLI(t, args...)
	require.NoError(t, err, "kledger %v", args)
	return out
}

// decodeResponse parses a JSON envelope, decoding its data into data if non-nil.
func decodeResponse(t *testing.T, out string, data any) CLIResponse {
	t.Helper()

	var raw struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
		Error  *CLIError       `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &raw), out)
	if data != nil && len(raw.Data) > 0 {
		require.NoError(t, json.Unmarshal(raw.Data, data))
	}
	return CLIResponse{Status: raw.Status, Error: raw.Error}
}

// initLedger creates a journal in a temp dir and returns its path.
func initLedger(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "ledger.db")
	mustRunCLI(t, "init", "--db", dbPath)
	return dbPath
}

// hexID renders testutil.FormulaID(label) as a command-line argument.
func hexID(label string) string {
	return testutil.FormulaID(label).String()
}

func ledgerInfo(t *testing.T, args ...string) InfoResult {
	t.Helper()
	var info InfoResult
	out := mustRunCLI(t, append([]string{"info", "--format", "json"}, args...)...)
	resp := decodeResponse(t, out, &info)
	require.Equal(t, "ok", resp.Status)
	return info
}
