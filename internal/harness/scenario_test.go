package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_Valid(t *testing.T) {
	path := writeScenario(t, `
name: valid
description: "valid scenario"
linkage: strict
signatures: required
clock:
  start: 10
  step: 5
keys:
  alice: 3
flow:
  - op: append
    key: alice
    ids: [A, B]
  - op: audit
assertions:
  - type: block_count
    count: 2
`)

	s, err := LoadScenario(path)
	require.NoError(t, err)
	assert.Equal(t, "valid", s.Name)
	assert.Equal(t, "strict", s.Linkage)
	assert.Equal(t, &ClockSpec{Start: 10, Step: 5}, s.Clock)
	assert.Equal(t, map[string]int{"alice": 3}, s.Keys)
	require.Len(t, s.Flow, 2)
	assert.Equal(t, []string{"A", "B"}, s.Flow[0].IDs)
}

func TestLoadScenario_Invalid(t *testing.T) {
	base := "name: x\ndescription: d\n"
	okFlow := "flow:\n  - op: audit\n"
	okAssert := "assertions:\n  - type: block_count\n    count: 1\n"

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"unknown field", base + okFlow + okAssert + "asertions: []\n", "failed to parse YAML"},
		{"missing name", "description: d\n" + okFlow + okAssert, "name is required"},
		{"missing description", "name: x\n" + okFlow + okAssert, "description is required"},
		{"bad linkage", base + "linkage: loose\n" + okFlow + okAssert, "unknown linkage policy"},
		{"bad signatures", base + "signatures: always\n" + okFlow + okAssert, "unknown signature policy"},
		{"bad seed", base + "keys:\n  a: 300\n" + okFlow + okAssert, "seed must be in 0..255"},
		{"empty flow", base + okAssert, "flow list is required"},
		{"missing op", base + "flow:\n  - ids: [A]\n" + okAssert, "op is required"},
		{"unknown op", base + "flow:\n  - op: delete\n" + okAssert, "unknown op"},
		{"undefined key", base + "flow:\n  - op: append\n    key: bob\n" + okAssert, "undefined key"},
		{"unknown tamper", base + "flow:\n  - op: append\n    tamper: everything\n" + okAssert, "unknown tamper"},
		{"formula tamper without ids", base + "flow:\n  - op: append\n    tamper: formula_id\n" + okAssert, "requires ids"},
		{"audit with ids", base + "flow:\n  - op: audit\n    ids: [A]\n" + okAssert, "takes no key"},
		{"missing assertions", base + okFlow, "assertions list is required"},
		{"unknown assertion", base + okFlow + "assertions:\n  - type: vibes\n", "unknown assertion type"},
		{"outcome_count without outcome", base + okFlow + "assertions:\n  - type: outcome_count\n", "outcome is required"},
		{"formula_in_block without id", base + okFlow + "assertions:\n  - type: formula_in_block\n", "id is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorContains(t, err, "failed to read scenario file")
}
