package cmdutil

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgAt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		args       []string
		index      int
		defaultVal string
		expected   string
	}{
		{name: "first arg", args: []string{"root.xml"}, index: 0, defaultVal: "", expected: "root.xml"},
		{name: "second arg", args: []string{"a.xml", "b.xml"}, index: 1, defaultVal: "", expected: "b.xml"},
		{name: "out of range returns default", args: []string{"a.xml"}, index: 1, defaultVal: "fallback", expected: "fallback"},
		{name: "negative index returns default", args: []string{"a.xml"}, index: -1, defaultVal: "fallback", expected: "fallback"},
		{name: "nil args returns default", args: nil, index: 0, defaultVal: "fallback", expected: "fallback"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, ArgAt(tt.args, tt.index, tt.defaultVal))
		})
	}
}

func TestRangeArgsWithHint(t *testing.T) {
	t.Parallel()

	check := RangeArgsWithHint(1, 2, "pass the root document")
	cmd := &cobra.Command{}

	err := check(cmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pass the root document")

	require.NoError(t, check(cmd, []string{"a.xml"}))
	require.NoError(t, check(cmd, []string{"a.xml", "b.xml"}))
	require.Error(t, check(cmd, []string{"a.xml", "b.xml", "c.xml"}))

	unbounded := RangeArgsWithHint(1, -1, "")
	require.NoError(t, unbounded(cmd, []string{"a", "b", "c", "d"}))
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	f, err := ParseFormat("yaml", FormatText, FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	_, err = ParseFormat("mermaid", FormatText, FormatYAML)
	require.Error(t, err, "should reject formats the command does not support")
}

func TestNewQuery_Error(t *testing.T) {
	t.Parallel()

	_, err := NewQuery("$.a", "xpath")
	require.Error(t, err)

	_, err = NewQuery("$[?(", QueryEngineRFC9535)
	require.Error(t, err)
}

func TestWriteYAML(t *testing.T) {
	t.Parallel()

	value := map[string]any{
		"root":      "root.xml",
		"loadOrder": []string{"common.xml", "root.xml"},
	}

	tests := []struct {
		name     string
		expr     string
		engine   QueryEngine
		expected string
	}{
		{name: "no query", expected: "loadOrder:\n  - common.xml\n  - root.xml\nroot: root.xml\n"},
		{name: "single match", expr: "$.root", engine: QueryEngineRFC9535, expected: "root.xml\n"},
		{name: "single sequence match", expr: "$.loadOrder", engine: QueryEngineRFC9535, expected: "- common.xml\n- root.xml\n"},
		{name: "several matches", expr: "$.loadOrder[*]", engine: QueryEngineRFC9535, expected: "- common.xml\n- root.xml\n"},
		{name: "legacy engine", expr: "$.loadOrder[0]", engine: QueryEngineLegacy, expected: "common.xml\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var query Query
			if tt.expr != "" {
				var err error
				query, err = NewQuery(tt.expr, tt.engine)
				require.NoError(t, err)
			}

			var buf bytes.Buffer
			require.NoError(t, WriteYAML(&buf, value, query))
			assert.Equal(t, tt.expected, buf.String())
		})
	}
}

func TestVerdict(t *testing.T) {
	t.Parallel()

	assert.Contains(t, Verdict(true, "passed", "failed"), "✅ passed")
	assert.Contains(t, Verdict(false, "passed", "failed"), "❌ failed")
}
