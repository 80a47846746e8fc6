package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFile writes content to name under a fresh temp dir and returns its path.
func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReduce_Sum(t *testing.T) {
	schemaPath := writeFile(t, "sum.schema.json", `{"reduce": {"strategy": "sum"}}`)
	a := writeFile(t, "a.json", `123`)
	b := writeFile(t, "b.json", `45`)

	out, _, err := execute(t, nil, "reduce", "--schema", schemaPath, a, b)
	require.NoError(t, err)
	assert.Equal(t, "168\n", out)
}

func TestReduce_FromStdin(t *testing.T) {
	schemaPath := writeFile(t, "sum.schema.json", `{"reduce": {"strategy": "sum"}}`)
	a := writeFile(t, "a.json", `40`)

	out, _, err := execute(t, strings.NewReader(`2`), "reduce", "--schema", schemaPath, a, "-")
	require.NoError(t, err)
	assert.Equal(t, "42\n", out)
}

func TestReduce_WrongTypeFails(t *testing.T) {
	schemaPath := writeFile(t, "sum.schema.json", `{"reduce": {"strategy": "sum"}}`)
	a := writeFile(t, "a.json", `123`)
	b := writeFile(t, "b.json", `"whoops"`)

	_, _, err := execute(t, nil, "reduce", "--schema", schemaPath, a, b)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "'sum' strategy expects numbers")
}

func TestReduce_MissingSchemaFlag(t *testing.T) {
	a := writeFile(t, "a.json", `123`)
	_, _, err := execute(t, nil, "reduce", a)
	require.Error(t, err)
}

func TestReduce_JSONFormat(t *testing.T) {
	schemaPath := writeFile(t, "merge.schema.json", `{
		"reduce": {"strategy": "merge"},
		"properties": {"n": {"reduce": {"strategy": "sum"}}}
	}`)
	a := writeFile(t, "a.json", `{"n": 1, "z": true}`)
	b := writeFile(t, "b.json", `{"n": 2}`)

	out, _, err := execute(t, nil, "--format", "json", "reduce", "--schema", schemaPath, a, b)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	assert.JSONEq(t, `{"n": 3, "z": true}`, string(data))
}

func TestReduce_JSONFormatError(t *testing.T) {
	schemaPath := writeFile(t, "merge.schema.json", `{
		"reduce": {"strategy": "merge"},
		"properties": {"n": {"reduce": {"strategy": "sum"}}}
	}`)
	a := writeFile(t, "a.json", `{"n": 1}`)
	b := writeFile(t, "b.json", `{"n": "whoops"}`)

	out, _, err := execute(t, nil, "--format", "json", "reduce", "--schema", schemaPath, a, b)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "SUM_WRONG_TYPE", resp.Error.Code)
}
