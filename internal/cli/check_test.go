package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const checkTestSchema = `reduce:
  strategy: merge
properties:
  count:
    reduce:
      strategy: sum
  best:
    reduce:
      strategy: maximize
      key: ["/score"]
`

func TestCheck_ValidSchema(t *testing.T) {
	schemaPath := writeFile(t, "catalog.schema.yaml", checkTestSchema)

	out, _, err := execute(t, nil, "check", schemaPath)
	require.NoError(t, err)
	assert.Contains(t, out, "ok")
	assert.Contains(t, out, "merge: 1")
	assert.Contains(t, out, "sum: 1")
	assert.Contains(t, out, "maximize: 1")
}

func TestCheck_JSONFormat(t *testing.T) {
	schemaPath := writeFile(t, "catalog.schema.yaml", checkTestSchema)

	out, _, err := execute(t, nil, "--format", "json", "check", schemaPath)
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   CheckResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, map[string]int{"merge": 1, "sum": 1, "maximize": 1}, resp.Data.Strategies)
}

func TestCheck_InvalidSchema(t *testing.T) {
	schemaPath := writeFile(t, "bad.schema.json", `{"reduce": {"strategy": "frobnicate"}}`)

	_, _, err := execute(t, nil, "check", schemaPath)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "frobnicate")
}

func TestCheck_MissingFile(t *testing.T) {
	_, _, err := execute(t, nil, "check", "does-not-exist.json")
	require.Error(t, err)
}

func TestCheck_RecursiveSchemaTerminates(t *testing.T) {
	schemaPath := writeFile(t, "recursive.schema.json", `{
		"reduce": {"strategy": "merge"},
		"additionalProperties": {"$ref": "#"}
	}`)

	out, _, err := execute(t, nil, "check", schemaPath)
	require.NoError(t, err)
	assert.Contains(t, out, "merge: 1")
}
