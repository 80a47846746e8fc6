package doc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, raw string) Node {
	t.Helper()
	n, err := ParseJSON([]byte(raw))
	require.NoError(t, err)
	return n
}

func mustPointer(t *testing.T, raw string) Pointer {
	t.Helper()
	return ParsePointer(raw)
}
