package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/erraggy/oasmerge/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMustMapping(t *testing.T) {
	m := MustMapping(t, EndToEndSchemas)
	assert.Equal(t, []string{"Error", "AuthError"}, m.Keys())
}

func TestVaultHubFilesParse(t *testing.T) {
	frags := Fragments(t, VaultHubFiles())
	require.Len(t, frags, 12)
	for name, n := range frags {
		_, ok := n.(*tree.Mapping)
		assert.True(t, ok, "%s should be a mapping", name)
	}
}

func TestWriteFragments(t *testing.T) {
	dir := WriteFragments(t, map[string]string{"schemas/a.yaml": "A: {}\n"})

	data, err := os.ReadFile(filepath.Join(dir, "schemas", "a.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "A: {}\n", string(data))
}
