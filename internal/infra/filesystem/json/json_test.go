package json

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type document struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestWriteThenRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "doc.json")

	require.NoError(t, NewWriter().WriteJSON(path, document{Name: "alice", Count: 2}))

	exists, err := NewReader().Exists(path)
	require.NoError(t, err)
	assert.True(t, exists)

	var got document
	require.NoError(t, NewReader().ReadJSON(path, &got))
	assert.Equal(t, document{Name: "alice", Count: 2}, got)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestExists_Missing(t *testing.T) {
	exists, err := NewReader().Exists(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestReadJSON_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, NewWriter().WriteBytes(path, []byte("{")))

	var got document
	assert.Error(t, NewReader().ReadJSON(path, &got))
}
