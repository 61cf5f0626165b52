package persist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersister_SaveLoad_Decimal(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "progress")
	p := NewPersister[int64](path, NewDecimalCodec())

	_, found, err := p.Load()
	require.NoError(t, err)
	assert.False(t, found)

	value := int64(31457280)
	require.NoError(t, p.Save(&value))

	restored, found, err := p.Load()
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, value, restored)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "31457280\n", string(raw))
}

func TestPersister_SaveLoad_JSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "meta.json")
	p := NewPersister[testState](path, NewJSONCodec())

	original := testState{Name: "hello", Count: 42}
	require.NoError(t, p.Save(&original))

	restored, found, err := p.Load()
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, original.Name, restored.Name)
	assert.Equal(t, original.Count, restored.Count)
	assert.Equal(t, path, p.Path())
}

func TestWriteFile_OverwritesWithoutLeftovers(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "state")

	for _, v := range []int64{1, 22, 333} {
		require.NoError(t, WriteFile(path, NewDecimalCodec(), v))
	}

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "333\n", string(raw))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not remain")
}

func TestWriteFile_EncodeFailureKeepsOldContent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state")
	require.NoError(t, WriteFile(path, NewDecimalCodec(), int64(5)))

	err := WriteFile(path, NewDecimalCodec(), "not a number")
	require.ErrorIs(t, err, ErrUnsupportedState)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "5\n", string(raw))
}

func TestWriteFile_MissingDirectory(t *testing.T) {
	t.Parallel()

	err := WriteFile(filepath.Join(t.TempDir(), "nope", "state"), NewDecimalCodec(), int64(1))
	require.Error(t, err)
}

func TestReadFile_Corrupt(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o600))

	var value int64

	err := ReadFile(path, NewDecimalCodec(), &value)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}
