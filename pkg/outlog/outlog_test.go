package outlog_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/chunkhash/pkg/outlog"
)

func TestDescriptor_Format(t *testing.T) {
	t.Parallel()

	d := outlog.Descriptor{Algorithm: "xxh64", Digest: "44bc2cf5ad770999", Offset: 10485760, Length: 5242880}

	assert.Equal(t, "xxh64 44bc2cf5ad770999 10485760 +5242880", d.Format())
	assert.Equal(t, int64(15728640), d.End())
}

func TestParse(t *testing.T) {
	t.Parallel()

	d, err := outlog.Parse("sha256 abcd 0 +1024")
	require.NoError(t, err)
	assert.Equal(t, outlog.Descriptor{Algorithm: "sha256", Digest: "abcd", Offset: 0, Length: 1024}, d)

	again, err := outlog.Parse(d.Format())
	require.NoError(t, err)
	assert.Equal(t, d, again)
}

func TestParse_Malformed(t *testing.T) {
	t.Parallel()

	lines := []string{
		"",
		"sha256 abcd 0",
		"sha256 abcd 0 1024",
		"sha256 abcd x +1024",
		"sha256 abcd 0 +y",
		"sha256 abcd -1 +1024",
		"sha256 abcd 0 +0",
		"sha256 abcd 0 +1024 extra",
	}

	for _, line := range lines {
		_, err := outlog.Parse(line)
		require.ErrorIs(t, err, outlog.ErrMalformedLine, line)
	}
}

func TestWriter_AppendsAcrossReopen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.log")

	first, err := outlog.Open(path)
	require.NoError(t, err)
	require.NoError(t, first.Append(outlog.Descriptor{Algorithm: "md5", Digest: "aa", Offset: 0, Length: 10}))
	require.NoError(t, first.Close())

	second, err := outlog.Open(path)
	require.NoError(t, err)
	require.NoError(t, second.Append(outlog.Descriptor{Algorithm: "md5", Digest: "bb", Offset: 10, Length: 5}))
	require.NoError(t, second.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "md5 aa 0 +10\nmd5 bb 10 +5\n", string(raw))

	descriptors, err := outlog.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, descriptors, 2)
	assert.Equal(t, "bb", descriptors[1].Digest)
}

func TestWriter_PreservesExistingContent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.log")
	require.NoError(t, os.WriteFile(path, []byte("md5 aa 0 +10\n"), 0o600))

	w, err := outlog.Open(path)
	require.NoError(t, err)
	require.NoError(t, w.Append(outlog.Descriptor{Algorithm: "md5", Digest: "bb", Offset: 10, Length: 10}))
	require.NoError(t, w.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "md5 aa 0 +10\n"))
}

func TestWriter_RejectsUnparseableDescriptor(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.log")

	w, err := outlog.Open(path)
	require.NoError(t, err)

	t.Cleanup(func() { _ = w.Close() })

	err = w.Append(outlog.Descriptor{Algorithm: "md5", Digest: "a b", Offset: 0, Length: 1})
	require.ErrorIs(t, err, outlog.ErrMalformedLine)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, raw)
}

func TestReadAll_ReportsLineNumber(t *testing.T) {
	t.Parallel()

	_, err := outlog.ReadAll(strings.NewReader("md5 aa 0 +10\n\nbroken\n"))
	require.ErrorIs(t, err, outlog.ErrMalformedLine)
	assert.Contains(t, err.Error(), "line 3")
}

func TestReadFile_Missing(t *testing.T) {
	t.Parallel()

	descriptors, err := outlog.ReadFile(filepath.Join(t.TempDir(), "none.log"))
	require.NoError(t, err)
	assert.Empty(t, descriptors)
}

func desc(offset, length int64) outlog.Descriptor {
	return outlog.Descriptor{Algorithm: "xxh64", Digest: "00", Offset: offset, Length: length}
}

func TestCheckTiling(t *testing.T) {
	t.Parallel()

	cov, err := outlog.CheckTiling([]outlog.Descriptor{desc(0, 10), desc(10, 10), desc(20, 5)}, 25)
	require.NoError(t, err)
	assert.Equal(t, outlog.Coverage{Covered: 25}, cov)

	cov, err = outlog.CheckTiling([]outlog.Descriptor{desc(0, 10), desc(10, 10), desc(10, 10), desc(20, 5)}, 25)
	require.NoError(t, err)
	assert.Equal(t, outlog.Coverage{Covered: 25, Duplicates: 1}, cov)

	cov, err = outlog.CheckTiling([]outlog.Descriptor{desc(0, 10)}, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(10), cov.Covered)

	_, err = outlog.CheckTiling([]outlog.Descriptor{desc(0, 10), desc(20, 5)}, 25)
	require.ErrorIs(t, err, outlog.ErrGap)

	_, err = outlog.CheckTiling([]outlog.Descriptor{desc(0, 10), desc(5, 10)}, 0)
	require.ErrorIs(t, err, outlog.ErrOverlap)

	_, err = outlog.CheckTiling([]outlog.Descriptor{desc(0, 10)}, 25)
	require.ErrorIs(t, err, outlog.ErrIncomplete)
}
