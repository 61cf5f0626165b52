package hashing_test

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeebo/blake3"

	"github.com/Sumatoshi-tech/chunkhash/pkg/blockio"
	"github.com/Sumatoshi-tech/chunkhash/pkg/hashing"
)

func digestOf(t *testing.T, program string, data []byte) string {
	t.Helper()

	primitive, err := hashing.Resolve(program)
	require.NoError(t, err)

	digest, err := primitive.Digest(context.Background(), bytes.NewReader(data))
	require.NoError(t, err)

	return digest
}

func TestResolve_KnownVectors(t *testing.T) {
	t.Parallel()

	input := []byte("abc")

	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", digestOf(t, "sha256", input))
	assert.Equal(t, "900150983cd24fb0d6963f7d28e17f72", digestOf(t, "md5", input))
	assert.Equal(t, "352441c2", digestOf(t, "crc32", input))
}

func TestResolve_MatchesLibraries(t *testing.T) {
	t.Parallel()

	input := bytes.Repeat([]byte("chunk"), 1000)

	xx := xxhash.Sum64(input)
	assert.Equal(t, hex.EncodeToString([]byte{
		byte(xx >> 56), byte(xx >> 48), byte(xx >> 40), byte(xx >> 32),
		byte(xx >> 24), byte(xx >> 16), byte(xx >> 8), byte(xx),
	}), digestOf(t, "xxh64", input))

	b3 := blake3.Sum256(input)
	assert.Equal(t, hex.EncodeToString(b3[:]), digestOf(t, "blake3", input))

	sum := sha256.Sum256(input)
	assert.Equal(t, hex.EncodeToString(sum[:]), digestOf(t, "sha256", input))
}

func TestResolve_Aliases(t *testing.T) {
	t.Parallel()

	input := []byte("alias")

	pairs := map[string]string{
		"xxh64sum":  "xxh64",
		"b3sum":     "blake3",
		"b2sum":     "blake2b",
		"md5sum":    "md5",
		"sha1sum":   "sha1",
		"sha256sum": "sha256",
		"sha512sum": "sha512",
	}

	for alias, target := range pairs {
		assert.Equal(t, digestOf(t, target, input), digestOf(t, alias, input), alias)
	}

	primitive, err := hashing.Resolve("md5sum")
	require.NoError(t, err)
	assert.Equal(t, "md5sum", primitive.Name())
}

func TestResolve_Unknown(t *testing.T) {
	t.Parallel()

	_, err := hashing.Resolve("definitely-not-a-hash-program-xyz")
	require.ErrorIs(t, err, hashing.ErrUnknownProgram)

	_, err = hashing.Resolve("   ")
	require.ErrorIs(t, err, hashing.ErrUnknownProgram)
}

func TestBuiltins(t *testing.T) {
	t.Parallel()

	names := hashing.Builtins()

	assert.Contains(t, names, hashing.DefaultProgram)
	assert.Contains(t, names, "blake3")
	assert.IsIncreasing(t, names)
}

func TestRegister_Duplicate(t *testing.T) {
	t.Parallel()

	err := hashing.Register("sha256", func() (hash.Hash, error) { return sha256.New(), nil })
	require.Error(t, err)

	err = hashing.Register("nil-factory", nil)
	require.Error(t, err)
}

func requireProgram(t *testing.T, name string) {
	t.Helper()

	_, err := exec.LookPath(name)
	if err != nil {
		t.Skipf("%s not on PATH", name)
	}
}

func TestExternal_FirstFieldOfStdout(t *testing.T) {
	t.Parallel()
	requireProgram(t, "wc")

	digest := digestOf(t, "wc -c", bytes.Repeat([]byte{1}, 4096))
	assert.Equal(t, "4096", digest)
}

func TestExternal_Failure(t *testing.T) {
	t.Parallel()
	requireProgram(t, "false")

	primitive, err := hashing.Resolve("false")
	require.NoError(t, err)

	_, err = primitive.Digest(context.Background(), strings.NewReader("x"))
	require.Error(t, err)
}

func TestExternal_EmptyOutput(t *testing.T) {
	t.Parallel()
	requireProgram(t, "true")

	primitive, err := hashing.Resolve("true")
	require.NoError(t, err)

	_, err = primitive.Digest(context.Background(), strings.NewReader(""))
	require.ErrorIs(t, err, hashing.ErrEmptyDigest)
}

func writeInput(t *testing.T, size int) (string, []byte) {
	t.Helper()

	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i * 7)
	}

	path := filepath.Join(t.TempDir(), "input.bin")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	return path, data
}

func TestAdapter_HashRange(t *testing.T) {
	t.Parallel()

	path, data := writeInput(t, 64*1024)

	adapter, err := hashing.Open(path, "sha256", 4096)
	require.NoError(t, err)

	t.Cleanup(func() { _ = adapter.Close() })

	digest, err := adapter.HashRange(context.Background(), 10000, 20000)
	require.NoError(t, err)

	want := sha256.Sum256(data[10000:30000])
	assert.Equal(t, hex.EncodeToString(want[:]), digest)
	assert.Equal(t, "sha256", adapter.Algorithm())
}

func TestAdapter_RangePastEnd(t *testing.T) {
	t.Parallel()

	path, _ := writeInput(t, 8192)

	adapter, err := hashing.Open(path, "xxh64", 4096)
	require.NoError(t, err)

	t.Cleanup(func() { _ = adapter.Close() })

	_, err = adapter.HashRange(context.Background(), 4096, 8192)
	require.ErrorIs(t, err, blockio.ErrShortRead)
}

func TestAdapter_ExternalStopsReading(t *testing.T) {
	t.Parallel()
	requireProgram(t, "echo")

	path, _ := writeInput(t, 1<<20)

	adapter, err := hashing.Open(path, "echo early", 4096)
	require.NoError(t, err)

	t.Cleanup(func() { _ = adapter.Close() })

	_, err = adapter.HashRange(context.Background(), 0, 1<<20)
	require.ErrorIs(t, err, blockio.ErrShortRead)
}

func TestOpen_Errors(t *testing.T) {
	t.Parallel()

	_, err := hashing.Open(filepath.Join(t.TempDir(), "missing"), "md5", 512)
	require.ErrorIs(t, err, os.ErrNotExist)

	path, _ := writeInput(t, 512)

	_, err = hashing.Open(path, "no-such-hash-tool-xyz", 512)
	require.ErrorIs(t, err, hashing.ErrUnknownProgram)
}
