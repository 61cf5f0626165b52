package hashing

import (
	"crypto/md5"  //nolint:gosec // checksum use, not security.
	"crypto/sha1" //nolint:gosec // checksum use, not security.
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"hash/crc32"
	"os/exec"
	"slices"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/zeebo/blake3"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// Factory creates a fresh hash state.
type Factory func() (hash.Hash, error)

var (
	mu       sync.RWMutex
	registry = map[string]Factory{}
	aliases  = map[string]string{}
)

func stateless(fn func() hash.Hash) Factory {
	return func() (hash.Hash, error) { return fn(), nil }
}

func init() {
	MustRegister("xxh64", stateless(func() hash.Hash { return xxhash.New() }))
	MustRegister("blake3", stateless(func() hash.Hash { return blake3.New() }))
	MustRegister("blake2b", func() (hash.Hash, error) { return blake2b.New512(nil) })
	MustRegister("sha3-256", stateless(sha3.New256))
	MustRegister("md5", stateless(md5.New))
	MustRegister("sha1", stateless(sha1.New))
	MustRegister("sha256", stateless(sha256.New))
	MustRegister("sha512", stateless(sha512.New))
	MustRegister("crc32", stateless(func() hash.Hash { return crc32.NewIEEE() }))

	// coreutils-style program names resolve to the in-process equivalents.
	for alias, target := range map[string]string{
		"xxh64sum":  "xxh64",
		"b3sum":     "blake3",
		"b2sum":     "blake2b",
		"md5sum":    "md5",
		"sha1sum":   "sha1",
		"sha256sum": "sha256",
		"sha512sum": "sha512",
	} {
		aliases[alias] = target
	}
}

// Register adds a built-in primitive under name.
func Register(name string, factory Factory) error {
	mu.Lock()
	defer mu.Unlock()

	if name == "" {
		return fmt.Errorf("%w: empty name", ErrUnknownProgram)
	}

	if factory == nil {
		return fmt.Errorf("hash program %q: nil factory", name)
	}

	if _, exists := registry[name]; exists {
		return fmt.Errorf("hash program %q already registered", name)
	}

	registry[name] = factory

	return nil
}

// MustRegister is like Register but panics on error.
func MustRegister(name string, factory Factory) {
	err := Register(name, factory)
	if err != nil {
		panic(fmt.Sprintf("register hash program: %v", err))
	}
}

// Builtins returns the sorted names of in-process primitives.
func Builtins() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// Resolve maps a hash program identifier to a Primitive. Built-in names and
// aliases are served in process; any other identifier whose first word is an
// executable on PATH runs as a subprocess.
func Resolve(program string) (Primitive, error) {
	name := strings.TrimSpace(program)

	mu.RLock()
	target, aliased := aliases[name]
	if !aliased {
		target = name
	}
	factory, ok := registry[target]
	mu.RUnlock()

	if ok {
		return &builtin{name: program, factory: factory}, nil
	}

	argv := strings.Fields(name)
	if len(argv) == 0 {
		return nil, fmt.Errorf("%w: empty identifier", ErrUnknownProgram)
	}

	path, err := exec.LookPath(argv[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %q (built-ins: %s)", ErrUnknownProgram, program, strings.Join(Builtins(), ", "))
	}

	return &external{name: program, path: path, args: argv[1:]}, nil
}
