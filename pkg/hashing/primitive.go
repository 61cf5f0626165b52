// Package hashing resolves hash program identifiers to digest primitives and
// adapts them to byte ranges of an input.
package hashing

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
)

// DefaultProgram is the hash program used when none is configured.
const DefaultProgram = "xxh64"

// Sentinel errors for hash resolution and execution.
var (
	ErrUnknownProgram = errors.New("unknown hash program")
	ErrEmptyDigest    = errors.New("hash program produced no digest")
)

// Primitive turns a byte stream into an opaque textual digest.
type Primitive interface {
	// Name returns the identifier the primitive was resolved from.
	Name() string
	// Digest consumes src until EOF and returns the digest text.
	Digest(ctx context.Context, src io.Reader) (string, error)
}

// builtin is a Primitive backed by an in-process [hash.Hash].
type builtin struct {
	name    string
	factory func() (hash.Hash, error)
}

func (b *builtin) Name() string {
	return b.name
}

func (b *builtin) Digest(_ context.Context, src io.Reader) (string, error) {
	hasher, err := b.factory()
	if err != nil {
		return "", fmt.Errorf("init %s: %w", b.name, err)
	}

	_, err = io.Copy(hasher, src)
	if err != nil {
		return "", fmt.Errorf("%s: %w", b.name, err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}
