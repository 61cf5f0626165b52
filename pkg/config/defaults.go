package config

import (
	"github.com/dustin/go-humanize"

	"github.com/Sumatoshi-tech/chunkhash/pkg/hashing"
	"github.com/Sumatoshi-tech/chunkhash/pkg/units"
)

// Job defaults, rendered from the byte values the validator falls back to.
var (
	DefaultChunkSize = humanize.IBytes(units.DefaultChunkSize)
	DefaultBlockSize = humanize.IBytes(units.DefaultBlockSize)
)

// DefaultHashProgram is the hash program used when none is configured.
const DefaultHashProgram = hashing.DefaultProgram

// Logging defaults.
const (
	DefaultLogLevel = "info"
)
