// Package units provides binary size unit multipliers (1024-based).
package units

// Binary size multipliers.
const (
	KiB = 1024
	MiB = 1024 * KiB
	GiB = 1024 * MiB
	TiB = 1024 * GiB
)

// Default chunk and block sizes for a hashing run.
const (
	DefaultChunkSize = 10 * MiB
	DefaultBlockSize = 1 * MiB
)
