package outlog

import "fmt"

// Coverage summarises how a descriptor sequence covers the input.
type Coverage struct {
	// Covered is the end of the contiguous prefix starting at 0.
	Covered int64
	// Duplicates counts lines that repeat the immediately preceding range,
	// as left behind by a crash between log append and checkpoint.
	Duplicates int
}

// CheckTiling verifies that descriptors cover [0, Covered) contiguously with
// no gaps or overlaps. A line repeating the previous range exactly is
// tolerated and counted. When total is positive, Covered must equal total.
func CheckTiling(descriptors []Descriptor, total int64) (Coverage, error) {
	var (
		cov  Coverage
		prev *Descriptor
	)

	for i := range descriptors {
		d := descriptors[i]

		if prev != nil && d.Offset == prev.Offset && d.Length == prev.Length {
			cov.Duplicates++

			continue
		}

		switch {
		case d.Offset > cov.Covered:
			return cov, fmt.Errorf("%w: [%d, %d) never hashed before line %d", ErrGap, cov.Covered, d.Offset, i+1)
		case d.Offset < cov.Covered:
			return cov, fmt.Errorf("%w: line %d starts at %d inside covered prefix %d", ErrOverlap, i+1, d.Offset, cov.Covered)
		}

		cov.Covered = d.End()
		prev = &descriptors[i]
	}

	if total > 0 && cov.Covered != total {
		return cov, fmt.Errorf("%w: covered %d of %d", ErrIncomplete, cov.Covered, total)
	}

	return cov, nil
}
