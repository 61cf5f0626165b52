package commands

import (
	"log/slog"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/Sumatoshi-tech/chunkhash/pkg/config"
)

// quietLevel hides progress logs under --quiet; errors are still reported.
const quietLevel = slog.LevelError

// sizeValue is a pflag.Value accepting plain byte counts or humanized sizes
// ("10MiB", "4k"). set distinguishes an explicit flag from its default.
type sizeValue struct {
	bytes int64
	set   bool
}

var _ pflag.Value = (*sizeValue)(nil)

func (s *sizeValue) String() string {
	if !s.set {
		return ""
	}

	return strconv.FormatInt(s.bytes, 10)
}

func (s *sizeValue) Set(raw string) error {
	size, err := config.ParseSize(raw)
	if err != nil {
		return err
	}

	s.bytes = size
	s.set = true

	return nil
}

func (s *sizeValue) Type() string {
	return "size"
}

// ptr returns the value when given, otherwise fallback (which may be nil).
func (s *sizeValue) ptr(fallback *int64) *int64 {
	if !s.set {
		return fallback
	}

	v := s.bytes

	return &v
}
