package safeconv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUint64ToInt64(t *testing.T) {
	t.Parallel()

	t.Run("in_range", func(t *testing.T) {
		t.Parallel()

		got, err := Uint64ToInt64(10 << 20)
		require.NoError(t, err)
		assert.Equal(t, int64(10<<20), got)
	})

	t.Run("max_int64", func(t *testing.T) {
		t.Parallel()

		got, err := Uint64ToInt64(math.MaxInt64)
		require.NoError(t, err)
		assert.Equal(t, int64(math.MaxInt64), got)
	})

	t.Run("overflow", func(t *testing.T) {
		t.Parallel()

		_, err := Uint64ToInt64(math.MaxInt64 + 1)
		require.ErrorIs(t, err, ErrOverflow)
	})
}

func TestMustInt64ToInt(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 4096, MustInt64ToInt(4096))

	assert.PanicsWithValue(t, "safeconv: int64 to int out of bounds", func() {
		MustInt64ToInt(-1)
	})
}

func TestMustInt64ToUint64(t *testing.T) {
	t.Parallel()

	assert.Equal(t, uint64(7), MustInt64ToUint64(7))

	assert.PanicsWithValue(t, "safeconv: negative int64 to uint64 conversion", func() {
		MustInt64ToUint64(-7)
	})
}
