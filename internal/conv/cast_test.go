//go:build amd64 || arm64

package conv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntToUint32(t *testing.T) {
	t.Run("valid zero", func(t *testing.T) {
		got, err := IntToUint32(0)
		assert.NoError(t, err)
		assert.Equal(t, uint32(0), got)
	})

	t.Run("valid max", func(t *testing.T) {
		got, err := IntToUint32(math.MaxUint32)
		assert.NoError(t, err)
		assert.Equal(t, uint32(math.MaxUint32), got)
	})

	t.Run("invalid negative", func(t *testing.T) {
		_, err := IntToUint32(-1)
		assert.ErrorIs(t, err, ErrOverflow)
	})

	t.Run("invalid too large", func(t *testing.T) {
		_, err := IntToUint32(math.MaxUint32 + 1)
		assert.ErrorIs(t, err, ErrOverflow)
	})
}

func TestUint32s(t *testing.T) {
	got, err := Uint32s([]string{"rows", "dim"}, 10, 2)
	require.NoError(t, err)
	assert.Equal(t, []uint32{10, 2}, got)

	_, err = Uint32s([]string{"rows", "dim"}, 10, -2)
	assert.ErrorIs(t, err, ErrOverflow)
	assert.ErrorContains(t, err, "dim")
}
