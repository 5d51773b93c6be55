package umapsgd

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmbeddingFrom(t *testing.T) {
	data := []float32{1, 2, 3, 4, 5, 6}

	emb, err := NewEmbeddingFrom(data, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, emb.Len())
	assert.Equal(t, 3, emb.Dim())
	assert.Equal(t, []float32{4, 5, 6}, emb.Row(1))

	// Rows alias the caller's slice.
	emb.Row(0)[0] = 9
	assert.Equal(t, float32(9), data[0])

	_, err = NewEmbeddingFrom(data, 4)
	assert.ErrorIs(t, err, ErrDimensionMismatch)

	_, err = NewEmbeddingFrom(data, 0)
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestEmbedding_Clone(t *testing.T) {
	emb := NewEmbedding(2, 2)
	c := emb.Clone()
	c.Row(1)[1] = 3

	assert.Zero(t, emb.Row(1)[1])
	assert.Equal(t, "Embedding(2x2)", emb.String())
}

func TestEmbedding_FirstNonFinite(t *testing.T) {
	emb := NewEmbedding(3, 2)
	assert.Equal(t, -1, emb.firstNonFinite())

	emb.Row(2)[1] = float32(math.Inf(-1))
	assert.Equal(t, 5, emb.firstNonFinite())
}

func TestCallbacks(t *testing.T) {
	var order []string
	cb := Callbacks{
		CallbackFunc(func(context.Context, int, *Embedding) error {
			order = append(order, "first")
			return nil
		}),
		CallbackFunc(func(context.Context, int, *Embedding) error {
			order = append(order, "second")
			return nil
		}),
	}

	require.NoError(t, cb.OnEpochEnd(context.Background(), 0, NewEmbedding(1, 1)))
	assert.Equal(t, []string{"first", "second"}, order)
}
