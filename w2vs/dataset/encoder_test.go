package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestEncoder(t *testing.T) {
	vectors := newTableEmbeddings(2, "good", "film", "very")
	enc, err := NewEncoder(spaceTokenizer{}, vectors)
	require.NoError(t, err)
	assert.Equal(t, 2, enc.Dimensions())

	t.Run("PadsToMaxLength", func(t *testing.T) {
		features, err := enc.Encode("good film", 5)
		require.NoError(t, err)

		rows, cols := features.Dims()
		assert.Equal(t, 2, rows)
		assert.Equal(t, 5, cols)
		assert.Equal(t, vectors.Vector("good"), mat.Col(nil, 0, features))
		assert.Equal(t, vectors.Vector("film"), mat.Col(nil, 1, features))
		assert.Equal(t, []float64{0, 0}, mat.Col(nil, 4, features))
	})

	t.Run("UnknownTokensKeepTheirSlot", func(t *testing.T) {
		features, err := enc.Encode("a good b film", 4)
		require.NoError(t, err)

		assert.Equal(t, []float64{0, 0}, mat.Col(nil, 0, features))
		assert.Equal(t, vectors.Vector("good"), mat.Col(nil, 1, features))
		assert.Equal(t, []float64{0, 0}, mat.Col(nil, 2, features))
		assert.Equal(t, vectors.Vector("film"), mat.Col(nil, 3, features))
	})

	t.Run("WidthNeverBelowKnownCount", func(t *testing.T) {
		features, err := enc.Encode("very good very good film", 2)
		require.NoError(t, err)

		_, cols := features.Dims()
		assert.Equal(t, 5, cols)
		assert.Equal(t, vectors.Vector("very"), mat.Col(nil, 0, features))
		assert.Equal(t, vectors.Vector("good"), mat.Col(nil, 1, features))
		// tokens past maxLength are not written
		for j := 2; j < cols; j++ {
			assert.Equal(t, []float64{0, 0}, mat.Col(nil, j, features), "column %d", j)
		}
	})

	t.Run("EmptyText", func(t *testing.T) {
		features, err := enc.Encode("", 3)
		require.NoError(t, err)
		assert.Equal(t, 0.0, mat.Sum(features))
	})

	t.Run("InvalidMaxLength", func(t *testing.T) {
		_, err := enc.Encode("good", 0)
		assert.ErrorIs(t, err, ErrUsage)
	})

	t.Run("MissingCollaborators", func(t *testing.T) {
		_, err := NewEncoder(nil, vectors)
		assert.ErrorIs(t, err, ErrUsage)
		_, err = NewEncoder(spaceTokenizer{}, newTableEmbeddings(0))
		assert.ErrorIs(t, err, ErrUsage)
	})
}
