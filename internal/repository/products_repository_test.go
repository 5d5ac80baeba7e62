package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartwise/recommender/internal/recerrors"
)

func TestValidateEmbeddingDimension(t *testing.T) {
	t.Run("matching dimension passes", func(t *testing.T) {
		assert.NoError(t, ValidateEmbeddingDimension(1536, 1536))
	})

	t.Run("mismatch is a configuration error", func(t *testing.T) {
		err := ValidateEmbeddingDimension(768, 1536)

		require.Error(t, err)
		var cfgErr *recerrors.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Contains(t, err.Error(), "768")
		assert.Contains(t, err.Error(), "vector(1536)")
	})

	t.Run("undeclared column dimension is rejected", func(t *testing.T) {
		err := ValidateEmbeddingDimension(1536, -1)

		require.Error(t, err)
		var cfgErr *recerrors.ConfigurationError
		assert.ErrorAs(t, err, &cfgErr)
	})
}
