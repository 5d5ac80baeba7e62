package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartwise/recommender/internal/recerrors"
)

func TestLoad_RequiresAPIKey(t *testing.T) {
	t.Setenv("API_KEY", "")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "API_KEY")
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("API_KEY", "test-key")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "test-key", cfg.APIKey)
	assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModel)
	assert.Equal(t, 1536, cfg.EmbeddingDimensions)
	assert.Equal(t, 20, cfg.RetrievalTopK)
	assert.InDelta(t, 0.3, cfg.ScoreThreshold, 1e-9)
	assert.InDelta(t, 0.7, cfg.DenseWeight, 1e-9)
	assert.Equal(t, 5, cfg.ResultCount)
	assert.InDelta(t, 0.40, cfg.Weights.Semantic, 1e-9)
	assert.InDelta(t, 0.30, cfg.Weights.Value, 1e-9)
	assert.InDelta(t, 0.20, cfg.Weights.Preference, 1e-9)
	assert.InDelta(t, 0.10, cfg.Weights.Review, 1e-9)
	assert.InDelta(t, 0.10, cfg.ExplorationRate, 1e-9)
	assert.InDelta(t, 30, cfg.DecayHalfLifeDays, 1e-9)
	assert.Equal(t, time.Duration(0), cfg.ProfileRetention)
	assert.Equal(t, 10*time.Second, cfg.LLMCallTimeout)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("API_KEY", "test-key")
	t.Setenv("PORT", "9090")
	t.Setenv("RETRIEVAL_TOP_K", "50")
	t.Setenv("SCORE_THRESHOLD", "0.5")
	t.Setenv("PROFILE_RETENTION", "720h")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 50, cfg.RetrievalTopK)
	assert.InDelta(t, 0.5, cfg.ScoreThreshold, 1e-9)
	assert.Equal(t, 720*time.Hour, cfg.ProfileRetention)
}

func TestLoad_InvalidValuesFallBackToDefaults(t *testing.T) {
	t.Setenv("API_KEY", "test-key")
	t.Setenv("RETRIEVAL_TOP_K", "not-a-number")
	t.Setenv("SCORE_THRESHOLD", "not-a-float")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 20, cfg.RetrievalTopK)
	assert.InDelta(t, 0.3, cfg.ScoreThreshold, 1e-9)
}

func TestLoad_RejectsInvalidWeights(t *testing.T) {
	t.Setenv("API_KEY", "test-key")
	t.Setenv("WEIGHT_SEMANTIC", "0.9")

	_, err := Load()

	require.Error(t, err)
	var cfgErr *recerrors.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Message, "sum to 1.0")
}

func TestLoad_RejectsInvalidDimensions(t *testing.T) {
	t.Setenv("API_KEY", "test-key")
	t.Setenv("EMBEDDING_DIMENSIONS", "-1")

	_, err := Load()

	require.Error(t, err)
	var cfgErr *recerrors.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "EMBEDDING_DIMENSIONS", cfgErr.Setting)
}

func TestRankingWeights_Validate(t *testing.T) {
	tests := []struct {
		name    string
		weights RankingWeights
		wantErr bool
	}{
		{
			name:    "default weights",
			weights: RankingWeights{Semantic: 0.40, Value: 0.30, Preference: 0.20, Review: 0.10},
			wantErr: false,
		},
		{
			name:    "within tolerance",
			weights: RankingWeights{Semantic: 0.4001, Value: 0.30, Preference: 0.20, Review: 0.10},
			wantErr: false,
		},
		{
			name:    "sum too high",
			weights: RankingWeights{Semantic: 0.50, Value: 0.30, Preference: 0.20, Review: 0.10},
			wantErr: true,
		},
		{
			name:    "sum too low",
			weights: RankingWeights{Semantic: 0.10, Value: 0.10, Preference: 0.10, Review: 0.10},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.weights.Validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
