package assembler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Wesley-Jzy/fasttext-serving/internal/domain/entity"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		dim         int
		expectedDim int
	}{
		{name: "configured dimension", dim: 16, expectedDim: 16},
		{name: "zero falls back to default", dim: 0, expectedDim: DefaultFallbackDim},
		{name: "negative falls back to default", dim: -4, expectedDim: DefaultFallbackDim},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New(HTTPFallbackLabel, tt.dim)
			assert.Equal(t, tt.expectedDim, a.FallbackDim)
		})
	}
}

func TestAssembler_Predictions(t *testing.T) {
	outcomes := []entity.PredictionOutcome{
		{Err: &entity.ItemError{Kind: entity.ErrorKindInput, Message: "Empty text input"}},
		{Prediction: &entity.Prediction{Labels: []string{"sports", "news"}, Probabilities: []float32{0.6, 0.3}}},
		{Err: &entity.ItemError{Kind: entity.ErrorKindModel, Message: "Prediction failed: boom"}},
	}

	t.Run("http fallback", func(t *testing.T) {
		results := New(HTTPFallbackLabel, 0).Predictions(outcomes)

		require.Len(t, results, 3)
		assert.Equal(t, []string{"error"}, results[0].Labels)
		assert.Equal(t, []float32{0}, results[0].Probabilities)
		assert.Equal(t, []string{"sports", "news"}, results[1].Labels)
		assert.Equal(t, []float32{0.6, 0.3}, results[1].Probabilities)
		assert.Equal(t, []string{"error"}, results[2].Labels)
	})

	t.Run("grpc fallback", func(t *testing.T) {
		results := New(GRPCFallbackLabel, 0).Predictions(outcomes)

		require.Len(t, results, 3)
		assert.Equal(t, []string{"__label__error"}, results[0].Labels)
		assert.Equal(t, []string{"sports", "news"}, results[1].Labels)
	})

	t.Run("empty batch", func(t *testing.T) {
		results := New(HTTPFallbackLabel, 0).Predictions(nil)

		assert.NotNil(t, results)
		assert.Empty(t, results)
	})
}

func TestAssembler_Embeddings(t *testing.T) {
	outcomes := []entity.EmbeddingOutcome{
		{Embedding: &entity.Embedding{Values: []float32{0.5, 0.25, 0.125}}},
		{Err: &entity.ItemError{Kind: entity.ErrorKindInput, Message: "Empty text input"}},
	}

	t.Run("failed item becomes zero vector of fallback dimension", func(t *testing.T) {
		results := New(GRPCFallbackLabel, 8).Embeddings(outcomes)

		require.Len(t, results, 2)
		assert.Equal(t, []float32{0.5, 0.25, 0.125}, results[0])
		assert.Len(t, results[1], 8)
		for _, v := range results[1] {
			assert.Zero(t, v)
		}
	})

	t.Run("default dimension", func(t *testing.T) {
		results := New(HTTPFallbackLabel, 0).Embeddings(outcomes[1:])

		require.Len(t, results, 1)
		assert.Len(t, results[0], 100)
	})
}
