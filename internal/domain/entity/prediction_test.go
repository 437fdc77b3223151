package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPredictionOutcome_Failed(t *testing.T) {
	tests := []struct {
		name     string
		outcome  PredictionOutcome
		expected bool
	}{
		{name: "success", outcome: PredictionOutcome{Prediction: &Prediction{Labels: []string{"sports"}}}, expected: false},
		{name: "input error", outcome: PredictionOutcome{Err: &ItemError{Kind: ErrorKindInput}}, expected: true},
		{name: "model error", outcome: PredictionOutcome{Err: &ItemError{Kind: ErrorKindModel}}, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.outcome.Failed())
		})
	}
}

func TestEmbeddingOutcome_Failed(t *testing.T) {
	assert.False(t, EmbeddingOutcome{Embedding: &Embedding{Values: []float32{0.1}}}.Failed())
	assert.True(t, EmbeddingOutcome{Err: &ItemError{Kind: ErrorKindModel}}.Failed())
}

func TestBatchSummary_Succeeded(t *testing.T) {
	tests := []struct {
		name     string
		summary  BatchSummary
		expected int
	}{
		{name: "empty batch", summary: BatchSummary{}, expected: 0},
		{name: "all succeeded", summary: BatchSummary{Processed: 4}, expected: 4},
		{name: "one error out of three", summary: BatchSummary{Processed: 3, Errors: 1}, expected: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.summary.Succeeded())
		})
	}
}
