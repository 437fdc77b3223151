// Package assembler turns batch outcomes into the payloads a transport sends
// back. Failed items are replaced by a fallback value so the response always
// has one entry per input.
package assembler

import "github.com/Wesley-Jzy/fasttext-serving/internal/domain/entity"

// Fallback labels used by each transport for a failed classification item
const (
	HTTPFallbackLabel = "error"
	GRPCFallbackLabel = "__label__error"
)

// DefaultFallbackDim is used when no positive vector dimension is configured
const DefaultFallbackDim = 100

// Assembler maps outcomes to results using transport specific fallbacks
type Assembler struct {
	FallbackLabel string
	FallbackDim   int
}

// New creates an Assembler. A non-positive fallbackDim is replaced by DefaultFallbackDim.
func New(fallbackLabel string, fallbackDim int) *Assembler {
	if fallbackDim <= 0 {
		fallbackDim = DefaultFallbackDim
	}
	return &Assembler{
		FallbackLabel: fallbackLabel,
		FallbackDim:   fallbackDim,
	}
}

// Predictions returns one prediction per outcome, in order
func (a *Assembler) Predictions(outcomes []entity.PredictionOutcome) []entity.Prediction {
	results := make([]entity.Prediction, len(outcomes))
	for i, o := range outcomes {
		if o.Failed() || o.Prediction == nil {
			results[i] = a.fallbackPrediction()
			continue
		}
		results[i] = *o.Prediction
	}
	return results
}

// Embeddings returns one vector per outcome, in order
func (a *Assembler) Embeddings(outcomes []entity.EmbeddingOutcome) [][]float32 {
	results := make([][]float32, len(outcomes))
	for i, o := range outcomes {
		if o.Failed() || o.Embedding == nil {
			results[i] = make([]float32, a.FallbackDim)
			continue
		}
		results[i] = o.Embedding.Values
	}
	return results
}

func (a *Assembler) fallbackPrediction() entity.Prediction {
	return entity.Prediction{
		Labels:        []string{a.FallbackLabel},
		Probabilities: []float32{0},
	}
}
