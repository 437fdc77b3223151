package usecase

import (
	"context"
	"strings"

	"github.com/Wesley-Jzy/fasttext-serving/internal/domain/entity"
	"github.com/Wesley-Jzy/fasttext-serving/internal/domain/service"
)

// LabelPrefix is the namespace fastText puts in front of every label
const LabelPrefix = "__label__"

// Classify runs top-k classification on already validated and normalized text.
// k below 1 is treated as 1. Labels come back without LabelPrefix, in model order.
func Classify(ctx context.Context, model service.Model, text string, k int, threshold float32) (*entity.Prediction, error) {
	if k < 1 {
		k = 1
	}

	preds, err := model.Predict(ctx, text, k, threshold)
	if err != nil {
		return nil, NewModelError("Prediction failed: %v", err)
	}

	labels := make([]string, 0, len(preds))
	probs := make([]float32, 0, len(preds))
	for _, p := range preds {
		labels = append(labels, strings.TrimPrefix(p.Label, LabelPrefix))
		probs = append(probs, p.Probability)
	}

	return &entity.Prediction{
		Labels:        labels,
		Probabilities: probs,
	}, nil
}

// Embed returns the sentence vector for already validated and normalized text
func Embed(ctx context.Context, model service.Model, text string) (*entity.Embedding, error) {
	values, err := model.SentenceVector(ctx, text)
	if err != nil {
		return nil, NewModelError("Sentence vector failed: %v", err)
	}
	if values == nil {
		values = []float32{}
	}
	return &entity.Embedding{Values: values}, nil
}
