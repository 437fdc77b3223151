package service

import "context"

// LabelScore is one raw label returned by the model, prefix included
type LabelScore struct {
	Label       string  `json:"label"`
	Probability float32 `json:"probability"`
}

// Model is the loaded text model shared by every request.
// Implementations must be safe for concurrent use and are never mutated
// after construction.
type Model interface {
	// Predict returns at most k labels with probability >= threshold,
	// highest probability first
	Predict(ctx context.Context, text string, k int, threshold float32) ([]LabelScore, error)

	// SentenceVector returns the model's sentence embedding for text
	SentenceVector(ctx context.Context, text string) ([]float32, error)
}

// ModelStatus describes the loaded model as reported by its runtime
type ModelStatus struct {
	Loaded    bool   `json:"model_loaded"`
	ModelPath string `json:"model_path,omitempty"`
}

// ModelProber reports whether the model runtime is alive and loaded
type ModelProber interface {
	Status(ctx context.Context) (*ModelStatus, error)
	Ready(ctx context.Context) error
}
