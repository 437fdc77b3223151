package client

import (
	"context"
	"fmt"

	"github.com/Wesley-Jzy/fasttext-serving/internal/domain/service"
)

// RemoteModel adapts RuntimeClient to the Model and ModelProber interfaces
type RemoteModel struct {
	client *RuntimeClient
}

var (
	_ service.Model       = (*RemoteModel)(nil)
	_ service.ModelProber = (*RemoteModel)(nil)
)

// NewRemoteModel creates a new RemoteModel
func NewRemoteModel(client *RuntimeClient) *RemoteModel {
	return &RemoteModel{client: client}
}

// Predict classifies a single text
func (m *RemoteModel) Predict(ctx context.Context, text string, k int, threshold float32) ([]service.LabelScore, error) {
	results, err := m.client.Predict(ctx, []string{text}, k, threshold)
	if err != nil {
		return nil, err
	}

	r := results[0]
	if len(r.Labels) != len(r.Scores) {
		return nil, fmt.Errorf("model runtime returned %d labels with %d scores", len(r.Labels), len(r.Scores))
	}

	scores := make([]service.LabelScore, len(r.Labels))
	for i, label := range r.Labels {
		scores[i] = service.LabelScore{
			Label:       label,
			Probability: r.Scores[i],
		}
	}
	return scores, nil
}

// SentenceVector embeds a single text
func (m *RemoteModel) SentenceVector(ctx context.Context, text string) ([]float32, error) {
	vectors, err := m.client.SentenceVector(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// Status reports whether the runtime has a model loaded
func (m *RemoteModel) Status(ctx context.Context) (*service.ModelStatus, error) {
	resp, err := m.client.Health(ctx)
	if err != nil {
		return nil, err
	}
	return &service.ModelStatus{
		Loaded:    resp.ModelLoaded,
		ModelPath: resp.ModelPath,
	}, nil
}

// Ready checks if the runtime accepts inference calls
func (m *RemoteModel) Ready(ctx context.Context) error {
	return m.client.Ready(ctx)
}
