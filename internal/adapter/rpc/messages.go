package rpc

import "github.com/Wesley-Jzy/fasttext-serving/internal/domain/entity"

// PredictRequest is one streamed classification item
type PredictRequest struct {
	Text      string   `json:"text"`
	K         *uint32  `json:"k,omitempty"`
	Threshold *float32 `json:"threshold,omitempty"`
}

func (r *PredictRequest) item() entity.PredictionItem {
	item := entity.PredictionItem{
		Text:      r.Text,
		Threshold: r.Threshold,
	}
	if r.K != nil {
		k := int(*r.K)
		item.K = &k
	}
	return item
}

// Prediction holds the labels of one text, ordered by probability
type Prediction struct {
	Labels []string  `json:"labels"`
	Probs  []float32 `json:"probs"`
}

// PredictResponse answers a whole Predict stream, one prediction per request
type PredictResponse struct {
	Predictions []Prediction `json:"predictions"`
}

// SentenceVectorRequest is one streamed embedding item
type SentenceVectorRequest struct {
	Text string `json:"text"`
}

// Vector is the sentence vector of one text
type Vector struct {
	Values []float32 `json:"values"`
}

// SentenceVectorResponse answers a whole SentenceVector stream
type SentenceVectorResponse struct {
	Vectors []Vector `json:"vectors"`
}
