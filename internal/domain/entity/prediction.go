package entity

// Endpoint identifies which inference operation a batch runs
type Endpoint string

const (
	EndpointPredict        Endpoint = "predict"
	EndpointSentenceVector Endpoint = "sentence_vector"
)

// ErrorKind classifies why a single item failed
type ErrorKind string

const (
	ErrorKindInput ErrorKind = "input_error"
	ErrorKindModel ErrorKind = "model_error"
)

// PredictionItem is one text of a classification batch.
// Text is not validated yet; K and Threshold are nil when the caller omitted them.
type PredictionItem struct {
	Text      string
	K         *int
	Threshold *float32
}

// Prediction holds the top-k labels of one text, ordered by the model
type Prediction struct {
	Labels        []string  `json:"labels"`
	Probabilities []float32 `json:"probabilities"`
}

// Embedding is the sentence vector of one text
type Embedding struct {
	Values []float32 `json:"values"`
}

// ItemError records why one item of a batch fell back
type ItemError struct {
	Kind    ErrorKind
	Message string
}

// PredictionOutcome is the result for one classification item.
// Exactly one of Prediction and Err is set.
type PredictionOutcome struct {
	Prediction *Prediction
	Err        *ItemError
}

// Failed reports whether the item fell back
func (o PredictionOutcome) Failed() bool {
	return o.Err != nil
}

// EmbeddingOutcome is the result for one embedding item.
// Exactly one of Embedding and Err is set.
type EmbeddingOutcome struct {
	Embedding *Embedding
	Err       *ItemError
}

// Failed reports whether the item fell back
func (o EmbeddingOutcome) Failed() bool {
	return o.Err != nil
}

// BatchSummary carries the counters of one processed batch
type BatchSummary struct {
	Endpoint  Endpoint
	Processed int
	Errors    int
}

// Succeeded returns the number of items that did not fall back
func (s BatchSummary) Succeeded() int {
	return s.Processed - s.Errors
}
