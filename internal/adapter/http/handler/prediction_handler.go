package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Wesley-Jzy/fasttext-serving/internal/adapter/assembler"
	"github.com/Wesley-Jzy/fasttext-serving/internal/domain/entity"
	"github.com/Wesley-Jzy/fasttext-serving/internal/usecase"
)

// PredictionHandler handles the inference endpoints
type PredictionHandler struct {
	usecase   usecase.PredictionUsecase
	assembler *assembler.Assembler
}

// NewPredictionHandler creates a new prediction handler.
// fallbackDim is the length of the zero vector returned for a failed embedding.
func NewPredictionHandler(uc usecase.PredictionUsecase, fallbackDim int) *PredictionHandler {
	return &PredictionHandler{
		usecase:   uc,
		assembler: assembler.New(assembler.HTTPFallbackLabel, fallbackDim),
	}
}

// Predict handles POST /predict.
// The response holds one [labels, probabilities] pair per input text.
func (h *PredictionHandler) Predict(c *gin.Context) {
	opts, err := ParsePredictOptions(c)
	if err != nil {
		HandleRequestError(c, err)
		return
	}

	texts, err := bindTexts(c)
	if err != nil {
		HandleRequestError(c, err)
		return
	}

	items := make([]entity.PredictionItem, len(texts))
	for i, text := range texts {
		items[i] = entity.PredictionItem{
			Text:      text,
			K:         opts.K,
			Threshold: opts.Threshold,
		}
	}

	outcomes, _, err := h.usecase.PredictBatch(c.Request.Context(), items)
	if err != nil {
		HandleRequestError(c, err)
		return
	}
	predictions := h.assembler.Predictions(outcomes)

	pairs := make([][]any, len(predictions))
	for i, p := range predictions {
		pairs[i] = []any{p.Labels, p.Probabilities}
	}
	c.JSON(http.StatusOK, pairs)
}

// SentenceVector handles POST /sentence-vector
func (h *PredictionHandler) SentenceVector(c *gin.Context) {
	texts, err := bindTexts(c)
	if err != nil {
		HandleRequestError(c, err)
		return
	}

	outcomes, _, err := h.usecase.EmbedBatch(c.Request.Context(), texts)
	if err != nil {
		HandleRequestError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.assembler.Embeddings(outcomes))
}
