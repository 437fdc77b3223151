package usecase

import (
	"errors"
	"fmt"

	"github.com/Wesley-Jzy/fasttext-serving/internal/domain/entity"
)

// Sentinels matched by errors.Is against a *PredictError of the same kind
var (
	ErrInput = errors.New("input error")
	ErrModel = errors.New("model error")
)

// PredictError is the failure of a single batch item
type PredictError struct {
	Kind    entity.ErrorKind
	Message string
}

// NewInputError builds an input error for text rejected before inference
func NewInputError(format string, args ...any) *PredictError {
	return &PredictError{Kind: entity.ErrorKindInput, Message: fmt.Sprintf(format, args...)}
}

// NewModelError builds a model error for a failed inference call
func NewModelError(format string, args ...any) *PredictError {
	return &PredictError{Kind: entity.ErrorKindModel, Message: fmt.Sprintf(format, args...)}
}

func (e *PredictError) Error() string {
	switch e.Kind {
	case entity.ErrorKindInput:
		return "Input error: " + e.Message
	case entity.ErrorKindModel:
		return "Model error: " + e.Message
	default:
		return e.Message
	}
}

// Is lets errors.Is(err, ErrInput) and errors.Is(err, ErrModel) match by kind
func (e *PredictError) Is(target error) bool {
	switch target {
	case ErrInput:
		return e.Kind == entity.ErrorKindInput
	case ErrModel:
		return e.Kind == entity.ErrorKindModel
	}
	return false
}

// toItemError converts any per-item failure into its outcome form.
// Errors that are not a *PredictError count as model errors.
func toItemError(err error) *entity.ItemError {
	var pe *PredictError
	if errors.As(err, &pe) {
		return &entity.ItemError{Kind: pe.Kind, Message: pe.Message}
	}
	return &entity.ItemError{Kind: entity.ErrorKindModel, Message: err.Error()}
}
