package usecase

import (
	"context"
	"errors"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/Wesley-Jzy/fasttext-serving/internal/domain/entity"
	"github.com/Wesley-Jzy/fasttext-serving/internal/domain/service"
	"github.com/Wesley-Jzy/fasttext-serving/internal/infrastructure/config"
)

// PredictionSource yields classification items until it returns io.EOF
type PredictionSource func() (entity.PredictionItem, error)

// TextSource yields texts until it returns io.EOF
type TextSource func() (string, error)

// BatchRecorder receives the summary of every non-empty batch
type BatchRecorder interface {
	ObserveBatch(summary entity.BatchSummary, duration time.Duration)
}

// PredictionUsecase runs batches through validation, normalization and
// inference. One item failing never affects its siblings: every call returns
// exactly one outcome per input item, in input order.
//
// A batch whose ctx ends is abandoned: the remaining items are skipped, no
// summary is logged or recorded, and ctx.Err() is returned with nil outcomes.
type PredictionUsecase interface {
	PredictBatch(ctx context.Context, items []entity.PredictionItem) ([]entity.PredictionOutcome, entity.BatchSummary, error)
	EmbedBatch(ctx context.Context, texts []string) ([]entity.EmbeddingOutcome, entity.BatchSummary, error)

	// The stream variants pull items as they arrive. A source error other
	// than io.EOF aborts the call and is returned as is.
	PredictStream(ctx context.Context, next PredictionSource) ([]entity.PredictionOutcome, entity.BatchSummary, error)
	EmbedStream(ctx context.Context, next TextSource) ([]entity.EmbeddingOutcome, entity.BatchSummary, error)
}

type predictionUsecase struct {
	model    service.Model
	cfg      config.ServingConfig
	logger   *zap.Logger
	recorder BatchRecorder
}

// NewPredictionUsecase creates a new prediction usecase. recorder may be nil.
func NewPredictionUsecase(model service.Model, cfg config.ServingConfig, logger *zap.Logger, recorder BatchRecorder) PredictionUsecase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &predictionUsecase{
		model:    model,
		cfg:      cfg,
		logger:   logger,
		recorder: recorder,
	}
}

func (u *predictionUsecase) PredictBatch(ctx context.Context, items []entity.PredictionItem) ([]entity.PredictionOutcome, entity.BatchSummary, error) {
	if len(items) == 0 {
		return []entity.PredictionOutcome{}, entity.BatchSummary{Endpoint: entity.EndpointPredict}, nil
	}
	// a slice source never fails, so err can only come from ctx
	return u.PredictStream(ctx, fromSlice(items))
}

func (u *predictionUsecase) EmbedBatch(ctx context.Context, texts []string) ([]entity.EmbeddingOutcome, entity.BatchSummary, error) {
	if len(texts) == 0 {
		return []entity.EmbeddingOutcome{}, entity.BatchSummary{Endpoint: entity.EndpointSentenceVector}, nil
	}
	return u.EmbedStream(ctx, fromSlice(texts))
}

func (u *predictionUsecase) PredictStream(ctx context.Context, next PredictionSource) ([]entity.PredictionOutcome, entity.BatchSummary, error) {
	return runBatch[entity.PredictionItem, entity.PredictionOutcome](ctx, u, entity.EndpointPredict, next, func(i int, item entity.PredictionItem) entity.PredictionOutcome {
		return u.predictOne(ctx, i, item)
	})
}

func (u *predictionUsecase) EmbedStream(ctx context.Context, next TextSource) ([]entity.EmbeddingOutcome, entity.BatchSummary, error) {
	return runBatch[string, entity.EmbeddingOutcome](ctx, u, entity.EndpointSentenceVector, next, func(i int, text string) entity.EmbeddingOutcome {
		return u.embedOne(ctx, i, text)
	})
}

func (u *predictionUsecase) predictOne(ctx context.Context, index int, item entity.PredictionItem) entity.PredictionOutcome {
	if err := ValidateText(item.Text, u.cfg.MaxTextLength); err != nil {
		u.itemFailed(entity.EndpointPredict, index, item.Text, err)
		return entity.PredictionOutcome{Err: toItemError(err)}
	}

	k := 1
	if item.K != nil {
		k = *item.K
	}
	threshold := u.cfg.DefaultThreshold
	if item.Threshold != nil {
		threshold = *item.Threshold
	}

	pred, err := Classify(ctx, u.model, NormalizeText(item.Text), k, threshold)
	if err != nil {
		u.itemFailed(entity.EndpointPredict, index, item.Text, err)
		return entity.PredictionOutcome{Err: toItemError(err)}
	}
	return entity.PredictionOutcome{Prediction: pred}
}

func (u *predictionUsecase) embedOne(ctx context.Context, index int, text string) entity.EmbeddingOutcome {
	if err := ValidateText(text, u.cfg.MaxTextLength); err != nil {
		u.itemFailed(entity.EndpointSentenceVector, index, text, err)
		return entity.EmbeddingOutcome{Err: toItemError(err)}
	}

	emb, err := Embed(ctx, u.model, NormalizeText(text))
	if err != nil {
		u.itemFailed(entity.EndpointSentenceVector, index, text, err)
		return entity.EmbeddingOutcome{Err: toItemError(err)}
	}
	return entity.EmbeddingOutcome{Embedding: emb}
}

func (u *predictionUsecase) itemFailed(endpoint entity.Endpoint, index int, text string, err error) {
	u.logger.Debug("Batch item failed",
		zap.String("endpoint", string(endpoint)),
		zap.Int("index", index),
		zap.Int("text_length", len(text)),
		zap.Error(err),
	)
}

// finish emits the single aggregate log line of a batch and records metrics
func (u *predictionUsecase) finish(summary entity.BatchSummary, duration time.Duration) {
	if summary.Errors > 0 {
		u.logger.Warn("Batch processing completed with errors",
			zap.String("endpoint", string(summary.Endpoint)),
			zap.Int("errors", summary.Errors),
			zap.Int("total", summary.Processed),
			zap.Duration("duration", duration),
		)
	} else {
		u.logger.Info("Batch processing completed successfully",
			zap.String("endpoint", string(summary.Endpoint)),
			zap.Int("total", summary.Processed),
			zap.Duration("duration", duration),
		)
	}

	if u.recorder != nil {
		u.recorder.ObserveBatch(summary, duration)
	}
}

type outcome interface {
	Failed() bool
}

func runBatch[T any, R outcome](ctx context.Context, u *predictionUsecase, endpoint entity.Endpoint, next func() (T, error), handle func(int, T) R) ([]R, entity.BatchSummary, error) {
	start := time.Now()
	results := make([]R, 0)
	summary := entity.BatchSummary{Endpoint: endpoint}

	for {
		item, err := next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, summary, err
		}
		if err := ctx.Err(); err != nil {
			u.abandon(summary, err)
			return nil, summary, err
		}

		r := handle(summary.Processed, item)
		summary.Processed++
		if r.Failed() {
			summary.Errors++
		}
		results = append(results, r)
	}

	// an item interrupted by cancellation fails as a model error; drop the batch
	if err := ctx.Err(); err != nil {
		u.abandon(summary, err)
		return nil, summary, err
	}

	if summary.Processed > 0 {
		u.finish(summary, time.Since(start))
	}
	return results, summary, nil
}

func (u *predictionUsecase) abandon(summary entity.BatchSummary, err error) {
	u.logger.Debug("Batch abandoned",
		zap.String("endpoint", string(summary.Endpoint)),
		zap.Int("processed", summary.Processed),
		zap.Error(err),
	)
}

func fromSlice[T any](items []T) func() (T, error) {
	i := 0
	return func() (T, error) {
		if i >= len(items) {
			var zero T
			return zero, io.EOF
		}
		item := items[i]
		i++
		return item, nil
	}
}
