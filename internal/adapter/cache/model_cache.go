// Package cache provides a cache-aside decorator for service.Model.
// A failing cache never fails inference: read and write errors are logged
// and the call goes to the wrapped model.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Wesley-Jzy/fasttext-serving/internal/domain/service"
)

// Key prefixes of cached entries
const (
	PredictKeyPrefix = "ftserve:predict:"
	VectorKeyPrefix  = "ftserve:vector:"
)

// CachedModel wraps a Model with a Store
type CachedModel struct {
	next   service.Model
	store  Store
	ttl    time.Duration
	logger *zap.Logger
}

var _ service.Model = (*CachedModel)(nil)

// NewCachedModel creates a caching decorator around next
func NewCachedModel(next service.Model, store Store, ttl time.Duration, logger *zap.Logger) *CachedModel {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedModel{
		next:   next,
		store:  store,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *CachedModel) Predict(ctx context.Context, text string, k int, threshold float32) ([]service.LabelScore, error) {
	key := PredictKey(text, k, threshold)

	var cached []service.LabelScore
	if c.lookup(ctx, key, &cached) {
		return cached, nil
	}

	scores, err := c.next.Predict(ctx, text, k, threshold)
	if err != nil {
		return nil, err
	}
	c.save(ctx, key, scores)
	return scores, nil
}

func (c *CachedModel) SentenceVector(ctx context.Context, text string) ([]float32, error) {
	key := VectorKey(text)

	var cached []float32
	if c.lookup(ctx, key, &cached) {
		return cached, nil
	}

	vector, err := c.next.SentenceVector(ctx, text)
	if err != nil {
		return nil, err
	}
	c.save(ctx, key, vector)
	return vector, nil
}

// PredictKey returns the cache key of a classification call
func PredictKey(text string, k int, threshold float32) string {
	return PredictKeyPrefix + digest(fmt.Sprintf("%d|%g|%s", k, threshold, text))
}

// VectorKey returns the cache key of a sentence vector call
func VectorKey(text string) string {
	return VectorKeyPrefix + digest(text)
}

func digest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

func (c *CachedModel) lookup(ctx context.Context, key string, out any) bool {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			c.logger.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		c.logger.Warn("Cache entry undecodable", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (c *CachedModel) save(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("Cache entry unencodable", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
	}
}
