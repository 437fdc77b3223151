package handler

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

// PredictOptions holds the query options of a classification request.
// Nil fields were not given and fall back to the serving defaults.
type PredictOptions struct {
	K         *int
	Threshold *float32
}

// ParsePredictOptions extracts k and threshold from the query string.
// k must be an unsigned 32-bit integer and threshold a 32-bit float.
func ParsePredictOptions(c *gin.Context) (*PredictOptions, error) {
	opts := &PredictOptions{}

	if raw, ok := c.GetQuery("k"); ok {
		k, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: k=%q", ErrInvalidQuery, raw)
		}
		v := int(k)
		opts.K = &v
	}

	if raw, ok := c.GetQuery("threshold"); ok {
		threshold, err := strconv.ParseFloat(raw, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: threshold=%q", ErrInvalidQuery, raw)
		}
		v := float32(threshold)
		opts.Threshold = &v
	}

	return opts, nil
}

// bindTexts decodes the body as a JSON array of strings whatever the content type
func bindTexts(c *gin.Context) ([]string, error) {
	var texts []string
	if err := c.ShouldBindJSON(&texts); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBody, err)
	}
	if texts == nil {
		texts = []string{}
	}
	return texts, nil
}
