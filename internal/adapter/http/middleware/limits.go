package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"

	"github.com/Wesley-Jzy/fasttext-serving/internal/adapter/http/handler"
)

// BodyLimit caps the number of bytes a handler can read from the body.
// Reading past the limit fails with *http.MaxBytesError.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}

// ConcurrencyLimit lets at most the semaphore's weight of requests run at once.
// Waiting requests give up when their context ends.
func ConcurrencyLimit(sem *semaphore.Weighted) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := sem.Acquire(c.Request.Context(), 1); err != nil {
			handler.AbortWithError(c, http.StatusServiceUnavailable, handler.CodeServiceUnavailable, "server is shutting down or request was cancelled")
			return
		}
		defer sem.Release(1)
		c.Next()
	}
}

// HTTPRecorder receives one observation per served request
type HTTPRecorder interface {
	ObserveHTTPRequest(method, path string, status int, duration time.Duration)
}

// Metrics records request counts and latency by route template
func Metrics(recorder HTTPRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		recorder.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
